package group_role_enum

// 群成员角色，群创建者始终是第一个管理员
const (
	Admin  = "ADMIN"
	Member = "MEMBER"
)
