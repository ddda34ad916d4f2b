package constants

const (
	CHANNEL_SIZE               = 100 // 通道大小
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
	HISTORY_LIMIT              = 50  // 历史消息默认条数
	SEARCH_LIMIT               = 20  // 用户搜索最大条数
	SEARCH_MIN_LEN             = 2   // 搜索关键字最短长度
	USER_CODE_LEN              = 8   // 用户公开短码长度
)

const (
	REDIS_ONLINE_USERS_KEY = "online_users" // 在线用户镜像集合
	REDIS_USER_TOKEN_KEY   = "user_token:"  // Refresh Token ID 前缀，实现单点互踢
	GROUP_ROOM_PREFIX      = "group:"       // 群房间前缀
	AVATAR_BASE_URL        = "https://ui-avatars.com/api/"
)
