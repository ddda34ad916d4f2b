// Package group 提供群组与成员管理
// 成员变更只写数据库，已连接会话的群房间在下次连接时刷新
package group

import (
	"net/url"
	"strings"
	"time"

	"live_chat_server/internal/dao/mysql/repository"
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/dto/respond"
	"live_chat_server/internal/model"
	"live_chat_server/pkg/constants"
	"live_chat_server/pkg/enum/group_member/group_role_enum"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/random"

	"go.uber.org/zap"
)

// groupService 群组业务逻辑实现
type groupService struct {
	repos *repository.Repositories
}

// NewGroupService 构造函数
func NewGroupService(repos *repository.Repositories) *groupService {
	return &groupService{repos: repos}
}

// CreateGroup 创建群聊
// 创建者为 ADMIN，memberIds 去重并排除创建者后以 MEMBER 加入，全部在一个事务内
func (g *groupService) CreateGroup(creatorId string, req request.CreateGroupRequest) (*respond.GroupDetailRespond, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群名称不能为空")
	}

	memberIds := make([]string, 0, len(req.MemberIds))
	seen := map[string]struct{}{creatorId: {}}
	for _, id := range req.MemberIds {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		memberIds = append(memberIds, id)
	}
	if len(memberIds) > 0 {
		users, err := g.repos.User.FindByUuids(memberIds)
		if err != nil {
			return nil, err
		}
		if len(users) != len(memberIds) {
			return nil, errorx.New(errorx.CodeNotFound, "部分成员用户不存在")
		}
	}

	now := time.Now()
	group := &model.Group{
		Uuid:        "G" + random.GetNowAndLenRandomString(11),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatorId:   creatorId,
		Avatar:      avatarURL(name),
	}
	members := make([]model.GroupMember, 0, len(memberIds)+1)
	members = append(members, model.GroupMember{GroupUuid: group.Uuid, UserUuid: creatorId, Role: group_role_enum.Admin, JoinedAt: now})
	for _, id := range memberIds {
		members = append(members, model.GroupMember{GroupUuid: group.Uuid, UserUuid: id, Role: group_role_enum.Member, JoinedAt: now})
	}

	err := g.repos.Transaction(func(txRepos *repository.Repositories) error {
		if err := txRepos.Group.Create(group); err != nil {
			return err
		}
		return txRepos.GroupMember.CreateBatch(members)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("group created", zap.String("group_id", group.Uuid), zap.Int("members", len(members)))

	return g.detail(group, group_role_enum.Admin)
}

// GetUserGroups 用户所在的全部群，按最近活跃倒序，附带最后一条消息
func (g *groupService) GetUserGroups(userId string) ([]respond.GroupRespond, error) {
	groupIds, err := g.repos.GroupMember.FindGroupIdsByUser(userId)
	if err != nil {
		return nil, err
	}
	groups, err := g.repos.Group.FindByUuids(groupIds)
	if err != nil {
		return nil, err
	}

	list := make([]respond.GroupRespond, 0, len(groups))
	for i := range groups {
		item := respond.NewGroupRespond(&groups[i])
		last, err := g.repos.Message.FindLatestByGroupId(groups[i].Uuid)
		if err != nil {
			return nil, err
		}
		if last != nil {
			msg := respond.NewMessageRespond(last, nil)
			item.LastMessage = &msg
		}
		list = append(list, item)
	}
	return list, nil
}

// GetGroupDetails 群详情，仅成员可见
func (g *groupService) GetGroupDetails(userId, groupId string) (*respond.GroupDetailRespond, error) {
	member, err := g.membership(groupId, userId)
	if err != nil {
		return nil, err
	}
	group, err := g.findGroup(groupId)
	if err != nil {
		return nil, err
	}
	return g.detail(group, member.Role)
}

// AddMember 只有 ADMIN 可以添加，重复添加返回 Conflict
func (g *groupService) AddMember(operatorId, groupId, userId string) (*respond.GroupMemberRespond, error) {
	if err := g.requireAdmin(groupId, operatorId); err != nil {
		return nil, err
	}
	user, err := g.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "用户不存在")
		}
		return nil, err
	}
	if _, err := g.repos.GroupMember.FindByGroupAndUser(groupId, userId); err == nil {
		return nil, errorx.New(errorx.CodeConflict, "用户已在群中")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	member := &model.GroupMember{GroupUuid: groupId, UserUuid: userId, Role: group_role_enum.Member, JoinedAt: time.Now()}
	if err := g.repos.GroupMember.Create(member); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.Wrap(err, errorx.CodeConflict, "用户已在群中")
		}
		return nil, err
	}
	return &respond.GroupMemberRespond{
		UserBrief: respond.NewUserBrief(user),
		Role:      member.Role,
		JoinedAt:  member.JoinedAt,
	}, nil
}

// RemoveMember ADMIN 可以移除任何成员，普通成员只能移除自己
func (g *groupService) RemoveMember(operatorId, groupId, userId string) error {
	if operatorId != userId {
		if err := g.requireAdmin(groupId, operatorId); err != nil {
			return err
		}
	}
	if err := g.repos.GroupMember.Delete(groupId, userId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Wrap(err, errorx.CodeNotFound, "该用户不在群中")
		}
		return err
	}
	return nil
}

// LeaveGroup 退出群组
func (g *groupService) LeaveGroup(userId, groupId string) error {
	return g.RemoveMember(userId, groupId, userId)
}

func (g *groupService) detail(group *model.Group, role string) (*respond.GroupDetailRespond, error) {
	rows, err := g.repos.GroupMember.FindMembersWithUser(group.Uuid)
	if err != nil {
		return nil, err
	}
	res := &respond.GroupDetailRespond{
		GroupRespond: respond.NewGroupRespond(group),
		Members:      make([]respond.GroupMemberRespond, 0, len(rows)),
	}
	res.Role = role
	for _, row := range rows {
		res.Members = append(res.Members, respond.GroupMemberRespond{
			UserBrief: respond.UserBrief{
				UserId:   row.UserId,
				Username: row.Username,
				UserCode: row.UserCode,
				Avatar:   row.Avatar,
				IsOnline: row.IsOnline,
			},
			Role:     row.Role,
			JoinedAt: row.JoinedAt,
		})
	}
	return res, nil
}

func (g *groupService) findGroup(groupId string) (*model.Group, error) {
	group, err := g.repos.Group.FindByUuid(groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "群组不存在")
		}
		return nil, err
	}
	return group, nil
}

func (g *groupService) membership(groupId, userId string) (*model.GroupMember, error) {
	member, err := g.repos.GroupMember.FindByGroupAndUser(groupId, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeForbidden, "你不是该群成员")
		}
		return nil, err
	}
	return member, nil
}

func (g *groupService) requireAdmin(groupId, userId string) error {
	member, err := g.membership(groupId, userId)
	if err != nil {
		return err
	}
	if member.Role != group_role_enum.Admin {
		return errorx.New(errorx.CodeForbidden, "只有管理员可以管理成员")
	}
	return nil
}

func avatarURL(name string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("background", "random")
	return constants.AVATAR_BASE_URL + "?" + q.Encode()
}
