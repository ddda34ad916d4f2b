// Package friend 实现好友关系事件引擎
// 申请与接受是一次双方握手：无论对方是否在线都先持久化，在线时实时投递
package friend

import (
	"live_chat_server/internal/dao/mysql/repository"
	"live_chat_server/internal/dto/event"
	"live_chat_server/internal/dto/respond"
	"live_chat_server/internal/model"
	"live_chat_server/pkg/enum/friendship/friendship_status_enum"
	"live_chat_server/pkg/errorx"
	"live_chat_server/pkg/util/random"
)

type friendService struct {
	repos    *repository.Repositories
	notifier event.Notifier
}

// NewFriendService 构造函数
func NewFriendService(repos *repository.Repositories, notifier event.Notifier) *friendService {
	return &friendService{repos: repos, notifier: notifier}
}

// RequestFriend 发起好友申请
// 同一无序用户对只能有一条记录，不论方向和状态，已存在时返回 Conflict
func (f *friendService) RequestFriend(fromId, toId string) (*respond.FriendshipRespond, error) {
	if toId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "好友 ID 不能为空")
	}
	if fromId == toId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能添加自己为好友")
	}
	target, err := f.repos.User.FindByUuid(toId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "用户不存在")
		}
		return nil, err
	}
	requester, err := f.repos.User.FindByUuid(fromId)
	if err != nil {
		return nil, err
	}

	pairKey := model.PairKey(fromId, toId)
	if _, err := f.repos.Friendship.FindByPairKey(pairKey); err == nil {
		return nil, errorx.New(errorx.CodeConflict, "好友关系已存在")
	} else if !errorx.IsNotFound(err) {
		return nil, err
	}

	friendship := &model.Friendship{
		Uuid:        "F" + random.GetNowAndLenRandomString(11),
		RequesterId: fromId,
		TargetId:    toId,
		PairKey:     pairKey,
		Status:      friendship_status_enum.Pending,
	}
	// 并发申请由 pair_key 唯一索引兜底，返回的同样是 Conflict
	if err := f.repos.Friendship.Create(friendship); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.Wrap(err, errorx.CodeConflict, "好友关系已存在")
		}
		return nil, err
	}

	res := respond.NewFriendshipRespond(friendship, requester, target)
	f.notifier.Unicast(toId, event.New(event.FriendRequestReceive, res))
	return &res, nil
}

// AcceptFriend 只有申请的目标用户可以接受
func (f *friendService) AcceptFriend(accepterId, friendshipId string) (*respond.FriendshipRespond, error) {
	friendship, err := f.repos.Friendship.FindByUuid(friendshipId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "好友申请不存在")
		}
		return nil, err
	}
	if friendship.TargetId != accepterId {
		return nil, errorx.New(errorx.CodeForbidden, "只能处理发给自己的好友申请")
	}
	if friendship.Status == friendship_status_enum.Accepted {
		return nil, errorx.New(errorx.CodeConflict, "好友申请已接受")
	}

	if err := f.repos.Friendship.UpdateStatus(friendship.Uuid, friendship_status_enum.Accepted); err != nil {
		return nil, err
	}
	friendship.Status = friendship_status_enum.Accepted

	users, err := f.loadUsers(friendship.RequesterId, friendship.TargetId)
	if err != nil {
		return nil, err
	}
	res := respond.NewFriendshipRespond(friendship, users[friendship.RequesterId], users[friendship.TargetId])
	f.notifier.Unicast(friendship.RequesterId, event.New(event.FriendRequestAccepted, res))
	return &res, nil
}

// RemoveFriend 删除与 friendId 之间的关系，待处理的申请也一并删除
func (f *friendService) RemoveFriend(userId, friendId string) error {
	if friendId == "" {
		return errorx.New(errorx.CodeInvalidParam, "好友 ID 不能为空")
	}
	if err := f.repos.Friendship.DeleteByPairKey(model.PairKey(userId, friendId)); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Wrap(err, errorx.CodeNotFound, "好友关系不存在")
		}
		return err
	}
	return nil
}

// GetFriends 已接受的好友
func (f *friendService) GetFriends(userId string) ([]respond.FriendRespond, error) {
	friendships, err := f.repos.Friendship.FindAcceptedByUser(userId)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(friendships))
	for i := range friendships {
		ids = append(ids, friendships[i].Other(userId))
	}
	users, err := f.loadUsers(ids...)
	if err != nil {
		return nil, err
	}

	list := make([]respond.FriendRespond, 0, len(friendships))
	for i := range friendships {
		u, ok := users[friendships[i].Other(userId)]
		if !ok {
			continue
		}
		list = append(list, respond.FriendRespond{
			UserBrief:    respond.NewUserBrief(u),
			FriendshipId: friendships[i].Uuid,
			Since:        friendships[i].UpdatedAt,
		})
	}
	return list, nil
}

// GetPendingRequests 发给 userId 且尚未接受的申请
func (f *friendService) GetPendingRequests(userId string) ([]respond.FriendshipRespond, error) {
	friendships, err := f.repos.Friendship.FindPendingByTarget(userId)
	if err != nil {
		return nil, err
	}
	ids := []string{userId}
	for i := range friendships {
		ids = append(ids, friendships[i].RequesterId)
	}
	users, err := f.loadUsers(ids...)
	if err != nil {
		return nil, err
	}

	list := make([]respond.FriendshipRespond, 0, len(friendships))
	for i := range friendships {
		list = append(list, respond.NewFriendshipRespond(&friendships[i], users[friendships[i].RequesterId], users[userId]))
	}
	return list, nil
}

func (f *friendService) loadUsers(ids ...string) (map[string]*model.User, error) {
	users, err := f.repos.User.FindByUuids(ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[string]*model.User, len(users))
	for i := range users {
		byId[users[i].Uuid] = &users[i]
	}
	return byId, nil
}
