package request

// FriendRequestRequest 发起好友申请
// friend:request:send 事件载荷和 POST /user/friends/request 请求体
type FriendRequestRequest struct {
	FriendId string `json:"friendId" binding:"required"`
}

// FriendAcceptRequest 接受好友申请
type FriendAcceptRequest struct {
	FriendshipId string `json:"friendshipId" binding:"required"`
}
