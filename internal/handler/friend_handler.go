package handler

import (
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友请求处理器
// REST 与实时事件共用同一个 FriendService，对方同样会收到实时通知
type FriendHandler struct {
	friendSvc service.FriendService
}

// NewFriendHandler 创建好友处理器实例
func NewFriendHandler(friendSvc service.FriendService) *FriendHandler {
	return &FriendHandler{friendSvc: friendSvc}
}

// Request 发起好友申请
// POST /user/friends/request
// 请求体: request.FriendRequestRequest
func (h *FriendHandler) Request(c *gin.Context) {
	var req request.FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.friendSvc.RequestFriend(getUserId(c), req.FriendId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Accept 接受好友申请
// PUT /user/friends/accept/:friendshipId
func (h *FriendHandler) Accept(c *gin.Context) {
	data, err := h.friendSvc.AcceptFriend(getUserId(c), c.Param("friendshipId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Pending 收到的待处理申请
// GET /user/friends/requests
func (h *FriendHandler) Pending(c *gin.Context) {
	data, err := h.friendSvc.GetPendingRequests(getUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// List 好友列表
// GET /user/friends
func (h *FriendHandler) List(c *gin.Context) {
	data, err := h.friendSvc.GetFriends(getUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Remove 删除好友
// DELETE /user/friends/:friendId
func (h *FriendHandler) Remove(c *gin.Context) {
	if err := h.friendSvc.RemoveFriend(getUserId(c), c.Param("friendId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
