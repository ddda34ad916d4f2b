// Package handler 提供 HTTP 请求处理器
// 本文件处理群组相关的 API 请求
package handler

import (
	"live_chat_server/internal/dto/request"
	"live_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组请求处理器
// 群消息的读写交给 MessageService，与实时事件共用同一条扇出路径
type GroupHandler struct {
	groupSvc   service.GroupService
	messageSvc service.MessageService
}

// NewGroupHandler 创建群组处理器实例
func NewGroupHandler(groupSvc service.GroupService, messageSvc service.MessageService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc, messageSvc: messageSvc}
}

// CreateGroup 创建群聊
// POST /group/create
// 请求体: request.CreateGroupRequest
// 响应: respond.GroupDetailRespond
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.CreateGroup(getUserId(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MyGroups 我加入的群
// GET /group
func (h *GroupHandler) MyGroups(c *gin.Context) {
	data, err := h.groupSvc.GetUserGroups(getUserId(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroupDetails 群详情和成员列表，仅成员可见
// GET /group/:groupId
func (h *GroupHandler) GetGroupDetails(c *gin.Context) {
	data, err := h.groupSvc.GetGroupDetails(getUserId(c), c.Param("groupId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroupMessages 群聊记录
// GET /group/:groupId/messages?limit=50
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	var q request.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetGroupMessages(getUserId(c), c.Param("groupId"), q.Limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 发送群消息
// POST /group/message
func (h *GroupHandler) SendMessage(c *gin.Context) {
	var req request.SendGroupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendGroup(getUserId(c), req.GroupId, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// AddMember 添加成员，仅 ADMIN
// POST /group/members/add
func (h *GroupHandler) AddMember(c *gin.Context) {
	var req request.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.AddMember(getUserId(c), req.GroupId, req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveMember 移除成员
// POST /group/members/remove
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	var req request.GroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.groupSvc.RemoveMember(getUserId(c), req.GroupId, req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// LeaveGroup 退出群聊
// DELETE /group/:groupId/leave
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	if err := h.groupSvc.LeaveGroup(getUserId(c), c.Param("groupId")); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
