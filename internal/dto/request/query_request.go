package request

// HistoryQuery 历史消息分页，limit 缺省时使用服务端默认值
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// SearchQuery GET /user/search?query=
type SearchQuery struct {
	Query string `form:"query" binding:"required"`
}
