package friendship_status_enum

// 好友关系状态
// 没有"拒绝"状态，对方一直不接受即视为拒绝
const (
	Pending  = "PENDING"
	Accepted = "ACCEPTED"
)
