package dto

// ==================== 通用 DTO 定义 ====================

const (
	DefaultPageSize = 20  // 默认每页大小
	MaxPageSize     = 100 // 每页大小上限
)

// PageRequest 分页查询参数
type PageRequest struct {
	Page     int `form:"page" json:"page" binding:"omitempty,min=1"`                 // 页码
	PageSize int `form:"pageSize" json:"pageSize" binding:"omitempty,min=1,max=100"` // 每页大小
}

// Normalize 补齐默认分页参数
func (p PageRequest) Normalize() (int, int) {
	page, pageSize := p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// PaginationInfo 分页信息 DTO
type PaginationInfo struct {
	Page       int   `json:"page"`       // 当前页码
	PageSize   int   `json:"pageSize"`   // 每页大小
	Total      int64 `json:"total"`      // 总记录数
	TotalPages int   `json:"totalPages"` // 总页数
}

// UserItem 用户信息 DTO
type UserItem struct {
	Id          int64  `json:"id"`          // 用户id
	Username    string `json:"username"`    // 用户名
	DisplayName string `json:"displayName"` // 展示名（昵称 > 全名 > 用户名）
	IsStaff     bool   `json:"isStaff"`     // 是否管理员
}
