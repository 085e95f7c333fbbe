package dto

type ListUsersQuery struct {
	Role  string `form:"role" binding:"omitempty,oneof=buyer exporter admin"`
	Page  int    `form:"page,default=1" binding:"min=1"`
	Limit int    `form:"limit,default=20" binding:"min=1,max=50"`
}
