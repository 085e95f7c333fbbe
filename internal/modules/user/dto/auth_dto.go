package dto

import (
	"time"

	"anadara.com/exportmarket/internal/entity"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=8,max=72"`
	FirstName   string  `json:"first_name" binding:"required,max=50"`
	LastName    string  `json:"last_name" binding:"required,max=50"`
	Role        string  `json:"role" binding:"required,oneof=buyer exporter"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=100"`
	Country     *string `json:"country" binding:"omitempty,max=50"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CompanyName *string   `json:"company_name,omitempty"`
	Country     *string   `json:"country,omitempty"`
	Role        string    `json:"role"`
	Status      string    `json:"status"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		CompanyName: u.CompanyName,
		Country:     u.Country,
		Role:        u.Role,
		Status:      u.Status,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}
