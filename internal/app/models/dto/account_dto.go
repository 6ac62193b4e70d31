package dto

import (
	"time"

	"github.com/emrekaya/classline/internal/app/models"
)

// UserResponse is the external representation of an account
type UserResponse struct {
	ID        int64     `json:"id" example:"1"`
	SchoolID  int64     `json:"schoolId" example:"1"`
	Email     string    `json:"email" example:"parent@example.com"`
	FirstName string    `json:"firstName" example:"Ayse"`
	LastName  string    `json:"lastName" example:"Yilmaz"`
	RoleType  string    `json:"roleType" example:"PARENT" enums:"ADMIN,SECRETARY,TEACHER,PARENT,STUDENT"`
	IsActive  bool      `json:"isActive" example:"true"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserResponse converts a model.User to a UserResponse
func ToUserResponse(user *models.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID,
		SchoolID:  user.SchoolID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		RoleType:  string(user.RoleType),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

// InviteAccountRequest creates an inactive account pending activation
type InviteAccountRequest struct {
	Email     string `json:"email" binding:"required,email" example:"teacher@example.com"`
	FirstName string `json:"firstName" binding:"required,max=60" example:"Fatma"`
	LastName  string `json:"lastName" binding:"required,max=60" example:"Kaya"`
	RoleType  string `json:"roleType" binding:"required,oneof=ADMIN SECRETARY TEACHER PARENT STUDENT" example:"TEACHER"`
}

// AccountListResponse is the payload for account listing
type AccountListResponse struct {
	Accounts []UserResponse `json:"accounts"`
}
