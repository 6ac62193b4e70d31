package dto

import (
	"github.com/emrekaya/classline/internal/app/models"
)

// CreateClassRequest creates a class within the caller's school
type CreateClassRequest struct {
	Name string `json:"name" binding:"required,min=1,max=40" example:"3A"`
}

// AssignTeacherRequest assigns the class teacher
type AssignTeacherRequest struct {
	TeacherID int64 `json:"teacherId" binding:"required,min=1" example:"7"`
}

// ClassResponse is the external representation of a class
type ClassResponse struct {
	ID        int64         `json:"id" example:"3"`
	Name      string        `json:"name" example:"3A"`
	TeacherID *int64        `json:"teacherId,omitempty" example:"7"`
	Teacher   *UserResponse `json:"teacher,omitempty"`
}

// ClassListResponse is the payload for class listing
type ClassListResponse struct {
	Classes []ClassResponse `json:"classes"`
}

// ToClassResponse converts a model.Class to a ClassResponse
func ToClassResponse(class *models.Class) ClassResponse {
	if class == nil {
		return ClassResponse{}
	}
	resp := ClassResponse{
		ID:        class.ID,
		Name:      class.Name,
		TeacherID: class.TeacherID,
	}
	if class.Teacher != nil {
		teacher := ToUserResponse(class.Teacher)
		resp.Teacher = &teacher
	}
	return resp
}
