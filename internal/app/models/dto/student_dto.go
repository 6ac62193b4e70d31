package dto

import (
	"github.com/emrekaya/classline/internal/app/models"
)

// CreateStudentRequest enrolls a student in the caller's school
type CreateStudentRequest struct {
	FirstName string `json:"firstName" binding:"required,max=60" example:"Mehmet"`
	LastName  string `json:"lastName" binding:"required,max=60" example:"Yilmaz"`
	ClassID   *int64 `json:"classId,omitempty" binding:"omitempty,min=1" example:"3"`
}

// MoveStudentRequest moves a student into a class (or out of any class)
type MoveStudentRequest struct {
	ClassID *int64 `json:"classId" binding:"omitempty,min=1" example:"3"`
}

// AddGuardianRequest links a parent account to a student
type AddGuardianRequest struct {
	UserID  int64  `json:"userId" binding:"required,min=1" example:"12"`
	Kinship string `json:"kinship" binding:"required,max=40" example:"mother"`
}

// GuardianResponse is the external representation of a guardian link
type GuardianResponse struct {
	UserID   int64         `json:"userId" example:"12"`
	Kinship  string        `json:"kinship" example:"mother"`
	Guardian *UserResponse `json:"guardian,omitempty"`
}

// StudentResponse is the external representation of a student
type StudentResponse struct {
	ID        int64              `json:"id" example:"5"`
	FirstName string             `json:"firstName" example:"Mehmet"`
	LastName  string             `json:"lastName" example:"Yilmaz"`
	ClassID   *int64             `json:"classId,omitempty" example:"3"`
	Guardians []GuardianResponse `json:"guardians,omitempty"`
}

// ToStudentResponse converts a model.Student to a StudentResponse
func ToStudentResponse(student *models.Student) StudentResponse {
	if student == nil {
		return StudentResponse{}
	}
	resp := StudentResponse{
		ID:        student.ID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		ClassID:   student.ClassID,
	}
	for i := range student.Guardians {
		link := student.Guardians[i]
		g := GuardianResponse{
			UserID:  link.UserID,
			Kinship: link.Kinship,
		}
		if link.Guardian != nil {
			guardian := ToUserResponse(link.Guardian)
			g.Guardian = &guardian
		}
		resp.Guardians = append(resp.Guardians, g)
	}
	return resp
}

// StudentListResponse is the payload for student listing
type StudentListResponse struct {
	Students []StudentResponse `json:"students"`
}
