package models

import "time"

// Class defines a school class based on the 'classes' table.
// A class has at most one teacher assignment.
type Class struct {
	ID        int64     `json:"id" db:"id"`
	SchoolID  int64     `json:"schoolId" db:"school_id"`
	Name      string    `json:"name" db:"name" example:"3A"`
	TeacherID *int64    `json:"teacherId,omitempty" db:"teacher_id"`
	Teacher   *User     `json:"teacher,omitempty"` // Relation, no db tag
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
