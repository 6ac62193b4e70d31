package models

import "time"

// Student defines the student model based on the 'students' table.
// A student optionally belongs to one class and has at most two guardians.
type Student struct {
	ID        int64          `json:"id" db:"id"`
	SchoolID  int64          `json:"schoolId" db:"school_id"`
	ClassID   *int64         `json:"classId,omitempty" db:"class_id"`
	FirstName string         `json:"firstName" db:"first_name"`
	LastName  string         `json:"lastName" db:"last_name"`
	Class     *Class         `json:"class,omitempty"`     // Relation, no db tag
	Guardians []GuardianLink `json:"guardians,omitempty"` // Relation, no db tag
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// MaxGuardiansPerStudent caps guardian links per student.
const MaxGuardiansPerStudent = 2

// GuardianLink associates a parent account with a student, carrying a
// kinship label. Shared between Student and User, owned by neither.
type GuardianLink struct {
	ID        int64     `json:"id" db:"id"`
	StudentID int64     `json:"studentId" db:"student_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Kinship   string    `json:"kinship" db:"kinship" example:"mother"`
	Guardian  *User     `json:"guardian,omitempty"` // Relation, no db tag
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
