package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every repository behind one constructor so wiring
// stays in one place.
type Repositories struct {
	SchoolRepository          *SchoolRepository
	UserRepository            *UserRepository
	ActivationTokenRepository *ActivationTokenRepository
	ClassRepository           *ClassRepository
	StudentRepository         *StudentRepository
	ConversationRepository    *ConversationRepository
}

// NewRepositories creates all repositories over one shared pool
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		SchoolRepository:          NewSchoolRepository(db),
		UserRepository:            NewUserRepository(db),
		ActivationTokenRepository: NewActivationTokenRepository(db),
		ClassRepository:           NewClassRepository(db),
		StudentRepository:         NewStudentRepository(db),
		ConversationRepository:    NewConversationRepository(db),
	}
}
