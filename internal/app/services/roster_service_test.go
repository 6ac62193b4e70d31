package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
)

// Roster reads expose guardian links, so they are gated like the writes.
// The services are built with nil repositories here: the permission check
// must fire before storage is ever touched.
func TestRosterReadsRequireStaff(t *testing.T) {
	classSvc := NewClassService(nil, nil, zerolog.Nop())
	studentSvc := NewStudentService(nil, nil, nil, zerolog.Nop())

	roles := []models.RoleType{models.RoleTeacher, models.RoleParent, models.RoleStudent}

	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			actor := Actor{UserID: 200, SchoolID: 1, Role: role}

			_, err := classSvc.List(context.Background(), actor)
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

			_, err = studentSvc.List(context.Background(), actor, nil)
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

			_, err = studentSvc.Get(context.Background(), actor, 100)
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
		})
	}
}
