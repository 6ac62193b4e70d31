// Package seed creates demo data for local development.
package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	appModels "github.com/emrekaya/classline/internal/app/models"
	appRepos "github.com/emrekaya/classline/internal/app/repositories"
	"github.com/emrekaya/classline/internal/db"
	"github.com/emrekaya/classline/internal/pkg/auth"
)

// CreateDefaultData seeds a demo school with an administrator account when
// the database holds no schools yet. Intended for local development; a
// populated database is left untouched.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(database.Pool)

	count, err := repos.SchoolRepository.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count schools: %w", err)
	}
	if count > 0 {
		lgr.Debug().Int64("schools", count).Msg("Database already seeded, skipping default data")
		return nil
	}

	passwordHash, err := auth.HashPassword("changeme123")
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	err = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		schoolID, err := repos.SchoolRepository.Create(ctx, tx, &appModels.School{
			Name: "Demo Primary School",
			City: "Izmir",
		})
		if err != nil {
			return err
		}

		_, err = repos.UserRepository.Create(ctx, tx, &appModels.User{
			SchoolID:  schoolID,
			Email:     "admin@demo.local",
			Password:  passwordHash,
			FirstName: "Demo",
			LastName:  "Admin",
			RoleType:  appModels.RoleAdmin,
			IsActive:  true,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo school: %w", err)
	}

	lgr.Info().Str("email", "admin@demo.local").Msg("Seeded demo school and administrator")
	return nil
}
