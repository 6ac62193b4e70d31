package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/app/models/dto"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
	"github.com/emrekaya/classline/internal/pkg/auth"
)

type fakeAccounts struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{users: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeAccounts) Create(_ context.Context, _ pgx.Tx, user *models.User) (int64, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeAccounts) FindByID(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) ActivateWithPassword(_ context.Context, _ pgx.Tx, id int64, passwordHash string) error {
	u := f.users[id]
	u.Password = passwordHash
	u.IsActive = true
	return nil
}

func (f *fakeAccounts) UpdateLastLogin(_ context.Context, id int64, when time.Time) error {
	f.users[id].LastLoginAt = &when
	return nil
}

type fakeTokens struct {
	tokens map[string]*models.ActivationToken
}

func (f *fakeTokens) FindByToken(_ context.Context, token string) (*models.ActivationToken, error) {
	return f.tokens[token], nil
}

func (f *fakeTokens) MarkUsed(_ context.Context, _ pgx.Tx, id int64) (bool, error) {
	for _, row := range f.tokens {
		if row.ID == id {
			if row.UsedAt != nil {
				return false, nil
			}
			now := time.Now()
			row.UsedAt = &now
			return true, nil
		}
	}
	return false, nil
}

type fakeSchools struct {
	nextID int64
}

func (f *fakeSchools) Create(_ context.Context, _ pgx.Tx, school *models.School) (int64, error) {
	f.nextID++
	school.ID = f.nextID
	return school.ID, nil
}

type fakeMailer struct {
	activations int
	welcomes    int
}

func (m *fakeMailer) SendActivationEmail(string, string, string) error {
	m.activations++
	return nil
}

func (m *fakeMailer) SendWelcomeEmail(string, string) error {
	m.welcomes++
	return nil
}

func newAuthFixture() (AuthService, *fakeAccounts, *fakeTokens, *fakeMailer) {
	accounts := newFakeAccounts()
	tokens := &fakeTokens{tokens: map[string]*models.ActivationToken{}}
	mailer := &fakeMailer{}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "classline-test",
	})

	svc := NewAuthService(&fakeSchools{}, accounts, tokens, fakeTx{}, jwtService, mailer, zerolog.Nop())
	return svc, accounts, tokens, mailer
}

func seedInvitedUser(accounts *fakeAccounts, tokens *fakeTokens, token string, expiresAt time.Time) *models.User {
	user := &models.User{
		ID:       50,
		SchoolID: 1,
		Email:    "parent@example.com",
		RoleType: models.RoleParent,
		IsActive: false,
	}
	accounts.users[user.ID] = user
	tokens.tokens[token] = &models.ActivationToken{
		ID:        9,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return user
}

func TestActivateSetsPasswordAndConsumesToken(t *testing.T) {
	svc, accounts, tokens, mailer := newAuthFixture()
	user := seedInvitedUser(accounts, tokens, "tok-1", time.Now().Add(time.Hour))

	err := svc.Activate(context.Background(), &dto.ActivateAccountRequest{Token: "tok-1", Password: "s3cretpass"})
	require.NoError(t, err)

	assert.True(t, user.IsActive)
	assert.True(t, auth.CheckPassword(user.Password, "s3cretpass"))
	assert.NotNil(t, tokens.tokens["tok-1"].UsedAt)
	assert.Equal(t, 1, mailer.welcomes)

	// The token is gone after the first use
	err = svc.Activate(context.Background(), &dto.ActivateAccountRequest{Token: "tok-1", Password: "otherpass99"})
	assert.ErrorIs(t, err, apperrors.ErrTokenUsed)
	assert.Equal(t, 1, mailer.welcomes)
}

func TestActivateRejectsBadTokens(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		expires time.Time
		request string
		wantErr error
	}{
		{"unknown token", "tok-1", time.Now().Add(time.Hour), "nope", apperrors.ErrTokenInvalid},
		{"expired token", "tok-1", time.Now().Add(-time.Minute), "tok-1", apperrors.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, accounts, tokens, _ := newAuthFixture()
			user := seedInvitedUser(accounts, tokens, tt.token, tt.expires)

			err := svc.Activate(context.Background(), &dto.ActivateAccountRequest{Token: tt.request, Password: "s3cretpass"})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, user.IsActive)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, accounts, tokens, _ := newAuthFixture()
	user := seedInvitedUser(accounts, tokens, "tok-1", time.Now().Add(time.Hour))
	require.NoError(t, svc.Activate(context.Background(), &dto.ActivateAccountRequest{Token: "tok-1", Password: "s3cretpass"}))

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "parent@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotNil(t, user.LastLoginAt)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "parent@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "ghost@example.com", Password: "s3cretpass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	user.IsActive = false
	_, err = svc.Login(context.Background(), &dto.LoginRequest{Email: "parent@example.com", Password: "s3cretpass"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRegisterSchoolCreatesAdmin(t *testing.T) {
	svc, accounts, _, _ := newAuthFixture()

	resp, err := svc.RegisterSchool(context.Background(), &dto.RegisterSchoolRequest{
		SchoolName:     "Ataturk Primary School",
		City:           "Izmir",
		AdminEmail:     "Admin@School.example",
		AdminFirstName: "Kemal",
		AdminLastName:  "Demir",
		AdminPassword:  "s3cretpass",
	})
	require.NoError(t, err)
	require.NotZero(t, resp.AdminID)

	admin := accounts.users[resp.AdminID]
	require.NotNil(t, admin)
	assert.Equal(t, "admin@school.example", admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.RoleType)
	assert.Equal(t, resp.SchoolID, admin.SchoolID)
	assert.True(t, admin.IsActive)

	// Same address cannot anchor a second school
	_, err = svc.RegisterSchool(context.Background(), &dto.RegisterSchoolRequest{
		SchoolName:     "Another School",
		AdminEmail:     "admin@school.example",
		AdminFirstName: "Kemal",
		AdminLastName:  "Demir",
		AdminPassword:  "s3cretpass",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}
