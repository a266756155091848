package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sjperalta/arrendando-api/internal/jobs"
	"github.com/sjperalta/arrendando-api/internal/models"
)

func TestUserService_CreateUser(t *testing.T) {
	repo := &mockUserRepo{}
	service := NewUserService(repo, nil, nil, nil, nil)

	user, err := service.CreateUser(context.Background(), Actor{}, CreateUserInput{
		FirstName: " Carla ",
		LastName:  "Zelaya",
		Email:     " Carla@Example.COM ",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "carla@example.com", user.Email)
	assert.Equal(t, "Carla", user.FirstName)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.True(t, VerifyPassword("supersecret", user.PasswordHash))
	assert.Len(t, repo.created, 1)
}

func TestUserService_CreateUser_ShortPassword(t *testing.T) {
	repo := &mockUserRepo{}
	service := NewUserService(repo, nil, nil, nil, nil)

	_, err := service.CreateUser(context.Background(), Actor{}, CreateUserInput{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.created)
}

func TestUserService_SetActive_OwnAccount(t *testing.T) {
	service := NewUserService(&mockUserRepo{}, nil, nil, nil, nil)
	id := uuid.New()

	_, err := service.SetActive(context.Background(), Actor{UserID: &id}, id, false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_Delete_OwnAccount(t *testing.T) {
	service := NewUserService(&mockUserRepo{}, nil, nil, nil, nil)
	id := uuid.New()

	err := service.Delete(context.Background(), Actor{UserID: &id}, id)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserService_ChangePassword(t *testing.T) {
	user := activeUser(t, "old-password")
	var saved string
	repo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uuid.UUID) (*models.User, error) { return user, nil },
		mockUpdatePassword: func(ctx context.Context, userID uuid.UUID, hash string) error {
			saved = hash
			return nil
		},
	}
	service := NewUserService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	err := service.ChangePassword(ctx, Actor{}, user.ID, "old-password", "new-password", "other-password")
	assert.ErrorIs(t, err, ErrValidation)

	err = service.ChangePassword(ctx, Actor{}, user.ID, "wrong", "new-password", "new-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Empty(t, saved)

	require.NoError(t, service.ChangePassword(ctx, Actor{}, user.ID, "old-password", "new-password", "new-password"))
	assert.True(t, VerifyPassword("new-password", saved))
}

func TestUserService_SendRecoveryCode_UnknownEmail(t *testing.T) {
	stored := false
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
		mockSetRecoveryCode: func(ctx context.Context, userID uuid.UUID, code string, sentAt time.Time) error {
			stored = true
			return nil
		},
	}
	service := NewUserService(repo, nil, nil, nil, nil)

	assert.NoError(t, service.SendRecoveryCode(context.Background(), "ghost@example.com"))
	assert.False(t, stored)
}

func TestUserService_SendRecoveryCode_ExpiresStoredCode(t *testing.T) {
	user := activeUser(t, "old-password")
	var stored string
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
		mockSetRecoveryCode: func(ctx context.Context, userID uuid.UUID, code string, sentAt time.Time) error {
			stored = code
			return nil
		},
		expired: make(chan string, 1),
	}
	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	service := NewUserService(repo, worker, nil, nil, nil)
	service.recoveryTTL = 20 * time.Millisecond

	require.NoError(t, service.SendRecoveryCode(context.Background(), user.Email))

	select {
	case code := <-repo.expired:
		assert.Equal(t, stored, code, "only the code that was sent is expired")
	case <-time.After(2 * time.Second):
		t.Fatal("recovery code was not expired")
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	user := activeUser(t, "old-password")
	code := "123456"
	sentAt := time.Now().Add(-5 * time.Minute)
	user.RecoveryCode = &code
	user.RecoveryCodeSentAt = &sentAt

	var saved string
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
		mockUpdatePassword: func(ctx context.Context, userID uuid.UUID, hash string) error {
			saved = hash
			return nil
		},
	}
	service := NewUserService(repo, nil, nil, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, service.ResetPassword(ctx, user.Email, "000000", "brand-new-pass"), ErrInvalidRecoveryCode)

	require.NoError(t, service.ResetPassword(ctx, user.Email, code, "brand-new-pass"))
	assert.True(t, VerifyPassword("brand-new-pass", saved))
	assert.Equal(t, []uuid.UUID{user.ID}, repo.cleared)
}

func TestUserService_ResetPassword_ExpiredCode(t *testing.T) {
	user := activeUser(t, "old-password")
	code := "123456"
	sentAt := time.Now().Add(-RecoveryCodeTTL - time.Minute)
	user.RecoveryCode = &code
	user.RecoveryCodeSentAt = &sentAt

	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) { return user, nil },
	}
	service := NewUserService(repo, nil, nil, nil, nil)

	err := service.ResetPassword(context.Background(), user.Email, code, "brand-new-pass")
	assert.ErrorIs(t, err, ErrInvalidRecoveryCode)
}

func TestGenerateRecoveryCode(t *testing.T) {
	code, err := GenerateRecoveryCode()
	require.NoError(t, err)
	assert.Regexp(t, `^\d{6}$`, code)
}
