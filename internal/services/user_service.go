package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/jobs"
	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
)

// MinPasswordLength applies to every password set through the API
const MinPasswordLength = 8

// UserService handles user-related business logic
type UserService struct {
	*ResourceService[models.User, *models.User]
	repo         repository.UserRepository
	worker       *jobs.Worker
	emailService *EmailService
	notification *NotificationService
	auditSvc     *AuditService
	recoveryTTL  time.Duration
}

func NewUserService(repo repository.UserRepository, worker *jobs.Worker, emailService *EmailService, notification *NotificationService, auditSvc *AuditService) *UserService {
	return &UserService{
		ResourceService: NewResourceService[models.User, *models.User](repo, auditSvc, models.AuditEntityUser),
		repo:            repo,
		worker:          worker,
		emailService:    emailService,
		notification:    notification,
		auditSvc:        auditSvc,
		recoveryTTL:     RecoveryCodeTTL,
	}
}

// CreateUserInput is the body of POST /auth/users and /auth/register
type CreateUserInput struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Role      string `json:"role" binding:"omitempty,oneof=ADMIN USER"`
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	return user, translate(err)
}

// CreateUser hashes the password and stores an active account
func (s *UserService) CreateUser(ctx context.Context, actor Actor, input CreateUserInput) (*models.User, error) {
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{}
	user.ApplyDefaults()
	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	user.Email = strings.ToLower(strings.TrimSpace(input.Email))
	user.PasswordHash = hashedPassword
	if input.Role != "" {
		user.Role = input.Role
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translate(err)
	}
	s.auditSvc.Record(ctx, actor, models.AuditActionCreate, models.AuditEntityUser, user.ID,
		"Usuario creado: %s (%s) - Rol: %s", user.FullName(), user.Email, user.Role)
	s.lifecycle.countsChanged(ctx)

	if s.notification != nil {
		s.async(func(ctx context.Context) error {
			return s.notification.NotifyAdmins(ctx, "Nuevo usuario",
				fmt.Sprintf("Se creó la cuenta de %s (%s)", user.FullName(), user.Email),
				models.NotificationTipoNuevoUsuario)
		})
	}
	return user, nil
}

// SetActive refuses to deactivate the caller's own account
func (s *UserService) SetActive(ctx context.Context, actor Actor, id uuid.UUID, active bool) (*models.User, error) {
	if !active && actor.UserID != nil && *actor.UserID == id {
		return nil, Invalid("no puede desactivar su propia cuenta")
	}
	return s.ResourceService.SetActive(ctx, actor, id, active)
}

// Delete refuses to delete the caller's own account
func (s *UserService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.UserID != nil && *actor.UserID == id {
		return Invalid("no puede eliminar su propia cuenta")
	}
	return s.ResourceService.Delete(ctx, actor, id)
}

// ChangePassword verifies the current password before storing the new one
func (s *UserService) ChangePassword(ctx context.Context, actor Actor, userID uuid.UUID, currentPassword, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return Invalid("la nueva contraseña y su confirmación no coinciden")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return translate(err)
	}
	if !VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidPassword
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}
	s.auditSvc.Record(ctx, actor, models.AuditActionUpdate, models.AuditEntityUser, userID, "Contraseña actualizada por el usuario")
	return nil
}

func (s *UserService) async(job jobs.Job) {
	if s.worker == nil {
		_ = job(context.Background())
		return
	}
	s.worker.EnqueueAsync(job)
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return Invalid("la contraseña debe tener al menos %d caracteres", MinPasswordLength)
	}
	return nil
}
