package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

// RecoveryCodeTTL is how long an emailed recovery code stays valid
const RecoveryCodeTTL = 15 * time.Minute

// RecoveryRequestedMessage is returned whether or not the email exists
const RecoveryRequestedMessage = "Si el correo está registrado, recibirá un código de recuperación"

// GenerateRecoveryCode generates a 6-digit random code
func GenerateRecoveryCode() (string, error) {
	const digits = "0123456789"
	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}
	return string(code), nil
}

// SendRecoveryCode generates and sends a recovery code to the user's email
func (s *UserService) SendRecoveryCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || !user.IsActive {
		// Don't reveal whether email exists or not
		return nil
	}

	code, err := GenerateRecoveryCode()
	if err != nil {
		return fmt.Errorf("failed to generate recovery code: %w", err)
	}

	sentAt := time.Now()
	if err := s.repo.SetRecoveryCode(ctx, user.ID, code, sentAt); err != nil {
		return fmt.Errorf("failed to save recovery code: %w", err)
	}
	logger.Info("[Recovery] Code saved for user", "user_id", user.ID)
	s.expireRecoveryCode(user.ID, code, sentAt.Add(s.recoveryTTL))

	if s.emailService != nil {
		s.async(func(ctx context.Context) error {
			return s.emailService.SendRecoveryCode(ctx, user, code)
		})
	}
	return nil
}

// VerifyRecoveryCode checks if the recovery code is valid
func (s *UserService) VerifyRecoveryCode(ctx context.Context, email, code string) (*models.User, bool) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, false // Don't reveal user existence
	}
	if !user.RecoveryCodeValid(strings.TrimSpace(code), s.recoveryTTL, time.Now()) {
		logger.Info("[Recovery] Verify failed", "user_id", user.ID)
		return nil, false
	}
	return user, true
}

// ResetPassword sets a new password using a recovery code
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, ok := s.VerifyRecoveryCode(ctx, email, code)
	if !ok {
		return ErrInvalidRecoveryCode
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return err
	}
	if err := s.repo.ClearRecoveryCode(ctx, user.ID); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, Actor{UserID: &user.ID}, models.AuditActionUpdate, models.AuditEntityUser, user.ID,
		"Contraseña restablecida con código de recuperación")
	return nil
}

// expireRecoveryCode wipes the stored code once it can no longer be used
func (s *UserService) expireRecoveryCode(userID uuid.UUID, code string, at time.Time) {
	if s.worker == nil {
		return
	}
	s.worker.ScheduleAt(at, func(ctx context.Context) error {
		expired, err := s.repo.ExpireRecoveryCode(ctx, userID, code)
		if err != nil {
			return fmt.Errorf("expire recovery code: %w", err)
		}
		if expired {
			logger.Info("[Recovery] Code expired", "user_id", userID)
		}
		return nil
	})
}
