package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/sjperalta/arrendando-api/internal/models"
	"github.com/sjperalta/arrendando-api/internal/repository"
	"github.com/sjperalta/arrendando-api/pkg/logger"
)

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo}
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uuid.UUID, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead marks one of the user's notifications as read
func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, id uint) (*models.Notification, error) {
	notification, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !notification.IsRead() {
		notification.MarkAsRead()
		if err := s.repo.Update(ctx, notification); err != nil {
			return nil, err
		}
	}
	return notification, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// owned loads a notification, hiding the ones of other users
func (s *NotificationService) owned(ctx context.Context, userID uuid.UUID, id uint) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if notification.UserID != userID {
		return nil, ErrNotFound
	}
	return notification, nil
}

func (s *NotificationService) NotifyUser(ctx context.Context, userID uuid.UUID, title, message, tipo string) error {
	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Tipo:    &tipo,
	}
	return s.repo.Create(ctx, notification)
}

func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, tipo string) error {
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if err := s.NotifyUser(ctx, admin.ID, title, message, tipo); err != nil {
			logger.Error("[Notification] Failed to notify admin", "admin_id", admin.ID, "error", err)
		}
	}
	return nil
}
