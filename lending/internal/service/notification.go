package service

import (
	"context"
	"fmt"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type NotificationService struct {
	log  *zap.Logger
	repo repository.NotificationRepository
	opts options
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger, opts ...Option) *NotificationService {
	return &NotificationService{
		log:  log.Named("notification"),
		repo: repo,
		opts: newOptions(opts),
	}
}

// Create writes the notification synchronously. It is readable as soon as Create returns,
// whatever later happens to its delivery.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, typ model.NotificationType, message string, metadata any) (model.Notification, error) {
	var raw []byte
	if metadata != nil {
		var err error
		if raw, err = json.Marshal(metadata); err != nil {
			return model.Notification{}, fmt.Errorf("marshal metadata: %w", err)
		}
	}
	n, err := s.repo.CreateNotification(ctx, model.Notification{
		ID:        s.opts.newID(),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		Metadata:  raw,
		CreatedAt: s.opts.clock.Now(),
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

func (s *NotificationService) RecordOverdue(ctx context.Context, summary model.TeacherSummary) (model.Notification, error) {
	msg := fmt.Sprintf("You have %d overdue book assignment(s)", len(summary.OverdueStudents))
	return s.Create(ctx, summary.TeacherID, model.NotificationOverdueBook, msg, model.OverdueMetadata{
		OverdueStudents: summary.OverdueStudents,
		TeacherEmail:    summary.TeacherEmail,
	})
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, filter model.NotificationFilter) ([]model.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, filter)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkNotificationRead(ctx, id, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
