package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository/inmem"
	"github.com/Astemirdum/lending-service/lending/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationService(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clock := &fixedClock{now: t0}
	svc := service.NewNotificationService(inmem.New(), zap.NewNop(), service.WithClock(clock))
	owner, other := uuid.New(), uuid.New()

	older, err := svc.Create(ctx, owner, model.NotificationOverdueBook, "first", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(older.Metadata))
	clock.Advance(time.Minute)
	newer, err := svc.RecordOverdue(ctx, model.TeacherSummary{
		TeacherID:       owner,
		TeacherEmail:    "t@school.test",
		OverdueStudents: []model.OverdueStudent{{StudentName: "a"}, {StudentName: "b"}},
	})
	require.NoError(t, err)
	require.Equal(t, "You have 2 overdue book assignment(s)", newer.Message)
	_, err = svc.Create(ctx, other, model.NotificationOverdueBook, "not yours", nil)
	require.NoError(t, err)

	list, err := svc.List(ctx, owner, model.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, newer.ID, list[0].ID)
	require.Equal(t, older.ID, list[1].ID)

	count, err := svc.UnreadCount(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// scoped to the owner
	require.ErrorIs(t, svc.MarkAsRead(ctx, older.ID, other), errs.ErrNotFound)
	require.ErrorIs(t, svc.MarkAsRead(ctx, uuid.New(), owner), errs.ErrNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, older.ID, owner))
	require.NoError(t, svc.MarkAsRead(ctx, older.ID, owner))

	unread := false
	list, err = svc.List(ctx, owner, model.NotificationFilter{IsRead: &unread})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, newer.ID, list[0].ID)

	typ := model.NotificationType("OTHER")
	list, err = svc.List(ctx, owner, model.NotificationFilter{Type: &typ})
	require.NoError(t, err)
	require.Empty(t, list)

	count, err = svc.UnreadCount(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
