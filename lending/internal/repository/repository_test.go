package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/migrations"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRepo connects to LENDING_TEST_PG_DSN, applies migrations and seeds one
// teacher, two students and a single-copy book.
func newTestRepo(t *testing.T) (*repository, fixture) {
	t.Helper()
	dsn := os.Getenv("LENDING_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("LENDING_TEST_PG_DSN is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(pool, migrations.MigrationFiles))

	f := fixture{
		teacher:  uuid.New(),
		students: []uuid.UUID{uuid.New(), uuid.New()},
		book:     uuid.New(),
	}
	_, err = pool.Exec(ctx, `insert into staff (id, name, email) values ($1, 'Ms. Smith', 'smith@school.test')`, f.teacher)
	require.NoError(t, err)
	for i, id := range f.students {
		_, err = pool.Exec(ctx, `insert into students (id, name) values ($1, $2)`, id, []string{"Tom", "Ann"}[i])
		require.NoError(t, err)
	}
	_, err = pool.Exec(ctx, `insert into books (id, title, total_count, available_count) values ($1, 'Book A', 1, 1)`, f.book)
	require.NoError(t, err)

	repo, err := NewRepository(pool, zap.NewNop())
	require.NoError(t, err)
	return repo, f
}

type fixture struct {
	teacher  uuid.UUID
	students []uuid.UUID
	book     uuid.UUID
}

func checkout(ctx context.Context, r *repository, studentID, bookID, issuer uuid.UUID, due time.Time) (model.LoanDetails, error) {
	var out model.LoanDetails
	err := r.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.AdjustAvailable(ctx, bookID, -1); err != nil {
			return err
		}
		loan := model.Loan{
			ID:         uuid.New(),
			StudentID:  studentID,
			BookID:     bookID,
			IssuedBy:   issuer,
			AssignedAt: time.Now().UTC(),
			ReturnDue:  due,
		}
		if err := tx.InsertLoan(ctx, loan); err != nil {
			return err
		}
		var err error
		out, err = tx.GetLoanDetails(ctx, loan.ID)
		return err
	})
	return out, err
}

func TestRepository_LoanLifecycle(t *testing.T) {
	repo, f := newTestRepo(t)
	ctx := context.Background()
	due := time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Microsecond)

	loan, err := checkout(ctx, repo, f.students[0], f.book, f.teacher, due)
	require.NoError(t, err)
	require.Equal(t, 0, loan.Book.AvailableCount)
	require.Equal(t, model.LoanActive, loan.State)
	require.Equal(t, "Ms. Smith", loan.Issuer.Name)

	_, err = checkout(ctx, repo, f.students[1], f.book, f.teacher, due)
	require.ErrorIs(t, err, errs.ErrOutOfStock)

	overdue, err := repo.ListOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	var found bool
	for _, l := range overdue {
		found = found || l.ID == loan.ID
	}
	require.True(t, found)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		l, err := tx.MarkReturned(ctx, loan.ID, time.Now().UTC())
		if err != nil {
			return err
		}
		_, err = tx.AdjustAvailable(ctx, l.BookID, 1)
		return err
	})
	require.NoError(t, err)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.MarkReturned(ctx, loan.ID, time.Now().UTC())
		return err
	})
	require.ErrorIs(t, err, errs.ErrConflict)

	got, err := repo.GetLoanDetails(ctx, loan.ID)
	require.NoError(t, err)
	require.Equal(t, model.LoanReturned, got.State)
	require.Equal(t, 1, got.Book.AvailableCount)

	_, err = repo.GetLoanDetails(ctx, uuid.New())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRepository_ConcurrentCheckout(t *testing.T) {
	repo, f := newTestRepo(t)
	ctx := context.Background()
	due := time.Now().UTC().Add(24 * time.Hour)

	students := make([]uuid.UUID, 8)
	for i := range students {
		students[i] = uuid.New()
		_, err := repo.db.Exec(ctx, `insert into students (id, name) values ($1, 'student')`, students[i])
		require.NoError(t, err)
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		ok, failed int
	)
	for _, id := range students {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := checkout(ctx, repo, id, f.book, f.teacher, due)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, errs.ErrOutOfStock):
				failed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()
	require.Equal(t, 1, ok)
	require.Equal(t, len(students)-1, failed)
}

func TestRepository_Notifications(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	user := uuid.New()

	older, err := repo.CreateNotification(ctx, model.Notification{
		ID:        uuid.New(),
		UserID:    user,
		Type:      model.NotificationOverdueBook,
		Message:   "first",
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	})
	require.NoError(t, err)
	newer, err := repo.CreateNotification(ctx, model.Notification{
		ID:        uuid.New(),
		UserID:    user,
		Type:      model.NotificationOverdueBook,
		Message:   "second",
		Metadata:  []byte(`{"teacherEmail":"smith@school.test"}`),
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	items, err := repo.ListNotifications(ctx, user, model.NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, newer.ID, items[0].ID)
	require.Equal(t, older.ID, items[1].ID)

	require.ErrorIs(t, repo.MarkNotificationRead(ctx, older.ID, uuid.New()), errs.ErrNotFound)
	require.NoError(t, repo.MarkNotificationRead(ctx, older.ID, user))
	require.NoError(t, repo.MarkNotificationRead(ctx, older.ID, user))

	n, err := repo.CountUnread(ctx, user)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	read := true
	items, err = repo.ListNotifications(ctx, user, model.NotificationFilter{IsRead: &read})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, older.ID, items[0].ID)
}
