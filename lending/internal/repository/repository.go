package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Tx is the set of writes and locked reads available inside one lending transaction.
// Every ledger adjustment happens through a Tx, so it always commits or rolls back
// together with the loan change that justifies it.
type Tx interface {
	StudentExists(ctx context.Context, studentID uuid.UUID) (bool, error)
	BookExists(ctx context.Context, bookID uuid.UUID) (bool, error)
	HasActiveLoan(ctx context.Context, studentID, bookID uuid.UUID) (bool, error)
	// AdjustAvailable applies available += delta and returns the new value.
	AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) (int, error)
	InsertLoan(ctx context.Context, loan model.Loan) error
	MarkReturned(ctx context.Context, loanID uuid.UUID, at time.Time) (model.Loan, error)
	UpdateReturnDue(ctx context.Context, loanID uuid.UUID, due time.Time) error
	DeleteLoan(ctx context.Context, loanID uuid.UUID) (model.Loan, error)
	GetLoanDetails(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error)
}

type LoanRepository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetLoanDetails(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.LoanDetails, error)
	ListActiveForStudent(ctx context.Context, studentID uuid.UUID) ([]model.LoanDetails, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, filter model.NotificationFilter) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

type Repository interface {
	LoanRepository
	NotificationRepository
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

var _ Repository = (*repository)(nil)

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	staffTableName         = `staff`
	studentsTableName      = `students`
	booksTableName         = `books`
	loansTableName         = `book_assignments`
	notificationsTableName = `notifications`

	maxTxAttempts = 3
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// RunInTx runs fn in a read committed transaction. The whole transaction is
// re-run when postgres reports a serialization failure or a deadlock.
func (r *repository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = pgx.BeginTxFunc(ctx, r.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
			return fn(ctx, &pgTx{q: tx})
		})
		if err == nil || !errs.IsRetryable(err) {
			return err
		}
		r.log.Warn("RunInTx retry", zap.Int("attempt", attempt), zap.Error(err))
	}
	return err
}
