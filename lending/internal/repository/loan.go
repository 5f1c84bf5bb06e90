package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type pgTx struct {
	q querier
}

const loanColumns = `id, student_id, book_id, issued_by, assigned_at, return_due, returned, returned_at`

func loanDetailsQuery() sq.SelectBuilder {
	return qb.Select(
		"a.id", "a.student_id", "a.book_id", "a.issued_by",
		"a.assigned_at", "a.return_due", "a.returned", "a.returned_at",
		"s.name", "b.title", "b.available_count", "b.total_count", "st.name", "st.email",
	).
		From(loansTableName + " a").
		Join(studentsTableName + " s on s.id = a.student_id").
		Join(booksTableName + " b on b.id = a.book_id").
		Join(staffTableName + " st on st.id = a.issued_by")
}

func scanLoanDetails(row pgx.CollectableRow) (model.LoanDetails, error) {
	var d model.LoanDetails
	if err := row.Scan(
		&d.ID, &d.StudentID, &d.BookID, &d.IssuedBy,
		&d.AssignedAt, &d.ReturnDue, &d.Returned, &d.ReturnedAt,
		&d.Student.Name, &d.Book.Title, &d.Book.AvailableCount, &d.Book.TotalCount,
		&d.Issuer.Name, &d.Issuer.Email,
	); err != nil {
		return model.LoanDetails{}, err
	}
	d.Student.ID = d.StudentID
	d.Book.ID = d.BookID
	d.Issuer.ID = d.IssuedBy
	d.State = d.Loan.State()
	return d, nil
}

func scanLoan(row pgx.Row) (model.Loan, error) {
	var l model.Loan
	err := row.Scan(&l.ID, &l.StudentID, &l.BookID, &l.IssuedBy, &l.AssignedAt, &l.ReturnDue, &l.Returned, &l.ReturnedAt)
	return l, err
}

func getLoanDetails(ctx context.Context, q querier, loanID uuid.UUID) (model.LoanDetails, error) {
	query, args, err := loanDetailsQuery().
		Where(sq.Eq{"a.id": loanID}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.LoanDetails{}, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return model.LoanDetails{}, err
	}
	defer rows.Close()

	d, err := pgx.CollectOneRow(rows, scanLoanDetails)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoanDetails{}, errors.Wrap(errs.ErrNotFound, "loan")
		}
		return model.LoanDetails{}, err
	}
	return d, nil
}

func exists(ctx context.Context, q querier, table string, id uuid.UUID) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, fmt.Sprintf(`select exists(select 1 from %s where id = $1)`, table), id).Scan(&ok)
	return ok, err
}

func (t *pgTx) StudentExists(ctx context.Context, studentID uuid.UUID) (bool, error) {
	return exists(ctx, t.q, studentsTableName, studentID)
}

func (t *pgTx) BookExists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return exists(ctx, t.q, booksTableName, bookID)
}

func (t *pgTx) HasActiveLoan(ctx context.Context, studentID, bookID uuid.UUID) (bool, error) {
	q := fmt.Sprintf(`select exists(
	select 1 from %s
	where student_id = @student_id and book_id = @book_id and not returned)`, loansTableName)
	args := pgx.NamedArgs{
		"student_id": studentID,
		"book_id":    bookID,
	}
	var ok bool
	err := t.q.QueryRow(ctx, q, args).Scan(&ok)
	return ok, err
}

func (t *pgTx) InsertLoan(ctx context.Context, loan model.Loan) error {
	query, args, err := qb.Insert(loansTableName).
		Columns("id", "student_id", "book_id", "issued_by", "assigned_at", "return_due", "returned").
		Values(loan.ID, loan.StudentID, loan.BookID, loan.IssuedBy, loan.AssignedAt, loan.ReturnDue, false).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = t.q.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(errs.FromPg(err), "insert loan")
	}
	return nil
}

func (t *pgTx) MarkReturned(ctx context.Context, loanID uuid.UUID, at time.Time) (model.Loan, error) {
	q := fmt.Sprintf(`
update %s
    set returned = true, returned_at = @at
where id = @id and not returned
returning %s`, loansTableName, loanColumns)
	args := pgx.NamedArgs{
		"id": loanID,
		"at": at,
	}
	loan, err := scanLoan(t.q.QueryRow(ctx, q, args))
	if err == nil {
		return loan, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, err
	}

	found, err := exists(ctx, t.q, loansTableName, loanID)
	if err != nil {
		return model.Loan{}, err
	}
	if !found {
		return model.Loan{}, errors.Wrap(errs.ErrNotFound, "loan")
	}
	return model.Loan{}, errors.Wrap(errs.ErrConflict, "loan already returned")
}

func (t *pgTx) UpdateReturnDue(ctx context.Context, loanID uuid.UUID, due time.Time) error {
	query, args, err := qb.Update(loansTableName).
		Set("return_due", due).
		Where(sq.Eq{"id": loanID}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := t.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(errs.ErrNotFound, "loan")
	}
	return nil
}

func (t *pgTx) DeleteLoan(ctx context.Context, loanID uuid.UUID) (model.Loan, error) {
	q := fmt.Sprintf(`delete from %s where id = $1 returning %s`, loansTableName, loanColumns)
	loan, err := scanLoan(t.q.QueryRow(ctx, q, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Loan{}, errors.Wrap(errs.ErrNotFound, "loan")
		}
		return model.Loan{}, err
	}
	return loan, nil
}

func (t *pgTx) GetLoanDetails(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error) {
	return getLoanDetails(ctx, t.q, loanID)
}

func (r *repository) GetLoanDetails(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error) {
	return getLoanDetails(ctx, r.db, loanID)
}

func (r *repository) ListOverdue(ctx context.Context, now time.Time) ([]model.LoanDetails, error) {
	query, args, err := loanDetailsQuery().
		Where(sq.Eq{"a.returned": false}).
		Where(sq.Lt{"a.return_due": now}).
		OrderBy("a.return_due asc", "a.id asc").
		ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListOverdue", zap.String("query", query), zap.Time("now", now))
	return r.listLoanDetails(ctx, query, args...)
}

func (r *repository) ListActiveForStudent(ctx context.Context, studentID uuid.UUID) ([]model.LoanDetails, error) {
	query, args, err := loanDetailsQuery().
		Where(sq.Eq{"a.student_id": studentID, "a.returned": false}).
		OrderBy("a.return_due asc", "a.id asc").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.listLoanDetails(ctx, query, args...)
}

func (r *repository) listLoanDetails(ctx context.Context, query string, args ...any) ([]model.LoanDetails, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, scanLoanDetails)
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return items, nil
}
