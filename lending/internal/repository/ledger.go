package repository

import (
	"context"
	"fmt"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// AdjustAvailable is the inventory ledger. The bound check and the write are one
// conditional update, so two transactions racing for the last copy cannot both pass:
// the loser blocks on the row lock, re-evaluates the predicate and matches zero rows.
func (t *pgTx) AdjustAvailable(ctx context.Context, bookID uuid.UUID, delta int) (int, error) {
	q := fmt.Sprintf(`
update %s
    set available_count = available_count + @delta
where id = @id
    and available_count + @delta >= 0
    and available_count + @delta <= total_count
returning available_count`, booksTableName)
	args := pgx.NamedArgs{
		"id":    bookID,
		"delta": delta,
	}

	var available int
	err := t.q.QueryRow(ctx, q, args).Scan(&available)
	if err == nil {
		return available, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, errs.FromPg(err)
	}

	exists, err := t.BookExists(ctx, bookID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, errors.Wrap(errs.ErrNotFound, "book")
	}
	if delta < 0 {
		return 0, errs.ErrOutOfStock
	}
	return 0, errors.Wrap(errs.ErrConflict, "available count would exceed total count")
}
