package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository/inmem"
	"github.com/Astemirdum/lending-service/lending/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var t0 = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *inmem.Store
	clock   *fixedClock
	loans   *service.LoanService
	teacher model.Staff
	bookA   model.Book
	x, y    model.Student
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   inmem.New(),
		clock:   &fixedClock{now: t0},
		teacher: model.Staff{ID: uuid.New(), Name: "Ms. Frizzle", Email: "frizzle@school.test"},
		bookA:   model.Book{ID: uuid.New(), Title: "Book A", TotalCount: 1},
		x:       model.Student{ID: uuid.New(), Name: "Student X"},
		y:       model.Student{ID: uuid.New(), Name: "Student Y"},
	}
	f.store.AddStaff(f.teacher)
	f.store.AddBook(f.bookA)
	f.store.AddStudent(f.x)
	f.store.AddStudent(f.y)
	f.loans = service.NewLoanService(f.store, zap.NewNop(), service.WithClock(f.clock))
	return f
}

func (f *fixture) checkout(student, book uuid.UUID) (model.LoanDetails, error) {
	return f.loans.Checkout(context.Background(), model.CheckoutRequest{
		StudentID: student,
		BookID:    book,
		IssuerID:  f.teacher.ID,
		ReturnDue: model.Date{Time: f.clock.Now().Add(7 * 24 * time.Hour)},
	})
}

func (f *fixture) requireLedger(t *testing.T, bookID uuid.UUID) int {
	t.Helper()
	b, ok := f.store.Book(bookID)
	require.True(t, ok)
	require.GreaterOrEqual(t, b.AvailableCount, 0)
	require.LessOrEqual(t, b.AvailableCount, b.TotalCount)
	require.Equal(t, b.TotalCount-f.store.ActiveLoans(bookID), b.AvailableCount)
	return b.AvailableCount
}

func TestLoanService_Scenario_SingleCopy(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	loan, err := f.checkout(f.x.ID, f.bookA.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanActive, loan.State)
	assert.Equal(t, "Student X", loan.Student.Name)
	assert.Equal(t, "Book A", loan.Book.Title)
	assert.Equal(t, f.teacher.Email, loan.Issuer.Email)
	require.Equal(t, 0, f.requireLedger(t, f.bookA.ID))

	_, err = f.checkout(f.y.ID, f.bookA.ID)
	require.ErrorIs(t, err, errs.ErrOutOfStock)
	require.Equal(t, 0, f.requireLedger(t, f.bookA.ID))

	returned, err := f.loans.Return(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, returned.State)
	require.NotNil(t, returned.ReturnedAt)
	require.Equal(t, 1, f.requireLedger(t, f.bookA.ID))

	_, err = f.checkout(f.y.ID, f.bookA.ID)
	require.NoError(t, err)
	require.Equal(t, 0, f.requireLedger(t, f.bookA.ID))
}

func TestLoanService_Checkout_Errors(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	bookB := model.Book{ID: uuid.New(), Title: "Book B", TotalCount: 3}
	f.store.AddBook(bookB)

	_, err := f.checkout(uuid.New(), f.bookA.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.checkout(f.x.ID, uuid.New())
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = f.loans.Checkout(context.Background(), model.CheckoutRequest{
		StudentID: f.x.ID,
		BookID:    bookB.ID,
		IssuerID:  f.teacher.ID,
		ReturnDue: model.Date{Time: t0.Add(-time.Hour)},
	})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = f.loans.Checkout(context.Background(), model.CheckoutRequest{
		StudentID: f.x.ID,
		BookID:    bookB.ID,
		IssuerID:  f.teacher.ID,
	})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Equal(t, 3, f.requireLedger(t, bookB.ID))
}

func TestLoanService_NoDoubleCheckout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	bookB := model.Book{ID: uuid.New(), Title: "Book B", TotalCount: 3}
	f.store.AddBook(bookB)

	_, err := f.checkout(f.x.ID, bookB.ID)
	require.NoError(t, err)

	_, err = f.checkout(f.x.ID, bookB.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
	// the rejected attempt must not leak a decrement
	require.Equal(t, 2, f.requireLedger(t, bookB.ID))

	active, err := f.loans.ListActiveForStudent(context.Background(), f.x.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestLoanService_ReturnTwice(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	loan, err := f.checkout(f.x.ID, f.bookA.ID)
	require.NoError(t, err)
	_, err = f.loans.Return(ctx, loan.ID)
	require.NoError(t, err)

	_, err = f.loans.Return(ctx, loan.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
	require.Equal(t, 1, f.requireLedger(t, f.bookA.ID))

	_, err = f.loans.Return(ctx, uuid.New())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLoanService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("active loan restores a copy", func(t *testing.T) {
		f := newFixture(t)
		loan, err := f.checkout(f.x.ID, f.bookA.ID)
		require.NoError(t, err)
		require.Equal(t, 0, f.requireLedger(t, f.bookA.ID))

		require.NoError(t, f.loans.Delete(ctx, loan.ID))
		require.Equal(t, 1, f.requireLedger(t, f.bookA.ID))

		_, err = f.loans.Get(ctx, loan.ID)
		require.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("returned loan leaves ledger alone", func(t *testing.T) {
		f := newFixture(t)
		loan, err := f.checkout(f.x.ID, f.bookA.ID)
		require.NoError(t, err)
		_, err = f.loans.Return(ctx, loan.ID)
		require.NoError(t, err)

		require.NoError(t, f.loans.Delete(ctx, loan.ID))
		require.Equal(t, 1, f.requireLedger(t, f.bookA.ID))
	})

	t.Run("missing loan", func(t *testing.T) {
		f := newFixture(t)
		require.ErrorIs(t, f.loans.Delete(ctx, uuid.New()), errs.ErrNotFound)
	})
}

func TestLoanService_Update(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	loan, err := f.checkout(f.x.ID, f.bookA.ID)
	require.NoError(t, err)

	same, err := f.loans.Update(ctx, loan.ID, model.UpdateLoanRequest{})
	require.NoError(t, err)
	require.True(t, loan.ReturnDue.Equal(same.ReturnDue))

	due := t0.Add(30 * 24 * time.Hour)
	updated, err := f.loans.Update(ctx, loan.ID, model.UpdateLoanRequest{ReturnDue: &model.Date{Time: due}})
	require.NoError(t, err)
	require.True(t, due.Equal(updated.ReturnDue))
	require.Equal(t, 0, f.requireLedger(t, f.bookA.ID))

	_, err = f.loans.Update(ctx, uuid.New(), model.UpdateLoanRequest{ReturnDue: &model.Date{Time: due}})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestLoanService_ConcurrentCheckout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	const n = 16

	students := make([]uuid.UUID, n)
	for i := range students {
		s := model.Student{ID: uuid.New(), Name: "student"}
		f.store.AddStudent(s)
		students[i] = s.ID
	}

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make(chan error, n)
	)
	for _, id := range students {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			<-start
			_, err := f.checkout(id, f.bookA.ID)
			results <- err
		}(id)
	}
	close(start)
	wg.Wait()
	close(results)

	var ok, outOfStock int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, errs.ErrOutOfStock):
			outOfStock++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, n-1, outOfStock)
	require.Equal(t, 0, f.requireLedger(t, f.bookA.ID))
}

func TestLoanService_ListOverdue(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	bookB := model.Book{ID: uuid.New(), Title: "Book B", TotalCount: 5}
	f.store.AddBook(bookB)

	late, err := f.loans.Checkout(ctx, model.CheckoutRequest{
		StudentID: f.x.ID, BookID: bookB.ID, IssuerID: f.teacher.ID,
		ReturnDue: model.Date{Time: t0.Add(24 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = f.loans.Checkout(ctx, model.CheckoutRequest{
		StudentID: f.y.ID, BookID: bookB.ID, IssuerID: f.teacher.ID,
		ReturnDue: model.Date{Time: t0.Add(10 * 24 * time.Hour)},
	})
	require.NoError(t, err)
	returnedLate, err := f.loans.Checkout(ctx, model.CheckoutRequest{
		StudentID: f.x.ID, BookID: f.bookA.ID, IssuerID: f.teacher.ID,
		ReturnDue: model.Date{Time: t0.Add(2 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = f.loans.Return(ctx, returnedLate.ID)
	require.NoError(t, err)

	f.clock.Advance(4 * 24 * time.Hour)

	overdue, err := f.loans.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	require.Equal(t, late.ID, overdue[0].ID)
	require.Equal(t, 3, service.DaysOverdue(f.clock.Now(), overdue[0].ReturnDue))

	_, err = f.loans.Return(ctx, late.ID)
	require.NoError(t, err)
	overdue, err = f.loans.ListOverdue(ctx)
	require.NoError(t, err)
	require.Empty(t, overdue)
}
