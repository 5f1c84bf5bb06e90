// Package inmem is a repository.Repository kept in process memory. Transactions are
// serialized by one mutex and applied copy-on-commit, so a failed transaction leaves
// no trace.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type state struct {
	staff    map[uuid.UUID]model.Staff
	students map[uuid.UUID]model.Student
	books    map[uuid.UUID]model.Book
	loans    map[uuid.UUID]model.Loan
}

func (s *state) clone() *state {
	c := &state{
		staff:    make(map[uuid.UUID]model.Staff, len(s.staff)),
		students: make(map[uuid.UUID]model.Student, len(s.students)),
		books:    make(map[uuid.UUID]model.Book, len(s.books)),
		loans:    make(map[uuid.UUID]model.Loan, len(s.loans)),
	}
	for k, v := range s.staff {
		c.staff[k] = v
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.books {
		c.books[k] = v
	}
	for k, v := range s.loans {
		c.loans[k] = v
	}
	return c
}

type Store struct {
	mu            sync.Mutex
	st            *state
	notifications []model.Notification
}

var _ repository.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		st: &state{
			staff:    make(map[uuid.UUID]model.Staff),
			students: make(map[uuid.UUID]model.Student),
			books:    make(map[uuid.UUID]model.Book),
			loans:    make(map[uuid.UUID]model.Loan),
		},
	}
}

func (s *Store) AddStaff(st model.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.staff[st.ID] = st
}

func (s *Store) AddStudent(st model.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.students[st.ID] = st
}

// AddBook seeds a book with every copy available unless AvailableCount is already set.
func (s *Store) AddBook(b model.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.AvailableCount == 0 {
		b.AvailableCount = b.TotalCount
	}
	s.st.books[b.ID] = b
}

func (s *Store) Book(id uuid.UUID) (model.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.st.books[id]
	return b, ok
}

// ActiveLoans counts loans for the book that are not returned.
func (s *Store) ActiveLoans(bookID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.st.loans {
		if l.BookID == bookID && !l.Returned {
			n++
		}
	}
	return n
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &memTx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) GetLoanDetails(_ context.Context, loanID uuid.UUID) (model.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.details(loanID)
}

func (s *Store) ListOverdue(_ context.Context, now time.Time) ([]model.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.list(func(l model.Loan) bool { return l.IsOverdue(now) })
}

func (s *Store) ListActiveForStudent(_ context.Context, studentID uuid.UUID) ([]model.LoanDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.list(func(l model.Loan) bool { return !l.Returned && l.StudentID == studentID })
}

func (st *state) list(keep func(model.Loan) bool) ([]model.LoanDetails, error) {
	items := make([]model.LoanDetails, 0)
	for id, l := range st.loans {
		if !keep(l) {
			continue
		}
		d, err := st.details(id)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].ReturnDue.Equal(items[j].ReturnDue) {
			return items[i].ReturnDue.Before(items[j].ReturnDue)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

func (st *state) details(loanID uuid.UUID) (model.LoanDetails, error) {
	l, ok := st.loans[loanID]
	if !ok {
		return model.LoanDetails{}, errors.Wrap(errs.ErrNotFound, "loan")
	}
	student := st.students[l.StudentID]
	book := st.books[l.BookID]
	issuer := st.staff[l.IssuedBy]
	return model.LoanDetails{
		Loan:    l,
		State:   l.State(),
		Student: model.StudentSummary{ID: student.ID, Name: student.Name},
		Book: model.BookSummary{
			ID:             book.ID,
			Title:          book.Title,
			AvailableCount: book.AvailableCount,
			TotalCount:     book.TotalCount,
		},
		Issuer: model.StaffSummary{ID: issuer.ID, Name: issuer.Name, Email: issuer.Email},
	}, nil
}

type memTx struct {
	st *state
}

func (t *memTx) StudentExists(_ context.Context, studentID uuid.UUID) (bool, error) {
	_, ok := t.st.students[studentID]
	return ok, nil
}

func (t *memTx) BookExists(_ context.Context, bookID uuid.UUID) (bool, error) {
	_, ok := t.st.books[bookID]
	return ok, nil
}

func (t *memTx) HasActiveLoan(_ context.Context, studentID, bookID uuid.UUID) (bool, error) {
	for _, l := range t.st.loans {
		if l.StudentID == studentID && l.BookID == bookID && !l.Returned {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) AdjustAvailable(_ context.Context, bookID uuid.UUID, delta int) (int, error) {
	b, ok := t.st.books[bookID]
	if !ok {
		return 0, errors.Wrap(errs.ErrNotFound, "book")
	}
	next := b.AvailableCount + delta
	if next < 0 {
		return 0, errs.ErrOutOfStock
	}
	if next > b.TotalCount {
		return 0, errors.Wrap(errs.ErrConflict, "available count would exceed total count")
	}
	b.AvailableCount = next
	t.st.books[bookID] = b
	return next, nil
}

func (t *memTx) InsertLoan(ctx context.Context, loan model.Loan) error {
	if _, ok := t.st.loans[loan.ID]; ok {
		return errors.Wrap(errs.ErrConflict, "insert loan")
	}
	active, _ := t.HasActiveLoan(ctx, loan.StudentID, loan.BookID)
	if active {
		return errors.Wrap(errs.ErrConflict, "insert loan")
	}
	if _, ok := t.st.staff[loan.IssuedBy]; !ok {
		return errors.Wrap(errs.ErrNotFound, "insert loan")
	}
	t.st.loans[loan.ID] = loan
	return nil
}

func (t *memTx) MarkReturned(_ context.Context, loanID uuid.UUID, at time.Time) (model.Loan, error) {
	l, ok := t.st.loans[loanID]
	if !ok {
		return model.Loan{}, errors.Wrap(errs.ErrNotFound, "loan")
	}
	if l.Returned {
		return model.Loan{}, errors.Wrap(errs.ErrConflict, "loan already returned")
	}
	l.Returned = true
	l.ReturnedAt = &at
	t.st.loans[loanID] = l
	return l, nil
}

func (t *memTx) UpdateReturnDue(_ context.Context, loanID uuid.UUID, due time.Time) error {
	l, ok := t.st.loans[loanID]
	if !ok {
		return errors.Wrap(errs.ErrNotFound, "loan")
	}
	l.ReturnDue = due
	t.st.loans[loanID] = l
	return nil
}

func (t *memTx) DeleteLoan(_ context.Context, loanID uuid.UUID) (model.Loan, error) {
	l, ok := t.st.loans[loanID]
	if !ok {
		return model.Loan{}, errors.Wrap(errs.ErrNotFound, "loan")
	}
	delete(t.st.loans, loanID)
	return l, nil
}

func (t *memTx) GetLoanDetails(_ context.Context, loanID uuid.UUID) (model.LoanDetails, error) {
	return t.st.details(loanID)
}

func (s *Store) CreateNotification(_ context.Context, n model.Notification) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(n.Metadata) == 0 {
		n.Metadata = []byte("{}")
	}
	for _, e := range s.notifications {
		if e.ID == n.ID {
			return model.Notification{}, errors.Wrap(errs.ErrConflict, "notification")
		}
	}
	s.notifications = append(s.notifications, n)
	return n, nil
}

func (s *Store) ListNotifications(_ context.Context, userID uuid.UUID, filter model.NotificationFilter) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if filter.IsRead != nil && n.IsRead != *filter.IsRead {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		items = append(items, n)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return errors.Wrap(errs.ErrNotFound, "notification")
}

func (s *Store) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.notifications {
		if e.UserID == userID && !e.IsRead {
			n++
		}
	}
	return n, nil
}
