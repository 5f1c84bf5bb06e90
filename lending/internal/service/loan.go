package service

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/errs"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LoanService owns every loan transition. Each transition and its ledger
// adjustment commit in one transaction.
type LoanService struct {
	log  *zap.Logger
	repo repository.LoanRepository
	opts options
}

func NewLoanService(repo repository.LoanRepository, log *zap.Logger, opts ...Option) *LoanService {
	return &LoanService{
		log:  log.Named("loan"),
		repo: repo,
		opts: newOptions(opts),
	}
}

func (s *LoanService) Checkout(ctx context.Context, req model.CheckoutRequest) (model.LoanDetails, error) {
	now := s.opts.clock.Now()
	if req.ReturnDue.IsZero() {
		return model.LoanDetails{}, errors.Wrap(errs.ErrValidation, "returnDue is required")
	}
	if !req.ReturnDue.After(now) {
		return model.LoanDetails{}, errors.Wrap(errs.ErrValidation, "returnDue must be in the future")
	}

	var out model.LoanDetails
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ok, err := tx.StudentExists(ctx, req.StudentID)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(errs.ErrNotFound, "student")
		}
		// availability check and decrement are one statement
		if _, err = tx.AdjustAvailable(ctx, req.BookID, -1); err != nil {
			return err
		}
		active, err := tx.HasActiveLoan(ctx, req.StudentID, req.BookID)
		if err != nil {
			return err
		}
		if active {
			return errors.Wrap(errs.ErrConflict, "student already holds this book")
		}

		loan := model.Loan{
			ID:         s.opts.newID(),
			StudentID:  req.StudentID,
			BookID:     req.BookID,
			IssuedBy:   req.IssuerID,
			AssignedAt: now,
			ReturnDue:  req.ReturnDue.UTC(),
		}
		if err = tx.InsertLoan(ctx, loan); err != nil {
			return err
		}
		out, err = tx.GetLoanDetails(ctx, loan.ID)
		return err
	})
	if err != nil {
		return model.LoanDetails{}, err
	}
	s.log.Info("checkout",
		zap.String("loan_id", out.ID.String()),
		zap.String("book_id", out.BookID.String()),
		zap.Int("available", out.Book.AvailableCount))
	return out, nil
}

func (s *LoanService) Return(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error) {
	var out model.LoanDetails
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		loan, err := tx.MarkReturned(ctx, loanID, s.opts.clock.Now())
		if err != nil {
			return err
		}
		if _, err = tx.AdjustAvailable(ctx, loan.BookID, +1); err != nil {
			return err
		}
		out, err = tx.GetLoanDetails(ctx, loanID)
		return err
	})
	if err != nil {
		return model.LoanDetails{}, err
	}
	s.log.Info("return", zap.String("loan_id", loanID.String()))
	return out, nil
}

// Update edits the due date only. A request without a due date returns the loan as is.
func (s *LoanService) Update(ctx context.Context, loanID uuid.UUID, req model.UpdateLoanRequest) (model.LoanDetails, error) {
	if req.ReturnDue == nil || req.ReturnDue.IsZero() {
		return s.repo.GetLoanDetails(ctx, loanID)
	}
	var out model.LoanDetails
	err := s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if err := tx.UpdateReturnDue(ctx, loanID, req.ReturnDue.UTC()); err != nil {
			return err
		}
		var err error
		out, err = tx.GetLoanDetails(ctx, loanID)
		return err
	})
	if err != nil {
		return model.LoanDetails{}, err
	}
	return out, nil
}

// Delete removes the loan. Deleting an active loan puts its copy back on the shelf.
func (s *LoanService) Delete(ctx context.Context, loanID uuid.UUID) error {
	return s.repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		loan, err := tx.DeleteLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Returned {
			return nil
		}
		_, err = tx.AdjustAvailable(ctx, loan.BookID, +1)
		return err
	})
}

func (s *LoanService) Get(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error) {
	return s.repo.GetLoanDetails(ctx, loanID)
}

func (s *LoanService) ListOverdue(ctx context.Context) ([]model.LoanDetails, error) {
	return s.repo.ListOverdue(ctx, s.opts.clock.Now())
}

func (s *LoanService) ListActiveForStudent(ctx context.Context, studentID uuid.UUID) ([]model.LoanDetails, error) {
	return s.repo.ListActiveForStudent(ctx, studentID)
}
