package handler

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/service"
	"github.com/google/uuid"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LoanService interface {
	Checkout(ctx context.Context, req model.CheckoutRequest) (model.LoanDetails, error)
	Return(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error)
	Update(ctx context.Context, loanID uuid.UUID, req model.UpdateLoanRequest) (model.LoanDetails, error)
	Delete(ctx context.Context, loanID uuid.UUID) error
	Get(ctx context.Context, loanID uuid.UUID) (model.LoanDetails, error)
	ListOverdue(ctx context.Context) ([]model.LoanDetails, error)
	ListActiveForStudent(ctx context.Context, studentID uuid.UUID) ([]model.LoanDetails, error)
}

type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, filter model.NotificationFilter) ([]model.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type Scanner interface {
	Scan(ctx context.Context) (model.ScanReport, error)
}

var (
	_ LoanService         = (*service.LoanService)(nil)
	_ NotificationService = (*service.NotificationService)(nil)
	_ Scanner             = (*service.OverdueScanner)(nil)
)
