package delivery

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
)

//go:generate go run github.com/golang/mock/mockgen -source=sender.go -destination=mocks/mock.go

// Sender is the outbound channel, e.g. an email gateway.
type Sender interface {
	Send(ctx context.Context, summary model.TeacherSummary) error
}

// Reporter receives the terminal outcome of every job.
type Reporter interface {
	Delivered(ctx context.Context, ev model.DeliveryEvent)
	Failed(ctx context.Context, ev model.DeliveryEvent)
}
