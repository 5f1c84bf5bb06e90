package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"go.uber.org/zap"
)

var ErrDeliveryFailed = errors.New("delivery failed")

type Worker struct {
	log      *zap.Logger
	sender   Sender
	reporter Reporter
	policy   RetryPolicy
	sleep    Sleeper
	now      func() time.Time
}

type WorkerOption func(*Worker)

func WithSleeper(s Sleeper) WorkerOption {
	return func(w *Worker) {
		w.sleep = s
	}
}

func WithNow(now func() time.Time) WorkerOption {
	return func(w *Worker) {
		w.now = now
	}
}

func NewWorker(sender Sender, reporter Reporter, policy RetryPolicy, log *zap.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		log:      log.Named("worker"),
		sender:   sender,
		reporter: reporter,
		policy:   policy,
		sleep:    sleep,
		now:      time.Now,
	}
	if w.policy.MaxAttempts <= 0 {
		w.policy.MaxAttempts = 1
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Process delivers one job, retrying transient failures with backoff. The notification
// row is never touched. A canceled ctx stops the loop and returns ctx.Err() without
// reporting, so the job can be redelivered.
func (w *Worker) Process(ctx context.Context, job model.DeliveryJob) error {
	log := w.log.With(
		zap.String("job_id", job.ID),
		zap.String("notification_id", job.NotificationID.String()),
		zap.String("teacher_id", job.Summary.TeacherID.String()))

	var lastErr error
	attempt := 0
	for attempt < w.policy.MaxAttempts {
		if attempt > 0 {
			delay := w.policy.Delay(attempt)
			log.Debug("backoff", zap.Int("attempt", attempt), zap.Duration("delay", delay))
			if err := w.sleep(ctx, delay); err != nil {
				return err
			}
		}
		attempt++

		lastErr = w.sender.Send(ctx, job.Summary)
		if lastErr == nil {
			w.reporter.Delivered(ctx, w.event(job, model.DeliveryDelivered, attempt, nil))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if IsPermanent(lastErr) {
			log.Warn("permanent failure", zap.Int("attempt", attempt), zap.Error(lastErr))
			break
		}
		log.Warn("send failed", zap.Int("attempt", attempt), zap.Error(lastErr))
	}

	w.reporter.Failed(ctx, w.event(job, model.DeliveryFailed, attempt, lastErr))
	return errors.Join(ErrDeliveryFailed, lastErr)
}

func (w *Worker) event(job model.DeliveryJob, status model.DeliveryStatus, attempts int, err error) model.DeliveryEvent {
	ev := model.DeliveryEvent{
		JobID:          job.ID,
		NotificationID: job.NotificationID,
		TeacherID:      job.Summary.TeacherID,
		Status:         status,
		Attempts:       attempts,
		At:             w.now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}
