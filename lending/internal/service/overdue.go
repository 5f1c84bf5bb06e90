package service

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, job model.DeliveryJob) error
}

type Recorder interface {
	RecordOverdue(ctx context.Context, summary model.TeacherSummary) (model.Notification, error)
}

// OverdueScanner turns overdue loans into one notification and one delivery job per teacher.
// It never writes loans.
type OverdueScanner struct {
	log      *zap.Logger
	loans    repository.LoanRepository
	recorder Recorder
	queue    Enqueuer
	opts     options
	group    singleflight.Group
}

func NewOverdueScanner(loans repository.LoanRepository, recorder Recorder, queue Enqueuer, log *zap.Logger, opts ...Option) *OverdueScanner {
	return &OverdueScanner{
		log:      log.Named("overdue"),
		loans:    loans,
		recorder: recorder,
		queue:    queue,
		opts:     newOptions(opts),
	}
}

// Scan runs one pass. Callers arriving while a pass is in flight share its report.
func (s *OverdueScanner) Scan(ctx context.Context) (model.ScanReport, error) {
	v, err, shared := s.group.Do("scan", func() (interface{}, error) {
		return s.scan(ctx)
	})
	if shared {
		s.log.Debug("scan shared with in-flight run")
	}
	if err != nil {
		return model.ScanReport{}, err
	}
	return v.(model.ScanReport), nil
}

func (s *OverdueScanner) scan(ctx context.Context) (model.ScanReport, error) {
	now := s.opts.clock.Now()
	loans, err := s.loans.ListOverdue(ctx, now)
	if err != nil {
		s.log.Error("ListOverdue", zap.Error(err))
		return model.ScanReport{}, err
	}
	summaries := AggregateByTeacher(now, loans)
	report := model.ScanReport{
		Overdue:   len(loans),
		Summaries: len(summaries),
	}

	for _, summary := range summaries {
		n, err := s.recorder.RecordOverdue(ctx, summary)
		if err != nil {
			report.RecordFailed++
			s.log.Error("RecordOverdue",
				zap.Error(err),
				zap.String("teacher_id", summary.TeacherID.String()))
			continue
		}
		report.Recorded++

		job := model.DeliveryJob{
			NotificationID: n.ID,
			Summary:        summary,
			EnqueuedAt:     now,
		}
		if err = s.queue.Enqueue(ctx, job); err != nil {
			// the notification stays; the next scan produces the summary again
			report.EnqueueFailed++
			s.log.Error("Enqueue",
				zap.Error(err),
				zap.String("teacher_id", summary.TeacherID.String()),
				zap.String("notification_id", n.ID.String()))
			continue
		}
		report.Enqueued++
	}

	s.log.Info("scan done",
		zap.Int("overdue", report.Overdue),
		zap.Int("summaries", report.Summaries),
		zap.Int("enqueued", report.Enqueued),
		zap.Int("record_failed", report.RecordFailed),
		zap.Int("enqueue_failed", report.EnqueueFailed))
	return report, nil
}
