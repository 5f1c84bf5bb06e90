package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/lending-service/lending/config"
	"github.com/Astemirdum/lending-service/lending/internal/delivery"
	"github.com/Astemirdum/lending-service/lending/internal/handler"
	"github.com/Astemirdum/lending-service/lending/internal/mailer"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository"
	"github.com/Astemirdum/lending-service/lending/internal/repository/inmem"
	"github.com/Astemirdum/lending-service/lending/internal/scheduler"
	"github.com/Astemirdum/lending-service/lending/internal/server"
	"github.com/Astemirdum/lending-service/lending/internal/service"
	"github.com/Astemirdum/lending-service/lending/migrations"
	cb "github.com/Astemirdum/lending-service/pkg/circuit_breaker"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/logger"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

type components struct {
	log *zap.Logger
	cfg *config.Config

	repo          repository.Repository
	loans         *service.LoanService
	notifications *service.NotificationService
	scanner       *service.OverdueScanner
	worker        *delivery.Worker

	memQueue *delivery.MemQueue

	closers []func()
}

func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*components, error) {
	c := &components{log: log, cfg: cfg}
	if err := c.initStore(ctx); err != nil {
		c.close()
		return nil, err
	}
	if err := c.initQueue(); err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

func (c *components) initStore(ctx context.Context) error {
	switch c.cfg.Store {
	case config.StoreMemory:
		store := inmem.New()
		if c.cfg.Seed != "" {
			if err := seedStore(c.cfg.Seed, store); err != nil {
				return err
			}
		}
		c.log.Warn("memory store in use, data does not survive a restart")
		c.repo = store
	default:
		db, err := postgres.NewPostgresDB(ctx, &c.cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return errors.Wrap(err, "db init")
		}
		c.closers = append(c.closers, db.Close)
		repo, err := repository.NewRepository(db, c.log)
		if err != nil {
			return errors.Wrap(err, "repo")
		}
		c.repo = repo
	}
	c.loans = service.NewLoanService(c.repo, c.log)
	c.notifications = service.NewNotificationService(c.repo, c.log)
	return nil
}

func (c *components) initQueue() error {
	var (
		queue    delivery.Queue
		reporter delivery.Reporter = delivery.NewLogReporter(c.log)
	)
	switch c.cfg.Queue.Driver {
	case config.QueueMemory:
		c.memQueue = delivery.NewMemQueue(c.cfg.Queue.Size)
		c.closers = append(c.closers, c.memQueue.Close)
		queue = c.memQueue
	default:
		producer, err := kafka.NewProducer(c.cfg.Kafka)
		if err != nil {
			return errors.Wrap(err, "kafka.NewProducer")
		}
		c.closers = append(c.closers, func() {
			if err := producer.Close(); err != nil {
				c.log.Error("producer.Close", zap.Error(err))
			}
		})
		queue = delivery.NewKafkaQueue(producer, c.cfg.Queue.JobsTopic)
		reporter = delivery.MultiReporter{
			reporter,
			delivery.NewKafkaReporter(producer, c.cfg.Queue.EventsTopic, c.log),
		}
	}

	var sender delivery.Sender
	if c.cfg.Mailer.URL != "" {
		b := c.cfg.Breaker
		sender = mailer.NewHTTPSender(c.cfg.Mailer,
			cb.New(b.Window, b.Timeout, b.Percentile, b.RecoveryRequests), c.log)
	} else {
		c.log.Warn("MAILER_URL is empty, overdue summaries are only logged")
		sender = mailer.NewLogSender(c.log)
	}

	c.worker = delivery.NewWorker(sender, reporter, c.cfg.Delivery, c.log)
	c.scanner = service.NewOverdueScanner(c.repo, c.notifications, queue, c.log)
	return nil
}

// consume feeds queued jobs to the worker until ctx is done.
func (c *components) consume(ctx context.Context) error {
	if c.memQueue != nil {
		return c.memQueue.Run(ctx, c.worker.Process)
	}
	group, err := kafka.NewConsumer(c.cfg.Kafka, c.cfg.Queue.ConsumerName)
	if err != nil {
		return errors.Wrap(err, "kafka.NewConsumer")
	}
	defer func() {
		if err := group.Close(); err != nil {
			c.log.Error("consumer.Close", zap.Error(err))
		}
	}()
	return kafka.Consume(ctx, group, handler.NewConsumer(c.worker.Process, c.log), c.cfg.Queue.JobsTopic)
}

func (c *components) scanJob(ctx context.Context) error {
	report, err := c.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	c.log.Info("overdue scan finished",
		zap.Int("overdue", report.Overdue),
		zap.Int("summaries", report.Summaries),
		zap.Int("enqueued", report.Enqueued),
		zap.Int("record_failed", report.RecordFailed),
		zap.Int("enqueue_failed", report.EnqueueFailed))
	return nil
}

// Run serves the API, the scheduled overdue scan and the delivery worker until
// SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "lending")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.close()

	h := handler.New(c.loans, c.notifications, c.scanner, log,
		handler.WithJWTSecret(cfg.Auth.JWTSecret))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	sched := scheduler.New("overdue-scan", cfg.Scanner.Interval, c.scanJob, log,
		scheduler.WithRunOnStart(cfg.Scanner.RunOnStart))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server start ON: ",
			zap.String("addr",
				net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
		return srv.Run()
	})
	g.Go(func() error {
		return sched.Run(gCtx)
	})
	g.Go(func() error {
		return c.consume(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Debug("Graceful shutdown", zap.Error(context.Cause(gCtx)))

		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(closeCtx)
	})

	if err = g.Wait(); err != nil {
		log.Error("run", zap.Error(err))
		return err
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// Scan runs one overdue scan. With the memory queue the resulting deliveries are
// drained before it returns.
func Scan(cfg *config.Config) (model.ScanReport, error) {
	log := logger.NewLogger(cfg.Log, "lending")
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := build(ctx, cfg, log)
	if err != nil {
		return model.ScanReport{}, err
	}
	defer c.close()

	if c.memQueue == nil {
		return c.scanner.Scan(ctx)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.memQueue.Run(ctx, c.worker.Process)
	}()
	report, err := c.scanner.Scan(ctx)
	c.memQueue.Close()
	<-done
	return report, err
}

// Migrate applies the embedded migrations and exits.
func Migrate(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "lending")
	defer log.Sync() //nolint:errcheck

	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return errors.Wrap(err, "migrate")
	}
	db.Close()
	log.Info("migrations applied")
	return nil
}
