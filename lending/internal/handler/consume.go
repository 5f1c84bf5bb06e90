package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/Astemirdum/lending-service/lending/internal/delivery"
	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type processFunc func(ctx context.Context, job model.DeliveryJob) error

// Consumer feeds delivery jobs from the queue topic to the worker, one message at a time
// per claimed partition. An offset is marked only once the job has reached a terminal
// outcome, so a job interrupted by shutdown is delivered again.
type Consumer struct {
	process   processFunc
	log       *zap.Logger
	ready     chan struct{}
	readyOnce sync.Once
}

func NewConsumer(process processFunc, log *zap.Logger) *Consumer {
	return &Consumer{
		process: process,
		log:     log.Named("consumer"),
		ready:   make(chan struct{}),
	}
}

// Ready is closed after the first partition assignment.
func (consumer *Consumer) Ready() <-chan struct{} {
	return consumer.ready
}

func (consumer *Consumer) Setup(sarama.ConsumerGroupSession) error {
	consumer.readyOnce.Do(func() { close(consumer.ready) })
	return nil
}

func (consumer *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (consumer *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				consumer.log.Warn("message channel was closed")
				return nil
			}
			consumer.handle(session, message)
		case <-session.Context().Done():
			return nil
		}
	}
}

func (consumer *Consumer) handle(session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) {
	job, err := delivery.DecodeJob(message.Value)
	if err != nil {
		consumer.log.Error("poison message", zap.Error(err),
			zap.String("topic", message.Topic), zap.Int64("offset", message.Offset))
		session.MarkMessage(message, "")
		return
	}

	ctx := session.Context()
	err = consumer.process(ctx, job)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		consumer.log.Info("job interrupted, leaving for redelivery", zap.String("job_id", job.ID))
		return
	}
	if err != nil {
		consumer.log.Error("consumer.process", zap.Error(err), zap.String("job_id", job.ID))
	}
	consumer.log.Debug("Message claimed:",
		zap.String("job_id", job.ID),
		zap.Time("timestamp", message.Timestamp),
		zap.String("topic", message.Topic))
	session.MarkMessage(message, "")
}
