package delivery

import (
	"context"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

type LogReporter struct {
	log *zap.Logger
}

func NewLogReporter(log *zap.Logger) *LogReporter {
	return &LogReporter{log: log.Named("delivery")}
}

func (r *LogReporter) Delivered(_ context.Context, ev model.DeliveryEvent) {
	r.log.Info("delivered",
		zap.String("job_id", ev.JobID),
		zap.String("notification_id", ev.NotificationID.String()),
		zap.Int("attempts", ev.Attempts))
}

func (r *LogReporter) Failed(_ context.Context, ev model.DeliveryEvent) {
	r.log.Error("delivery exhausted",
		zap.String("job_id", ev.JobID),
		zap.String("notification_id", ev.NotificationID.String()),
		zap.String("teacher_id", ev.TeacherID.String()),
		zap.Int("attempts", ev.Attempts),
		zap.String("error", ev.Error))
}

// KafkaReporter publishes outcomes to an events topic. Publish errors are logged only.
type KafkaReporter struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewKafkaReporter(producer sarama.SyncProducer, topic string, log *zap.Logger) *KafkaReporter {
	return &KafkaReporter{
		producer: producer,
		topic:    topic,
		log:      log.Named("events"),
	}
}

func (r *KafkaReporter) Delivered(_ context.Context, ev model.DeliveryEvent) { r.publish(ev) }

func (r *KafkaReporter) Failed(_ context.Context, ev model.DeliveryEvent) { r.publish(ev) }

func (r *KafkaReporter) publish(ev model.DeliveryEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		r.log.Error("marshal event", zap.Error(err))
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: r.topic,
		Key:   sarama.StringEncoder(ev.TeacherID.String()),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = r.producer.SendMessage(msg); err != nil {
		r.log.Error("producer.SendMessage", zap.Error(err), zap.String("job_id", ev.JobID))
	}
}

type MultiReporter []Reporter

func (m MultiReporter) Delivered(ctx context.Context, ev model.DeliveryEvent) {
	for _, r := range m {
		r.Delivered(ctx, ev)
	}
}

func (m MultiReporter) Failed(ctx context.Context, ev model.DeliveryEvent) {
	for _, r := range m {
		r.Failed(ctx, ev)
	}
}
