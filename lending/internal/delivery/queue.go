package delivery

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrQueueClosed = errors.New("delivery queue closed")

type Queue interface {
	Enqueue(ctx context.Context, job model.DeliveryJob) error
}

type idGen struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDGen() *idGen {
	return &idGen{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *idGen) New(t time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func EncodeJob(job model.DeliveryJob) ([]byte, error) {
	return json.Marshal(job)
}

func DecodeJob(data []byte) (model.DeliveryJob, error) {
	var job model.DeliveryJob
	if err := json.Unmarshal(data, &job); err != nil {
		return model.DeliveryJob{}, errors.Wrap(err, "decode delivery job")
	}
	return job, nil
}

// KafkaQueue publishes jobs to a topic with acks from all in-sync replicas. Jobs for the
// same teacher share a partition.
type KafkaQueue struct {
	producer sarama.SyncProducer
	topic    string
	ids      *idGen
}

func NewKafkaQueue(producer sarama.SyncProducer, topic string) *KafkaQueue {
	return &KafkaQueue{
		producer: producer,
		topic:    topic,
		ids:      newIDGen(),
	}
}

func (q *KafkaQueue) Enqueue(ctx context.Context, job model.DeliveryJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := stamp(q.ids, &job); err != nil {
		return err
	}
	data, err := EncodeJob(job)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(job.Summary.TeacherID.String()),
		Value: sarama.ByteEncoder(data),
	}
	if _, _, err = q.producer.SendMessage(msg); err != nil {
		return errors.Wrap(err, "producer.SendMessage")
	}
	return nil
}

func stamp(ids *idGen, job *model.DeliveryJob) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}
	if job.ID != "" {
		return nil
	}
	id, err := ids.New(job.EnqueuedAt)
	if err != nil {
		return err
	}
	job.ID = id
	return nil
}

// MemQueue is a buffered in-process queue for runs without a broker. Jobs do not
// survive a restart.
type MemQueue struct {
	jobs chan model.DeliveryJob
	ids  *idGen

	mu     sync.RWMutex
	closed bool
}

func NewMemQueue(size int) *MemQueue {
	return &MemQueue{
		jobs: make(chan model.DeliveryJob, size),
		ids:  newIDGen(),
	}
}

func (q *MemQueue) Enqueue(ctx context.Context, job model.DeliveryJob) error {
	if err := stamp(q.ids, &job); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run hands jobs to process one at a time until ctx is done or the queue is closed.
func (q *MemQueue) Run(ctx context.Context, process func(ctx context.Context, job model.DeliveryJob) error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case job, ok := <-q.jobs:
			if !ok {
				return nil
			}
			_ = process(ctx, job)
		}
	}
}

func (q *MemQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}
