package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/IBM/sarama"
)

const (
	NotificationDeliveryTopic = "lending.notification.delivery"
	NotificationEventsTopic   = "lending.notification.events"

	NotificationConsumerGroup = "lending-notification-worker"
)

type Config struct {
	Addrs    []string `yaml:"addrs" envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	ClientID string   `yaml:"clientID" envconfig:"KAFKA_CLIENT_ID" default:"lending"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.ClientID = cfg.ClientID

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Idempotent = true
	defaultCfg.Producer.Retry.Max = 5
	defaultCfg.Net.MaxOpenRequests = 1

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

func NewConsumer(cfg Config, group string) (sarama.ConsumerGroup, error) {
	defaultCfg := sarama.NewConfig()
	defaultCfg.ClientID = cfg.ClientID

	defaultCfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	defaultCfg.Consumer.Offsets.AutoCommit.Enable = true
	defaultCfg.Consumer.Offsets.AutoCommit.Interval = time.Second
	defaultCfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	return sarama.NewConsumerGroup(cfg.Addrs, group, defaultCfg)
}

// Consume joins the group and re-joins after every rebalance until ctx is done.
func Consume(ctx context.Context, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler, topics ...string) error {
	for {
		if err := group.Consume(ctx, topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
