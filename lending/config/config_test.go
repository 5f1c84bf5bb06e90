package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", WithLogLevel(zapcore.DebugLevel), WithWriteTimeout(time.Minute))
	require.NoError(t, err)

	require.Equal(t, StorePostgres, cfg.Store)
	require.Equal(t, QueueKafka, cfg.Queue.Driver)
	require.Equal(t, 12*time.Hour, cfg.Scanner.Interval)
	require.True(t, cfg.Scanner.RunOnStart)
	require.Equal(t, 3, cfg.Delivery.MaxAttempts)
	require.Equal(t, time.Second, cfg.Delivery.BaseDelay)
	require.Equal(t, 2.0, cfg.Delivery.Multiplier)
	require.Equal(t, kafka.NotificationDeliveryTopic, cfg.Queue.JobsTopic)
	require.Equal(t, kafka.NotificationConsumerGroup, cfg.Queue.ConsumerName)
	require.Equal(t, zapcore.DebugLevel, cfg.Log.LogLevel)
	require.Equal(t, time.Minute, cfg.Server.WriteTimeout)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("QUEUE_DRIVER", "memory")
	t.Setenv("OVERDUE_SCAN_INTERVAL", "1m")
	t.Setenv("DELIVERY_MAX_ATTEMPTS", "5")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := load("")
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, QueueMemory, cfg.Queue.Driver)
	require.Equal(t, time.Minute, cfg.Scanner.Interval)
	require.Equal(t, 5, cfg.Delivery.MaxAttempts)
	require.Equal(t, zapcore.WarnLevel, cfg.Log.LogLevel)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("OVERDUE_SCAN_INTERVAL", "1h")
	path := filepath.Join(t.TempDir(), "lending.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store: memory
scanner:
  interval: 2m
mailer:
  url: http://mail.local/send
kafka:
  addrs: ["k1:9092", "k2:9092"]
`), 0o600))

	cfg, err := load(path)
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Store)
	require.Equal(t, 2*time.Minute, cfg.Scanner.Interval)
	require.Equal(t, "http://mail.local/send", cfg.Mailer.URL)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addrs)
	// untouched by the file
	require.Equal(t, 10*time.Second, cfg.Mailer.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "store", key: "STORE_DRIVER", val: "redis"},
		{name: "queue", key: "QUEUE_DRIVER", val: "nats"},
		{name: "interval", key: "OVERDUE_SCAN_INTERVAL", val: "0s"},
		{name: "attempts", key: "DELIVERY_MAX_ATTEMPTS", val: "0"},
		{name: "multiplier", key: "DELIVERY_MULTIPLIER", val: "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := load("")
			require.Error(t, err)
		})
	}
	t.Run("missing file", func(t *testing.T) {
		_, err := load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
