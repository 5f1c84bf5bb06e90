package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/Astemirdum/lending-service/lending/internal/delivery"
	"github.com/Astemirdum/lending-service/lending/internal/mailer"
	"github.com/Astemirdum/lending-service/pkg/kafka"
	"github.com/Astemirdum/lending-service/pkg/logger"
	"github.com/Astemirdum/lending-service/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LENDING_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LENDING_HTTP_PORT" default:"8060"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type StoreDriver string

const (
	StorePostgres StoreDriver = "postgres"
	StoreMemory   StoreDriver = "memory"
)

type QueueDriver string

const (
	QueueKafka  QueueDriver = "kafka"
	QueueMemory QueueDriver = "memory"
)

type Scanner struct {
	Interval   time.Duration `yaml:"interval" envconfig:"OVERDUE_SCAN_INTERVAL" default:"12h"`
	RunOnStart bool          `yaml:"runOnStart" envconfig:"OVERDUE_SCAN_ON_START" default:"true"`
}

type Queue struct {
	Driver QueueDriver `yaml:"driver" envconfig:"QUEUE_DRIVER" default:"kafka"`
	// Size is the buffer of the in-process queue.
	Size         int    `yaml:"size" envconfig:"QUEUE_SIZE" default:"256"`
	JobsTopic    string `yaml:"jobsTopic" envconfig:"QUEUE_JOBS_TOPIC"`
	EventsTopic  string `yaml:"eventsTopic" envconfig:"QUEUE_EVENTS_TOPIC"`
	ConsumerName string `yaml:"consumerGroup" envconfig:"QUEUE_CONSUMER_GROUP"`
}

type Breaker struct {
	Window           int           `yaml:"window" envconfig:"MAILER_CB_WINDOW" default:"100"`
	Timeout          time.Duration `yaml:"timeout" envconfig:"MAILER_CB_TIMEOUT" default:"1s"`
	Percentile       float64       `yaml:"percentile" envconfig:"MAILER_CB_PERCENTILE" default:"0.2"`
	RecoveryRequests int           `yaml:"recoveryRequests" envconfig:"MAILER_CB_RECOVERY" default:"2"`
}

type Auth struct {
	// JWTSecret enables HMAC bearer tokens next to the gateway identity headers.
	JWTSecret string `yaml:"jwtSecret" envconfig:"AUTH_JWT_SECRET"`
}

type Config struct {
	Server   HTTPServer           `yaml:"server"`
	Store    StoreDriver          `yaml:"store" envconfig:"STORE_DRIVER" default:"postgres"`
	// Seed is a yaml file with staff, students and books loaded into the memory store.
	Seed     string               `yaml:"seed" envconfig:"STORE_SEED"`
	Database postgres.DB          `yaml:"db"`
	Kafka    kafka.Config         `yaml:"kafka"`
	Queue    Queue                `yaml:"queue"`
	Scanner  Scanner              `yaml:"scanner"`
	Delivery delivery.RetryPolicy `yaml:"delivery"`
	Mailer   mailer.Config        `yaml:"mailer"`
	Breaker  Breaker              `yaml:"breaker"`
	Auth     Auth                 `yaml:"auth"`
	Log      logger.Log           `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Values present in the optional
// CONFIG_FILE yaml override it.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config, err := load(os.Getenv("CONFIG_FILE"), ops...)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		if cfg.Log.LogLevel.Enabled(zapcore.DebugLevel) {
			printConfig(cfg)
		}
	})

	return cfg
}

func load(path string, ops ...Option) (*Config, error) {
	var config Config
	for _, op := range ops {
		op(&config)
	}
	if err := envconfig.Process("", &config); err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err = yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrap(err, "yaml.Unmarshal")
		}
	}
	config.Queue.defaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (q *Queue) defaults() {
	if q.JobsTopic == "" {
		q.JobsTopic = kafka.NotificationDeliveryTopic
	}
	if q.EventsTopic == "" {
		q.EventsTopic = kafka.NotificationEventsTopic
	}
	if q.ConsumerName == "" {
		q.ConsumerName = kafka.NotificationConsumerGroup
	}
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store)
	}
	switch c.Queue.Driver {
	case QueueKafka, QueueMemory:
	default:
		return fmt.Errorf("unknown QUEUE_DRIVER %q", c.Queue.Driver)
	}
	if c.Scanner.Interval <= 0 {
		return errors.New("OVERDUE_SCAN_INTERVAL must be positive")
	}
	return errors.Wrap(c.Delivery.Validate(), "delivery")
}

func printConfig(cfg *Config) {
	masked := *cfg
	masked.Database.Password = "***"
	masked.Mailer.Token = "***"
	masked.Auth.JWTSecret = "***"
	jscfg, _ := json.MarshalIndent(masked, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
