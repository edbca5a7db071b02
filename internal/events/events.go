// Package events carries report-request notifications between the request
// endpoint and the report worker. A Broker hands out Subscriptions that are
// polled one message at a time, which keeps the worker's loop explicit about
// when it is idle, connected or reconnecting.
package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

const (
	KindKafka  = "kafka"
	KindRedis  = "redis"
	KindMemory = "memory"

	DefaultTopic   = "report-requests"
	DefaultGroupID = "report-workers"

	DefaultRedisClaimIdle = 30 * time.Second
)

// ErrSubscriptionClosed is returned by Poll once the subscription has been
// closed or its underlying consumer stopped.
var ErrSubscriptionClosed = errors.New("subscription closed")

type Config struct {
	Kind         string   `yaml:"kind"`
	Topic        string   `yaml:"topic"`
	GroupID      string   `yaml:"group_id"`
	ClientID     string   `yaml:"client_id"`
	KafkaBrokers []string `yaml:"kafka_brokers"`
	RedisAddr    string   `yaml:"redis_addr"`

	// RedisConsumer names this process inside the stream group. It must
	// survive restarts; it defaults to the hostname.
	RedisConsumer string `yaml:"redis_consumer"`
	// RedisClaimIdle is how long an entry may sit delivered but unacked
	// before another consumer takes it over.
	RedisClaimIdle time.Duration `yaml:"redis_claim_idle"`
}

// Message is one delivered event. Ack tells the broker the message has been
// dealt with; for Kafka that marks the offset, for Redis it XACKs the entry.
type Message struct {
	Topic     string
	ID        string
	Key       []byte
	Value     []byte
	Partition int32
	Offset    int64

	ack func(ctx context.Context) error
}

// NewMessage builds a message with an optional ack callback.
func NewMessage(topic string, key, value []byte, ack func(ctx context.Context) error) *Message {
	return &Message{Topic: topic, Key: key, Value: value, ack: ack}
}

func (m *Message) Ack(ctx context.Context) error {
	if m == nil || m.ack == nil {
		return nil
	}
	return m.ack(ctx)
}

// Subscription is a live consumer on one topic. Poll returns (nil, nil) when
// nothing arrived within timeout; any returned error means the subscription
// is no longer usable and should be closed.
type Subscription interface {
	Poll(ctx context.Context, timeout time.Duration) (*Message, error)
	Close() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Broker interface {
	Subscriber
	Publisher
	Close() error
}

func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.Kind) == "" {
		c.Kind = KindKafka
	}
	if strings.TrimSpace(c.Topic) == "" {
		c.Topic = DefaultTopic
	}
	if strings.TrimSpace(c.GroupID) == "" {
		c.GroupID = DefaultGroupID
	}
	if strings.TrimSpace(c.ClientID) == "" {
		c.ClientID = "phonebook-reports"
	}
	if len(c.KafkaBrokers) == 0 {
		c.KafkaBrokers = []string{"localhost:9092"}
	}
	if strings.TrimSpace(c.RedisAddr) == "" {
		c.RedisAddr = "localhost:6379"
	}
	if strings.TrimSpace(c.RedisConsumer) == "" {
		c.RedisConsumer = defaultConsumerName()
	}
	if c.RedisClaimIdle <= 0 {
		c.RedisClaimIdle = DefaultRedisClaimIdle
	}
	return c
}

// New returns the broker selected by cfg.Kind. No connection is made here;
// connecting happens on Subscribe/Publish so the worker's reconnect loop owns
// broker availability.
func New(cfg Config, log *logger.Logger) (Broker, error) {
	cfg = cfg.WithDefaults()
	switch strings.ToLower(cfg.Kind) {
	case KindKafka:
		return NewKafkaBroker(cfg, log), nil
	case KindRedis:
		return NewRedisBroker(cfg, log), nil
	case KindMemory:
		return NewMemoryBroker(0), nil
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
	}
}

func pollTimer(timeout time.Duration) *time.Timer {
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return time.NewTimer(timeout)
}
