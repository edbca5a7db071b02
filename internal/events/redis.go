package events

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

const (
	redisFieldKey   = "key"
	redisFieldValue = "value"
)

// RedisBroker maps topics onto Redis streams and the worker group onto a
// stream consumer group.
type RedisBroker struct {
	log      *logger.Logger
	addr     string
	group    string
	consumer string
	idle     time.Duration

	mu  sync.Mutex
	pub *goredis.Client
}

func NewRedisBroker(cfg Config, log *logger.Logger) *RedisBroker {
	cfg = cfg.WithDefaults()
	return &RedisBroker{
		log:      log.With("broker", "redis"),
		addr:     cfg.RedisAddr,
		group:    cfg.GroupID,
		consumer: cfg.RedisConsumer,
		idle:     cfg.RedisClaimIdle,
	}
}

func defaultConsumerName() string {
	host, _ := os.Hostname()
	if host == "" {
		return "report-worker"
	}
	return host
}

func (b *RedisBroker) newClient() *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         b.addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	rdb := b.newClient()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", b.addr, err)
	}
	if err := rdb.XGroupCreateMkStream(ctx, topic, b.group, "0").Err(); err != nil && !isBusyGroup(err) {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis create group %s on %s: %w", b.group, topic, err)
	}
	b.log.Info("redis stream subscribed", "stream", topic, "group", b.group, "consumer", b.consumer)
	return &redisSubscription{
		rdb:       rdb,
		log:       b.log.With("stream", topic),
		stream:    topic,
		group:     b.group,
		consumer:  b.consumer,
		claimIdle: b.idle,
		cursor:    sweepStart,
	}, nil
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, key, value []byte) error {
	b.mu.Lock()
	if b.pub == nil {
		b.pub = b.newClient()
	}
	rdb := b.pub
	b.mu.Unlock()

	id, err := rdb.XAdd(ctx, &goredis.XAddArgs{
		Stream: topic,
		Values: map[string]interface{}{
			redisFieldKey:   string(key),
			redisFieldValue: string(value),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("redis xadd %s: %w", topic, err)
	}
	b.log.Debug("redis message published", "stream", topic, "id", id)
	return nil
}

func (b *RedisBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pub == nil {
		return nil
	}
	err := b.pub.Close()
	b.pub = nil
	return err
}

// sweepStart is both where a pending-entry sweep begins and what XAUTOCLAIM
// returns once it has walked the whole pending list.
const sweepStart = "0-0"

type redisSubscription struct {
	rdb       *goredis.Client
	log       *logger.Logger
	stream    string
	group     string
	consumer  string
	claimIdle time.Duration

	// Only touched by the polling goroutine.
	cursor    string
	lastSweep time.Time

	closeOnce sync.Once
	closeErr  error
}

// Poll hands out entries left unacked by a dead or restarted consumer before
// reading new ones, so a crash between read and XACK delays a message
// instead of losing it.
func (s *redisSubscription) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	if m, err := s.reclaim(ctx); m != nil || err != nil {
		return m, err
	}
	if timeout <= 0 {
		// Block: 0 would wait forever.
		timeout = time.Millisecond
	}
	res, err := s.rdb.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    1,
		Block:    timeout,
	}).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, s.pollErr(ctx, "xreadgroup", err)
	}
	for _, st := range res {
		for _, xm := range st.Messages {
			return s.message(st.Stream, xm), nil
		}
	}
	return nil, nil
}

// reclaim claims at most one entry idle for claimIdle. A sweep over the
// pending list starts at most once per claimIdle and resumes from its cursor
// on later polls until XAUTOCLAIM reports it done.
func (s *redisSubscription) reclaim(ctx context.Context) (*Message, error) {
	if s.cursor == sweepStart {
		if !s.lastSweep.IsZero() && time.Since(s.lastSweep) < s.claimIdle {
			return nil, nil
		}
		s.lastSweep = time.Now()
	}
	msgs, next, err := s.rdb.XAutoClaim(ctx, &goredis.XAutoClaimArgs{
		Stream:   s.stream,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  s.claimIdle,
		Start:    s.cursor,
		Count:    1,
	}).Result()
	if err != nil {
		return nil, s.pollErr(ctx, "xautoclaim", err)
	}
	if next == "" {
		next = sweepStart
	}
	s.cursor = next
	if len(msgs) == 0 {
		return nil, nil
	}
	s.log.Warn("redis pending entry reclaimed", "id", msgs[0].ID, "min_idle", s.claimIdle)
	return s.message(s.stream, msgs[0]), nil
}

func (s *redisSubscription) message(stream string, xm goredis.XMessage) *Message {
	id := xm.ID
	return &Message{
		Topic: stream,
		ID:    id,
		Key:   fieldBytes(xm.Values[redisFieldKey]),
		Value: fieldBytes(xm.Values[redisFieldValue]),
		ack: func(ctx context.Context) error {
			return s.rdb.XAck(ctx, stream, s.group, id).Err()
		},
	}
}

func (s *redisSubscription) pollErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, goredis.ErrClosed) {
		return ErrSubscriptionClosed
	}
	return fmt.Errorf("redis %s %s: %w", op, s.stream, err)
}

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() { s.closeErr = s.rdb.Close() })
	return s.closeErr
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func fieldBytes(v interface{}) []byte {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []byte(t)
	case []byte:
		return t
	default:
		return []byte(fmt.Sprint(t))
	}
}
