package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

var saramaLogOnce sync.Once

// KafkaBroker subscribes through a sarama consumer group (one group per
// Subscribe call) and publishes through a lazily created sync producer.
type KafkaBroker struct {
	log     *logger.Logger
	brokers []string
	groupID string
	cfg     *sarama.Config

	newGroup    func(addrs []string, groupID string, cfg *sarama.Config) (sarama.ConsumerGroup, error)
	newProducer func(addrs []string, cfg *sarama.Config) (sarama.SyncProducer, error)

	mu       sync.Mutex
	producer sarama.SyncProducer
}

func NewKafkaBroker(cfg Config, log *logger.Logger) *KafkaBroker {
	cfg = cfg.WithDefaults()
	l := log.With("broker", "kafka")
	saramaLogOnce.Do(func() { sarama.Logger = saramaLogger{log: l} })

	return &KafkaBroker{
		log:         l,
		brokers:     cfg.KafkaBrokers,
		groupID:     cfg.GroupID,
		cfg:         newSaramaConfig(cfg.ClientID),
		newGroup:    sarama.NewConsumerGroup,
		newProducer: sarama.NewSyncProducer,
	}
}

func newSaramaConfig(clientID string) *sarama.Config {
	sc := sarama.NewConfig()
	sc.ClientID = clientID
	sc.Net.DialTimeout = 5 * time.Second
	sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	sc.Consumer.Offsets.AutoCommit.Enable = true
	sc.Consumer.Offsets.AutoCommit.Interval = time.Second
	sc.Consumer.Return.Errors = true
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 3
	return sc
}

func (b *KafkaBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	group, err := b.newGroup(b.brokers, b.groupID, b.cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer group %q: %w", b.groupID, err)
	}
	return newKafkaSubscription(group, topic, b.log), nil
}

func (b *KafkaBroker) Publish(ctx context.Context, topic string, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := b.syncProducer()
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(value)}
	if len(key) > 0 {
		msg.Key = sarama.ByteEncoder(key)
	}
	partition, offset, err := p.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	b.log.Debug("kafka message published", "topic", topic, "partition", partition, "offset", offset)
	return nil
}

func (b *KafkaBroker) syncProducer() (sarama.SyncProducer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.producer != nil {
		return b.producer, nil
	}
	p, err := b.newProducer(b.brokers, b.cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	b.producer = p
	return p, nil
}

func (b *KafkaBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.producer == nil {
		return nil
	}
	err := b.producer.Close()
	b.producer = nil
	return err
}

type kafkaSubscription struct {
	group  sarama.ConsumerGroup
	topic  string
	log    *logger.Logger
	msgs   chan *Message
	errs   chan error
	done   chan struct{}
	cancel context.CancelFunc

	closeOnce sync.Once
	closeErr  error
}

func newKafkaSubscription(group sarama.ConsumerGroup, topic string, log *logger.Logger) *kafkaSubscription {
	ctx, cancel := context.WithCancel(context.Background())
	s := &kafkaSubscription{
		group:  group,
		topic:  topic,
		log:    log.With("topic", topic),
		msgs:   make(chan *Message),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go s.forwardErrors()
	go s.consume(ctx)
	return s
}

func (s *kafkaSubscription) consume(ctx context.Context) {
	defer close(s.done)
	h := &claimHandler{msgs: s.msgs, log: s.log}
	for {
		// Consume returns on every rebalance; loop to rejoin.
		err := s.group.Consume(ctx, []string{s.topic}, h)
		if ctx.Err() != nil || errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return
		}
		if err != nil {
			s.fail(err)
			return
		}
	}
}

// forwardErrors drains the group's error channel. Partition and commit errors
// are not fatal to the group; only a failing Consume ends the subscription.
func (s *kafkaSubscription) forwardErrors() {
	for err := range s.group.Errors() {
		if err == nil {
			continue
		}
		var cerr *sarama.ConsumerError
		if errors.As(err, &cerr) {
			s.log.Warn("kafka consumer error", "partition", cerr.Partition, "error", cerr.Err)
			continue
		}
		s.log.Warn("kafka consumer group error", "error", err)
	}
}

func (s *kafkaSubscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *kafkaSubscription) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	t := pollTimer(timeout)
	defer t.Stop()
	select {
	case m := <-s.msgs:
		return m, nil
	case err := <-s.errs:
		return nil, fmt.Errorf("kafka consume: %w", err)
	case <-s.done:
		return nil, ErrSubscriptionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
		return nil, nil
	}
}

func (s *kafkaSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.group.Close()
		<-s.done
	})
	return s.closeErr
}

// claimHandler hands every claimed message to the poller and marks it only
// when the poller acks.
type claimHandler struct {
	msgs chan<- *Message
	log  *logger.Logger
}

func (h *claimHandler) Setup(sess sarama.ConsumerGroupSession) error {
	h.log.Info("kafka partitions assigned",
		"member_id", sess.MemberID(),
		"generation", sess.GenerationID(),
		"claims", sess.Claims(),
	)
	return nil
}

func (h *claimHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	h.log.Debug("kafka session ended", "member_id", sess.MemberID())
	return nil
}

func (h *claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case cm, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			msg := &Message{
				Topic:     cm.Topic,
				ID:        fmt.Sprintf("%s/%d/%d", cm.Topic, cm.Partition, cm.Offset),
				Key:       cm.Key,
				Value:     cm.Value,
				Partition: cm.Partition,
				Offset:    cm.Offset,
				ack: func(context.Context) error {
					sess.MarkMessage(cm, "")
					return nil
				},
			}
			select {
			case h.msgs <- msg:
			case <-sess.Context().Done():
				return nil
			}
		case <-sess.Context().Done():
			return nil
		}
	}
}

// saramaLogger routes sarama's chatter to debug level.
type saramaLogger struct {
	log *logger.Logger
}

func (l saramaLogger) Print(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}

func (l saramaLogger) Printf(format string, v ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, v...))
}

func (l saramaLogger) Println(v ...interface{}) {
	l.log.Debug(fmt.Sprint(v...))
}
