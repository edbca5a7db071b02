package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
)

// MemoryBroker is an in-process broker. Subscribers of the same topic compete
// for messages, like members of one consumer group.
type MemoryBroker struct {
	mu     sync.Mutex
	topics map[string]chan *Message
	buffer int
}

func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = 256
	}
	return &MemoryBroker{topics: map[string]chan *Message{}, buffer: buffer}
}

func (b *MemoryBroker) topic(name string) chan *Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.topics[name]
	if !ok {
		ch = make(chan *Message, b.buffer)
		b.topics[name] = ch
	}
	return ch
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memorySubscription{ch: b.topic(topic), closed: make(chan struct{})}, nil
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, key, value []byte) error {
	msg := &Message{
		Topic: topic,
		Key:   append([]byte(nil), key...),
		Value: append([]byte(nil), value...),
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("memory publish to %s: %w", topic, err)
	}
	select {
	case b.topic(topic) <- msg:
		return nil
	default:
		return fmt.Errorf("memory publish to %s: buffer of %d full: %w", topic, b.buffer, pkgerrors.ErrUnavailable)
	}
}

func (b *MemoryBroker) Close() error { return nil }

type memorySubscription struct {
	ch        chan *Message
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *memorySubscription) Poll(ctx context.Context, timeout time.Duration) (*Message, error) {
	select {
	case <-s.closed:
		return nil, ErrSubscriptionClosed
	default:
	}
	t := pollTimer(timeout)
	defer t.Stop()
	select {
	case m := <-s.ch:
		return m, nil
	case <-s.closed:
		return nil, ErrSubscriptionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
		return nil, nil
	}
}

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
