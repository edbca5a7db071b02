package worker

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/clients/directory"
	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/events"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/dbctx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/httpx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/retry"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/reporting"
)

const (
	DefaultBackoffInterval = 2 * time.Second
	DefaultPollTimeout     = 500 * time.Millisecond
)

type State int32

const (
	StateDisconnected State = iota
	StateSubscribing
	StatePolling
)

var stateNames = []string{"disconnected", "subscribing", "polling"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

type Config struct {
	Topic           string        `yaml:"topic"`
	BackoffInterval time.Duration `yaml:"backoff_interval"`
	PollTimeout     time.Duration `yaml:"poll_timeout"`
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.Topic) == "" {
		c.Topic = events.DefaultTopic
	}
	if c.BackoffInterval <= 0 {
		c.BackoffInterval = DefaultBackoffInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	return c
}

// ReportStore is the slice of the report repo the worker writes through.
type ReportStore interface {
	ReplaceItems(dbc dbctx.Context, reportID uuid.UUID, items []types.ReportItem) (bool, error)
}

// ReportWorker consumes report requests and fills in the requested reports.
// It runs as one cooperative loop; Run owns the subscription for its whole
// lifetime.
type ReportWorker struct {
	cfg     Config
	log     *logger.Logger
	broker  events.Subscriber
	fetcher directory.SnapshotFetcher
	store   ReportStore
	metrics *observability.Metrics

	state atomic.Int32
}

func NewReportWorker(cfg Config, baseLog *logger.Logger, broker events.Subscriber, fetcher directory.SnapshotFetcher, store ReportStore, metrics *observability.Metrics) *ReportWorker {
	w := &ReportWorker{
		cfg:     cfg.withDefaults(),
		log:     baseLog.With("component", "ReportWorker"),
		broker:  broker,
		fetcher: fetcher,
		store:   store,
		metrics: metrics,
	}
	w.setState(StateDisconnected)
	return w
}

func (w *ReportWorker) State() State {
	return State(w.state.Load())
}

func (w *ReportWorker) setState(s State) {
	w.state.Store(int32(s))
	w.metrics.SetWorkerState(s.String(), stateNames...)
}

// Run drives Disconnected -> Subscribing -> Polling until ctx is cancelled.
// Connection faults drop back to Disconnected after one backoff interval. It
// returns nil on cancellation.
func (w *ReportWorker) Run(ctx context.Context) error {
	w.log.Info("Starting report worker",
		"topic", w.cfg.Topic,
		"backoff", w.cfg.BackoffInterval,
		"poll_timeout", w.cfg.PollTimeout,
	)
	bo := retry.Fixed(w.cfg.BackoffInterval)

	var sub events.Subscription
	release := func() {
		if sub == nil {
			return
		}
		if err := sub.Close(); err != nil {
			w.log.Warn("Closing subscription failed", "error", err)
		}
		sub = nil
	}
	defer func() {
		release()
		w.setState(StateDisconnected)
		w.log.Info("Report worker stopped")
	}()

	for ctx.Err() == nil {
		switch w.State() {
		case StateDisconnected:
			w.setState(StateSubscribing)

		case StateSubscribing:
			s, err := w.broker.Subscribe(ctx, w.cfg.Topic)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Warn("Subscribe failed, retrying", "topic", w.cfg.Topic, "error", err, "backoff", w.cfg.BackoffInterval)
				w.disconnect(ctx, bo)
				continue
			}
			sub = s
			bo.Reset()
			w.log.Info("Subscribed", "topic", w.cfg.Topic)
			w.setState(StatePolling)

		case StatePolling:
			msg, err := sub.Poll(ctx, w.cfg.PollTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.log.Warn("Poll failed, reconnecting", "topic", w.cfg.Topic, "error", err, "backoff", w.cfg.BackoffInterval)
				release()
				w.disconnect(ctx, bo)
				continue
			}
			if msg == nil {
				continue
			}
			w.handle(ctx, msg)
		}
	}
	return nil
}

func (w *ReportWorker) disconnect(ctx context.Context, bo backoff.BackOff) {
	w.setState(StateDisconnected)
	w.metrics.IncReconnect()
	retry.Wait(ctx, bo)
}

// handle processes one message and always acks it, so a report that cannot
// be generated is not redelivered.
func (w *ReportWorker) handle(ctx context.Context, msg *events.Message) {
	start := time.Now()
	workCtx := context.WithoutCancel(ctx)

	id, err := ParseReportID(msg.Value)
	if err != nil {
		w.log.Debug("Dropping malformed report request", "message_id", msg.ID, "error", err)
		w.metrics.ObserveMessage(observability.OutcomeMalformed, 0)
	} else {
		outcome := w.generate(workCtx, id)
		w.metrics.ObserveMessage(outcome, time.Since(start))
	}

	if err := msg.Ack(workCtx); err != nil {
		w.log.Warn("Ack failed", "message_id", msg.ID, "error", err)
	}
}

func (w *ReportWorker) generate(ctx context.Context, id uuid.UUID) (outcome string) {
	ctx, span := observability.Tracer().Start(ctx, "report_worker.generate",
		trace.WithAttributes(attribute.String("report.id", id.String())),
	)
	defer span.End()

	log := w.log.With("report_id", id)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Report generation panic", "panic", r)
			span.RecordError(errFromRecover(r))
			span.SetStatus(codes.Error, "panic")
			outcome = observability.OutcomeFailed
		}
	}()

	people, err := w.fetcher.FetchPeople(ctx)
	if err != nil {
		// An unreachable or overloaded directory is expected now and then;
		// anything else (bad payloads, 4xx) points at a real fault.
		if httpx.IsTransient(err) {
			log.Warn("Directory unavailable, report left Preparing", "error", err)
		} else {
			log.Error("Fetching directory snapshot failed", "error", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch")
		return observability.OutcomeFailed
	}

	items := reporting.Aggregate(people)
	span.SetAttributes(
		attribute.Int("report.people", len(people)),
		attribute.Int("report.locations", len(items)),
	)

	found, err := w.store.ReplaceItems(dbctx.Context{Ctx: ctx}, id, items)
	if err != nil {
		log.Error("Storing report failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "store")
		return observability.OutcomeFailed
	}
	if !found {
		log.Info("Report not found, nothing to do")
		return observability.OutcomeMissingReport
	}

	w.metrics.ObserveReportLocations(len(items))
	log.Info("Report completed", "people", len(people), "locations", len(items))
	return observability.OutcomeCompleted
}

// ParseReportID reads a message payload as a report id.
func ParseReportID(payload []byte) (uuid.UUID, error) {
	raw := strings.TrimSpace(string(payload))
	if raw == "" {
		return uuid.Nil, fmt.Errorf("empty payload")
	}
	return uuid.Parse(raw)
}

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
