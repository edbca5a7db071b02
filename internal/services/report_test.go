package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos/testutil"
	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/events"
	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
)

type failingPublisher struct{ err error }

func (p failingPublisher) Publish(context.Context, string, []byte, []byte) error { return p.err }

func TestRequestReportPersistsAndPublishes(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	broker := events.NewMemoryBroker(4)
	svc := NewReportService(log, repos.NewReportRepo(db, log), broker, "", nil)

	report, err := svc.RequestReport(ctx)
	if err != nil {
		t.Fatalf("RequestReport: %v", err)
	}
	if report.Status != types.ReportStatusPreparing {
		t.Fatalf("new report status = %s", report.Status)
	}

	sub, _ := broker.Subscribe(ctx, events.DefaultTopic)
	defer sub.Close()
	msg, err := sub.Poll(ctx, time.Second)
	if err != nil || msg == nil {
		t.Fatalf("expected a published request: %v", err)
	}
	if string(msg.Value) != report.ID.String() || string(msg.Key) != report.ID.String() {
		t.Fatalf("published %q/%q, want the report id", msg.Key, msg.Value)
	}

	stored, err := svc.Get(ctx, report.ID)
	if err != nil || stored.ID != report.ID {
		t.Fatalf("Get: %v %v", stored, err)
	}
}

func TestRequestReportPublishFailure(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	boom := errors.New("no brokers")
	svc := NewReportService(log, repos.NewReportRepo(db, log), failingPublisher{err: boom}, "report-requests", nil)

	report, err := svc.RequestReport(ctx)
	if !errors.Is(err, pkgerrors.ErrUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrUnavailable wrapping the broker error, got %v", err)
	}
	if report == nil {
		t.Fatalf("the persisted report should still be returned")
	}
	stored, err := svc.Get(ctx, report.ID)
	if err != nil || stored.Status != types.ReportStatusPreparing {
		t.Fatalf("report should remain Preparing: %v %v", stored, err)
	}
}

func TestReportGetErrors(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := NewReportService(log, repos.NewReportRepo(db, log), events.NewMemoryBroker(1), "", nil)

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("missing report: got %v", err)
	}
	if _, err := svc.Get(context.Background(), uuid.Nil); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("nil id: got %v", err)
	}
}

func TestReportList(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()
	svc := NewReportService(log, repos.NewReportRepo(db, log), events.NewMemoryBroker(4), "", nil)

	first, _ := svc.RequestReport(ctx)
	time.Sleep(5 * time.Millisecond)
	second, _ := svc.RequestReport(ctx)

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	pos := map[uuid.UUID]int{}
	for i, r := range list {
		pos[r.ID] = i
	}
	iFirst, ok1 := pos[first.ID]
	iSecond, ok2 := pos[second.ID]
	if !ok1 || !ok2 || iSecond > iFirst {
		t.Fatalf("expected both reports, newest first")
	}
}
