package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/data/repos"
	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/events"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/observability"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/dbctx"
	pkgerrors "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/errors"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type ReportService interface {
	// RequestReport stores a Preparing report and announces it to the
	// workers. If publishing fails the report stays Preparing and the error
	// wraps ErrUnavailable.
	RequestReport(ctx context.Context) (*types.Report, error)
	List(ctx context.Context) ([]*types.Report, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Report, error)
}

type reportService struct {
	log       *logger.Logger
	repo      repos.ReportRepo
	publisher events.Publisher
	topic     string
	metrics   *observability.Metrics
}

func NewReportService(log *logger.Logger, repo repos.ReportRepo, publisher events.Publisher, topic string, metrics *observability.Metrics) ReportService {
	if topic == "" {
		topic = events.DefaultTopic
	}
	return &reportService{
		log:       log.With("service", "ReportService"),
		repo:      repo,
		publisher: publisher,
		topic:     topic,
		metrics:   metrics,
	}
}

func (s *reportService) RequestReport(ctx context.Context) (*types.Report, error) {
	report, err := s.repo.Create(dbctx.Context{Ctx: ctx}, types.NewReport())
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	id := []byte(report.ID.String())
	if err := s.publisher.Publish(ctx, s.topic, id, id); err != nil {
		s.log.Error("Publishing report request failed", "report_id", report.ID, "topic", s.topic, "error", err)
		return report, fmt.Errorf("publish report request: %w: %w", pkgerrors.ErrUnavailable, err)
	}
	s.metrics.IncReportsRequested()
	s.log.Info("Report requested", "report_id", report.ID)
	return report, nil
}

func (s *reportService) List(ctx context.Context) ([]*types.Report, error) {
	return s.repo.List(dbctx.Context{Ctx: ctx})
}

func (s *reportService) Get(ctx context.Context, id uuid.UUID) (*types.Report, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.ErrInvalidArgument
	}
	report, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, pkgerrors.ErrNotFound
	}
	return report, nil
}
