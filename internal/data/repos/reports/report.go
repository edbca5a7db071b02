package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/pkg/dbctx"
	"github.com/AliihsanMuhziroglu/phonebook-microservices/internal/platform/logger"
)

type ReportRepo interface {
	Create(dbc dbctx.Context, report *types.Report) (*types.Report, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Report, error)
	List(dbc dbctx.Context) ([]*types.Report, error)
	// ReplaceItems swaps the whole item set of a report and marks it
	// Completed in one transaction. found is false, and nothing is written,
	// when the report does not exist.
	ReplaceItems(dbc dbctx.Context, reportID uuid.UUID, items []types.ReportItem) (found bool, err error)
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{
		db:  db,
		log: baseLog.With("repo", "ReportRepo"),
	}
}

func (r *reportRepo) Create(dbc dbctx.Context, report *types.Report) (*types.Report, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}
	now := time.Now().UTC()
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.RequestDate.IsZero() {
		report.RequestDate = now
	}
	if report.Status == "" {
		report.Status = types.ReportStatusPreparing
	}
	report.UpdatedAt = now
	if err := dbc.DB(r.db).Omit(clause.Associations).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *reportRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Report, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var report types.Report
	err := dbc.DB(r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("location ASC") }).
		Where("id = ?", id).
		Limit(1).
		Find(&report).Error
	if err != nil {
		return nil, err
	}
	if report.ID == uuid.Nil {
		return nil, nil
	}
	if report.Items == nil {
		report.Items = []types.ReportItem{}
	}
	return &report, nil
}

func (r *reportRepo) List(dbc dbctx.Context) ([]*types.Report, error) {
	out := []*types.Report{}
	if err := dbc.DB(r.db).
		Order("request_date DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reportRepo) ReplaceItems(dbc dbctx.Context, reportID uuid.UUID, items []types.ReportItem) (bool, error) {
	if reportID == uuid.Nil {
		return false, nil
	}
	found := false
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		// Row lock serialises concurrent replaces of the same report; sqlite
		// drops the clause and relies on its database-level write lock.
		var report types.Report
		res := txx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", reportID).
			Limit(1).
			Find(&report)
		if res.Error != nil {
			return fmt.Errorf("lock report: %w", res.Error)
		}
		if report.ID == uuid.Nil {
			return nil
		}
		found = true

		if err := txx.Where("report_id = ?", reportID).Delete(&types.ReportItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if len(items) > 0 {
			rows := make([]types.ReportItem, 0, len(items))
			for _, it := range items {
				it.ReportID = reportID
				if it.ID == uuid.Nil {
					it.ID = uuid.New()
				}
				rows = append(rows, it)
			}
			if err := txx.Create(&rows).Error; err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}
		if err := txx.Model(&types.Report{}).
			Where("id = ?", reportID).
			Updates(map[string]interface{}{
				"status":     string(types.ReportStatusCompleted),
				"updated_at": time.Now().UTC(),
			}).Error; err != nil {
			return fmt.Errorf("complete report: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !found {
		r.log.Info("ReplaceItems: report not found, nothing written", "report_id", reportID)
	}
	return found, nil
}
