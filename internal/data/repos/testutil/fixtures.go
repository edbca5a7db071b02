package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/AliihsanMuhziroglu/phonebook-microservices/internal/domain"
)

func SeedReport(tb testing.TB, ctx context.Context, tx *gorm.DB, status types.ReportStatus, requested time.Time) *types.Report {
	tb.Helper()
	r := &types.Report{
		ID:          uuid.New(),
		RequestDate: requested.UTC(),
		Status:      status,
		UpdatedAt:   requested.UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed report: %v", err)
	}
	return r
}

func SeedReportItem(tb testing.TB, ctx context.Context, tx *gorm.DB, reportID uuid.UUID, location string, persons, phones int) *types.ReportItem {
	tb.Helper()
	it := &types.ReportItem{
		ID:          uuid.New(),
		ReportID:    reportID,
		Location:    location,
		PersonCount: persons,
		PhoneCount:  phones,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed report item: %v", err)
	}
	return it
}

func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, first, last string) *types.Person {
	tb.Helper()
	p := &types.Person{ID: uuid.New(), FirstName: first, LastName: last}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	return p
}

func SeedContactInfo(tb testing.TB, ctx context.Context, tx *gorm.DB, personID uuid.UUID, typ types.ContactType, value string) *types.ContactInfo {
	tb.Helper()
	ci := &types.ContactInfo{ID: uuid.New(), PersonID: personID, Type: typ, Value: value}
	if err := tx.WithContext(ctx).Create(ci).Error; err != nil {
		tb.Fatalf("seed contact info: %v", err)
	}
	return ci
}

func PtrString(v string) *string { return &v }
