package app

import (
	"context"
	"strings"
	"time"

	"growt/internal/domain"
	"growt/internal/growth"
)

// MaxChartDays bounds the chart window.
const MaxChartDays = 366

// ChartsService encapsulates trend chart retrieval use cases.
type ChartsService struct {
	readings domain.ReadingRepository
	now      func() time.Time
}

// NewChartsService creates a ChartsService backed by the given repository.
func NewChartsService(readings domain.ReadingRepository) *ChartsService {
	return &ChartsService{readings: readings, now: time.Now}
}

// TrendPoint is one point of an animal's weight chart. Weight is nil for
// readings the device could not measure, which charts draw as gaps.
type TrendPoint struct {
	RecordedAt time.Time          `json:"recordedAt"`
	Weight     *float64           `json:"weight"`
	Unit       string             `json:"unit"`
	Trend      growth.TrendStatus `json:"trend"`
}

// AnimalTrend returns the readings of one animal over the last days days,
// oldest first, with weights converted to unit.
func (s *ChartsService) AnimalTrend(ctx context.Context, ownerID int64, tag string, days int, unit string) ([]TrendPoint, error) {
	if !domain.ValidUnit(unit) {
		return nil, domain.ErrBadUnit
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrNotFound
	}
	if days <= 0 || days > MaxChartDays {
		days = MaxChartDays
	}

	now := s.now()
	since := now.AddDate(0, 0, -days)
	rows, err := s.readings.ListReadingsForAnimal(ctx, ownerID, tag, since)
	if err != nil {
		return nil, err
	}

	in := make([]growth.Reading, 0, len(rows))
	for _, r := range rows {
		in = append(in, growth.Reading{ID: r.ID, AnimalID: animalKey(r), Tag: r.AnimalTag, Weight: r.Weight, RecordedAt: r.RecordedAt})
	}
	entries := growth.Transform(in, now)

	points := make([]TrendPoint, 0, len(entries))
	for _, e := range entries {
		p := TrendPoint{RecordedAt: e.RecordedAt, Unit: unit, Trend: e.TrendStatus}
		if e.Weight != nil {
			v := domain.ConvertWeight(*e.Weight, domain.UnitKg, unit)
			p.Weight = &v
		}
		points = append(points, p)
	}
	return points, nil
}
