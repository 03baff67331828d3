package app

import (
	"context"
	"strconv"
	"strings"
	"time"

	"growt/internal/domain"
	"growt/internal/growth"
)

// LogService serves the enriched weight logs behind the dashboard, the
// data table and the public sharing page.
type LogService struct {
	readings domain.ReadingRepository
	now      func() time.Time
}

// NewLogService creates a LogService.
func NewLogService(readings domain.ReadingRepository) *LogService {
	return &LogService{readings: readings, now: time.Now}
}

// Dashboard returns the owner's enriched log, newest first.
func (s *LogService) Dashboard(ctx context.Context, ownerID int64) ([]growth.Entry, error) {
	rows, err := s.readings.ListReadingsForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return growth.NewestFirst(growth.Transform(toGrowthReadings(rows), s.now())), nil
}

// PublicLog returns the enriched log of a publicly shared animal, newest
// first. Unshared or unknown tags yield ErrNotFound.
func (s *LogService) PublicLog(ctx context.Context, tag string) ([]growth.Entry, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, ErrNotFound
	}
	rows, err := s.readings.ListPublicReadings(ctx, tag)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return growth.NewestFirst(growth.Transform(toGrowthReadings(rows), s.now())), nil
}

// Stats computes the dashboard counters. The current month is read from
// the clock at call time, independently of the log's age reference.
func (s *LogService) Stats(ctx context.Context, ownerID int64) (growth.Stats, error) {
	rows, err := s.readings.ListReadingsForOwner(ctx, ownerID)
	if err != nil {
		return growth.Stats{}, err
	}
	entries := growth.Transform(toGrowthReadings(rows), s.now())
	return growth.Summarize(entries, s.now()), nil
}

// animalKey identifies the animal a reading belongs to. Tags are only
// unique per owner, so a bare tag never serves as the key.
func animalKey(r domain.WeightReading) string {
	if r.AnimalID != "" {
		return r.AnimalID
	}
	return strconv.FormatInt(r.OwnerID, 10) + ":" + r.AnimalTag
}

func toGrowthReadings(rows []domain.ReadingRow) []growth.Reading {
	out := make([]growth.Reading, 0, len(rows))
	for _, r := range rows {
		g := growth.Reading{
			ID:         r.ID,
			AnimalID:   animalKey(r.WeightReading),
			Tag:        r.AnimalTag,
			Weight:     r.Weight,
			RecordedAt: r.RecordedAt,
		}
		if a := r.Animal; a != nil {
			g.Animal = &growth.Animal{
				Name:        a.Name,
				Breed:       a.Breed,
				DateOfBirth: a.DateOfBirth,
				Sex:         a.Sex,
				Species:     a.Species,
				PhotoURL:    a.PhotoURL,
			}
		}
		out = append(out, g)
	}
	return out
}
