package growth

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// TrendStatus classifies a reading against the previous reading of the
// same animal.
type TrendStatus string

// Trend statuses.
const (
	Gain   TrendStatus = "gain"
	Stable TrendStatus = "stable"
	Loss   TrendStatus = "loss"
)

// Animal is the optional animal metadata carried by a reading.
type Animal struct {
	Name        string
	Breed       string
	DateOfBirth string
	Sex         string
	Species     string
	PhotoURL    string
}

// Reading is a raw weight measurement as fetched from the store.
type Reading struct {
	ID         int64
	AnimalID   string
	Tag        string
	Weight     *float64
	RecordedAt time.Time
	Animal     *Animal
}

// Entry is a reading enriched with trend, age and life stage. Animal
// metadata is flattened onto the entry.
type Entry struct {
	ID          int64       `json:"id"`
	AnimalID    string      `json:"animalId"`
	Tag         string      `json:"tag"`
	Weight      *float64    `json:"weight"`
	RecordedAt  time.Time   `json:"recordedAt"`
	Name        string      `json:"name"`
	Breed       string      `json:"breed"`
	DateOfBirth string      `json:"dateOfBirth"`
	Sex         string      `json:"sex"`
	Species     string      `json:"species"`
	PhotoURL    string      `json:"photoUrl"`
	TrendStatus TrendStatus `json:"trendStatus"`
	Delta       *float64    `json:"delta"`
	Age         Age         `json:"age"`
	LifeStage   *LifeStage  `json:"lifeStage"`
}

// ParseRecordedAt parses a reading timestamp. Unlike dates of birth, a
// timestamp that does not parse is an error and must not be replaced by
// the current time.
func ParseRecordedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid recordedAt %q", s)
}

// Trend compares a weight with the previous one for the same animal. Both
// results are neutral when either weight is missing.
func Trend(prev, cur *float64) (TrendStatus, *float64) {
	if prev == nil || cur == nil {
		return Stable, nil
	}
	d := *cur - *prev
	switch {
	case d > 0:
		return Gain, &d
	case d < 0:
		return Loss, &d
	}
	return Stable, &d
}

// Transform enriches readings and returns them ordered by animal id, then
// by recordedAt ascending. now is the single reference instant used for
// every age in the result. The input slice is not modified.
func Transform(readings []Reading, now time.Time) []Entry {
	sorted := slices.Clone(readings)
	slices.SortStableFunc(sorted, func(a, b Reading) int {
		if c := cmp.Compare(a.AnimalID, b.AnimalID); c != 0 {
			return c
		}
		return a.RecordedAt.Compare(b.RecordedAt)
	})

	lastSeen := make(map[string]*float64)
	out := make([]Entry, 0, len(sorted))
	for _, r := range sorted {
		status, delta := Trend(lastSeen[r.AnimalID], r.Weight)

		e := Entry{
			ID:          r.ID,
			AnimalID:    r.AnimalID,
			Tag:         r.Tag,
			Weight:      r.Weight,
			RecordedAt:  r.RecordedAt,
			TrendStatus: status,
			Delta:       delta,
		}
		if a := r.Animal; a != nil {
			e.Name = a.Name
			e.Breed = a.Breed
			e.DateOfBirth = a.DateOfBirth
			e.Sex = a.Sex
			e.Species = a.Species
			e.PhotoURL = a.PhotoURL
		}
		age, ok := CalculateAge(e.DateOfBirth, now)
		e.Age = age
		e.LifeStage = ClassifyLifeStage(age, ok)
		out = append(out, e)

		// A nil weight overwrites the baseline so the next reading has
		// nothing to compare against.
		lastSeen[r.AnimalID] = r.Weight
	}
	return out
}

// NewestFirst returns entries re-sorted by recordedAt descending for
// display. Ties keep their relative order.
func NewestFirst(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return b.RecordedAt.Compare(a.RecordedAt)
	})
	return out
}
