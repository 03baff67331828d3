package domain

import (
	"context"
	"time"
)

// WeightReading is one stored measurement. Weight is nil when the device
// reported nothing usable. AnimalID links the reading to its animal;
// AnimalTag is the animal's current tag when read back.
type WeightReading struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"ownerId"`
	DeviceID   string    `json:"deviceId"`
	AnimalID   string    `json:"animalId"`
	AnimalTag  string    `json:"animalTag"`
	Weight     *float64  `json:"weight"`
	RecordedAt time.Time `json:"recordedAt"`
}

// AnimalSnapshot is the animal metadata joined onto a reading at read time.
type AnimalSnapshot struct {
	Name        string
	Breed       string
	DateOfBirth string
	Sex         string
	Species     string
	PhotoURL    string
}

// ReadingRow is a reading as fetched for display, with the optional
// animal snapshot.
type ReadingRow struct {
	WeightReading
	Animal *AnimalSnapshot
}

// ReadingRepository is the port for weight reading persistence. Readings
// follow their animal: they are listed under its current tag and removed
// when it is deleted.
type ReadingRepository interface {
	AddReading(ctx context.Context, r WeightReading) (int64, error)
	ListReadingsForOwner(ctx context.Context, ownerID int64) ([]ReadingRow, error)
	ListPublicReadings(ctx context.Context, tag string) ([]ReadingRow, error)
	ListReadingsForAnimal(ctx context.Context, ownerID int64, tag string, since time.Time) ([]WeightReading, error)
}
