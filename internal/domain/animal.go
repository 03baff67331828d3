package domain

import (
	"context"
	"io"
	"time"
)

// Animal is a registered head of livestock. Tag is the RFID code devices
// report and is unique per owner.
type Animal struct {
	ID          string    `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	Tag         string    `json:"tag"`
	Name        string    `json:"name"`
	Breed       string    `json:"breed"`
	DateOfBirth string    `json:"dateOfBirth"`
	Sex         string    `json:"sex"`
	Species     string    `json:"species"`
	PhotoURL    string    `json:"photoUrl"`
	PhotoKey    string    `json:"-"`
	Public      bool      `json:"public"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnimalRepository is the port for animal persistence. Lookups return
// nil, nil when nothing matches.
type AnimalRepository interface {
	CreateAnimal(ctx context.Context, a Animal) (*Animal, error)
	UpdateAnimal(ctx context.Context, a Animal) error
	DeleteAnimal(ctx context.Context, ownerID int64, id string) (bool, error)
	GetAnimal(ctx context.Context, ownerID int64, id string) (*Animal, error)
	GetAnimalByTag(ctx context.Context, ownerID int64, tag string) (*Animal, error)
	ListAnimals(ctx context.Context, ownerID int64) ([]Animal, error)
}

// PhotoStore is the port for the object store holding animal photos.
type PhotoStore interface {
	PutPhoto(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	DeletePhoto(ctx context.Context, key string) error
}
