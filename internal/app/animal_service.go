package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"growt/internal/domain"

	"github.com/google/uuid"
)

// MaxPhotoBytes caps animal photo uploads.
const MaxPhotoBytes = 5 << 20

// AnimalInput carries the editable animal fields.
type AnimalInput struct {
	Tag         string `json:"tag"`
	Name        string `json:"name"`
	Breed       string `json:"breed"`
	DateOfBirth string `json:"dateOfBirth"`
	Sex         string `json:"sex"`
	Species     string `json:"species"`
}

// AnimalService encapsulates animal registry use cases.
type AnimalService struct {
	repo   domain.AnimalRepository
	photos domain.PhotoStore
}

// NewAnimalService creates an AnimalService. photos may be nil, in which
// case uploads are refused.
func NewAnimalService(repo domain.AnimalRepository, photos domain.PhotoStore) *AnimalService {
	return &AnimalService{repo: repo, photos: photos}
}

func (in *AnimalInput) normalize() error {
	in.Tag = strings.TrimSpace(in.Tag)
	in.Name = strings.TrimSpace(in.Name)
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Sex = strings.ToLower(strings.TrimSpace(in.Sex))
	if in.Tag == "" {
		return fmt.Errorf("%w: tag is required", ErrInvalidInput)
	}
	if in.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", in.DateOfBirth)
		if err != nil {
			return fmt.Errorf("%w: dateOfBirth must be YYYY-MM-DD", ErrInvalidInput)
		}
		if dob.After(time.Now()) {
			return fmt.Errorf("%w: dateOfBirth is in the future", ErrInvalidInput)
		}
	}
	switch in.Sex {
	case "", "male", "female":
	default:
		return fmt.Errorf("%w: sex must be \"male\" or \"female\"", ErrInvalidInput)
	}
	return nil
}

// Create registers a new animal for ownerID.
func (s *AnimalService) Create(ctx context.Context, ownerID int64, in AnimalInput) (*domain.Animal, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetAnimalByTag(ctx, ownerID, in.Tag)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: tag %q", ErrConflict, in.Tag)
	}
	return s.repo.CreateAnimal(ctx, domain.Animal{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Tag:         in.Tag,
		Name:        in.Name,
		Breed:       in.Breed,
		DateOfBirth: in.DateOfBirth,
		Sex:         in.Sex,
		Species:     in.Species,
		CreatedAt:   time.Now(),
	})
}

// Get returns one of ownerID's animals.
func (s *AnimalService) Get(ctx context.Context, ownerID int64, id string) (*domain.Animal, error) {
	a, err := s.repo.GetAnimal(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// List returns all of ownerID's animals.
func (s *AnimalService) List(ctx context.Context, ownerID int64) ([]domain.Animal, error) {
	return s.repo.ListAnimals(ctx, ownerID)
}

// Update replaces the editable fields of an animal. Changing the tag to
// one already in use is a conflict.
func (s *AnimalService) Update(ctx context.Context, ownerID int64, id string, in AnimalInput) (*domain.Animal, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if in.Tag != a.Tag {
		other, err := s.repo.GetAnimalByTag(ctx, ownerID, in.Tag)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, fmt.Errorf("%w: tag %q", ErrConflict, in.Tag)
		}
	}
	a.Tag, a.Name, a.Breed = in.Tag, in.Name, in.Breed
	a.DateOfBirth, a.Sex, a.Species = in.DateOfBirth, in.Sex, in.Species
	if err := s.repo.UpdateAnimal(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// SetPublic toggles whether the animal's log is visible on the public
// sharing page.
func (s *AnimalService) SetPublic(ctx context.Context, ownerID int64, id string, public bool) (*domain.Animal, error) {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	a.Public = public
	if err := s.repo.UpdateAnimal(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes an animal and its photo. Its readings go with it.
func (s *AnimalService) Delete(ctx context.Context, ownerID int64, id string) error {
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.DeleteAnimal(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	if a.PhotoKey != "" && s.photos != nil {
		_ = s.photos.DeletePhoto(ctx, a.PhotoKey)
	}
	return nil
}

// UploadPhoto stores a new photo for the animal and replaces the old one.
func (s *AnimalService) UploadPhoto(ctx context.Context, ownerID int64, id, filename, contentType string, r io.Reader, size int64) (*domain.Animal, error) {
	if s.photos == nil {
		return nil, fmt.Errorf("%w: photo storage is not configured", ErrInvalidInput)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: photo must be an image", ErrInvalidInput)
	}
	if size <= 0 || size > MaxPhotoBytes {
		return nil, fmt.Errorf("%w: photo must be between 1 byte and %d bytes", ErrInvalidInput, MaxPhotoBytes)
	}
	a, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	key := path.Join("animals", a.ID, uuid.NewString()+strings.ToLower(path.Ext(filename)))
	url, err := s.photos.PutPhoto(ctx, key, contentType, r, size)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	oldKey := a.PhotoKey
	a.PhotoURL, a.PhotoKey = url, key
	if err := s.repo.UpdateAnimal(ctx, *a); err != nil {
		_ = s.photos.DeletePhoto(ctx, key)
		return nil, err
	}
	if oldKey != "" {
		_ = s.photos.DeletePhoto(ctx, oldKey)
	}
	return a, nil
}
