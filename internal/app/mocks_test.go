package app_test

import (
	"context"
	"io"
	"time"

	"growt/internal/domain"
)

type mockAnimalRepo struct {
	createFn func(ctx context.Context, a domain.Animal) (*domain.Animal, error)
	updateFn func(ctx context.Context, a domain.Animal) error
	deleteFn func(ctx context.Context, ownerID int64, id string) (bool, error)
	getFn    func(ctx context.Context, ownerID int64, id string) (*domain.Animal, error)
	byTagFn  func(ctx context.Context, ownerID int64, tag string) (*domain.Animal, error)
	listFn   func(ctx context.Context, ownerID int64) ([]domain.Animal, error)
}

func (m *mockAnimalRepo) CreateAnimal(ctx context.Context, a domain.Animal) (*domain.Animal, error) {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return &a, nil
}

func (m *mockAnimalRepo) UpdateAnimal(ctx context.Context, a domain.Animal) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, a)
	}
	return nil
}

func (m *mockAnimalRepo) DeleteAnimal(ctx context.Context, ownerID int64, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return true, nil
}

func (m *mockAnimalRepo) GetAnimal(ctx context.Context, ownerID int64, id string) (*domain.Animal, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, id)
	}
	return nil, nil
}

func (m *mockAnimalRepo) GetAnimalByTag(ctx context.Context, ownerID int64, tag string) (*domain.Animal, error) {
	if m.byTagFn != nil {
		return m.byTagFn(ctx, ownerID, tag)
	}
	return nil, nil
}

func (m *mockAnimalRepo) ListAnimals(ctx context.Context, ownerID int64) ([]domain.Animal, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

type mockDeviceRepo struct {
	createFn   func(ctx context.Context, d domain.Device) (*domain.Device, error)
	getFn      func(ctx context.Context, id string) (*domain.Device, error)
	bySerialFn func(ctx context.Context, serial string) (*domain.Device, error)
	listFn     func(ctx context.Context, ownerID int64) ([]domain.Device, error)
	setFn      func(ctx context.Context, id string, status domain.DeviceStatus, at time.Time) error
}

func (m *mockDeviceRepo) CreateDevice(ctx context.Context, d domain.Device) (*domain.Device, error) {
	if m.createFn != nil {
		return m.createFn(ctx, d)
	}
	return &d, nil
}

func (m *mockDeviceRepo) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockDeviceRepo) GetDeviceBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	if m.bySerialFn != nil {
		return m.bySerialFn(ctx, serial)
	}
	return nil, nil
}

func (m *mockDeviceRepo) ListDevices(ctx context.Context, ownerID int64) ([]domain.Device, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockDeviceRepo) SetDeviceStatus(ctx context.Context, id string, status domain.DeviceStatus, at time.Time) error {
	if m.setFn != nil {
		return m.setFn(ctx, id, status, at)
	}
	return nil
}

type mockReadingRepo struct {
	addFn    func(ctx context.Context, r domain.WeightReading) (int64, error)
	ownerFn  func(ctx context.Context, ownerID int64) ([]domain.ReadingRow, error)
	publicFn func(ctx context.Context, tag string) ([]domain.ReadingRow, error)
	animalFn func(ctx context.Context, ownerID int64, tag string, since time.Time) ([]domain.WeightReading, error)
}

func (m *mockReadingRepo) AddReading(ctx context.Context, r domain.WeightReading) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, r)
	}
	return 1, nil
}

func (m *mockReadingRepo) ListReadingsForOwner(ctx context.Context, ownerID int64) ([]domain.ReadingRow, error) {
	if m.ownerFn != nil {
		return m.ownerFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockReadingRepo) ListPublicReadings(ctx context.Context, tag string) ([]domain.ReadingRow, error) {
	if m.publicFn != nil {
		return m.publicFn(ctx, tag)
	}
	return nil, nil
}

func (m *mockReadingRepo) ListReadingsForAnimal(ctx context.Context, ownerID int64, tag string, since time.Time) ([]domain.WeightReading, error) {
	if m.animalFn != nil {
		return m.animalFn(ctx, ownerID, tag, since)
	}
	return nil, nil
}

type mockPhotoStore struct {
	putFn   func(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error)
	deleted []string
}

func (m *mockPhotoStore) PutPhoto(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	if m.putFn != nil {
		return m.putFn(ctx, key, contentType, r, size)
	}
	return "https://photos.example/" + key, nil
}

func (m *mockPhotoStore) DeletePhoto(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}

type mockMailer struct {
	sent []domain.ContactMessage
	err  error
}

func (m *mockMailer) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func kg(v float64) *float64 { return &v }
