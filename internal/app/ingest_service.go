package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"growt/internal/domain"
	"growt/internal/growth"
)

var (
	// ErrUnknownDevice indicates the submission names no registered device.
	ErrUnknownDevice = errors.New("unknown device")
	// ErrDeviceInactive indicates the device is not approved or was deactivated.
	ErrDeviceInactive = errors.New("device is not active")
	// ErrUnknownAnimal indicates the tag is not registered to the device owner.
	ErrUnknownAnimal = errors.New("unknown animal tag")
)

// IngestRequest is one reading as submitted by a device. Either DeviceID or
// DeviceSerial must be set. RecordedAt is optional.
type IngestRequest struct {
	AnimalTag    string   `json:"animalTag"`
	DeviceID     string   `json:"deviceId"`
	DeviceSerial string   `json:"deviceSerial"`
	Weight       *float64 `json:"weight"`
	RecordedAt   string   `json:"recordedAt"`
}

// IngestService validates device submissions and stores them as readings.
type IngestService struct {
	devices  domain.DeviceRepository
	animals  domain.AnimalRepository
	readings domain.ReadingRepository
	tokens   *DeviceTokens
	now      func() time.Time
}

// NewIngestService creates an IngestService.
func NewIngestService(devices domain.DeviceRepository, animals domain.AnimalRepository, readings domain.ReadingRepository, tokens *DeviceTokens) *IngestService {
	return &IngestService{devices: devices, animals: animals, readings: readings, tokens: tokens, now: time.Now}
}

// Submit authenticates the bearer token, checks the device and animal and
// inserts the reading.
func (s *IngestService) Submit(ctx context.Context, bearer string, req IngestRequest) (*domain.WeightReading, error) {
	tokenDeviceID, err := s.tokens.Verify(bearer)
	if err != nil {
		return nil, err
	}

	recordedAt, err := s.validate(&req)
	if err != nil {
		return nil, err
	}

	device, err := s.resolveDevice(ctx, req)
	if err != nil {
		return nil, err
	}
	if !ConstantTimeCompare(device.ID, tokenDeviceID) {
		return nil, ErrInvalidDeviceToken
	}
	if device.Status != domain.DeviceActive {
		return nil, ErrDeviceInactive
	}

	animal, err := s.animals.GetAnimalByTag(ctx, device.OwnerID, req.AnimalTag)
	if err != nil {
		return nil, err
	}
	if animal == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnimal, req.AnimalTag)
	}

	r := domain.WeightReading{
		OwnerID:    device.OwnerID,
		DeviceID:   device.ID,
		AnimalID:   animal.ID,
		AnimalTag:  animal.Tag,
		Weight:     req.Weight,
		RecordedAt: recordedAt.UTC(),
	}
	id, err := s.readings.AddReading(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("store reading: %w", err)
	}
	r.ID = id
	return &r, nil
}

func (s *IngestService) validate(req *IngestRequest) (time.Time, error) {
	req.AnimalTag = strings.TrimSpace(req.AnimalTag)
	req.DeviceID = strings.TrimSpace(req.DeviceID)
	req.DeviceSerial = strings.TrimSpace(req.DeviceSerial)

	if req.AnimalTag == "" {
		return time.Time{}, fmt.Errorf("%w: animalTag is required", ErrInvalidInput)
	}
	if req.DeviceID == "" && req.DeviceSerial == "" {
		return time.Time{}, fmt.Errorf("%w: deviceId or deviceSerial is required", ErrInvalidInput)
	}
	if req.Weight == nil || *req.Weight <= 0 {
		return time.Time{}, fmt.Errorf("%w: weight must be > 0", ErrInvalidInput)
	}
	if req.RecordedAt == "" {
		return s.now(), nil
	}
	at, err := growth.ParseRecordedAt(req.RecordedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return at, nil
}

func (s *IngestService) resolveDevice(ctx context.Context, req IngestRequest) (*domain.Device, error) {
	var (
		d   *domain.Device
		err error
	)
	if req.DeviceID != "" {
		d, err = s.devices.GetDevice(ctx, req.DeviceID)
	} else {
		d, err = s.devices.GetDeviceBySerial(ctx, req.DeviceSerial)
	}
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrUnknownDevice
	}
	if req.DeviceID != "" && req.DeviceSerial != "" && d.Serial != req.DeviceSerial {
		return nil, fmt.Errorf("%w: deviceId and deviceSerial disagree", ErrInvalidInput)
	}
	return d, nil
}
