package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"growt/internal/domain"

	"github.com/google/uuid"
)

// ErrInvalidTransition is returned for a device status change the
// approval workflow does not allow.
var ErrInvalidTransition = errors.New("invalid device status transition")

var allowedTransitions = map[domain.DeviceStatus][]domain.DeviceStatus{
	domain.DevicePending:  {domain.DeviceActive},
	domain.DeviceActive:   {domain.DeviceInactive},
	domain.DeviceInactive: {domain.DeviceActive},
}

// DeviceService encapsulates device registration and approval.
type DeviceService struct {
	repo   domain.DeviceRepository
	tokens *DeviceTokens
}

// NewDeviceService creates a DeviceService.
func NewDeviceService(repo domain.DeviceRepository, tokens *DeviceTokens) *DeviceService {
	return &DeviceService{repo: repo, tokens: tokens}
}

// Register adds a device in the pending state.
func (s *DeviceService) Register(ctx context.Context, ownerID int64, serial, name string) (*domain.Device, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, fmt.Errorf("%w: serial is required", ErrInvalidInput)
	}
	existing, err := s.repo.GetDeviceBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: serial %q", ErrConflict, serial)
	}
	return s.repo.CreateDevice(ctx, domain.Device{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Serial:    serial,
		Name:      strings.TrimSpace(name),
		Status:    domain.DevicePending,
		CreatedAt: time.Now(),
	})
}

// List returns ownerID's devices.
func (s *DeviceService) List(ctx context.Context, ownerID int64) ([]domain.Device, error) {
	return s.repo.ListDevices(ctx, ownerID)
}

// Approve activates a device and returns the bearer token it must send
// with every reading. Approving again re-issues a token.
func (s *DeviceService) Approve(ctx context.Context, ownerID int64, id string) (*domain.Device, string, error) {
	d, err := s.transition(ctx, ownerID, id, domain.DeviceActive)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(d.ID, d.Serial)
	if err != nil {
		return nil, "", err
	}
	return d, token, nil
}

// Deactivate stops a device from submitting readings.
func (s *DeviceService) Deactivate(ctx context.Context, ownerID int64, id string) (*domain.Device, error) {
	return s.transition(ctx, ownerID, id, domain.DeviceInactive)
}

func (s *DeviceService) transition(ctx context.Context, ownerID int64, id string, to domain.DeviceStatus) (*domain.Device, error) {
	d, err := s.repo.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	if d.Status == to && to == domain.DeviceActive {
		return d, nil
	}
	if !canTransition(d.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
	}
	now := time.Now()
	if err := s.repo.SetDeviceStatus(ctx, d.ID, to, now); err != nil {
		return nil, err
	}
	d.Status = to
	if to == domain.DeviceActive {
		d.ApprovedAt = &now
	}
	return d, nil
}

func canTransition(from, to domain.DeviceStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
