package domain

import (
	"context"
	"time"
)

// DeviceStatus is the approval state of a weighing device.
type DeviceStatus string

// Device statuses.
const (
	DevicePending  DeviceStatus = "pending"
	DeviceActive   DeviceStatus = "active"
	DeviceInactive DeviceStatus = "inactive"
)

// Device is an IoT scale that posts weight readings.
type Device struct {
	ID         string       `json:"id"`
	OwnerID    int64        `json:"ownerId"`
	Serial     string       `json:"serial"`
	Name       string       `json:"name"`
	Status     DeviceStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	ApprovedAt *time.Time   `json:"approvedAt"`
}

// DeviceRepository is the port for device persistence. Lookups return
// nil, nil when nothing matches.
type DeviceRepository interface {
	CreateDevice(ctx context.Context, d Device) (*Device, error)
	GetDevice(ctx context.Context, id string) (*Device, error)
	GetDeviceBySerial(ctx context.Context, serial string) (*Device, error)
	ListDevices(ctx context.Context, ownerID int64) ([]Device, error)
	SetDeviceStatus(ctx context.Context, id string, status DeviceStatus, at time.Time) error
}
