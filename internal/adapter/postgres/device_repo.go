package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"growt/internal/domain"
)

const deviceColumns = "id, owner_id, serial, name, status, created_at, approved_at"

func scanDevice(row rowScanner) (*domain.Device, error) {
	var (
		dev      domain.Device
		approved sql.NullTime
	)
	if err := row.Scan(&dev.ID, &dev.OwnerID, &dev.Serial, &dev.Name, &dev.Status, &dev.CreatedAt, &approved); err != nil {
		return nil, err
	}
	if approved.Valid {
		dev.ApprovedAt = &approved.Time
	}
	return &dev, nil
}

func (d *DB) queryDevice(ctx context.Context, query string, args ...any) (*domain.Device, error) {
	dev, err := scanDevice(d.sql.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return dev, err
}

// CreateDevice inserts a new device.
func (d *DB) CreateDevice(ctx context.Context, dev domain.Device) (*domain.Device, error) {
	created, err := scanDevice(d.sql.QueryRowContext(ctx,
		"INSERT INTO devices (id, owner_id, serial, name, status, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING "+deviceColumns,
		dev.ID, dev.OwnerID, dev.Serial, dev.Name, dev.Status, dev.CreatedAt.UTC(),
	))
	if err != nil {
		return nil, uniqueViolation(err)
	}
	return created, nil
}

// GetDevice retrieves a device by id regardless of owner. The ingestion
// path has no user session to scope by.
func (d *DB) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	return d.queryDevice(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id=$1", id)
}

// GetDeviceBySerial retrieves a device by its hardware serial.
func (d *DB) GetDeviceBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	return d.queryDevice(ctx, "SELECT "+deviceColumns+" FROM devices WHERE serial=$1", serial)
}

// ListDevices returns the owner's devices, newest first.
func (d *DB) ListDevices(ctx context.Context, ownerID int64) ([]domain.Device, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE owner_id=$1 ORDER BY created_at DESC", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *dev)
	}
	return out, rows.Err()
}

// SetDeviceStatus moves a device to status. Activation stamps approved_at.
func (d *DB) SetDeviceStatus(ctx context.Context, id string, status domain.DeviceStatus, at time.Time) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE devices SET status=$2, approved_at = CASE WHEN $2 = 'active' THEN $3 ELSE approved_at END WHERE id=$1",
		id, status, at.UTC())
	return err
}
