package postgres

import (
	"context"
	"database/sql"
	"time"

	"growt/internal/domain"
)

const readingRowSelect = `SELECT r.id, r.owner_id, r.device_id, r.animal_id, a.tag, r.weight, r.recorded_at,
		a.name, a.breed, a.date_of_birth, a.sex, a.species, a.photo_url
	FROM weight_readings r
	JOIN animals a ON a.id = r.animal_id`

// AddReading inserts a weight reading and returns its id.
func (d *DB) AddReading(ctx context.Context, r domain.WeightReading) (int64, error) {
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO weight_readings(owner_id, device_id, animal_id, weight, recorded_at) VALUES($1, $2, $3, $4, $5) RETURNING id;",
		r.OwnerID, sql.NullString{String: r.DeviceID, Valid: r.DeviceID != ""}, r.AnimalID, r.Weight, r.RecordedAt.UTC(),
	).Scan(&id)
	return id, err
}

// ListReadingsForOwner returns every reading the owner has with the
// animal's current details.
func (d *DB) ListReadingsForOwner(ctx context.Context, ownerID int64) ([]domain.ReadingRow, error) {
	return d.queryRows(ctx, readingRowSelect+`
	WHERE r.owner_id = $1
	ORDER BY r.recorded_at DESC;`, ownerID)
}

// ListPublicReadings returns the readings of animals with sharing enabled
// under the given tag.
func (d *DB) ListPublicReadings(ctx context.Context, tag string) ([]domain.ReadingRow, error) {
	return d.queryRows(ctx, readingRowSelect+`
	WHERE a.is_public AND a.tag = $1
	ORDER BY r.recorded_at DESC;`, tag)
}

// ListReadingsForAnimal returns one animal's readings since the given
// instant, oldest first.
func (d *DB) ListReadingsForAnimal(ctx context.Context, ownerID int64, tag string, since time.Time) ([]domain.WeightReading, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT r.id, r.owner_id, r.device_id, r.animal_id, a.tag, r.weight, r.recorded_at
		FROM weight_readings r
		JOIN animals a ON a.id = r.animal_id
		WHERE a.owner_id = $1 AND a.tag = $2 AND r.recorded_at >= $3
		ORDER BY r.recorded_at ASC;`,
		ownerID, tag, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.WeightReading
	for rows.Next() {
		var (
			r      domain.WeightReading
			device sql.NullString
			weight sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &device, &r.AnimalID, &r.AnimalTag, &weight, &r.RecordedAt); err != nil {
			return nil, err
		}
		r.DeviceID = device.String
		if weight.Valid {
			r.Weight = &weight.Float64
		}
		r.RecordedAt = r.RecordedAt.UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) queryRows(ctx context.Context, query string, args ...any) ([]domain.ReadingRow, error) {
	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.ReadingRow
	for rows.Next() {
		var (
			row    domain.ReadingRow
			device sql.NullString
			weight sql.NullFloat64
			dob    sql.NullTime
			snap   domain.AnimalSnapshot
		)
		err := rows.Scan(&row.ID, &row.OwnerID, &device, &row.AnimalID, &row.AnimalTag, &weight, &row.RecordedAt,
			&snap.Name, &snap.Breed, &dob, &snap.Sex, &snap.Species, &snap.PhotoURL)
		if err != nil {
			return nil, err
		}
		row.DeviceID = device.String
		row.RecordedAt = row.RecordedAt.UTC()
		if weight.Valid {
			row.Weight = &weight.Float64
		}
		if dob.Valid {
			snap.DateOfBirth = dob.Time.Format("2006-01-02")
		}
		row.Animal = &snap
		out = append(out, row)
	}
	return out, rows.Err()
}
