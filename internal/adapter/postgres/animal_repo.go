package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"growt/internal/domain"

	"github.com/lib/pq"
)

const animalColumns = "id, owner_id, tag, name, breed, date_of_birth, sex, species, photo_url, photo_key, is_public, created_at"

// uniqueViolation maps a Postgres unique_violation onto domain.ErrDuplicate.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func nullDate(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (*domain.Animal, error) {
	var (
		a   domain.Animal
		dob sql.NullTime
	)
	err := row.Scan(&a.ID, &a.OwnerID, &a.Tag, &a.Name, &a.Breed, &dob, &a.Sex, &a.Species, &a.PhotoURL, &a.PhotoKey, &a.Public, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		a.DateOfBirth = dob.Time.Format("2006-01-02")
	}
	return &a, nil
}

func (d *DB) queryAnimal(ctx context.Context, query string, args ...any) (*domain.Animal, error) {
	a, err := scanAnimal(d.sql.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// CreateAnimal inserts a new animal.
func (d *DB) CreateAnimal(ctx context.Context, a domain.Animal) (*domain.Animal, error) {
	created, err := scanAnimal(d.sql.QueryRowContext(ctx,
		`INSERT INTO animals (id, owner_id, tag, name, breed, date_of_birth, sex, species, photo_url, photo_key, is_public, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING `+animalColumns,
		a.ID, a.OwnerID, a.Tag, a.Name, a.Breed, nullDate(a.DateOfBirth), a.Sex, a.Species, a.PhotoURL, a.PhotoKey, a.Public, a.CreatedAt.UTC(),
	))
	if err != nil {
		return nil, uniqueViolation(err)
	}
	return created, nil
}

// UpdateAnimal overwrites an animal's mutable fields.
func (d *DB) UpdateAnimal(ctx context.Context, a domain.Animal) error {
	_, err := d.sql.ExecContext(ctx,
		`UPDATE animals SET tag=$3, name=$4, breed=$5, date_of_birth=$6, sex=$7, species=$8, photo_url=$9, photo_key=$10, is_public=$11
		WHERE id=$1 AND owner_id=$2`,
		a.ID, a.OwnerID, a.Tag, a.Name, a.Breed, nullDate(a.DateOfBirth), a.Sex, a.Species, a.PhotoURL, a.PhotoKey, a.Public,
	)
	return uniqueViolation(err)
}

// DeleteAnimal removes an animal, scoped to its owner.
func (d *DB) DeleteAnimal(ctx context.Context, ownerID int64, id string) (bool, error) {
	res, err := d.sql.ExecContext(ctx, "DELETE FROM animals WHERE id=$1 AND owner_id=$2", id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetAnimal retrieves one of the owner's animals by id.
func (d *DB) GetAnimal(ctx context.Context, ownerID int64, id string) (*domain.Animal, error) {
	return d.queryAnimal(ctx, "SELECT "+animalColumns+" FROM animals WHERE id=$1 AND owner_id=$2", id, ownerID)
}

// GetAnimalByTag retrieves one of the owner's animals by RFID tag.
func (d *DB) GetAnimalByTag(ctx context.Context, ownerID int64, tag string) (*domain.Animal, error) {
	return d.queryAnimal(ctx, "SELECT "+animalColumns+" FROM animals WHERE tag=$1 AND owner_id=$2", tag, ownerID)
}

// ListAnimals returns the owner's animals ordered by tag.
func (d *DB) ListAnimals(ctx context.Context, ownerID int64) ([]domain.Animal, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+animalColumns+" FROM animals WHERE owner_id=$1 ORDER BY tag", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var out []domain.Animal
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
