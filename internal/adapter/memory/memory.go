// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"growt/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	sessions map[string]*domain.Session
	animals  map[string]domain.Animal
	devices  map[string]domain.Device
	readings []domain.WeightReading

	userIDCounter    int64
	readingIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
		animals:  make(map[string]domain.Animal),
		devices:  make(map[string]domain.Device),
	}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.AnimalRepository = (*DB)(nil)
var _ domain.DeviceRepository = (*DB)(nil)
var _ domain.ReadingRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- AnimalRepository ---

// CreateAnimal stores a new animal. Tags are unique per owner.
func (db *DB) CreateAnimal(ctx context.Context, a domain.Animal) (*domain.Animal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.animals[a.ID]; ok {
		return nil, fmt.Errorf("%w: animal %s", domain.ErrDuplicate, a.ID)
	}
	if db.findTag(a.OwnerID, a.Tag, "") {
		return nil, fmt.Errorf("%w: tag %q", domain.ErrDuplicate, a.Tag)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	db.animals[a.ID] = a
	return &a, nil
}

// UpdateAnimal replaces a stored animal. Unknown ids are ignored.
func (db *DB) UpdateAnimal(ctx context.Context, a domain.Animal) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur, ok := db.animals[a.ID]
	if !ok || cur.OwnerID != a.OwnerID {
		return nil
	}
	if db.findTag(a.OwnerID, a.Tag, a.ID) {
		return fmt.Errorf("%w: tag %q", domain.ErrDuplicate, a.Tag)
	}
	a.CreatedAt = cur.CreatedAt
	db.animals[a.ID] = a
	return nil
}

// DeleteAnimal removes an animal owned by ownerID along with its readings.
func (db *DB) DeleteAnimal(ctx context.Context, ownerID int64, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.animals[id]
	if !ok || a.OwnerID != ownerID {
		return false, nil
	}
	delete(db.animals, id)
	db.readings = slices.DeleteFunc(db.readings, func(r domain.WeightReading) bool { return r.AnimalID == id })
	return true, nil
}

// GetAnimal retrieves an animal by id.
func (db *DB) GetAnimal(ctx context.Context, ownerID int64, id string) (*domain.Animal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.animals[id]
	if !ok || a.OwnerID != ownerID {
		return nil, nil
	}
	return &a, nil
}

// GetAnimalByTag retrieves an animal by RFID tag.
func (db *DB) GetAnimalByTag(ctx context.Context, ownerID int64, tag string) (*domain.Animal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a, ok := db.animalByTag(ownerID, tag); ok {
		return &a, nil
	}
	return nil, nil
}

// ListAnimals lists the owner's animals ordered by tag.
func (db *DB) ListAnimals(ctx context.Context, ownerID int64) ([]domain.Animal, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Animal
	for _, a := range db.animals {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.Animal) int { return cmp.Compare(a.Tag, b.Tag) })
	return out, nil
}

func (db *DB) animalByTag(ownerID int64, tag string) (domain.Animal, bool) {
	for _, a := range db.animals {
		if a.OwnerID == ownerID && a.Tag == tag {
			return a, true
		}
	}
	return domain.Animal{}, false
}

func (db *DB) findTag(ownerID int64, tag, exceptID string) bool {
	a, ok := db.animalByTag(ownerID, tag)
	return ok && a.ID != exceptID
}

// --- DeviceRepository ---

// CreateDevice stores a new device. Serials are globally unique.
func (db *DB) CreateDevice(ctx context.Context, d domain.Device) (*domain.Device, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.devices {
		if existing.Serial == d.Serial {
			return nil, fmt.Errorf("%w: serial %q", domain.ErrDuplicate, d.Serial)
		}
	}
	d.CreatedAt = d.CreatedAt.UTC()
	db.devices[d.ID] = d
	return &d, nil
}

// GetDevice retrieves a device by id.
func (db *DB) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if d, ok := db.devices[id]; ok {
		return &d, nil
	}
	return nil, nil
}

// GetDeviceBySerial retrieves a device by serial.
func (db *DB) GetDeviceBySerial(ctx context.Context, serial string) (*domain.Device, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, d := range db.devices {
		if d.Serial == serial {
			return &d, nil
		}
	}
	return nil, nil
}

// ListDevices lists the owner's devices, newest first.
func (db *DB) ListDevices(ctx context.Context, ownerID int64) ([]domain.Device, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Device
	for _, d := range db.devices {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b domain.Device) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

// SetDeviceStatus updates a device's status. Activation stamps ApprovedAt.
func (db *DB) SetDeviceStatus(ctx context.Context, id string, status domain.DeviceStatus, at time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	d, ok := db.devices[id]
	if !ok {
		return nil
	}
	d.Status = status
	if status == domain.DeviceActive {
		at := at.UTC()
		d.ApprovedAt = &at
	}
	db.devices[id] = d
	return nil
}

// --- ReadingRepository ---

// AddReading stores a weight reading.
func (db *DB) AddReading(ctx context.Context, r domain.WeightReading) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.readingIDCounter++
	r.ID = db.readingIDCounter
	r.RecordedAt = r.RecordedAt.UTC()
	if r.Weight != nil {
		w := *r.Weight
		r.Weight = &w
	}
	db.readings = append(db.readings, r)
	return r.ID, nil
}

// ListReadingsForOwner lists the owner's readings, newest first, with the
// animal's current details.
func (db *DB) ListReadingsForOwner(ctx context.Context, ownerID int64) ([]domain.ReadingRow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.rows(func(r domain.WeightReading, a *domain.Animal) bool {
		return r.OwnerID == ownerID
	}), nil
}

// ListPublicReadings lists readings for shared animals with the given tag.
func (db *DB) ListPublicReadings(ctx context.Context, tag string) ([]domain.ReadingRow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.rows(func(r domain.WeightReading, a *domain.Animal) bool {
		return a.Tag == tag && a.Public
	}), nil
}

// ListReadingsForAnimal lists one animal's readings since the given time,
// oldest first.
func (db *DB) ListReadingsForAnimal(ctx context.Context, ownerID int64, tag string, since time.Time) ([]domain.WeightReading, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.animalByTag(ownerID, tag)
	if !ok {
		return nil, nil
	}
	var out []domain.WeightReading
	for _, r := range db.readings {
		if r.AnimalID == a.ID && !r.RecordedAt.Before(since) {
			r.AnimalTag = a.Tag
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.WeightReading) int { return a.RecordedAt.Compare(b.RecordedAt) })
	return out, nil
}

func (db *DB) rows(keep func(domain.WeightReading, *domain.Animal) bool) []domain.ReadingRow {
	var out []domain.ReadingRow
	for _, r := range db.readings {
		animal, ok := db.animals[r.AnimalID]
		if !ok || !keep(r, &animal) {
			continue
		}
		r.AnimalTag = animal.Tag
		out = append(out, domain.ReadingRow{
			WeightReading: r,
			Animal: &domain.AnimalSnapshot{
				Name:        animal.Name,
				Breed:       animal.Breed,
				DateOfBirth: animal.DateOfBirth,
				Sex:         animal.Sex,
				Species:     animal.Species,
				PhotoURL:    animal.PhotoURL,
			},
		})
	}
	slices.SortStableFunc(out, func(a, b domain.ReadingRow) int { return b.RecordedAt.Compare(a.RecordedAt) })
	return out
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, fmt.Errorf("%w: user %q", domain.ErrDuplicate, username)
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
