package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"growt/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestAnimalRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	a, err := db.CreateAnimal(ctx, domain.Animal{ID: "a1", OwnerID: 1, Tag: "RF-1", Name: "Bessie"})
	if err != nil {
		t.Fatalf("CreateAnimal: %v", err)
	}
	if a.Tag != "RF-1" {
		t.Errorf("expected RF-1, got %s", a.Tag)
	}

	// Same tag for the same owner is rejected, another owner may reuse it.
	if _, err := db.CreateAnimal(ctx, domain.Animal{ID: "a2", OwnerID: 1, Tag: "RF-1"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
	if _, err := db.CreateAnimal(ctx, domain.Animal{ID: "a3", OwnerID: 2, Tag: "RF-1"}); err != nil {
		t.Errorf("other owner reusing tag: %v", err)
	}

	got, err := db.GetAnimalByTag(ctx, 1, "RF-1")
	if err != nil || got == nil || got.ID != "a1" {
		t.Fatalf("GetAnimalByTag = %v, %v", got, err)
	}

	// Other owner sees nothing
	if got, _ := db.GetAnimal(ctx, 2, "a1"); got != nil {
		t.Error("expected nil for other owner")
	}

	got.Name = "Daisy"
	if err := db.UpdateAnimal(ctx, *got); err != nil {
		t.Fatalf("UpdateAnimal: %v", err)
	}
	got, _ = db.GetAnimal(ctx, 1, "a1")
	if got.Name != "Daisy" {
		t.Errorf("expected Daisy, got %s", got.Name)
	}

	list, _ := db.ListAnimals(ctx, 1)
	if len(list) != 1 {
		t.Errorf("expected 1 animal, got %d", len(list))
	}

	ok, err := db.DeleteAnimal(ctx, 1, "a1")
	if err != nil || !ok {
		t.Fatalf("DeleteAnimal = %v, %v", ok, err)
	}
	if ok, _ := db.DeleteAnimal(ctx, 1, "a1"); ok {
		t.Error("expected second delete to report false")
	}
}

func TestDeviceRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	now := time.Now()

	_, err := db.CreateDevice(ctx, domain.Device{ID: "d1", OwnerID: 1, Serial: "SN1", Status: domain.DevicePending, CreatedAt: now})
	if err != nil {
		t.Fatalf("CreateDevice: %v", err)
	}
	if _, err := db.CreateDevice(ctx, domain.Device{ID: "d2", OwnerID: 2, Serial: "SN1"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := db.SetDeviceStatus(ctx, "d1", domain.DeviceActive, now); err != nil {
		t.Fatalf("SetDeviceStatus: %v", err)
	}
	d, _ := db.GetDeviceBySerial(ctx, "SN1")
	if d == nil || d.Status != domain.DeviceActive || d.ApprovedAt == nil {
		t.Fatalf("expected active approved device, got %+v", d)
	}

	_ = db.SetDeviceStatus(ctx, "d1", domain.DeviceInactive, now.Add(time.Hour))
	d, _ = db.GetDevice(ctx, "d1")
	if d.Status != domain.DeviceInactive {
		t.Errorf("expected inactive, got %s", d.Status)
	}
	if !d.ApprovedAt.Equal(now) {
		t.Errorf("deactivation should keep ApprovedAt, got %v", d.ApprovedAt)
	}

	list, _ := db.ListDevices(ctx, 2)
	if len(list) != 0 {
		t.Error("expected 0 devices for other owner")
	}
}

func TestReadingRepository(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	_, _ = db.CreateAnimal(ctx, domain.Animal{ID: "a1", OwnerID: 1, Tag: "RF-1", Name: "Bessie", DateOfBirth: "2023-01-15"})
	_, _ = db.CreateAnimal(ctx, domain.Animal{ID: "a2", OwnerID: 2, Tag: "RF-1", Public: true})
	_, _ = db.CreateAnimal(ctx, domain.Animal{ID: "a3", OwnerID: 1, Tag: "RF-9"})

	id, err := db.AddReading(ctx, domain.WeightReading{OwnerID: 1, AnimalID: "a1", Weight: ptr(100), RecordedAt: base})
	if err != nil {
		t.Fatalf("AddReading: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero ID")
	}
	_, _ = db.AddReading(ctx, domain.WeightReading{OwnerID: 1, AnimalID: "a1", Weight: ptr(104), RecordedAt: base.Add(24 * time.Hour)})
	_, _ = db.AddReading(ctx, domain.WeightReading{OwnerID: 1, AnimalID: "a3", RecordedAt: base.Add(48 * time.Hour)})
	_, _ = db.AddReading(ctx, domain.WeightReading{OwnerID: 2, AnimalID: "a2", Weight: ptr(50), RecordedAt: base})

	rows, err := db.ListReadingsForOwner(ctx, 1)
	if err != nil {
		t.Fatalf("ListReadingsForOwner: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].AnimalTag != "RF-9" || rows[0].Weight != nil {
		t.Errorf("expected newest row to be the empty RF-9 reading, got %+v", rows[0])
	}
	if rows[1].Animal == nil || rows[1].Animal.Name != "Bessie" || rows[1].Animal.DateOfBirth != "2023-01-15" {
		t.Errorf("expected Bessie snapshot, got %+v", rows[1].Animal)
	}

	// Only owner 2's animal is shared.
	public, _ := db.ListPublicReadings(ctx, "RF-1")
	if len(public) != 1 || public[0].OwnerID != 2 || public[0].AnimalID != "a2" {
		t.Errorf("expected 1 public row from owner 2, got %+v", public)
	}

	series, _ := db.ListReadingsForAnimal(ctx, 1, "RF-1", base.Add(time.Hour))
	if len(series) != 1 || *series[0].Weight != 104 || series[0].AnimalID != "a1" {
		t.Errorf("expected only the second reading, got %+v", series)
	}
}

func TestReadingRepository_FollowsRenamedAnimal(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	_, _ = db.CreateAnimal(ctx, domain.Animal{ID: "a1", OwnerID: 1, Tag: "RF-1", Name: "Bessie"})
	_, _ = db.AddReading(ctx, domain.WeightReading{OwnerID: 1, AnimalID: "a1", Weight: ptr(100), RecordedAt: base})

	if err := db.UpdateAnimal(ctx, domain.Animal{ID: "a1", OwnerID: 1, Tag: "RF-2", Name: "Bessie"}); err != nil {
		t.Fatalf("UpdateAnimal: %v", err)
	}

	rows, _ := db.ListReadingsForOwner(ctx, 1)
	if len(rows) != 1 || rows[0].AnimalTag != "RF-2" || rows[0].Animal == nil || rows[0].Animal.Name != "Bessie" {
		t.Errorf("expected the reading under the new tag with its snapshot, got %+v", rows)
	}
	if series, _ := db.ListReadingsForAnimal(ctx, 1, "RF-2", time.Time{}); len(series) != 1 {
		t.Errorf("expected 1 reading under the new tag, got %d", len(series))
	}
	if series, _ := db.ListReadingsForAnimal(ctx, 1, "RF-1", time.Time{}); len(series) != 0 {
		t.Errorf("expected no readings under the old tag, got %d", len(series))
	}
}

func TestReadingRepository_DeletedWithAnimal(t *testing.T) {
	db := New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	_, _ = db.CreateAnimal(ctx, domain.Animal{ID: "a1", OwnerID: 1, Tag: "RF-1"})
	_, _ = db.AddReading(ctx, domain.WeightReading{OwnerID: 1, AnimalID: "a1", Weight: ptr(100), RecordedAt: base})

	if ok, _ := db.DeleteAnimal(ctx, 1, "a1"); !ok {
		t.Fatal("expected delete to succeed")
	}
	_, _ = db.CreateAnimal(ctx, domain.Animal{ID: "a2", OwnerID: 1, Tag: "RF-1"})

	if rows, _ := db.ListReadingsForOwner(ctx, 1); len(rows) != 0 {
		t.Errorf("expected the new animal to start without history, got %+v", rows)
	}
	if series, _ := db.ListReadingsForAnimal(ctx, 1, "RF-1", time.Time{}); len(series) != 0 {
		t.Errorf("expected no readings for the reused tag, got %d", len(series))
	}
}

func TestUserRepository(t *testing.T) {
	db := New()
	ctx := context.Background()

	u, err := db.Create(ctx, "bob", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "bob" {
		t.Errorf("expected bob, got %s", u.Username)
	}

	u2, err := db.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u2 == nil || u2.ID != u.ID {
		t.Error("failed to retrieve user")
	}

	if _, err := db.Create(ctx, "bob", "hash"); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	count, _ := db.Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestSessionRepository(t *testing.T) {
	db := New()
	repo := db.NewSessionRepo()
	ctx := context.Background()

	err := repo.Create(ctx, 1, "token123", "agent", "10.0.0.1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess, err := repo.GetByToken(ctx, "token123")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if sess == nil || sess.UserAgent != "agent" {
		t.Errorf("expected session with user agent, got %+v", sess)
	}

	_ = repo.Create(ctx, 1, "old", "agent", "", time.Now().Add(-time.Minute))
	_ = repo.DeleteExpired(ctx)
	if sess, _ := repo.GetByToken(ctx, "old"); sess != nil {
		t.Error("expected expired session to be gone")
	}

	_ = repo.Delete(ctx, "token123")
	sess, _ = repo.GetByToken(ctx, "token123")
	if sess != nil {
		t.Error("expected nil (deleted)")
	}
}
