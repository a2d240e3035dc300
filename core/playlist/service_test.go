package playlist

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"melodex/db"
	"melodex/model"
	"melodex/repository"

	_ "github.com/mattn/go-sqlite3"
)

type fixture struct {
	svc     *Service
	catalog repository.CatalogRepository
	u1, u2  int64
	track   *model.Track
}

func setupService(t *testing.T) *fixture {
	t.Helper()

	conn, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	conn.SetMaxOpenConns(1)
	if err := db.Init(conn, "sqlite3"); err != nil {
		conn.Close()
		t.Fatalf("failed to initialize schema: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ctx := context.Background()
	users := repository.NewUserRepository(conn)
	catalogRepo := repository.NewCatalogRepository(conn)
	playlists := repository.NewPlaylistRepository(conn)

	u1, err := users.CreateUser(ctx, &model.User{Email: "u1@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("failed to create u1: %v", err)
	}
	u2, err := users.CreateUser(ctx, &model.User{Email: "u2@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("failed to create u2: %v", err)
	}
	track, err := catalogRepo.CreateTrack(ctx, "Neon Tide", 214, "https://example.com/p.mp3", "Glass Harbor", "City Lights")
	if err != nil {
		t.Fatalf("failed to create track: %v", err)
	}

	return &fixture{
		svc:     NewService(playlists, catalogRepo),
		catalog: catalogRepo,
		u1:      u1,
		u2:      u2,
		track:   track,
	}
}

// TestPlaylistLifecycle walks a playlist from creation through add/remove to
// deletion.
func TestPlaylistLifecycle(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	created, err := f.svc.Create(ctx, f.u1, "Road Trip")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Name != "Road Trip" || created.UserID != f.u1 {
		t.Errorf("unexpected playlist: %+v", created)
	}
	if len(created.Tracks) != 0 {
		t.Errorf("new playlist should be empty, got %d tracks", len(created.Tracks))
	}

	after, err := f.svc.AddTrack(ctx, f.u1, created.ID, f.track.ID)
	if err != nil {
		t.Fatalf("AddTrack failed: %v", err)
	}
	if len(after.Tracks) != 1 || after.Tracks[0].ID != f.track.ID {
		t.Errorf("expected exactly the added track, got %+v", after.Tracks)
	}

	// Adding the same track again must not duplicate it.
	again, err := f.svc.AddTrack(ctx, f.u1, created.ID, f.track.ID)
	if err != nil {
		t.Fatalf("repeat AddTrack failed: %v", err)
	}
	if len(again.Tracks) != 1 {
		t.Errorf("expected 1 track after repeat add, got %d", len(again.Tracks))
	}

	removed, err := f.svc.RemoveTrack(ctx, f.u1, created.ID, f.track.ID)
	if err != nil {
		t.Fatalf("RemoveTrack failed: %v", err)
	}
	if len(removed.Tracks) != 0 {
		t.Errorf("expected empty playlist after removal, got %+v", removed.Tracks)
	}

	if err := f.svc.Delete(ctx, f.u1, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, created.ID); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound after delete, got %v", err)
	}
}

func TestRemoveAbsentTrackIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	created, err := f.svc.Create(ctx, f.u1, "Quiet Hours")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	after, err := f.svc.RemoveTrack(ctx, f.u1, created.ID, f.track.ID)
	if err != nil {
		t.Fatalf("RemoveTrack of absent pair should not error: %v", err)
	}
	if len(after.Tracks) != 0 {
		t.Errorf("playlist state should be unchanged, got %+v", after.Tracks)
	}
}

// TestExistenceBeforeOwnership verifies that a missing playlist reports
// not-found even for callers who would be forbidden on an existing one.
func TestExistenceBeforeOwnership(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	created, err := f.svc.Create(ctx, f.u1, "Owned")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := f.svc.Rename(ctx, f.u2, 9999, "Stolen"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound for missing playlist, got %v", err)
	}
	if _, err := f.svc.Rename(ctx, f.u2, created.ID, "Stolen"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner for foreign playlist, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.u2, created.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner on delete, got %v", err)
	}
	if _, err := f.svc.AddTrack(ctx, f.u2, created.ID, f.track.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner on add, got %v", err)
	}

	// Playlist must be untouched after all rejected mutations.
	current, err := f.svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if current.Name != "Owned" || len(current.Tracks) != 0 {
		t.Errorf("playlist mutated by rejected operations: %+v", current)
	}
}

// TestTrackResolvedAfterOwnership verifies the track lookup happens only once
// the caller is confirmed as owner.
func TestTrackResolvedAfterOwnership(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	created, err := f.svc.Create(ctx, f.u1, "Owned")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := f.svc.AddTrack(ctx, f.u1, created.ID, 9999); !errors.Is(err, ErrTrackNotFound) {
		t.Errorf("expected ErrTrackNotFound for owner with missing track, got %v", err)
	}
	// A non-owner with a missing track still sees the ownership failure.
	if _, err := f.svc.AddTrack(ctx, f.u2, created.ID, 9999); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner before track resolution, got %v", err)
	}
}

func TestRenameIsIdempotentOnSameName(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	created, err := f.svc.Create(ctx, f.u1, "Same Name")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	renamed, err := f.svc.Rename(ctx, f.u1, created.ID, "Same Name")
	if err != nil {
		t.Fatalf("Rename to the same name should succeed: %v", err)
	}
	if renamed.Name != "Same Name" {
		t.Errorf("unexpected name: %s", renamed.Name)
	}
}

func TestListForUserScopesByOwner(t *testing.T) {
	ctx := context.Background()
	f := setupService(t)

	if _, err := f.svc.Create(ctx, f.u1, "Mine"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.u2, "Theirs"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	owned, err := f.svc.ListForUser(ctx, f.u1)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(owned) != 1 || owned[0].Name != "Mine" {
		t.Errorf("unexpected playlists for u1: %+v", owned)
	}
	if owned[0].Tracks == nil {
		t.Error("tracks should be resolved to an empty slice, not nil")
	}
}
