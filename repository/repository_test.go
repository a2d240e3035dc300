package repository

import (
	"context"
	"database/sql"
	"testing"

	"melodex/db"
	"melodex/model"
)

// setupTestDB creates an in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A second pool connection would see a different empty in-memory DB.
	conn.SetMaxOpenConns(1)

	if err := db.Init(conn, "sqlite3"); err != nil {
		conn.Close()
		t.Fatalf("failed to initialize schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

func createTestUser(t *testing.T, repo UserRepository, email string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), &model.User{Email: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return id
}

func createTestTrack(t *testing.T, repo CatalogRepository, title, artist, album string) *model.Track {
	t.Helper()
	track, err := repo.CreateTrack(context.Background(), title, 200, "https://example.com/p.mp3", artist, album)
	if err != nil {
		t.Fatalf("failed to create track %s: %v", title, err)
	}
	return track
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewUserRepository(conn)

		id := createTestUser(t, repo, "u1@example.com")

		byID, err := repo.GetUserByID(ctx, id)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID == nil || byID.Email != "u1@example.com" {
			t.Errorf("unexpected user by ID: %+v", byID)
		}

		byEmail, err := repo.GetUserByEmail(ctx, "u1@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != id {
			t.Errorf("unexpected user by email: %+v", byEmail)
		}
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewUserRepository(conn)

		createTestUser(t, repo, "dup@example.com")
		_, err := repo.CreateUser(ctx, &model.User{Email: "dup@example.com", PasswordHash: "x"})
		if err != ErrDuplicateUser {
			t.Errorf("expected ErrDuplicateUser, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewUserRepository(conn)

		user, err := repo.GetUserByID(ctx, 9999)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if user != nil {
			t.Errorf("expected nil for missing user, got %+v", user)
		}
	})
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("GetOrCreateArtistIdempotent", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewCatalogRepository(conn)

		first, err := repo.GetOrCreateArtist(ctx, "Glass Harbor")
		if err != nil {
			t.Fatalf("first GetOrCreateArtist failed: %v", err)
		}
		second, err := repo.GetOrCreateArtist(ctx, "Glass Harbor")
		if err != nil {
			t.Fatalf("second GetOrCreateArtist failed: %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("expected same artist ID, got %d and %d", first.ID, second.ID)
		}

		var count int
		if err := conn.QueryRow("SELECT COUNT(*) FROM artists").Scan(&count); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 1 {
			t.Errorf("expected 1 artist row, got %d", count)
		}
	})

	t.Run("GetOrCreateAlbumKeyedByTitleAndArtist", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewCatalogRepository(conn)

		a1, _ := repo.GetOrCreateArtist(ctx, "Artist One")
		a2, _ := repo.GetOrCreateArtist(ctx, "Artist Two")

		al1, err := repo.GetOrCreateAlbum(ctx, "Self Titled", a1.ID)
		if err != nil {
			t.Fatalf("GetOrCreateAlbum failed: %v", err)
		}
		al1again, err := repo.GetOrCreateAlbum(ctx, "Self Titled", a1.ID)
		if err != nil {
			t.Fatalf("repeat GetOrCreateAlbum failed: %v", err)
		}
		if al1.ID != al1again.ID {
			t.Errorf("expected same album ID, got %d and %d", al1.ID, al1again.ID)
		}

		al2, err := repo.GetOrCreateAlbum(ctx, "Self Titled", a2.ID)
		if err != nil {
			t.Fatalf("GetOrCreateAlbum for second artist failed: %v", err)
		}
		if al2.ID == al1.ID {
			t.Error("same title under a different artist must be a different album")
		}
	})

	t.Run("CreateTrackResolvesGraph", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewCatalogRepository(conn)

		track := createTestTrack(t, repo, "Neon Tide", "Glass Harbor", "City Lights")
		if track.Artist == nil || track.Artist.Name != "Glass Harbor" {
			t.Errorf("unexpected artist: %+v", track.Artist)
		}
		if track.Album == nil || track.Album.Title != "City Lights" {
			t.Errorf("unexpected album: %+v", track.Album)
		}

		loaded, err := repo.GetTrackByID(ctx, track.ID)
		if err != nil {
			t.Fatalf("GetTrackByID failed: %v", err)
		}
		if loaded == nil || loaded.Artist.Name != "Glass Harbor" || loaded.Album.Title != "City Lights" {
			t.Errorf("loaded track missing joined data: %+v", loaded)
		}
	})

	t.Run("GetTrackNotFound", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewCatalogRepository(conn)

		track, err := repo.GetTrackByID(ctx, 42)
		if err != nil {
			t.Fatalf("GetTrackByID failed: %v", err)
		}
		if track != nil {
			t.Errorf("expected nil for missing track, got %+v", track)
		}
	})

	t.Run("ListTracksOrderAndPaging", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewCatalogRepository(conn)

		createTestTrack(t, repo, "First", "A", "X")
		createTestTrack(t, repo, "Second", "A", "X")
		createTestTrack(t, repo, "Third", "A", "X")

		all, err := repo.ListTracks(ctx, 0, 10)
		if err != nil {
			t.Fatalf("ListTracks failed: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(all))
		}
		for i := 1; i < len(all); i++ {
			if all[i].ID <= all[i-1].ID {
				t.Errorf("tracks not ordered by id ascending: %d then %d", all[i-1].ID, all[i].ID)
			}
		}

		page, err := repo.ListTracks(ctx, 1, 1)
		if err != nil {
			t.Fatalf("paged ListTracks failed: %v", err)
		}
		if len(page) != 1 || page[0].Title != "Second" {
			t.Errorf("unexpected page: %+v", page)
		}
	})

	t.Run("SearchCaseInsensitiveSubstring", func(t *testing.T) {
		conn := setupTestDB(t)
		repo := NewCatalogRepository(conn)

		createTestTrack(t, repo, "Catastrophe", "Velvet Static", "Overexposed")
		createTestTrack(t, repo, "Northern Line", "The Catalysts", "Transit Maps")
		createTestTrack(t, repo, "Slow Orbit", "Mara Lune", "Perigee")

		results, err := repo.SearchTracks(ctx, "cat")
		if err != nil {
			t.Fatalf("SearchTracks failed: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 matches for %q, got %d", "cat", len(results))
		}
		// Title match and artist-name match, in id order.
		if results[0].Title != "Catastrophe" || results[1].Artist.Name != "The Catalysts" {
			t.Errorf("unexpected search results: %+v", results)
		}
	})
}

func TestPlaylistRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (PlaylistRepository, CatalogRepository, int64, *model.Track) {
		conn := setupTestDB(t)
		users := NewUserRepository(conn)
		catalog := NewCatalogRepository(conn)
		playlists := NewPlaylistRepository(conn)

		userID := createTestUser(t, users, "owner@example.com")
		track := createTestTrack(t, catalog, "Neon Tide", "Glass Harbor", "City Lights")
		return playlists, catalog, userID, track
	}

	addTrack := func(t *testing.T, repo PlaylistRepository, playlistID, trackID int64) bool {
		t.Helper()
		tx, err := repo.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		inserted, err := repo.AddTrackTx(ctx, tx, playlistID, trackID)
		if err != nil {
			repo.RollbackTx(tx)
			t.Fatalf("AddTrackTx failed: %v", err)
		}
		if err := repo.CommitTx(tx); err != nil {
			t.Fatalf("CommitTx failed: %v", err)
		}
		return inserted
	}

	t.Run("CreateAndGet", func(t *testing.T) {
		playlists, _, userID, _ := setup(t)

		id, err := playlists.CreatePlaylist(ctx, userID, "Road Trip")
		if err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}

		playlist, err := playlists.GetPlaylistByID(ctx, id)
		if err != nil {
			t.Fatalf("GetPlaylistByID failed: %v", err)
		}
		if playlist == nil || playlist.Name != "Road Trip" || playlist.UserID != userID {
			t.Errorf("unexpected playlist: %+v", playlist)
		}
	})

	t.Run("AddTrackIsIdempotent", func(t *testing.T) {
		playlists, catalog, userID, track := setup(t)

		id, err := playlists.CreatePlaylist(ctx, userID, "Road Trip")
		if err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}

		if inserted := addTrack(t, playlists, id, track.ID); !inserted {
			t.Error("first add should insert")
		}
		if inserted := addTrack(t, playlists, id, track.ID); inserted {
			t.Error("second add should be a no-op")
		}

		tracks, err := catalog.GetTracksByPlaylistID(ctx, id)
		if err != nil {
			t.Fatalf("GetTracksByPlaylistID failed: %v", err)
		}
		if len(tracks) != 1 || tracks[0].ID != track.ID {
			t.Errorf("expected exactly one membership, got %+v", tracks)
		}
	})

	t.Run("RemoveAbsentTrackIsNoOp", func(t *testing.T) {
		playlists, _, userID, track := setup(t)

		id, err := playlists.CreatePlaylist(ctx, userID, "Road Trip")
		if err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}

		tx, err := playlists.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		removed, err := playlists.RemoveTrackTx(ctx, tx, id, track.ID)
		if err != nil {
			t.Fatalf("RemoveTrackTx failed: %v", err)
		}
		if err := playlists.CommitTx(tx); err != nil {
			t.Fatalf("CommitTx failed: %v", err)
		}
		if removed {
			t.Error("removing an absent pair should report false")
		}
	})

	t.Run("DeleteCascadesMemberships", func(t *testing.T) {
		playlists, catalog, userID, track := setup(t)

		id, err := playlists.CreatePlaylist(ctx, userID, "Road Trip")
		if err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}
		addTrack(t, playlists, id, track.ID)

		tx, err := playlists.BeginTx(ctx)
		if err != nil {
			t.Fatalf("BeginTx failed: %v", err)
		}
		if err := playlists.DeletePlaylistTx(ctx, tx, id); err != nil {
			t.Fatalf("DeletePlaylistTx failed: %v", err)
		}
		if err := playlists.CommitTx(tx); err != nil {
			t.Fatalf("CommitTx failed: %v", err)
		}

		playlist, err := playlists.GetPlaylistByID(ctx, id)
		if err != nil {
			t.Fatalf("GetPlaylistByID failed: %v", err)
		}
		if playlist != nil {
			t.Errorf("expected playlist gone, got %+v", playlist)
		}

		tracks, err := catalog.GetTracksByPlaylistID(ctx, id)
		if err != nil {
			t.Fatalf("GetTracksByPlaylistID failed: %v", err)
		}
		if len(tracks) != 0 {
			t.Errorf("expected memberships cascaded, got %+v", tracks)
		}
	})

	t.Run("ListByUser", func(t *testing.T) {
		playlists, _, userID, _ := setup(t)

		if _, err := playlists.CreatePlaylist(ctx, userID, "One"); err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}
		if _, err := playlists.CreatePlaylist(ctx, userID, "Two"); err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}

		owned, err := playlists.GetPlaylistsByUserID(ctx, userID)
		if err != nil {
			t.Fatalf("GetPlaylistsByUserID failed: %v", err)
		}
		if len(owned) != 2 {
			t.Errorf("expected 2 playlists, got %d", len(owned))
		}
	})
}
