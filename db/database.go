package db

import (
	"database/sql"
	"fmt"

	"melodex/config"
	"melodex/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver for development and tests
)

// Connect opens a connection to the database named by cfg.DBDriver and
// verifies it with a ping.
func Connect(cfg *config.Config) (*sql.DB, error) {
	driver, dsn := DSN(cfg)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to database", logger.String("driver", driver))
	return conn, nil
}

// DSN builds the driver name and data source string for the configured backend.
func DSN(cfg *config.Config) (string, string) {
	if cfg.DBDriver == "sqlite3" {
		// Foreign keys are off by default in SQLite.
		return "sqlite3", cfg.DBPath + "?_foreign_keys=on"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return "mysql", dsn
}

// Init creates the schema if it does not exist. The uniqueness constraints
// here are load-bearing: membership dedup and the get-or-create upserts rely
// on them holding at the storage layer, not just in application code.
func Init(conn *sql.DB, driver string) error {
	var stmts []string
	if driver == "sqlite3" {
		stmts = sqliteSchema
	} else {
		stmts = mysqlSchema
	}

	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	logger.Info("Database schema initialized")
	return nil
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS artists (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS albums (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		artist_id INT NOT NULL,
		CONSTRAINT fk_album_artist FOREIGN KEY (artist_id) REFERENCES artists(id),
		CONSTRAINT uq_album_title_artist UNIQUE (title, artist_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		duration INT NOT NULL,
		preview_url VARCHAR(767) NOT NULL,
		artist_id INT NOT NULL,
		album_id INT NOT NULL,
		CONSTRAINT fk_track_artist FOREIGN KEY (artist_id) REFERENCES artists(id),
		CONSTRAINT fk_track_album FOREIGN KEY (album_id) REFERENCES albums(id)
	)`,
	`CREATE TABLE IF NOT EXISTS playlists (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		user_id INT NOT NULL,
		CONSTRAINT fk_playlist_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id INT NOT NULL,
		track_id INT NOT NULL,
		PRIMARY KEY (playlist_id, track_id),
		CONSTRAINT fk_pt_playlist FOREIGN KEY (playlist_id) REFERENCES playlists(id),
		CONSTRAINT fk_pt_track FOREIGN KEY (track_id) REFERENCES tracks(id)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS artists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		artist_id INTEGER NOT NULL REFERENCES artists(id),
		UNIQUE (title, artist_id)
	)`,
	`CREATE TABLE IF NOT EXISTS tracks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		duration INTEGER NOT NULL,
		preview_url TEXT NOT NULL,
		artist_id INTEGER NOT NULL REFERENCES artists(id),
		album_id INTEGER NOT NULL REFERENCES albums(id)
	)`,
	`CREATE TABLE IF NOT EXISTS playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id INTEGER NOT NULL REFERENCES playlists(id),
		track_id INTEGER NOT NULL REFERENCES tracks(id),
		PRIMARY KEY (playlist_id, track_id)
	)`,
}
