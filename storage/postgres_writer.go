package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"suumo-scraper/models"
)

// PostgresWriter persists canonical listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS listings (
			id           SERIAL PRIMARY KEY,
			suumo_id     VARCHAR(20)  NOT NULL DEFAULT '',
			name         TEXT         NOT NULL,
			price        INTEGER      NOT NULL DEFAULT 0,
			age          INTEGER      NOT NULL DEFAULT 0,
			line         TEXT         NOT NULL DEFAULT '',
			station_name TEXT         NOT NULL DEFAULT '',
			minutes      INTEGER      NOT NULL DEFAULT 0,
			layout       TEXT         NOT NULL DEFAULT '',
			area         NUMERIC(8,2) NOT NULL DEFAULT 0,
			address      TEXT         NOT NULL DEFAULT '',
			url          TEXT         UNIQUE NOT NULL,
			lat          DOUBLE PRECISION,
			lon          DOUBLE PRECISION,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_suumo_id ON listings(suumo_id);
		CREATE INDEX IF NOT EXISTS idx_listings_price    ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_station  ON listings(station_name);
		CREATE INDEX IF NOT EXISTS idx_listings_age      ON listings(age);
	`)
	return err
}

// Clear deletes all existing listings from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts all canonical listings, clearing old data first.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Listing) error {
	const cols = 13
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var lat, lon sql.NullFloat64
		if l.Geocoded {
			lat = sql.NullFloat64{Float64: l.Lat, Valid: true}
			lon = sql.NullFloat64{Float64: l.Lon, Valid: true}
		}
		valueArgs = append(valueArgs,
			l.ID, l.Name, l.Price, l.Age, l.Line, l.StationName,
			l.Minutes, l.Layout, l.Area, l.Address, l.URL, lat, lon)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (suumo_id, name, price, age, line, station_name,
		                      minutes, layout, area, address, url, lat, lon)
		VALUES %s
		ON CONFLICT (url) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings ordered by listing id — used by
// the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT suumo_id, name, price, age, line, station_name,
		       minutes, layout, area, address, url, lat, lon
		FROM listings
		ORDER BY suumo_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		var lat, lon sql.NullFloat64
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Price, &l.Age, &l.Line, &l.StationName,
			&l.Minutes, &l.Layout, &l.Area, &l.Address, &l.URL, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if lat.Valid && lon.Valid {
			l.Lat = lat.Float64
			l.Lon = lon.Float64
			l.Geocoded = true
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
