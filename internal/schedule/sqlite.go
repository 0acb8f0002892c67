package schedule

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// schemaSQL is the single source of truth for the store schema, embedded at
// compile time.
//
//go:embed schema.sql
var schemaSQL string

// SQLiteStore is the default file-backed schedule store.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite schedule store with WAL mode enabled and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time; the simulation only reads, so a
	// tiny pool is enough.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying connection for the seeding writer.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping probes the connection.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const activeTripsSQL = `
	WITH trip_bounds AS (
		SELECT
			train_id,
			MIN(departure_unix + delay_minutes * 60) AS first_departure,
			MAX(arrival_unix + delay_minutes * 60)   AS last_arrival
		FROM schedule_stops
		WHERE status IN ('scheduled', 'in-progress')
		GROUP BY train_id
	)
	SELECT
		s.train_id, s.line_id, s.station_id, s.stop_order,
		s.arrival_unix, s.departure_unix, s.delay_minutes, s.status
	FROM schedule_stops s
	JOIN trip_bounds tb ON tb.train_id = s.train_id
	WHERE s.status IN ('scheduled', 'in-progress')
	  AND tb.first_departure <= ?
	  AND tb.last_arrival >= ?
	ORDER BY s.train_id, s.stop_order
`

// ActiveTrips returns trips whose effective span covers now, including the
// pre-departure window ahead of the first departure.
func (s *SQLiteStore) ActiveTrips(ctx context.Context, now time.Time) ([]models.Trip, error) {
	horizon := now.Add(activeWindow).Unix()
	rows, err := s.db.QueryContext(ctx, activeTripsSQL, horizon, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query active trips: %w", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

const tripsForLineSQL = `
	SELECT
		train_id, line_id, station_id, stop_order,
		arrival_unix, departure_unix, delay_minutes, status
	FROM schedule_stops
	WHERE line_id = ?
	ORDER BY train_id, stop_order
`

// TripsForLine returns every trip of a line ordered by stop sequence.
func (s *SQLiteStore) TripsForLine(ctx context.Context, lineID string) ([]models.Trip, error) {
	rows, err := s.db.QueryContext(ctx, tripsForLineSQL, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips for line %s: %w", lineID, err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

const stationsSQL = `
	SELECT station_id, name, name_en, lng, lat, underground, depot, interchange
	FROM stations
`

// Stations returns the station registry keyed by station ID.
func (s *SQLiteStore) Stations(ctx context.Context) (map[string]models.Station, error) {
	rows, err := s.db.QueryContext(ctx, stationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()
	return collectStations(rows)
}

// scanRows is the subset of row iteration shared by database/sql and pgx,
// letting both store backends reuse the same collectors.
type scanRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// collectTrips groups ordered stop rows into trips. Rows must be sorted by
// train then stop sequence.
func collectTrips(rows scanRows) ([]models.Trip, error) {
	var trips []models.Trip
	var current *models.Trip

	for rows.Next() {
		var (
			trainID, lineID, stationID, status string
			order                              int
			arrivalUnix, departureUnix         int64
			delayMinutes                       int
		)
		if err := rows.Scan(&trainID, &lineID, &stationID, &order,
			&arrivalUnix, &departureUnix, &delayMinutes, &status); err != nil {
			return nil, fmt.Errorf("failed to scan schedule stop: %w", err)
		}

		if current == nil || current.TrainID != trainID {
			trips = append(trips, models.Trip{TrainID: trainID, LineID: lineID})
			current = &trips[len(trips)-1]
		}
		current.Stops = append(current.Stops, models.Stop{
			StationID:     stationID,
			Order:         order,
			ArrivalTime:   time.Unix(arrivalUnix, 0).UTC(),
			DepartureTime: time.Unix(departureUnix, 0).UTC(),
			DelayMinutes:  delayMinutes,
			Status:        status,
		})
	}
	return trips, rows.Err()
}

func collectStations(rows scanRows) (map[string]models.Station, error) {
	stations := make(map[string]models.Station)
	for rows.Next() {
		var (
			st       models.Station
			lng, lat float64
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.NameEn, &lng, &lat,
			&st.Underground, &st.Depot, &st.Interchange); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		st.Coordinate = models.Coordinate{lng, lat}
		stations[st.ID] = st
	}
	return stations, rows.Err()
}
