package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// PostgresStore is the pooled Postgres schedule store backend, for
// deployments where the schedule is maintained in a shared database
// instead of a local file.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the schedule database at databaseURL.
// The schema is owned by the scheduling side; this store never creates it.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping probes the pool.
func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

const pgActiveTripsSQL = `
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
	  AND tb.first_departure <= $1
	  AND tb.last_arrival >= $2
	ORDER BY s.train_id, s.stop_order
`

// ActiveTrips returns trips whose effective span covers now.
func (s *PostgresStore) ActiveTrips(ctx context.Context, now time.Time) ([]models.Trip, error) {
	rows, err := s.pool.Query(ctx, pgActiveTripsSQL, now.Add(activeWindow).Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query active trips: %w", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

const pgTripsForLineSQL = `
	SELECT
		train_id, line_id, station_id, stop_order,
		arrival_unix, departure_unix, delay_minutes, status
	FROM schedule_stops
	WHERE line_id = $1
	ORDER BY train_id, stop_order
`

// TripsForLine returns every trip of a line ordered by stop sequence.
func (s *PostgresStore) TripsForLine(ctx context.Context, lineID string) ([]models.Trip, error) {
	rows, err := s.pool.Query(ctx, pgTripsForLineSQL, lineID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips for line %s: %w", lineID, err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

// Stations returns the station registry keyed by station ID.
func (s *PostgresStore) Stations(ctx context.Context) (map[string]models.Station, error) {
	rows, err := s.pool.Query(ctx, stationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()
	return collectStations(rows)
}
