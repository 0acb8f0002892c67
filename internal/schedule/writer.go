package schedule

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// Writer seeds the SQLite schedule store. It lives on the write side of
// the system: the simulation never touches it.
type Writer struct {
	db *sql.DB
}

// NewWriter creates a writer over an open SQLite store connection.
func NewWriter(db *sql.DB) *Writer {
	return &Writer{db: db}
}

// UpsertStations inserts or replaces station registry rows.
func (w *Writer) UpsertStations(ctx context.Context, stations []models.Station) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stations (station_id, name, name_en, lng, lat, underground, depot, interchange)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(station_id) DO UPDATE SET
			name = excluded.name,
			name_en = excluded.name_en,
			lng = excluded.lng,
			lat = excluded.lat,
			underground = excluded.underground,
			depot = excluded.depot,
			interchange = excluded.interchange
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare station upsert: %w", err)
	}
	defer stmt.Close()

	for _, st := range stations {
		if _, err := stmt.ExecContext(ctx, st.ID, st.Name, st.NameEn,
			st.Coordinate.Lng(), st.Coordinate.Lat(),
			st.Underground, st.Depot, st.Interchange); err != nil {
			return fmt.Errorf("failed to upsert station %s: %w", st.ID, err)
		}
	}

	return tx.Commit()
}

// ReplaceTrips deletes any existing stops for each trip's train and inserts
// the trip's stop sequence.
func (w *Writer) ReplaceTrips(ctx context.Context, trips []models.Trip) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedule_stops (train_id, line_id, station_id, stop_order,
			arrival_unix, departure_unix, delay_minutes, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stop insert: %w", err)
	}
	defer stmt.Close()

	for _, trip := range trips {
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_stops WHERE train_id = ?`, trip.TrainID); err != nil {
			return fmt.Errorf("failed to clear stops for train %s: %w", trip.TrainID, err)
		}
		for _, stop := range trip.Stops {
			if _, err := stmt.ExecContext(ctx, trip.TrainID, trip.LineID, stop.StationID, stop.Order,
				stop.ArrivalTime.Unix(), stop.DepartureTime.Unix(), stop.DelayMinutes, stop.Status); err != nil {
				return fmt.Errorf("failed to insert stop %d for train %s: %w", stop.Order, trip.TrainID, err)
			}
		}
	}

	return tx.Commit()
}
