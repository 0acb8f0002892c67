// seed-schedule generates a day of demo schedule data for the HCMC Metro
// Line 1 corridor and writes it into the SQLite schedule store. The server
// only ever reads this data; regenerating it is the way to change the
// timetable.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/mini-hcmc-metro/tracker/internal/geo"
	"github.com/mini-hcmc-metro/tracker/internal/models"
	"github.com/mini-hcmc-metro/tracker/internal/schedule"
)

const (
	lineID = "L1"

	avgSpeedKmh  = 40.0
	dwellSeconds = 45
	minLegSecond = 90
)

// line1Stations is the Ben Thanh - Suoi Tien corridor, ordered outbound.
var line1Stations = []models.Station{
	{ID: "BEN-THANH", Name: "Bến Thành", NameEn: "Ben Thanh", Coordinate: models.Coordinate{106.6983, 10.7697}, Underground: true, Interchange: true},
	{ID: "OPERA-HOUSE", Name: "Nhà hát Thành phố", NameEn: "Opera House", Coordinate: models.Coordinate{106.7028, 10.7755}, Underground: true},
	{ID: "BA-SON", Name: "Ba Son", NameEn: "Ba Son", Coordinate: models.Coordinate{106.7086, 10.7809}, Underground: true},
	{ID: "VAN-THANH", Name: "Công viên Văn Thánh", NameEn: "Van Thanh Park", Coordinate: models.Coordinate{106.7155, 10.7940}},
	{ID: "TAN-CANG", Name: "Tân Cảng", NameEn: "Tan Cang", Coordinate: models.Coordinate{106.7225, 10.7986}},
	{ID: "THAO-DIEN", Name: "Thảo Điền", NameEn: "Thao Dien", Coordinate: models.Coordinate{106.7334, 10.8005}},
	{ID: "AN-PHU", Name: "An Phú", NameEn: "An Phu", Coordinate: models.Coordinate{106.7424, 10.8021}},
	{ID: "RACH-CHIEC", Name: "Rạch Chiếc", NameEn: "Rach Chiec", Coordinate: models.Coordinate{106.7554, 10.8080}},
	{ID: "PHUOC-LONG", Name: "Phước Long", NameEn: "Phuoc Long", Coordinate: models.Coordinate{106.7591, 10.8215}},
	{ID: "BINH-THAI", Name: "Bình Thái", NameEn: "Binh Thai", Coordinate: models.Coordinate{106.7645, 10.8327}},
	{ID: "THU-DUC", Name: "Thủ Đức", NameEn: "Thu Duc", Coordinate: models.Coordinate{106.7718, 10.8465}},
	{ID: "HI-TECH-PARK", Name: "Khu Công nghệ cao", NameEn: "High-Tech Park", Coordinate: models.Coordinate{106.7889, 10.8591}},
	{ID: "NATIONAL-UNI", Name: "Đại học Quốc gia", NameEn: "National University", Coordinate: models.Coordinate{106.8007, 10.8661}},
	{ID: "SUOI-TIEN", Name: "Bến xe Suối Tiên", NameEn: "Suoi Tien Terminal", Coordinate: models.Coordinate{106.8133, 10.8793}, Depot: true},
}

func main() {
	var (
		dbPath    = flag.String("db", "/data/metro.db", "SQLite schedule store path")
		date      = flag.String("date", "", "service date YYYY-MM-DD (default: today)")
		startHour = flag.Int("start-hour", 5, "first departure hour")
		endHour   = flag.Int("end-hour", 22, "last departure hour")
		headway   = flag.Int("headway", 10, "minutes between departures per direction")
		seed      = flag.Int64("seed", 1, "random seed for simulated delays")
	)
	flag.Parse()

	serviceDate := time.Now()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			log.Fatalf("Invalid -date %q: %v", *date, err)
		}
		serviceDate = parsed
	}

	store, err := schedule.OpenSQLite(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open schedule store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	writer := schedule.NewWriter(store.DB())

	if err := writer.UpsertStations(ctx, line1Stations); err != nil {
		log.Fatalf("Failed to write stations: %v", err)
	}
	log.Printf("Seeded %d stations", len(line1Stations))

	trips := generateTrips(serviceDate, *startHour, *endHour, *headway, rand.New(rand.NewSource(*seed)))
	if err := writer.ReplaceTrips(ctx, trips); err != nil {
		log.Fatalf("Failed to write trips: %v", err)
	}
	log.Printf("Seeded %d trips on line %s for %s", len(trips), lineID, serviceDate.Format("2006-01-02"))
}

// generateTrips builds outbound and inbound trips at the given headway.
// A small fraction of trains gets a simulated delay offset, the kind the
// delay-management side would normally write.
func generateTrips(day time.Time, startHour, endHour, headwayMin int, rng *rand.Rand) []models.Trip {
	var trips []models.Trip

	first := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, time.UTC)
	last := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, time.UTC)

	run := 0
	for depart := first; !depart.After(last); depart = depart.Add(time.Duration(headwayMin) * time.Minute) {
		run++

		outbound := buildTrip(fmt.Sprintf("%s-OUT-%03d", lineID, run), line1Stations, depart)
		inbound := buildTrip(fmt.Sprintf("%s-IN-%03d", lineID, run), reversed(line1Stations), depart)

		// Roughly one train in ten runs a few minutes behind schedule.
		if rng.Intn(10) == 0 {
			applyDelay(&outbound, 1+rng.Intn(5))
		}
		if rng.Intn(10) == 0 {
			applyDelay(&inbound, 1+rng.Intn(5))
		}

		trips = append(trips, outbound, inbound)
	}
	return trips
}

// buildTrip lays out stop times along the station sequence, deriving leg
// travel time from inter-station distance at the line's average speed.
func buildTrip(trainID string, stations []models.Station, departure time.Time) models.Trip {
	trip := models.Trip{TrainID: trainID, LineID: lineID}

	arrival := departure
	for i, st := range stations {
		if i > 0 {
			prev := stations[i-1]
			meters := geo.DistanceMeters(
				prev.Coordinate.Lat(), prev.Coordinate.Lng(),
				st.Coordinate.Lat(), st.Coordinate.Lng(),
			)
			legSeconds := math.Max(minLegSecond, meters/1000/avgSpeedKmh*3600)
			arrival = arrival.Add(time.Duration(legSeconds) * time.Second)
		}
		depart := arrival.Add(dwellSeconds * time.Second)

		trip.Stops = append(trip.Stops, models.Stop{
			StationID:     st.ID,
			Order:         i,
			ArrivalTime:   arrival,
			DepartureTime: depart,
			Status:        models.StopStatusScheduled,
		})
		arrival = depart
	}
	return trip
}

func applyDelay(trip *models.Trip, minutes int) {
	for i := range trip.Stops {
		trip.Stops[i].DelayMinutes = minutes
	}
}

func reversed(stations []models.Station) []models.Station {
	out := make([]models.Station, len(stations))
	for i, st := range stations {
		out[len(stations)-1-i] = st
	}
	return out
}
