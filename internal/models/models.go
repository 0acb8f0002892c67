package models

import "time"

// Coordinate is a geographic point stored in GeoJSON order:
// index 0 is longitude, index 1 is latitude.
type Coordinate [2]float64

// Lng returns the longitude component.
func (c Coordinate) Lng() float64 { return c[0] }

// Lat returns the latitude component.
func (c Coordinate) Lat() float64 { return c[1] }

// Station is a metro station as read from the station registry.
// Stations are immutable during a simulation tick; they are created and
// maintained by the schedule seeding process, never by the simulation.
type Station struct {
	ID          string     `json:"stationId"`
	Name        string     `json:"name"`
	NameEn      string     `json:"nameEn,omitempty"`
	Coordinate  Coordinate `json:"coordinates"`
	Underground bool       `json:"underground"`
	Depot       bool       `json:"depot"`
	Interchange bool       `json:"interchange"`
}

// Stop statuses as stored in the schedule feed.
const (
	StopStatusScheduled  = "scheduled"
	StopStatusInProgress = "in-progress"
	StopStatusCompleted  = "completed"
	StopStatusCancelled  = "cancelled"
)

// Stop is one scheduled station call of a train, ordered within its trip.
// ArrivalTime and DepartureTime are absolute timestamps; DelayMinutes is an
// offset applied on top of the scheduled times by upstream delay management.
type Stop struct {
	StationID     string    `json:"stationId"`
	Order         int       `json:"order"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	DepartureTime time.Time `json:"departureTime"`
	DelayMinutes  int       `json:"delayMinutes"`
	Status        string    `json:"status"`
}

// Trip is the full ordered sequence of stops one train runs through a line
// in one direction. Stops are strictly ordered by Order and by time.
type Trip struct {
	TrainID string `json:"trainId"`
	LineID  string `json:"lineId"`
	Stops   []Stop `json:"stops"`
}

// Leg is one station-to-station segment of a trip, derived from two
// consecutive stops. The scheduled departure belongs to the origin stop and
// the scheduled arrival to the destination stop; each carries its own delay
// offset.
type Leg struct {
	TrainID        string
	LineID         string
	FromStationID  string
	ToStationID    string
	Order          int
	DepartureTime  time.Time
	ArrivalTime    time.Time
	DepartureDelay time.Duration
	ArrivalDelay   time.Duration
}

// EffectiveDeparture is the scheduled departure shifted by the delay offset.
func (l Leg) EffectiveDeparture() time.Time { return l.DepartureTime.Add(l.DepartureDelay) }

// EffectiveArrival is the scheduled arrival shifted by the delay offset.
func (l Leg) EffectiveArrival() time.Time { return l.ArrivalTime.Add(l.ArrivalDelay) }

// Duration is the effective travel time of the leg.
func (l Leg) Duration() time.Duration {
	return l.EffectiveArrival().Sub(l.EffectiveDeparture())
}

// Legs derives the station-to-station legs from the trip's consecutive
// stops. A trip with fewer than two stops has no legs.
func (t Trip) Legs() []Leg {
	if len(t.Stops) < 2 {
		return nil
	}
	legs := make([]Leg, 0, len(t.Stops)-1)
	for i := 0; i < len(t.Stops)-1; i++ {
		from, to := t.Stops[i], t.Stops[i+1]
		legs = append(legs, Leg{
			TrainID:        t.TrainID,
			LineID:         t.LineID,
			FromStationID:  from.StationID,
			ToStationID:    to.StationID,
			Order:          from.Order,
			DepartureTime:  from.DepartureTime,
			ArrivalTime:    to.ArrivalTime,
			DepartureDelay: time.Duration(from.DelayMinutes) * time.Minute,
			ArrivalDelay:   time.Duration(to.DelayMinutes) * time.Minute,
		})
	}
	return legs
}
