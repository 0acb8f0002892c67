package models

import "time"

// LegState tags the variants of a leg position result. Using an explicit
// tag instead of nullable ad-hoc structs keeps switch statements over the
// three cases checkable.
type LegState int

const (
	// LegInactive means the leg is not active at the queried instant:
	// either it has completed or it has not entered its pre-departure
	// window yet.
	LegInactive LegState = iota
	// LegAtStation means the train is waiting at the origin station
	// inside the pre-departure window.
	LegAtStation
	// LegMoving means the train is between the two stations.
	LegMoving
)

func (s LegState) String() string {
	switch s {
	case LegAtStation:
		return "at_station"
	case LegMoving:
		return "moving"
	default:
		return "inactive"
	}
}

// LegPosition is the result of evaluating one leg at one instant.
// StationID is set for LegAtStation; FromStationID/ToStationID,
// ProgressPercent, Bearing and SpeedKmh are meaningful for LegMoving.
type LegPosition struct {
	State           LegState
	StationID       string
	FromStationID   string
	ToStationID     string
	Coordinate      Coordinate
	ProgressPercent float64
	Bearing         float64
	SpeedKmh        float64
}

// Train status values exposed on snapshots.
const (
	TrainStatusAtStation = "at_station"
	TrainStatusMoving    = "moving"
)

// CrowdLevel is a coarse time-of-day-derived passenger density class.
type CrowdLevel string

const (
	CrowdLow    CrowdLevel = "low"
	CrowdMedium CrowdLevel = "medium"
	CrowdHigh   CrowdLevel = "high"
)

// PositionSnapshot is the ephemeral per-poll position of one train. It is
// recomputed on every tick and never persisted.
type PositionSnapshot struct {
	TrainID         string     `json:"trainId"`
	LineID          string     `json:"lineId"`
	Status          string     `json:"status"`
	StationID       string     `json:"stationId,omitempty"`
	FromStationID   string     `json:"fromStationId,omitempty"`
	ToStationID     string     `json:"toStationId,omitempty"`
	Coordinate      Coordinate `json:"coordinates"`
	Bearing         float64    `json:"bearing"`
	SpeedKmh        float64    `json:"speedKmh"`
	ProgressPercent float64    `json:"progressPercent"`
	CrowdLevel      CrowdLevel `json:"crowdLevel"`
	ComputedAt      time.Time  `json:"computedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// FleetSnapshot is one published tick of the whole fleet.
type FleetSnapshot struct {
	TickID     string             `json:"tickId"`
	ComputedAt time.Time          `json:"computedAt"`
	Positions  []PositionSnapshot `json:"positions"`
}
