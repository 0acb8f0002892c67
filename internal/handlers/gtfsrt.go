package handlers

import (
	"net/http"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/mini-hcmc-metro/tracker/internal/models"
)

// GetPositionsPB handles GET /api/fleet/positions.pb, exporting the fleet
// snapshot as a GTFS-realtime VehiclePositions feed for standard map
// consumers.
func (h *FleetHandler) GetPositionsPB(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshots.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "No snapshot published yet", nil)
		return
	}

	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(snap.ComputedAt.Unix())),
		},
	}

	for _, pos := range snap.Positions {
		feed.Entity = append(feed.Entity, feedEntity(pos))
	}

	data, err := proto.Marshal(feed)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode feed", map[string]interface{}{
			"internal": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/x-protobuf")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func feedEntity(pos models.PositionSnapshot) *gtfs.FeedEntity {
	vehicle := &gtfs.VehiclePosition{
		Trip: &gtfs.TripDescriptor{
			TripId:  proto.String(pos.TrainID),
			RouteId: proto.String(pos.LineID),
		},
		Vehicle: &gtfs.VehicleDescriptor{
			Id:    proto.String(pos.TrainID),
			Label: proto.String(pos.TrainID),
		},
		Position: &gtfs.Position{
			Latitude:  proto.Float32(float32(pos.Coordinate.Lat())),
			Longitude: proto.Float32(float32(pos.Coordinate.Lng())),
		},
		Timestamp: proto.Uint64(uint64(pos.ComputedAt.Unix())),
	}

	switch pos.Status {
	case models.TrainStatusAtStation:
		vehicle.CurrentStatus = gtfs.VehiclePosition_STOPPED_AT.Enum()
		vehicle.StopId = proto.String(pos.StationID)
	case models.TrainStatusMoving:
		vehicle.CurrentStatus = gtfs.VehiclePosition_IN_TRANSIT_TO.Enum()
		vehicle.StopId = proto.String(pos.ToStationID)
		vehicle.Position.Bearing = proto.Float32(float32(pos.Bearing))
		// GTFS-RT speed is meters per second.
		vehicle.Position.Speed = proto.Float32(float32(pos.SpeedKmh / 3.6))
	}

	return &gtfs.FeedEntity{
		Id:      proto.String(pos.TrainID),
		Vehicle: vehicle,
	}
}
