package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by this service.
const (
	MeasurementDoorTransitions = "door_transitions"
	MeasurementDoorCycles      = "door_cycles"
	MeasurementRuntime         = "interaction_runtime"
)

// DoorTransition is one door state change as written to InfluxDB.
type DoorTransition struct {
	Door     string
	DoorType string
	Room     string
	From     string
	To       string
	Position string
	Progress float64
	At       time.Time
}

// WriteDoorTransition records a door state change.
//
// Tags: door, door_type, room, state. Fields: from, position, progress, open.
// The write is non-blocking; points are batched and sent asynchronously.
//
// Example:
//
//	client.WriteDoorTransition(influxdb.DoorTransition{
//	    Door: "/World/Hall/Hall_Door", DoorType: "dual_sliding",
//	    From: "opening", To: "completed", Position: "open", Progress: 1,
//	})
func (c *Client) WriteDoorTransition(t DoorTransition) {
	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	c.write(MeasurementDoorTransitions,
		map[string]string{
			"door":      t.Door,
			"door_type": t.DoorType,
			"room":      t.Room,
			"state":     t.To,
		},
		map[string]any{
			"from":     t.From,
			"position": t.Position,
			"progress": t.Progress,
			"open":     t.Position == "open",
		},
		at,
	)
}

// WriteDoorCycle records how long one opening or closing motion took,
// pauses included.
//
// Parameters:
//   - door: Door prim path
//   - doorType: Classified door type
//   - motion: "opening" or "closing"
//   - duration: Wall time from start to completion
func (c *Client) WriteDoorCycle(door, doorType, motion string, duration time.Duration) {
	c.write(MeasurementDoorCycles,
		map[string]string{
			"door":      door,
			"door_type": doorType,
			"motion":    motion,
		},
		map[string]any{
			"duration_ms": duration.Milliseconds(),
		},
		time.Now(),
	)
}

// WriteRuntime records controller load: active sessions and frames run.
func (c *Client) WriteRuntime(site string, activeSessions int, frames uint64) {
	c.write(MeasurementRuntime,
		map[string]string{"site": site},
		map[string]any{
			"active_sessions": activeSessions,
			"frames":          frames,
		},
		time.Now(),
	)
}

// write queues one point; it is dropped once the client is closed.
func (c *Client) write(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
