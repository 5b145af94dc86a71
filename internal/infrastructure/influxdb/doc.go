// Package influxdb writes door activity metrics to InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health checks.
//
// # Measurements
//
//	door_transitions     one point per state change (tags: door, door_type, room, state)
//	door_cycles          duration of each completed opening or closing
//	interaction_runtime  active sessions and frame count, sampled periodically
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDoorCycle("/World/Hall/Hall_Door", "single_pivot", "opening", 1200*time.Millisecond)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Write errors are delivered asynchronously to the SetOnError callback.
// Connection and health check errors are returned directly.
package influxdb
