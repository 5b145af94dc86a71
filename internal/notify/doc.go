// Package notify fans door transitions out of the animation controller.
//
// The controller calls observers synchronously on the goroutine that caused
// the transition, which is often the frame loop. Dispatcher decouples that
// path: Observe only enqueues, and a single worker delivers each event to
// every registered Sink in order.
//
// Sinks:
//
//   - StatePublisher: retained door state and transition events over MQTT
//   - HistorySink: door_events rows in SQLite
//   - MetricsSink: door_transitions and door_cycles in InfluxDB
//   - BroadcastSink: WebSocket channel door.state_changed
//
// CommandListener is the inbound half: it subscribes to the MQTT door
// command topics and executes them through control.Service.
package notify
