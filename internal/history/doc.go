// Package history stores door state transitions in SQLite.
//
// Every animation transition (opening, paused, completed, idle after reset)
// becomes one row in door_events. The table gives a local audit trail of
// door activity that survives restarts and does not depend on InfluxDB.
// Rows are pruned by age using the configured retention.
package history
