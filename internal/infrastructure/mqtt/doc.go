// Package mqtt connects the door service to the Gray Logic MQTT bus.
//
// This package manages:
//   - Connection to the Mosquitto broker with auto-reconnect
//   - Publishing door state (retained) and transition events
//   - Routing door commands to handlers, restored after reconnects
//   - Last Will and Testament (LWT) for offline detection
//
// # Topics
//
//	graylogic/command/door/{door_slug}   open, close, pause, resume, reset
//	graylogic/state/door/{door_slug}     retained door state
//	graylogic/event/door/{state}         transition events
//	graylogic/system/{client_id}/status  retained online/offline status
//
// Door slugs are prim paths with "/" replaced by "." and lower-cased,
// see inventory.Slug.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.DoorState(slug), state, true)
package mqtt
