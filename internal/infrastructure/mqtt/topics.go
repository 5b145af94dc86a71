package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes. Door topics follow the flat Gray Logic scheme
// graylogic/{category}/door/{door_slug}, so a KNX or DALI bridge listening
// on graylogic/state/+/+ also sees door state.
const (
	// TopicPrefix is the base for every Gray Logic topic.
	TopicPrefix = "graylogic"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"

	// DoorProtocol is the protocol segment used for door topics.
	DoorProtocol = "door"
)

// Topics provides builders for the topics this service uses.
//
//	topics := mqtt.Topics{}
//	topics.DoorState("world.hall.hall_door")
//	// Returns: "graylogic/state/door/world.hall.hall_door"
type Topics struct{}

// DoorState returns the retained state topic of one door.
//
// Example: graylogic/state/door/world.hall.hall_door
func (Topics) DoorState(slug string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, DoorProtocol, slug)
}

// DoorCommand returns the command topic of one door.
//
// Example: graylogic/command/door/world.hall.hall_door
func (Topics) DoorCommand(slug string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, DoorProtocol, slug)
}

// DoorAck returns the topic acknowledging commands for one door.
//
// Example: graylogic/ack/door/world.hall.hall_door
func (Topics) DoorAck(slug string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefix, DoorProtocol, slug)
}

// DoorEvent returns the topic for non-retained door transition events.
//
// Example: graylogic/event/door/completed
func (Topics) DoorEvent(state string) string {
	return fmt.Sprintf("%s/event/%s/%s", TopicPrefix, DoorProtocol, state)
}

// SystemStatus returns the status topic of the service with clientID.
//
// Example: graylogic/system/graylogic-interaction/status
func (Topics) SystemStatus(clientID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixSystem, clientID)
}

// AllDoorCommands matches every door command topic.
//
// Pattern: graylogic/command/door/+
func (Topics) AllDoorCommands() string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefix, DoorProtocol)
}

// AllDoorStates matches every door state topic.
//
// Pattern: graylogic/state/door/+
func (Topics) AllDoorStates() string {
	return fmt.Sprintf("%s/state/%s/+", TopicPrefix, DoorProtocol)
}

// SlugFromTopic returns the last topic level, the door slug of any door
// topic. It returns "" for topics with no levels after the category.
func SlugFromTopic(topic string) string {
	i := strings.LastIndexByte(topic, '/')
	if i < 0 || i == len(topic)-1 {
		return ""
	}
	return topic[i+1:]
}
