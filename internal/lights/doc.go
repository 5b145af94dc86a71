// Package lights associates rooms with the light groups authored for them.
//
// Lights live in a hierarchy parallel to the rooms:
//
//	/World/lights/<RoomName>/<LightGroup>/.../<SphereLight|RectLight|...>
//
// An Index answers which light groups belong to a room and which light
// prims a group contains. It is a read-only lookup; light state is never
// changed here. Door state publishers use it to attach the room's light
// groups to their payloads so automations can join the two.
package lights
