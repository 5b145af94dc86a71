package inventory

import "strings"

// Slug turns a prim path into an MQTT topic segment:
// "/World/Hall/Hall_Door" becomes "world.hall.hall_door".
func Slug(path string) string {
	s := strings.Trim(path, "/")
	s = strings.ToLower(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/':
			return '.'
		case r == '+' || r == '#' || r == ' ':
			return '_'
		}
		return r
	}, s)
}
