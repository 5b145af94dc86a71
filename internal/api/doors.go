package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/control"
	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
	"github.com/nerrad567/gray-logic-interaction/internal/lights"
	"github.com/nerrad567/gray-logic-interaction/internal/scanner"
)

// doorView is a door with its slug and current animation status.
type doorView struct {
	door.Group
	Slug   string            `json:"slug"`
	Status animation.Session `json:"status"`
}

// roomView is a room with its doors and, on single-room responses, lighting.
type roomView struct {
	door.Room
	Slug   string         `json:"slug"`
	Doors  []doorView     `json:"doors"`
	Lights []lights.Group `json:"lights,omitempty"`
}

func (s *Server) viewDoor(g door.Group) doorView {
	return doorView{Group: g, Slug: inventory.Slug(g.Path), Status: s.commands.Status(g)}
}

func (s *Server) viewRoom(rd scanner.RoomDoors) roomView {
	v := roomView{Room: rd.Room, Slug: inventory.Slug(rd.Room.Path), Doors: make([]doorView, 0, len(rd.Doors))}
	for _, g := range rd.Doors {
		v.Doors = append(v.Doors, s.viewDoor(g))
	}
	return v
}

// handleListRooms returns every scanned room with its doors.
func (s *Server) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	rooms := s.inventory.Rooms()
	views := make([]roomView, 0, len(rooms))
	for _, rd := range rooms {
		views = append(views, s.viewRoom(rd))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms": views,
		"count": len(views),
	})
}

// handleGetRoom returns one room, its doors and its light groups.
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rd, err := s.inventory.Room(chi.URLParam(r, "room"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	v := s.viewRoom(rd)
	if s.lights != nil {
		v.Lights = s.lights.ForRoom(rd.Room.Path).Groups
	}
	writeJSON(w, http.StatusOK, v)
}

// handleRoomLights returns the light groups associated with one room.
func (s *Server) handleRoomLights(w http.ResponseWriter, r *http.Request) {
	if s.lights == nil {
		writeUnavailable(w, "light index not configured")
		return
	}
	rd, err := s.inventory.Room(chi.URLParam(r, "room"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.lights.ForRoom(rd.Room.Path))
}

// handleListLights returns the lighting of every room under the light root.
func (s *Server) handleListLights(w http.ResponseWriter, _ *http.Request) {
	if s.lights == nil {
		writeUnavailable(w, "light index not configured")
		return
	}
	rooms := s.lights.Rooms()
	assoc := make([]lights.Association, 0, len(rooms))
	for _, room := range rooms {
		assoc = append(assoc, s.lights.ForRoom(room))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root":  s.lights.Root(),
		"rooms": assoc,
		"count": len(assoc),
	})
}

// handleListDoors returns every door. ?type= filters by door type.
func (s *Server) handleListDoors(w http.ResponseWriter, r *http.Request) {
	var filter *door.Type
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := door.ParseType(raw)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		filter = &t
	}

	doors := s.inventory.Doors()
	views := make([]doorView, 0, len(doors))
	for _, g := range doors {
		if filter != nil && g.Type != *filter {
			continue
		}
		views = append(views, s.viewDoor(g))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"doors": views,
		"count": len(views),
	})
}

// handleGetDoor returns one door by slug.
func (s *Server) handleGetDoor(w http.ResponseWriter, r *http.Request) {
	g, err := s.inventory.Find(chi.URLParam(r, "door"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.viewDoor(g))
}

// handleDoorAction runs POST /doors/{door}/{action}. The optional body
// holds parameter overrides.
func (s *Server) handleDoorAction(w http.ResponseWriter, r *http.Request) {
	action, err := control.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}

	var params control.Overrides
	if err := decodeOptionalBody(r, &params); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	s.execute(w, r, chi.URLParam(r, "door"), control.Request{Action: action, Params: params})
}

// handleDoorCommand runs POST /doors/{door}/commands with the same JSON
// body accepted on the MQTT command topic.
func (s *Server) handleDoorCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read body")
		return
	}
	req, err := control.DecodeRequest(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.execute(w, r, chi.URLParam(r, "door"), req)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, key string, req control.Request) {
	snap, err := s.commands.Execute(key, req)
	s.recordCommand(r, key, req, snap, err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

// handleListSessions returns every live session ordered by door path.
func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	sessions := s.sessions.Sessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// handleScan rescans the stage and reports how many doors were found.
func (s *Server) handleScan(w http.ResponseWriter, _ *http.Request) {
	n := s.inventory.Refresh()
	writeJSON(w, http.StatusOK, map[string]any{
		"doors": n,
		"rooms": len(s.inventory.Rooms()),
	})
}

// decodeOptionalBody decodes JSON into v, treating an empty body as valid.
func decodeOptionalBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
