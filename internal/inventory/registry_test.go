package inventory

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-interaction/internal/door"
	"github.com/nerrad567/gray-logic-interaction/internal/scanner"
	"github.com/nerrad567/gray-logic-interaction/internal/stage"
)

const inventoryStage = `
prims:
  - name: World
    type: Xform
    children:
      - name: Hall
        type: Xform
        children:
          - name: Hall_Door_A
            type: Xform
            children:
              - name: Panel_Single_Sliding
                type: Xform
                children:
                  - name: Panel
                    type: Mesh
                    extent: [[-45, 0, -2], [45, 210, 2]]
          - name: Hall_Door_B
            type: Xform
            children:
              - name: Slab
                type: Mesh
      - name: Bedroom
        type: Xform
        children:
          - name: Bedroom_Door
            type: Xform
            children:
              - name: Panel_Dual_Pivot
                type: Xform
                children:
                  - name: Leaf_Left
                    type: Mesh
                  - name: Leaf_Right
                    type: Mesh
`

func newTestRegistry(t *testing.T) (*Registry, *stage.Stage) {
	t.Helper()
	s, err := stage.Decode(strings.NewReader(inventoryStage))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	naming := door.DefaultNaming()
	r := New(scanner.New(s, naming), door.NewClassifier(s, naming, door.DefaultGeometry()), "")
	return r, s
}

func TestRegistry_EmptyUntilRefresh(t *testing.T) {
	r, _ := newTestRegistry(t)

	if len(r.Doors()) != 0 {
		t.Errorf("Doors() before Refresh = %d, want 0", len(r.Doors()))
	}
	if _, err := r.Door("/World/Hall/Hall_Door_A"); !errors.Is(err, ErrDoorNotFound) {
		t.Errorf("Door() error = %v, want ErrDoorNotFound", err)
	}
}

func TestRegistry_Refresh(t *testing.T) {
	r, _ := newTestRegistry(t)

	if n := r.Refresh(); n != 3 {
		t.Fatalf("Refresh() = %d, want 3", n)
	}

	rooms := r.Rooms()
	if len(rooms) != 2 || rooms[0].Room.Path != "/World/Hall" || rooms[1].Room.Path != "/World/Bedroom" {
		t.Fatalf("Rooms() = %+v", rooms)
	}
	if len(rooms[0].Doors) != 2 {
		t.Errorf("Hall doors = %d, want 2", len(rooms[0].Doors))
	}

	a, err := r.Door("/World/Hall/Hall_Door_A")
	if err != nil {
		t.Fatalf("Door() error = %v", err)
	}
	if a.Type != door.SingleSliding || a.Width != 90 {
		t.Errorf("Hall_Door_A = %v width %v, want single_sliding width 90", a.Type, a.Width)
	}

	b, _ := r.Door("/World/Hall/Hall_Door_B")
	if b.Classified() {
		t.Errorf("Hall_Door_B classified as %v, want unknown", b.Type)
	}

	room, err := r.RoomOf("/World/Bedroom/Bedroom_Door")
	if err != nil || room.Path != "/World/Bedroom" {
		t.Errorf("RoomOf() = %+v, %v", room, err)
	}
}

func TestRegistry_RefreshFollowsStage(t *testing.T) {
	r, s := newTestRegistry(t)
	r.Refresh()

	if err := s.Define("/World/Bedroom/Closet_Door", stage.TypeXform); err != nil {
		t.Fatal(err)
	}
	if n := r.Refresh(); n != 4 {
		t.Errorf("Refresh() after adding a door = %d, want 4", n)
	}
}

func TestRegistry_CopiesAreIsolated(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Refresh()

	g, _ := r.Door("/World/Bedroom/Bedroom_Door")
	g.Panels[0].Path = "/tampered"

	again, _ := r.Door("/World/Bedroom/Bedroom_Door")
	if again.Panels[0].Path == "/tampered" {
		t.Error("mutating a returned door changed the cache")
	}
}

func TestRegistry_Room(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Refresh()

	rd, err := r.Room("/World/Bedroom")
	if err != nil || len(rd.Doors) != 1 {
		t.Errorf("Room(Bedroom) = %+v, %v", rd, err)
	}
	if bySlug, err := r.Room("world.bedroom"); err != nil || bySlug.Room.Path != "/World/Bedroom" {
		t.Errorf("Room(world.bedroom) = %+v, %v", bySlug, err)
	}
	if _, err := r.Room("/World/Attic"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Room(Attic) error = %v, want ErrRoomNotFound", err)
	}
}

func TestRegistry_Find(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Refresh()

	for _, key := range []string{"/World/Hall/Hall_Door_A", "world.hall.hall_door_a"} {
		g, err := r.Find(key)
		if err != nil || g.Path != "/World/Hall/Hall_Door_A" {
			t.Errorf("Find(%q) = %s, %v", key, g.Path, err)
		}
	}
	if _, err := r.Find("world.hall.nope"); !errors.Is(err, ErrDoorNotFound) {
		t.Errorf("Find(missing) error = %v, want ErrDoorNotFound", err)
	}
}

func TestRegistry_SetAxis(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Refresh()
	path := "/World/Hall/Hall_Door_A"

	g, err := r.SetAxis(path, door.AxisZ)
	if err != nil {
		t.Fatalf("SetAxis() error = %v", err)
	}
	if g.Axis != door.AxisZ || g.AxisSource != door.AxisFromOverride {
		t.Errorf("SetAxis() = %v (%s), want Z override", g.Axis, g.AxisSource)
	}

	// The pin survives a refresh.
	r.Refresh()
	g, _ = r.Door(path)
	if g.Axis != door.AxisZ {
		t.Errorf("axis after Refresh = %v, want Z", g.Axis)
	}
	rooms := r.Rooms()
	if rooms[0].Doors[0].Axis != door.AxisZ {
		t.Errorf("room listing axis = %v, want Z", rooms[0].Doors[0].Axis)
	}

	g, _ = r.SetAxis(path, door.AxisAuto)
	if g.Axis != door.AxisX || g.AxisSource != door.AxisFromBounds {
		t.Errorf("cleared axis = %v (%s), want X from bounds", g.Axis, g.AxisSource)
	}

	if _, err := r.SetAxis("/World/Nope", door.AxisX); !errors.Is(err, ErrDoorNotFound) {
		t.Errorf("SetAxis(missing) error = %v", err)
	}
}

func TestRegistry_WithAxis(t *testing.T) {
	r, _ := newTestRegistry(t)
	r.Refresh()
	path := "/World/Hall/Hall_Door_A"

	g, err := r.WithAxis(path, door.AxisZ)
	if err != nil {
		t.Fatalf("WithAxis() error = %v", err)
	}
	if g.Axis != door.AxisZ || g.AxisSource != door.AxisFromOverride {
		t.Errorf("WithAxis() = %v (%s), want Z override", g.Axis, g.AxisSource)
	}

	// Nothing is pinned.
	g, _ = r.Door(path)
	if g.Axis != door.AxisX {
		t.Errorf("stored axis = %v, want X", g.Axis)
	}
	r.Refresh()
	if g, _ = r.Door(path); g.Axis != door.AxisX {
		t.Errorf("axis after Refresh = %v, want X", g.Axis)
	}

	if _, err := r.WithAxis("/World/Nope", door.AxisX); !errors.Is(err, ErrDoorNotFound) {
		t.Errorf("WithAxis(missing) error = %v", err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"/World/Hall/Hall_Door": "world.hall.hall_door",
		"/World/A B/Door#1":     "world.a_b.door_1",
		"/":                     "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}
