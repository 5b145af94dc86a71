package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/gray-logic-interaction/internal/animation"
	"github.com/nerrad567/gray-logic-interaction/internal/inventory"
)

const cliStage = `
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
      - name: lights
        type: Xform
        children:
          - name: Hall
            type: Xform
            children:
              - name: Ceiling
                type: Xform
                children:
                  - name: Spot
                    type: SphereLight
`

// writeStage writes the test stage and clears environment that would
// change the configuration.
func writeStage(t *testing.T) string {
	t.Helper()
	t.Setenv("GRAYLOGIC_CONFIG", "")
	t.Setenv("GRAYLOGIC_JWT_SECRET", "")

	path := filepath.Join(t.TempDir(), "stage.yaml")
	if err := os.WriteFile(path, []byte(cliStage), 0600); err != nil {
		t.Fatalf("failed to write stage: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, "doorctl version dev") {
		t.Errorf("output = %q", out)
	}
}

func TestScanCmd(t *testing.T) {
	stageFile := writeStage(t)

	out, err := execute(t, "scan", "--stage", stageFile)
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	for _, want := range []string{"(world.hall)", "Hall_Door_A", "single_sliding", "axis=X width=90", "Hall_Door_B", "unknown"} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q:\n%s", want, out)
		}
	}
}

func TestScanCmd_UnknownOnlyJSON(t *testing.T) {
	stageFile := writeStage(t)

	out, err := execute(t, "scan", "--stage", stageFile, "--unknown", "--json")
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	var rooms []scanRoom
	if err := json.Unmarshal([]byte(out), &rooms); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(rooms) != 1 || len(rooms[0].Doors) != 1 || rooms[0].Doors[0].Name != "Hall_Door_B" {
		t.Errorf("rooms = %+v, want only Hall_Door_B", rooms)
	}
}

func TestScanCmd_MissingStage(t *testing.T) {
	writeStage(t)

	if _, err := execute(t, "scan", "--stage", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("scan error = nil, want missing stage error")
	}
}

func TestClassifyCmd(t *testing.T) {
	stageFile := writeStage(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"by slug", []string{"world.hall.hall_door_a"}, []string{"Type:     single_sliding", "Axis:     X (bounds)", "Width:    90", "single /World/Hall/Hall_Door_A/Panel_Single_Sliding/Panel"}},
		{"axis override", []string{"/World/Hall/Hall_Door_A", "--axis", "z"}, []string{"Axis:     Z (override)"}},
		{"unknown", []string{"world.hall.hall_door_b"}, []string{"Type:     unknown", "Reason:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"classify", "--stage", stageFile}, tt.args...)...)
			if err != nil {
				t.Fatalf("classify error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestClassifyCmd_NotFound(t *testing.T) {
	stageFile := writeStage(t)

	_, err := execute(t, "classify", "--stage", stageFile, "world.hall.nope")
	if !errors.Is(err, inventory.ErrDoorNotFound) {
		t.Errorf("error = %v, want ErrDoorNotFound", err)
	}
}

func TestLightsCmd(t *testing.T) {
	stageFile := writeStage(t)

	out, err := execute(t, "lights", "--stage", stageFile)
	if err != nil {
		t.Fatalf("lights error = %v", err)
	}
	for _, want := range []string{"Light root: /World/lights", "/World/lights/Hall/Ceiling (1 lights)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "lights", "--stage", stageFile, "world.hall")
	if err != nil {
		t.Fatalf("lights world.hall error = %v", err)
	}
	if !strings.Contains(out, "/World/Hall\n") || !strings.Contains(out, "Ceiling") {
		t.Errorf("room lights output:\n%s", out)
	}
}

func TestSimulateCmd(t *testing.T) {
	stageFile := writeStage(t)

	out, err := execute(t, "simulate", "--stage", stageFile, "--json", "world.hall.hall_door_a")
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	var res simulateResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !res.Complete || res.Session.Position != animation.Open {
		t.Errorf("result = %+v, want complete and open", res)
	}
	// One second at speed 1 and 60 fps.
	if res.Frames < 59 || res.Frames > 61 {
		t.Errorf("Frames = %d, want about 60", res.Frames)
	}
	xf := res.Panels["/World/Hall/Hall_Door_A/Panel_Single_Sliding/Panel"]
	if xf.Translate[0] == 0 {
		t.Errorf("panel did not move: %+v", xf)
	}
}

func TestSimulateCmd_Cycle(t *testing.T) {
	stageFile := writeStage(t)

	out, err := execute(t, "simulate", "--stage", stageFile, "--json", "--cycle", "--speed", "2", "world.hall.hall_door_a")
	if err != nil {
		t.Fatalf("simulate error = %v", err)
	}
	var res simulateResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if res.Session.Position != animation.Closed {
		t.Errorf("Position = %s, want closed", res.Session.Position)
	}
	xf := res.Panels["/World/Hall/Hall_Door_A/Panel_Single_Sliding/Panel"]
	if xf.Translate[0] != 0 {
		t.Errorf("panel not back at rest: %+v", xf.Translate)
	}
}

func TestSimulateCmd_Errors(t *testing.T) {
	stageFile := writeStage(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"zero speed runs out of frames", []string{"--speed", "0", "--seconds", "0.1", "world.hall.hall_door_a"}, errIncomplete},
		{"unclassified door", []string{"world.hall.hall_door_b"}, animation.ErrUnclassified},
		{"bad direction", []string{"--direction", "sideways", "world.hall.hall_door_a"}, animation.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"simulate", "--stage", stageFile}, tt.args...)...)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTokenCmd(t *testing.T) {
	writeStage(t)

	if _, err := execute(t, "token"); err == nil {
		t.Fatal("token error = nil, want missing secret error")
	}

	t.Setenv("GRAYLOGIC_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	out, err := execute(t, "token", "--subject", "tester")
	if err != nil {
		t.Fatalf("token error = %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out), "."); len(parts) != 3 {
		t.Errorf("token = %q, want a three part JWT", out)
	}
}
