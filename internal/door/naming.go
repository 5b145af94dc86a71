package door

import "github.com/nerrad567/gray-logic-interaction/internal/stage"

// Naming holds the prim naming conventions. Matching is case-insensitive
// substring matching throughout.
type Naming struct {
	DoorKeyword   string
	SingleSliding string
	SinglePivot   string
	DualSliding   string
	DualPivot     string
	LeftKeyword   string
	RightKeyword  string
	PanelKeyword  string
}

// DefaultNaming returns the conventions used by the authoring templates.
func DefaultNaming() Naming {
	return Naming{
		DoorKeyword:   "_Door",
		SingleSliding: "Panel_Single_Sliding",
		SinglePivot:   "Panel_Single_Pivot",
		DualSliding:   "Panel_Dual_Sliding",
		DualPivot:     "Panel_Dual_Pivot",
		LeftKeyword:   "left",
		RightKeyword:  "right",
		PanelKeyword:  "panel",
	}
}

// IsDoor reports whether a prim name marks a door group.
func (n Naming) IsDoor(name string) bool {
	return stage.ContainsFold(name, n.DoorKeyword)
}

// TypeOf returns the door type declared by a panel-assembly name, or Unknown.
func (n Naming) TypeOf(name string) Type {
	switch {
	case stage.ContainsFold(name, n.SingleSliding):
		return SingleSliding
	case stage.ContainsFold(name, n.SinglePivot):
		return SinglePivot
	case stage.ContainsFold(name, n.DualSliding):
		return DualSliding
	case stage.ContainsFold(name, n.DualPivot):
		return DualPivot
	}
	return Unknown
}

func (n Naming) isLeft(name string) bool  { return stage.ContainsFold(name, n.LeftKeyword) }
func (n Naming) isRight(name string) bool { return stage.ContainsFold(name, n.RightKeyword) }
