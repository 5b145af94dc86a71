// Package door models door groups found in a scene and classifies them.
//
// A door group is any prim whose name contains the door keyword ("_Door").
// Somewhere beneath it (a direct child, or up to three levels down) sits a
// panel assembly whose name declares the door type:
//
//	Panel_Single_Sliding   one panel translating along a horizontal axis
//	Panel_Single_Pivot     one panel rotating about the vertical axis
//	Panel_Dual_Sliding     two panels (left/right) translating
//	Panel_Dual_Pivot       two panels rotating in mirror image
//
// The Classifier reads the assembly's children to assign panel roles,
// derives the door width from panel extents and picks the slide axis.
// Classification only reads the scene; it never writes transforms.
package door
