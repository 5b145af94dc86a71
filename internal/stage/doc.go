// Package stage provides the scene graph the interaction core reads and animates.
//
// A scene is a tree of prims addressed by absolute slash-separated paths
// ("/World/Kitchen/Kitchen_Door_01"). Each prim has a type name (Xform,
// Mesh, SphereLight, ...), ordered children, a local transform and optional
// extent, attributes and asset references.
//
// The rest of the core depends only on the Graph interface (list children,
// read a prim type, read and write a local transform) plus PrimReader for
// classification metadata. Stage is the in-memory implementation, loaded from
// a YAML prim tree and optionally kept in sync with the file by a Watcher.
//
// # Stage file format
//
//	prims:
//	  - name: World
//	    type: Xform
//	    children:
//	      - name: Kitchen
//	        type: Xform
//	        references: ["./assets/kitchen_set.usd"]
//	        children:
//	          - name: Kitchen_Door_01
//	            type: Xform
//	            children:
//	              - name: Panel_Single_Sliding
//	                type: Xform
//	                children:
//	                  - name: Panel
//	                    type: Mesh
//	                    translate: [0, 0, 0]
//	                    rotate: [0, 0, 0]
//	                    extent: [[-50, 0, -2], [50, 210, 2]]
//
// Rotations are XYZ Euler angles in degrees, matching the authoring tools.
//
// Thread Safety: Stage is safe for concurrent use.
package stage
