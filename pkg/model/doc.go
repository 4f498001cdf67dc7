// Package model implements the scene graph property tree.
//
// # Tree Hierarchy
//
// The tree is a forest of named owners. Each owner holds leaf properties and
// nested sub-owners:
//
//	Forest
//	├── Scene
//	│   ├── Earth
//	│   │   ├── Renderable
//	│   │   │   ├── Opacity      (property)
//	│   │   │   └── Enabled      (property)
//	│   │   └── Transform
//	│   └── Moon
//	└── NavigationHandler
//	    └── OrbitalNavigator
//
// # Addressing
//
// Properties and owners are addressed by dot-separated URIs built from owner
// names and a final property ID, e.g. "Scene.Earth.Renderable.Opacity".
// See package uri for the codec and package tree for lookup.
//
// # Values
//
// Property values and metadata are plain data: nil, bool, numbers, strings,
// []any and map[string]any. CloneValue copies them structurally; no value in
// this package is shared between an input and the snapshot built from it.
//
// # Immutability
//
// Owners are snapshots. Code that produces a new tree state (package reducer)
// builds new values instead of editing existing ones, so consumers may compare
// pointers to detect change.
package model
