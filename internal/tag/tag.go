// Package tag holds build-time flags that gate expensive consistency checks.
package tag

// Debug is true only in builds compiled with the collision_debug tag.
// Code that pays for an assertion only when Debug is true must not rely on
// the assertion's side effects: the debug and release builds must behave
// identically save for the extra panics.
var Debug = debug
