package config

// Version identifies the build; a compile-time constant so the call
// boundary never touches mutable process state.
const Version = "mesh_simplifier 1.0 (meshopt engine 0.21-compatible)"
