// Package repository defines the data access interfaces for NetScan.
//
// IdentityStore holds what the operator knows about an address (alias and
// notes) and what the scanner has observed (last time it was up).
// PresetStore holds the named ranges offered as scan shortcuts.
//
// # Implementations
//
// The sqlite subpackage is the persistent store used by the server. It runs
// embedded goose migrations on open, uses a single connection so writers
// are serialized, and seeds default presets once when the table is empty.
//
// The memory subpackage keeps everything in maps. It backs service tests
// and any caller that wants identity data scoped to the process.
//
// # Semantics
//
// Both implementations trim alias names and notes, ignore blank alias
// names, treat deleting a missing alias as success, and return nil (not an
// error) for absent aliases and never-seen addresses.
package repository
