// Package navigation holds the department navigation state for an admin
// session: the selected department, the cached context resolved by the last
// successful department switch, the breadcrumb drill-down path, and the
// per-user navigation preferences.
//
// # State machine
//
// All state lives in a single Store and is mutated only through its actions.
// Every action is a synchronous read-compute-write under the store's lock,
// with one exception: SwitchDepartment performs a network round-trip between
// its "enter switching" write and its completion write. Overlapping switches
// are permitted; the store stays in the switching state until every in-flight
// call has completed, and the last call to complete determines the cached
// department context. A failed switch never destroys a previously resolved
// context, and an error from an earlier call never overwrites a success a
// later call has already committed.
//
// # Breadcrumbs
//
// The department path is the ordered root-to-current drill-down chain.
// Navigating to a department either installs an explicit ancestor chain,
// truncates back to a department already on the path, or appends a new leaf.
// NavigateUp steps one level toward the root and refuses to go above it.
//
// # Persistence
//
// Exactly two fields survive a session: the per-user last-accessed department
// map and the breadcrumb mode flag. They are written to a PreferenceStore
// after every mutation, best effort; everything else is intentionally
// ephemeral.
package navigation
