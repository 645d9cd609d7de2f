// Package authz holds the authorization context for an admin user and answers
// scoped permission questions against it.
//
// # Overview
//
// A Context is an immutable snapshot produced by the auth API on login or
// token refresh: the user's global rights, per-department rights, the
// department hierarchy, and display-only department memberships. A Resolver
// is built once per Context and answers three kinds of questions:
//
//  1. "Is this right granted everywhere?" (HasGlobalRight)
//  2. "Does the user hold this right in this department, directly or through
//     an ancestor department?" (HasRightInDepartment)
//  3. "What is the full set of rights effective in this department?"
//     (EffectiveRights)
//
// Rights propagate downward only: a grant on a parent department applies to
// every descendant, never the reverse. Global rights apply in every
// department, including ones the hierarchy does not know about.
//
// # Versioning
//
// Each Context carries a monotonically increasing PermissionVersion. A Holder
// swaps resolvers as fresh contexts arrive and rejects snapshots whose
// version does not advance, so cached resolution results can never outlive
// the grants they were computed from.
//
// # Malformed data
//
// The hierarchy is required to be a forest. Resolution still bounds every
// ancestor walk with a visited set and reports ErrHierarchyCycle instead of
// hanging if the server ever ships a cyclic hierarchy.
package authz
