package authz

import (
	"fmt"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// effectiveRightsCacheSize bounds the per-resolver memoization of effective
// rights. Department trees in practice are a few hundred nodes at most.
const effectiveRightsCacheSize = 512

// Resolver answers permission questions against a single Context snapshot.
// It is safe for concurrent use and cheap to discard: replacing the snapshot
// means building a new Resolver, which also drops every memoized result.
type Resolver struct {
	ctx     *Context
	parents map[string]string
	global  map[string]struct{}
	rights  map[string]map[string]struct{}
	known   map[string]struct{}

	cache *lru.Cache[string, []string]
}

// NewResolver builds a Resolver for the given snapshot, inverting the
// parent→children hierarchy into a child→parent index once up front.
func NewResolver(ctx *Context) *Resolver {
	global := make(map[string]struct{}, len(ctx.GlobalRights))
	for _, right := range ctx.GlobalRights {
		global[right] = struct{}{}
	}

	rights := make(map[string]map[string]struct{}, len(ctx.DepartmentRights))
	for deptID, granted := range ctx.DepartmentRights {
		set := make(map[string]struct{}, len(granted))
		for _, right := range granted {
			set[right] = struct{}{}
		}
		rights[deptID] = set
	}

	// Size is a positive constant, so construction cannot fail.
	cache, _ := lru.New[string, []string](effectiveRightsCacheSize)

	return &Resolver{
		ctx:     ctx,
		parents: ctx.parentIndex(),
		global:  global,
		rights:  rights,
		known:   ctx.knownDepartments(),
		cache:   cache,
	}
}

// Context returns the snapshot this resolver was built from.
func (r *Resolver) Context() *Context {
	return r.ctx
}

// PermissionVersion returns the snapshot's permission version.
func (r *Resolver) PermissionVersion() int64 {
	return r.ctx.PermissionVersion
}

// HasGlobalRight reports whether the right is granted with scope
// "everywhere". Absence of a right is a normal false result, never an error.
func (r *Resolver) HasGlobalRight(right string) bool {
	_, ok := r.global[right]
	return ok
}

// HasRightInDepartment reports whether the right is effective in the given
// department: granted globally, granted in the department itself, or granted
// in any ancestor department. An unknown department carries only the global
// rights. The only error condition is a cyclic hierarchy.
func (r *Resolver) HasRightInDepartment(deptID, right string) (bool, error) {
	if r.HasGlobalRight(right) {
		return true, nil
	}
	if _, ok := r.rights[deptID][right]; ok {
		return true, nil
	}

	ancestors, err := r.ancestors(deptID)
	if err != nil {
		return false, err
	}
	for _, ancestor := range ancestors {
		if _, ok := r.rights[ancestor][right]; ok {
			return true, nil
		}
	}
	return false, nil
}

// EffectiveRights returns the deduplicated, sorted union of the global
// rights, the department's own grants, and every ancestor's grants. An
// unknown department degrades to exactly the global rights.
func (r *Resolver) EffectiveRights(deptID string) ([]string, error) {
	if cached, ok := r.cache.Get(deptID); ok {
		return cached, nil
	}

	union := make(map[string]struct{}, len(r.global))
	for right := range r.global {
		union[right] = struct{}{}
	}
	for right := range r.rights[deptID] {
		union[right] = struct{}{}
	}

	ancestors, err := r.ancestors(deptID)
	if err != nil {
		return nil, err
	}
	for _, ancestor := range ancestors {
		for right := range r.rights[ancestor] {
			union[right] = struct{}{}
		}
	}

	effective := make([]string, 0, len(union))
	for right := range union {
		effective = append(effective, right)
	}
	sort.Strings(effective)

	r.cache.Add(deptID, effective)
	return effective, nil
}

// RolesInDepartment returns the display roles recorded for the department.
// Roles are labels only and never feed into permission decisions.
func (r *Resolver) RolesInDepartment(deptID string) []string {
	for _, membership := range r.ctx.DepartmentMemberships {
		if membership.DepartmentID == deptID {
			return membership.Roles
		}
	}
	return nil
}

// ancestors walks the parent chain from the department to its root, bounded
// by a visited set so malformed (cyclic) server data reports
// ErrHierarchyCycle instead of looping forever.
func (r *Resolver) ancestors(deptID string) ([]string, error) {
	visited := map[string]struct{}{deptID: {}}
	var chain []string

	cur := deptID
	for {
		parent, ok := r.parents[cur]
		if !ok {
			return chain, nil
		}
		if _, seen := visited[parent]; seen {
			return nil, fmt.Errorf("resolving ancestors of department %q: %w", deptID, ErrHierarchyCycle)
		}
		visited[parent] = struct{}{}
		chain = append(chain, parent)
		cur = parent
	}
}

// Holder hands out the current Resolver and swaps it as fresh snapshots are
// ingested, enforcing that the permission version only moves forward.
type Holder struct {
	mu       sync.RWMutex
	resolver *Resolver
}

// NewHolder creates an empty Holder. Resolver returns ErrNoContext until the
// first successful Replace.
func NewHolder() *Holder {
	return &Holder{}
}

// Replace validates the snapshot, requires its permission version to advance
// past the current one, and installs a fresh Resolver for it.
func (h *Holder) Replace(ctx *Context) (*Resolver, error) {
	if err := ctx.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth context: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.resolver != nil && ctx.PermissionVersion <= h.resolver.PermissionVersion() {
		return nil, fmt.Errorf("version %d does not advance past %d: %w",
			ctx.PermissionVersion, h.resolver.PermissionVersion(), ErrStaleContext)
	}

	h.resolver = NewResolver(ctx)
	return h.resolver, nil
}

// Resolver returns the current resolver, or ErrNoContext before the first
// snapshot arrives.
func (h *Holder) Resolver() (*Resolver, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.resolver == nil {
		return nil, ErrNoContext
	}
	return h.resolver, nil
}

// Clear drops the held resolver, used on logout.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resolver = nil
}
