package authz

import (
	"errors"
	"fmt"
)

// DepartmentMembership records the display roles a user holds in a single
// department. Roles are labels for the UI; they never participate in
// permission decisions.
type DepartmentMembership struct {
	DepartmentID   string   `json:"departmentId" yaml:"departmentId"`
	DepartmentName string   `json:"departmentName,omitempty" yaml:"departmentName,omitempty"`
	Roles          []string `json:"roles" yaml:"roles"`
}

// Context is an immutable snapshot of a user's grants, replaced wholesale on
// every login or token refresh and never patched field by field.
type Context struct {
	UserID string `json:"userId" yaml:"userId"`

	// GlobalRights are granted with scope "everywhere".
	GlobalRights []string `json:"globalRights" yaml:"globalRights"`

	// DepartmentRights are granted within a specific department and inherited
	// by its descendants.
	DepartmentRights map[string][]string `json:"departmentRights" yaml:"departmentRights"`

	// DepartmentHierarchy maps a parent department to its direct children.
	// It must form a forest.
	DepartmentHierarchy map[string][]string `json:"departmentHierarchy" yaml:"departmentHierarchy"`

	DepartmentMemberships []DepartmentMembership `json:"departmentMemberships" yaml:"departmentMemberships"`

	// PermissionVersion strictly increases across refreshes.
	PermissionVersion int64 `json:"permissionVersion" yaml:"permissionVersion"`
}

var (
	// ErrHierarchyCycle reports a cyclic department hierarchy detected during
	// ancestor resolution. This is a server data defect, not a normal
	// runtime path.
	ErrHierarchyCycle = errors.New("department hierarchy contains a cycle")

	// ErrStaleContext reports an ingested snapshot whose permission version
	// does not advance past the currently held one.
	ErrStaleContext = errors.New("auth context permission version did not advance")

	// ErrNoContext reports that no auth context has been ingested yet.
	ErrNoContext = errors.New("no auth context available")
)

// Validate checks the structural invariants of the snapshot: department
// rights must reference departments the hierarchy knows about, and the
// hierarchy must be acyclic.
func (c *Context) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("auth context is missing a user id")
	}

	known := c.knownDepartments()
	for deptID := range c.DepartmentRights {
		if _, ok := known[deptID]; !ok {
			return fmt.Errorf("department rights reference unknown department %q", deptID)
		}
	}

	// Walk upward from every department; a forest guarantees each walk
	// terminates at a root.
	parents := c.parentIndex()
	for deptID := range known {
		visited := map[string]struct{}{deptID: {}}
		cur := deptID
		for {
			parent, ok := parents[cur]
			if !ok {
				break
			}
			if _, seen := visited[parent]; seen {
				return fmt.Errorf("validating department %q: %w", deptID, ErrHierarchyCycle)
			}
			visited[parent] = struct{}{}
			cur = parent
		}
	}

	return nil
}

// knownDepartments collects every department id the hierarchy mentions,
// either as a parent or as a child.
func (c *Context) knownDepartments() map[string]struct{} {
	known := make(map[string]struct{}, len(c.DepartmentHierarchy))
	for parent, children := range c.DepartmentHierarchy {
		known[parent] = struct{}{}
		for _, child := range children {
			known[child] = struct{}{}
		}
	}
	return known
}

// parentIndex inverts the parent→children hierarchy into a child→parent
// lookup. The forest invariant means each child has at most one parent; if
// the data violates that, the first recorded parent wins.
func (c *Context) parentIndex() map[string]string {
	parents := make(map[string]string, len(c.DepartmentHierarchy))
	for parent, children := range c.DepartmentHierarchy {
		for _, child := range children {
			if _, ok := parents[child]; !ok {
				parents[child] = parent
			}
		}
	}
	return parents
}
