package navigation

import "context"

// NavigateToDepartment moves the drill-down path to deptID and selects it.
//
// When ancestors is non-empty it is taken as the authoritative root-to-parent
// chain and replaces the path wholesale, with deptID appended as the leaf.
// Otherwise the path is adjusted relative to where deptID already sits: if it
// is on the path the path is truncated back to it (navigating "up" via a
// breadcrumb click), and if it is not the path grows by one (drilling down).
func (s *Store) NavigateToDepartment(deptID string, ancestors []string) {
	if deptID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case len(ancestors) > 0:
		path := make([]string, 0, len(ancestors)+1)
		path = append(path, ancestors...)
		path = append(path, deptID)
		s.st.DepartmentPath = path
	default:
		if idx := indexOf(s.st.DepartmentPath, deptID); idx >= 0 {
			s.st.DepartmentPath = s.st.DepartmentPath[:idx+1]
		} else {
			s.st.DepartmentPath = append(s.st.DepartmentPath, deptID)
		}
	}

	s.st.SelectedDepartmentID = deptID
	s.observePathDepthLocked()
}

// NavigateUp steps one level toward the root and selects the new leaf. At the
// root, or with no path at all, it is a no-op.
func (s *Store) NavigateUp() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.st.DepartmentPath) <= 1 {
		return
	}
	s.st.DepartmentPath = s.st.DepartmentPath[:len(s.st.DepartmentPath)-1]
	s.st.SelectedDepartmentID = s.st.DepartmentPath[len(s.st.DepartmentPath)-1]
	s.observePathDepthLocked()
}

// ClearDepartmentPath drops the whole drill-down chain and the selection.
func (s *Store) ClearDepartmentPath() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.DepartmentPath = []string{}
	s.st.SelectedDepartmentID = ""
	s.observePathDepthLocked()
}

// ToggleBreadcrumbMode flips between breadcrumb and flat navigation, persists
// the change, and returns the new value.
func (s *Store) ToggleBreadcrumbMode(ctx context.Context) bool {
	s.mu.Lock()
	s.st.IsBreadcrumbMode = !s.st.IsBreadcrumbMode
	mode := s.st.IsBreadcrumbMode
	s.mu.Unlock()

	s.persist(ctx)
	return mode
}

// DepartmentPath returns a copy of the current drill-down chain.
func (s *Store) DepartmentPath() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.st.DepartmentPath...)
}

// IsBreadcrumbMode reports whether breadcrumb navigation is active.
func (s *Store) IsBreadcrumbMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.IsBreadcrumbMode
}

func (s *Store) observePathDepthLocked() {
	if s.metrics != nil {
		s.metrics.NavigationPathDepth.Set(float64(len(s.st.DepartmentPath)))
	}
}

func indexOf(path []string, deptID string) int {
	for i, id := range path {
		if id == deptID {
			return i
		}
	}
	return -1
}
