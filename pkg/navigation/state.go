package navigation

import (
	"context"
	"sync"

	"github.com/AttuneLearning/cadence-access/pkg/departments"
	"github.com/AttuneLearning/cadence-access/pkg/observability"
)

// Store is the process-wide navigation state. All mutations go through its
// action methods; reads go through its query methods or Snapshot. Safe for
// concurrent use.
type Store struct {
	mu sync.Mutex
	st State

	// Switch sequencing. switchSeq numbers calls in start order; inFlight
	// counts calls that have not completed; maxSuccessSeq is the highest
	// start sequence that has committed a success, used to keep a slow
	// failure from clobbering a success committed after it started.
	switchSeq     uint64
	maxSuccessSeq uint64
	inFlight      int

	prefs    PreferenceStore
	switcher departments.Switcher
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewStore creates a navigation store with default (empty) state. A nil
// preference store falls back to in-memory persistence; a nil logger falls
// back to a default one; metrics are optional.
func NewStore(prefs PreferenceStore, switcher departments.Switcher, logger *observability.Logger, metrics *observability.Metrics) *Store {
	if prefs == nil {
		prefs = NewMemoryPreferenceStore()
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	return &Store{
		st: State{
			CurrentDepartmentRoles:        []string{},
			CurrentDepartmentAccessRights: []string{},
			DepartmentPath:                []string{},
			IsBreadcrumbMode:              true,
			LastAccessedDepartments:       make(map[string]string),
		},
		prefs:    prefs,
		switcher: switcher,
		logger:   logger,
		metrics:  metrics,
	}
}

// RestorePreferences loads the persisted subset from the preference store
// and installs it. Best effort: a load failure keeps the defaults.
func (s *Store) RestorePreferences(ctx context.Context) {
	prefs, err := s.prefs.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to load navigation preferences, using defaults")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.IsBreadcrumbMode = prefs.IsBreadcrumbMode
	s.st.LastAccessedDepartments = make(map[string]string, len(prefs.LastAccessedDepartments))
	for userID, deptID := range prefs.LastAccessedDepartments {
		s.st.LastAccessedDepartments[userID] = deptID
	}
}

// SetSelectedDepartment sets the selected department without touching the
// cached roles, rights, name, or the breadcrumb path. Used to restore a
// lightweight selection before the department context has been fetched. An
// empty id clears the selection.
func (s *Store) SetSelectedDepartment(deptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.SelectedDepartmentID = deptID
}

// RememberDepartment records the department a user last worked in and
// persists the change.
func (s *Store) RememberDepartment(ctx context.Context, userID, deptID string) {
	if userID == "" || deptID == "" {
		return
	}
	s.mu.Lock()
	s.st.LastAccessedDepartments[userID] = deptID
	s.mu.Unlock()

	s.persist(ctx)
}

// GetLastAccessedDepartment returns the remembered department for a user.
func (s *Store) GetLastAccessedDepartment(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deptID, ok := s.st.LastAccessedDepartments[userID]
	return deptID, ok
}

// ClearDepartmentSelection resets the selection and the cached department
// context as one unit: selected id, roles, access rights, name, and the
// switch error all return to their empty values together. The per-user
// memory and the breadcrumb path are left intact. Called on logout and when
// the user must re-select a department.
func (s *Store) ClearDepartmentSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.SelectedDepartmentID = ""
	s.st.CurrentDepartmentRoles = []string{}
	s.st.CurrentDepartmentAccessRights = []string{}
	s.st.CurrentDepartmentName = ""
	s.st.SwitchDepartmentError = ""
}

// ToggleSidebar flips the sidebar flag and returns the new value. Sidebar
// state is session-only and never persisted.
func (s *Store) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.IsSidebarOpen = !s.st.IsSidebarOpen
	return s.st.IsSidebarOpen
}

// SetSidebarOpen sets the sidebar flag.
func (s *Store) SetSidebarOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.IsSidebarOpen = open
}

// IsDepartmentSelected reports whether any department is selected.
func (s *Store) IsDepartmentSelected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SelectedDepartmentID != ""
}

// CurrentDepartmentID returns the selected department id, or "".
func (s *Store) CurrentDepartmentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SelectedDepartmentID
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	out := s.st
	out.CurrentDepartmentRoles = append([]string{}, s.st.CurrentDepartmentRoles...)
	out.CurrentDepartmentAccessRights = append([]string{}, s.st.CurrentDepartmentAccessRights...)
	out.DepartmentPath = append([]string{}, s.st.DepartmentPath...)
	out.LastAccessedDepartments = make(map[string]string, len(s.st.LastAccessedDepartments))
	for userID, deptID := range s.st.LastAccessedDepartments {
		out.LastAccessedDepartments[userID] = deptID
	}
	return out
}

// FlushPreferences writes the current persisted subset out unconditionally.
// Used by the reconciliation schedule and during shutdown to repair saves a
// transient storage failure dropped.
func (s *Store) FlushPreferences(ctx context.Context) {
	s.persist(ctx)
}

// persist writes the persisted subset to the preference store. Fire and
// forget from the mutator's perspective: failures are counted and logged,
// never surfaced to the caller.
func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	prefs := Preferences{
		LastAccessedDepartments: make(map[string]string, len(s.st.LastAccessedDepartments)),
		IsBreadcrumbMode:        s.st.IsBreadcrumbMode,
	}
	for userID, deptID := range s.st.LastAccessedDepartments {
		prefs.LastAccessedDepartments[userID] = deptID
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PreferenceSavesTotal.Inc()
	}
	if err := s.prefs.Save(ctx, prefs); err != nil {
		if s.metrics != nil {
			s.metrics.PreferenceSaveFailuresTotal.Inc()
		}
		s.logger.WithError(err).Warn("Failed to persist navigation preferences")
	}
}
