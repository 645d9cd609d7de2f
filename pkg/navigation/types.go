package navigation

// State is a point-in-time snapshot of the navigation store. Empty strings
// stand for "no value"; CurrentDepartmentRoles and
// CurrentDepartmentAccessRights are never nil.
type State struct {
	SelectedDepartmentID string `json:"selectedDepartmentId,omitempty"`

	// Cached context from the last successful department switch. The three
	// fields are populated and cleared together, never partially.
	CurrentDepartmentRoles        []string `json:"currentDepartmentRoles"`
	CurrentDepartmentAccessRights []string `json:"currentDepartmentAccessRights"`
	CurrentDepartmentName         string   `json:"currentDepartmentName,omitempty"`

	IsSwitchingDepartment bool   `json:"isSwitchingDepartment"`
	SwitchDepartmentError string `json:"switchDepartmentError,omitempty"`

	// DepartmentPath is the ordered root-to-current drill-down chain; empty
	// when no department context is active.
	DepartmentPath []string `json:"departmentPath"`

	IsSidebarOpen    bool `json:"isSidebarOpen"`
	IsBreadcrumbMode bool `json:"isBreadcrumbMode"`

	// LastAccessedDepartments maps a user id to the department they last
	// worked in. Survives logout and restarts.
	LastAccessedDepartments map[string]string `json:"lastAccessedDepartments"`
}

// Preferences is the persisted subset of navigation state. Nothing else may
// ever be written to or read from the preference blob.
type Preferences struct {
	LastAccessedDepartments map[string]string `json:"lastAccessedDepartments"`
	IsBreadcrumbMode        bool              `json:"isBreadcrumbMode"`
}

// DefaultPreferences returns the startup defaults: no remembered departments
// and breadcrumb navigation on.
func DefaultPreferences() Preferences {
	return Preferences{
		LastAccessedDepartments: make(map[string]string),
		IsBreadcrumbMode:        true,
	}
}
