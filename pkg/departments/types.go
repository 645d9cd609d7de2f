package departments

// CurrentDepartment describes the department context resolved by the switch
// endpoint for the requesting user.
type CurrentDepartment struct {
	DepartmentID   string   `json:"departmentId"`
	DepartmentName string   `json:"departmentName"`
	DepartmentSlug string   `json:"departmentSlug,omitempty"`
	Roles          []string `json:"roles"`
	AccessRights   []string `json:"accessRights"`
}

// ChildDepartment is a direct child of the switched-to department, returned
// so department pickers can render the next drill-down level.
type ChildDepartment struct {
	DepartmentID   string   `json:"departmentId"`
	DepartmentName string   `json:"departmentName"`
	Roles          []string `json:"roles,omitempty"`
}

// SwitchResult is the full response of the switch-department endpoint.
// Navigation state consumes only CurrentDepartment; the remaining fields are
// passed through for UI collaborators.
type SwitchResult struct {
	CurrentDepartment CurrentDepartment `json:"currentDepartment"`
	ChildDepartments  []ChildDepartment `json:"childDepartments,omitempty"`
	IsDirectMember    bool              `json:"isDirectMember"`
	InheritedFrom     *string           `json:"inheritedFrom,omitempty"`
}

// switchRequest is the request body of the switch-department endpoint.
type switchRequest struct {
	DepartmentID string `json:"departmentId"`
}
