package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *MemoryPreferenceStore) {
	t.Helper()
	prefs := NewMemoryPreferenceStore()
	return NewStore(prefs, nil, nil, nil), prefs
}

func TestNewStoreDefaults(t *testing.T) {
	store, _ := newTestStore(t)
	st := store.Snapshot()

	assert.Empty(t, st.SelectedDepartmentID)
	assert.NotNil(t, st.CurrentDepartmentRoles)
	assert.Empty(t, st.CurrentDepartmentRoles)
	assert.NotNil(t, st.CurrentDepartmentAccessRights)
	assert.Empty(t, st.CurrentDepartmentAccessRights)
	assert.False(t, st.IsSwitchingDepartment)
	assert.Empty(t, st.SwitchDepartmentError)
	assert.Empty(t, st.DepartmentPath)
	assert.False(t, st.IsSidebarOpen)
	assert.True(t, st.IsBreadcrumbMode)
	assert.Empty(t, st.LastAccessedDepartments)
}

func TestSelection(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.IsDepartmentSelected())
	assert.Empty(t, store.CurrentDepartmentID())

	store.SetSelectedDepartment("dept-1")
	assert.True(t, store.IsDepartmentSelected())
	assert.Equal(t, "dept-1", store.CurrentDepartmentID())

	store.SetSelectedDepartment("")
	assert.False(t, store.IsDepartmentSelected())
}

func TestRememberDepartment(t *testing.T) {
	store, prefs := newTestStore(t)
	ctx := context.Background()

	store.RememberDepartment(ctx, "user-1", "dept-1")
	store.RememberDepartment(ctx, "user-2", "dept-9")
	store.RememberDepartment(ctx, "user-1", "dept-2")

	deptID, ok := store.GetLastAccessedDepartment("user-1")
	require.True(t, ok)
	assert.Equal(t, "dept-2", deptID)

	deptID, ok = store.GetLastAccessedDepartment("user-2")
	require.True(t, ok)
	assert.Equal(t, "dept-9", deptID)

	_, ok = store.GetLastAccessedDepartment("user-3")
	assert.False(t, ok)

	saved, err := prefs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user-1": "dept-2", "user-2": "dept-9"}, saved.LastAccessedDepartments)
}

func TestRememberDepartmentIgnoresEmptyIDs(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.RememberDepartment(ctx, "", "dept-1")
	store.RememberDepartment(ctx, "user-1", "")

	assert.Empty(t, store.Snapshot().LastAccessedDepartments)
}

func TestClearDepartmentSelection(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.SetSelectedDepartment("dept-1")
	store.NavigateToDepartment("dept-1", nil)
	store.RememberDepartment(ctx, "user-1", "dept-1")

	store.ClearDepartmentSelection()

	st := store.Snapshot()
	assert.Empty(t, st.SelectedDepartmentID)
	assert.NotNil(t, st.CurrentDepartmentRoles)
	assert.Empty(t, st.CurrentDepartmentRoles)
	assert.NotNil(t, st.CurrentDepartmentAccessRights)
	assert.Empty(t, st.CurrentDepartmentAccessRights)
	assert.Empty(t, st.CurrentDepartmentName)
	assert.Empty(t, st.SwitchDepartmentError)

	// The breadcrumb path and per-user memory survive a selection clear.
	assert.Equal(t, []string{"dept-1"}, st.DepartmentPath)
	assert.Equal(t, map[string]string{"user-1": "dept-1"}, st.LastAccessedDepartments)
}

func TestSidebar(t *testing.T) {
	store, _ := newTestStore(t)

	assert.True(t, store.ToggleSidebar())
	assert.False(t, store.ToggleSidebar())

	store.SetSidebarOpen(true)
	assert.True(t, store.Snapshot().IsSidebarOpen)
}

func TestSidebarNotPersisted(t *testing.T) {
	store, prefs := newTestStore(t)
	ctx := context.Background()

	store.ToggleSidebar()
	store.RememberDepartment(ctx, "user-1", "dept-1")

	saved, err := prefs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"user-1": "dept-1"}, saved.LastAccessedDepartments)
	assert.True(t, saved.IsBreadcrumbMode)
}

func TestRestorePreferences(t *testing.T) {
	prefs := NewMemoryPreferenceStore()
	ctx := context.Background()
	require.NoError(t, prefs.Save(ctx, Preferences{
		LastAccessedDepartments: map[string]string{"user-1": "dept-7"},
		IsBreadcrumbMode:        false,
	}))

	store := NewStore(prefs, nil, nil, nil)
	store.RestorePreferences(ctx)

	st := store.Snapshot()
	assert.False(t, st.IsBreadcrumbMode)
	assert.Equal(t, map[string]string{"user-1": "dept-7"}, st.LastAccessedDepartments)

	// Only the persisted subset is restored.
	assert.Empty(t, st.SelectedDepartmentID)
	assert.Empty(t, st.DepartmentPath)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	store.NavigateToDepartment("dept-1", nil)
	store.RememberDepartment(ctx, "user-1", "dept-1")

	st := store.Snapshot()
	st.DepartmentPath[0] = "mutated"
	st.LastAccessedDepartments["user-1"] = "mutated"

	fresh := store.Snapshot()
	assert.Equal(t, []string{"dept-1"}, fresh.DepartmentPath)
	assert.Equal(t, "dept-1", fresh.LastAccessedDepartments["user-1"])
}
