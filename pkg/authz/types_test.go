package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextValidate(t *testing.T) {
	t.Run("valid forest", func(t *testing.T) {
		assert.NoError(t, testContext().Validate())
	})

	t.Run("missing user id", func(t *testing.T) {
		ctx := testContext()
		ctx.UserID = ""
		assert.Error(t, ctx.Validate())
	})

	t.Run("rights on unknown department", func(t *testing.T) {
		ctx := testContext()
		ctx.DepartmentRights["ghost"] = []string{"courses:read"}
		err := ctx.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ghost")
	})

	t.Run("cycle rejected", func(t *testing.T) {
		ctx := testContext()
		ctx.DepartmentHierarchy["dept-c"] = []string{"dept-a"}
		assert.ErrorIs(t, ctx.Validate(), ErrHierarchyCycle)
	})

	t.Run("empty hierarchy is valid", func(t *testing.T) {
		ctx := &Context{UserID: "u", PermissionVersion: 1}
		assert.NoError(t, ctx.Validate())
	})
}

func TestParentIndex(t *testing.T) {
	ctx := testContext()
	parents := ctx.parentIndex()

	assert.Equal(t, "dept-a", parents["dept-b"])
	assert.Equal(t, "dept-b", parents["dept-c"])
	_, hasRoot := parents["dept-a"]
	assert.False(t, hasRoot, "roots have no parent entry")
}

func TestKnownDepartments(t *testing.T) {
	known := testContext().knownDepartments()

	assert.Len(t, known, 3)
	for _, dept := range []string{"dept-a", "dept-b", "dept-c"} {
		assert.Contains(t, known, dept)
	}
}
