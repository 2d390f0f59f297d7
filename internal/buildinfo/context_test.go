package buildinfo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Getters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ctx         *Context
		wantVersion string
		wantDate    string
	}{
		{"nil context", nil, UnknownValue, UnknownValue},
		{"empty values", &Context{}, UnknownValue, UnknownValue},
		{"populated", NewContext("1.2.0", "2026-10-01"), "1.2.0", "2026-10-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantVersion, tt.ctx.GetVersion())
			assert.Equal(t, tt.wantDate, tt.ctx.GetBuildDate())
		})
	}
}

func TestNewContext_InstanceID(t *testing.T) {
	t.Parallel()

	a := NewContext("1.0", "")
	b := NewContext("1.0", "")

	_, err := uuid.Parse(a.GetInstanceID())
	require.NoError(t, err)
	assert.NotEqual(t, a.GetInstanceID(), b.GetInstanceID())

	var nilCtx *Context
	assert.Equal(t, UnknownValue, nilCtx.GetInstanceID())

	var _ BuildInfo = a
}

func TestValidationResult(t *testing.T) {
	t.Parallel()

	r := NewValidationResult()
	assert.True(t, r.Valid)
	assert.False(t, r.HasIssues())

	r.AddWarning("no config file found, using defaults")
	assert.True(t, r.Valid, "warnings keep the result valid")
	assert.True(t, r.HasIssues())

	r.AddError("router unreachable")
	assert.False(t, r.Valid)
	assert.Equal(t, []string{"router unreachable"}, r.Errors)
}
