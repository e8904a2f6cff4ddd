package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrors(t *testing.T) {
	v := &ValidationErrors{}
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.Err())
	assert.Equal(t, "", v.Error())

	v.AddError("config.yumBinary", "must not be empty")
	v.Add("timeout %s is shorter than backoff %s", "10s", "30s")
	v.RequireNonEmpty("config.filesDir", "  ")
	v.RequireNonEmpty("config.logDir", "/var/log/stack")

	assert.True(t, v.HasErrors())
	assert.Equal(t, 3, v.Count())
	assert.Error(t, v.Err())
	assert.Equal(t, "config.yumBinary: must not be empty\ntimeout 10s is shorter than backoff 30s\nconfig.filesDir: must not be empty", v.Error())
	assert.Len(t, v.GetErrors(), 3)
}

func TestValidationErrors_NilErr(t *testing.T) {
	var v *ValidationErrors
	assert.NoError(t, v.Err())
}
