package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetenv(t *testing.T) {
	t.Setenv("VB_TEST_STR", "hello")
	t.Setenv("VB_TEST_INT", "42")
	t.Setenv("VB_TEST_BOOL", "true")
	t.Setenv("VB_TEST_DUR", "1m30s")
	t.Setenv("VB_TEST_EMPTY", "")

	s, err := Getenv(GetenvString, "VB_TEST_STR", true, "")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	i, err := Getenv(GetenvInt, "VB_TEST_INT", false, 0)
	require.NoError(t, err)
	assert.Equal(t, 42, i)

	b, err := Getenv(GetenvBool, "VB_TEST_BOOL", false, false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := Getenv(GetenvDuration, "VB_TEST_DUR", false, 0)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	// Empty counts as unset and takes the fallback.
	s, err = Getenv(GetenvString, "VB_TEST_EMPTY", false, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)
}

func TestGetenvRequiredMissing(t *testing.T) {
	_, err := Getenv(GetenvString, "VB_TEST_DOES_NOT_EXIST", true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VB_TEST_DOES_NOT_EXIST")
}

func TestGetenvParseFailure(t *testing.T) {
	t.Setenv("VB_TEST_BAD_INT", "forty-two")
	_, err := Getenv(GetenvInt, "VB_TEST_BAD_INT", false, 0)
	assert.Error(t, err)
}

func TestMustGetenvPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustGetenv(GetenvString, "VB_TEST_DOES_NOT_EXIST", true, "")
	})
	assert.Equal(t, "dflt", MustGetenv(GetenvString, "VB_TEST_DOES_NOT_EXIST", false, "dflt"))
}
