package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
base:
  maxUploadRows: 5000
  cacheTTLMinutes: 10
service.registry.manifest:
  maxUploadRows: 2000
`

func TestGetMergesServiceOverBase(t *testing.T) {
	c := Config{}
	require.NoError(t, c.SetFromBytes([]byte(testYAML)))

	merged, err := c.Get("service.registry.manifest")
	require.NoError(t, err)
	assert.Equal(t, 2000, merged["maxUploadRows"])
	assert.Equal(t, 10, merged["cacheTTLMinutes"])
}

func TestGetFallsBackToBase(t *testing.T) {
	c := Config{}
	require.NoError(t, c.SetFromBytes([]byte(testYAML)))

	base, err := c.Get("service.registry.unknown")
	require.NoError(t, err)
	assert.Equal(t, 5000, base["maxUploadRows"])
}

func TestSetFromBytesRejectsNonMap(t *testing.T) {
	c := Config{}
	assert.Error(t, c.SetFromBytes([]byte("- just\n- a\n- list\n")))
}
