package verification

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsMarker(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"server1.log": "I1018 started\nE1018 PROTOCOL_ERROR: bad header\n",
		"client1.log": "I1018 all good\n",
	})

	found, err := ContainsMarker(filepath.Join(dir, "server1.log"), ProtocolErrorMarker)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = ContainsMarker(filepath.Join(dir, "client1.log"), ProtocolErrorMarker)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = ContainsMarker(filepath.Join(dir, "missing.log"), ProtocolErrorMarker)
	assert.Error(t, err)
}

func TestAnyLogContains(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"client1.log": "PROTOCOL_ERROR\n",
		"server1.log": "PROTOCOL_ERROR\n",
		"client2.log": "",
		"server2.log": "",
	})
	client1, server1 := filepath.Join(dir, "client1.log"), filepath.Join(dir, "server1.log")

	found, err := AnyLogContains(client1, server1, ProtocolErrorMarker)
	require.NoError(t, err)
	assert.Equal(t, []string{client1, server1}, found)

	found, err = AnyLogContains(filepath.Join(dir, "client2.log"), filepath.Join(dir, "server2.log"), ProtocolErrorMarker)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = AnyLogContains(filepath.Join(dir, "client3.log"), server1, ProtocolErrorMarker)
	assert.Error(t, err)
	assert.Equal(t, []string{server1}, found)
}
