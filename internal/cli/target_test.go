package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScanTarget_DefaultLocal(t *testing.T) {
	target, err := resolveScanTarget(nil)
	require.NoError(t, err)
	assert.False(t, target.Remote)
	assert.Equal(t, ".", target.LocalPath)
}

func TestResolveScanTarget_ExistingLocalPathWins(t *testing.T) {
	localPath := filepath.Join(t.TempDir(), "alice@server")
	require.NoError(t, os.Mkdir(localPath, 0o755))

	target, err := resolveScanTarget([]string{localPath})
	require.NoError(t, err)
	assert.False(t, target.Remote)
	assert.Equal(t, localPath, target.LocalPath)

	_, err = resolveScanTarget([]string{localPath, "/tmp"})
	assert.Error(t, err, "extra args in local mode")
}

func TestResolveScanTarget_Remote(t *testing.T) {
	tests := []struct {
		args []string
		dest string
		path string
	}{
		{args: []string{"alice@10.0.0.5"}, dest: "alice@10.0.0.5", path: "."},
		{args: []string{"alice@10.0.0.5", "/var/log"}, dest: "alice@10.0.0.5", path: "/var/log"},
		{args: []string{"alice@10.0.0.5", "  "}, dest: "alice@10.0.0.5", path: "."},
		{args: []string{"alice@[::1]"}, dest: "alice@[::1]", path: "."},
	}
	for _, tc := range tests {
		target, err := resolveScanTarget(tc.args)
		require.NoError(t, err, "%v", tc.args)
		assert.True(t, target.Remote, "%v", tc.args)
		assert.Equal(t, tc.dest, target.SSHDestination, "%v", tc.args)
		assert.Equal(t, tc.path, target.RemotePath, "%v", tc.args)
	}

	_, err := resolveScanTarget([]string{"alice@host", "/a", "/b"})
	assert.Error(t, err, "extra args in remote mode")
}

func TestResolveScanTarget_RejectsMalformedRemote(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{target: "alice@example.com:2222", want: "--ssh-port"},
		{target: "alice@[::1]:2222", want: "--ssh-port"},
		{target: "@example.com", want: "expected user@host"},
		{target: "alice@", want: "expected user@host"},
		{target: "-oProxy@host", want: "invalid remote target"},
		{target: "alice@[::1", want: "malformed bracketed host"},
		{target: "alice@[]", want: "malformed bracketed host"},
		{target: "alice@ho]st", want: "malformed bracketed host"},
	}
	for _, tc := range tests {
		_, err := resolveScanTarget([]string{tc.target})
		require.Error(t, err, tc.target)
		assert.Contains(t, err.Error(), tc.want, tc.target)
	}
}

func TestResolveScanTarget_PlainNameIsLocal(t *testing.T) {
	target, err := resolveScanTarget([]string{"does-not-exist"})
	require.NoError(t, err)
	assert.False(t, target.Remote)
	assert.Equal(t, "does-not-exist", target.LocalPath)
}
