package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmshlvck/tapi/pkg/dispatch"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tapi.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: "127.0.0.1"
listen_port: 8080
apikey: "secret"
commands:
  - endpoint: /testread
    read_file: /tmp/apitest-{x}
  - endpoint: /blob
    read_bin_file: /var/lib/tapi/{name}.bin
  - endpoint: /testwrite
    write_file: /tmp/apitest-{x}
  - endpoint: /testshell
    shell: echo Hello "x={x} y={y}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "secret", cfg.APIKey)

	endpoints, err := cfg.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, []dispatch.Endpoint{
		{Path: "/testread", Action: dispatch.ReadFile{PathTemplate: "/tmp/apitest-{x}"}},
		{Path: "/blob", Action: dispatch.ReadFile{PathTemplate: "/var/lib/tapi/{name}.bin", Binary: true}},
		{Path: "/testwrite", Action: dispatch.WriteFile{PathTemplate: "/tmp/apitest-{x}"}},
		{Path: "/testshell", Action: dispatch.Shell{CommandTemplate: `echo Hello "x={x} y={y}"`}},
	}, endpoints)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "two action keys",
			body: `
listen: "::"
listen_port: 8080
apikey: "k"
commands:
  - endpoint: /both
    read_file: /tmp/a
    shell: "true"
`,
			wantErr: "parse command #0",
		},
		{
			name: "no action key",
			body: `
listen: "::"
listen_port: 8080
apikey: "k"
commands:
  - endpoint: /none
`,
			wantErr: "exactly one of",
		},
		{
			name: "relative endpoint",
			body: `
listen: "::"
listen_port: 8080
apikey: "k"
commands:
  - endpoint: testread
    read_file: /tmp/a
`,
			wantErr: "absolute path",
		},
		{
			name: "empty apikey",
			body: `
listen: "::"
listen_port: 8080
commands: []
`,
			wantErr: "empty apikey",
		},
		{
			name: "port out of range",
			body: `
listen: "::"
listen_port: 70000
apikey: "k"
commands: []
`,
			wantErr: "listen_port out of range",
		},
		{
			name:    "not yaml",
			body:    "\t{nope",
			wantErr: "decode file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open file")
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Listen: "::", ListenPort: 8081}
	assert.Equal(t, "[::]:8081", cfg.Addr())
}
