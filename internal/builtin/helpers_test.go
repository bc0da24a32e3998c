package builtin

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testIO holds the streams a builtin wrote to.
type testIO struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// newTestContext returns a context whose HandlerContext runs in dir with
// stdin as input and env as the only shell variables.
func newTestContext(dir, stdin string, env map[string]string) (context.Context, *testIO) {
	tio := &testIO{}
	ctx := WithHandlerContext(context.Background(), &HandlerContext{
		Stdin:  strings.NewReader(stdin),
		Stdout: &tio.stdout,
		Stderr: &tio.stderr,
		Dir:    dir,
		LookupEnv: func(name string) (string, bool) {
			v, ok := env[name]
			return v, ok
		},
	})
	return ctx, tio
}

func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
