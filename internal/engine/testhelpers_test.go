package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bamsammich/burrow/internal/event"
	"github.com/bamsammich/burrow/internal/interrupt"
)

// realTempDir returns a temp dir with its own symlinks resolved, so that
// dereferenced plan keys compare equal to paths built in the test.
func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// createTestTree populates root with a standard test tree:
//
//	root.txt          (17 bytes)
//	big.bin           (320KB)
//	sub/mid.txt       (19 bytes)
//	sub/deep/leaf.txt (17 bytes)
func createTestTree(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	writeFile(t, filepath.Join(root, "root.txt"), "root file content")
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "big.bin"),
		bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20000), // 320KB
		0o644,
	))
	writeFile(t, filepath.Join(root, "sub", "mid.txt"), "middle file content")
	writeFile(t, filepath.Join(root, "sub", "deep", "leaf.txt"), "leaf file content")
}

var testTreeFiles = []string{
	"root.txt",
	"big.bin",
	filepath.Join("sub", "mid.txt"),
	filepath.Join("sub", "deep", "leaf.txt"),
}

// verifyTreeCopy checks that dstRoot mirrors the tree createTestTree
// built under srcRoot, byte for byte.
func verifyTreeCopy(t *testing.T, srcRoot, dstRoot string) {
	t.Helper()

	for _, rel := range testTreeFiles {
		srcData, err := os.ReadFile(filepath.Join(srcRoot, rel))
		require.NoError(t, err, "read src %s", rel)
		dstData, err := os.ReadFile(filepath.Join(dstRoot, rel))
		require.NoError(t, err, "read dst %s", rel)
		require.Equal(t, srcData, dstData, "content mismatch for %s", rel)
	}

	for _, rel := range []string{"sub", filepath.Join("sub", "deep")} {
		info, err := os.Stat(filepath.Join(dstRoot, rel))
		require.NoError(t, err, "stat dst dir %s", rel)
		require.True(t, info.IsDir(), "%s should be a directory", rel)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// noTmpFiles asserts no in-flight temporary files remain under root.
func noTmpFiles(t *testing.T, root string) {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, "*"+tmpSuffix))
	require.NoError(t, err)
	require.Empty(t, matches)
	hidden, err := filepath.Glob(filepath.Join(root, ".*"+tmpSuffix))
	require.NoError(t, err)
	require.Empty(t, hidden)
}

// scriptedConfirmer replays answers and records prompts.
type scriptedConfirmer struct {
	answers []Answer
	prompts []string
	many    []bool
}

func (c *scriptedConfirmer) Confirm(prompt string, many bool) (Answer, error) {
	c.prompts = append(c.prompts, prompt)
	c.many = append(c.many, many)
	if len(c.answers) == 0 {
		return No, nil
	}
	a := c.answers[0]
	c.answers = c.answers[1:]
	return a, nil
}

// collectEvents returns a sink and the slice it appends to.
func collectEvents() (event.Sink, *[]event.Event) {
	var events []event.Event
	return func(e event.Event) { events = append(events, e) }, &events
}

// copyArgs builds Config.Args the way the cp builtin does.
func copyArgs(sources []string, dest string) []string {
	args := append([]string{"cp"}, sources...)
	return append(args, dest)
}

func runCopy(t *testing.T, cfg Config) Result {
	t.Helper()
	if cfg.Args == nil {
		cfg.Args = copyArgs(cfg.Sources, cfg.Dest)
	}
	return Run(context.Background(), cfg)
}

// planOnly builds a plan without executing it.
func planOnly(t *testing.T, cfg Config) (*Plan, bool, error) {
	t.Helper()
	if cfg.Args == nil {
		cfg.Args = copyArgs(cfg.Sources, cfg.Dest)
	}
	cfg = cfg.withDefaults()
	return newPlanner(cfg, interrupt.Any(cfg.Interrupt)).build()
}

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(p, 0o755))
	}
}
