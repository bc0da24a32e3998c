package builtin

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/burrow/internal/config"
	"github.com/bamsammich/burrow/internal/engine"
	"github.com/bamsammich/burrow/internal/ui"
)

func TestCp_Help(t *testing.T) {
	t.Parallel()

	ctx, tio := newTestContext(t.TempDir(), "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-?"}))

	out := tio.stdout.String()
	assert.True(t, strings.HasPrefix(out,
		"Usage: cp [OPTIONS] SOURCE... DEST\nCopy SOURCE(s) to DESTination.\n\nOptions:\n"))
	assert.Contains(t, out, "--no-dereference")
	assert.Contains(t, out, "--recursive")
}

func TestCp_RelativePaths(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "hello")

	ctx, _ := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "a.txt", "b.txt"}))
	assert.Equal(t, "hello", readFile(t, filepath.Join(dir, "b.txt")))
}

func TestCp_Recursive(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "one.txt"), "1")
	writeFile(t, filepath.Join(dir, "src", "sub", "two.txt"), "2")

	ctx, _ := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-r", "src", "dst"}))
	assert.Equal(t, "1", readFile(t, filepath.Join(dir, "dst", "one.txt")))
	assert.Equal(t, "2", readFile(t, filepath.Join(dir, "dst", "sub", "two.txt")))
}

func TestCp_DirWithoutRecursiveWarns(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "one.txt"), "1")

	ctx, tio := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "src", "dst"}))
	assert.Contains(t, tio.stderr.String(), "level=WARN")
	assert.NoFileExists(t, filepath.Join(dir, "dst", "one.txt"))
}

func TestCp_MissingOperands(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext(t.TempDir(), "", nil)
	err := NewCp(nil).Run(ctx, []string{"cp"})
	require.EqualError(t, err, "missing source and destination")

	err = NewCp(nil).Run(ctx, []string{"cp", "-r", "only"})
	require.EqualError(t, err, "missing destination")
}

func TestCp_UnknownFlag(t *testing.T) {
	t.Parallel()

	ctx, _ := newTestContext(t.TempDir(), "", nil)
	err := NewCp(nil).Run(ctx, []string{"cp", "--bogus", "a", "b"})
	var uerr *UsageError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, err.Error(), "bogus")
}

func TestCp_InvalidBWLimit(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	ctx, _ := newTestContext(dir, "", nil)
	err := NewCp(nil).Run(ctx, []string{"cp", "--bwlimit", "fast", "a.txt", "b.txt"})
	var uerr *UsageError
	require.ErrorAs(t, err, &uerr)
	assert.NoFileExists(t, filepath.Join(dir, "b.txt"))
}

func TestCp_SourceErrorLocatesArgument(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	args := []string{"cp", "-r", "a.txt", "missing.txt", "out"}
	ctx, _ := newTestContext(dir, "", nil)
	err := NewCp(nil).Run(ctx, args)
	require.Error(t, err)

	var located engine.Located
	require.ErrorAs(t, err, &located)
	assert.Equal(t, 3, located.ArgIndex())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCp_ErrorSkipsMatchingFlagValue(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)

	args := []string{"cp", "--exclude", "missing.txt", "missing.txt", "out"}
	ctx, _ := newTestContext(dir, "", nil)
	err := NewCp(nil).Run(ctx, args)
	require.Error(t, err)

	var located engine.Located
	require.ErrorAs(t, err, &located)
	assert.Equal(t, 3, located.ArgIndex())
}

func TestCp_DeclineOverwrite(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "new")
	writeFile(t, filepath.Join(dir, "b.txt"), "old")

	ctx, tio := newTestContext(dir, "n\n", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "a.txt", "b.txt"}))
	assert.Contains(t, tio.stdout.String(), "Overwrite")
	assert.Equal(t, "old", readFile(t, filepath.Join(dir, "b.txt")))
}

func TestCp_AcceptOverwrite(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "new")
	writeFile(t, filepath.Join(dir, "b.txt"), "old")

	ctx, _ := newTestContext(dir, "y\n", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "a.txt", "b.txt"}))
	assert.Equal(t, "new", readFile(t, filepath.Join(dir, "b.txt")))
}

func TestCp_ForceSkipsPrompt(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "new")
	writeFile(t, filepath.Join(dir, "b.txt"), "old")

	ctx, tio := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-f", "a.txt", "b.txt"}))
	assert.NotContains(t, tio.stdout.String(), "Overwrite")
	assert.Equal(t, "new", readFile(t, filepath.Join(dir, "b.txt")))
}

func TestCp_NoConfirmVariable(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "new")
	writeFile(t, filepath.Join(dir, "b.txt"), "old")

	ctx, tio := newTestContext(dir, "", map[string]string{ui.EnvNoConfirm: "1"})
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "a.txt", "b.txt"}))
	assert.NotContains(t, tio.stdout.String(), "Overwrite")
	assert.Equal(t, "new", readFile(t, filepath.Join(dir, "b.txt")))
}

func TestCp_ConfigDefaults(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "new")
	writeFile(t, filepath.Join(dir, "b.txt"), "old")

	s := NewSession(config.Config{Cp: config.CpConfig{Interactive: boolPtr(false)}})

	// An explicit flag beats the config file.
	ctx, tio := newTestContext(dir, "n\n", nil)
	require.NoError(t, NewCp(s).Run(ctx, []string{"cp", "-i", "a.txt", "b.txt"}))
	assert.Contains(t, tio.stdout.String(), "Overwrite")
	assert.Equal(t, "old", readFile(t, filepath.Join(dir, "b.txt")))

	ctx, tio = newTestContext(dir, "", nil)
	require.NoError(t, NewCp(s).Run(ctx, []string{"cp", "a.txt", "b.txt"}))
	assert.NotContains(t, tio.stdout.String(), "Overwrite")
	assert.Equal(t, "new", readFile(t, filepath.Join(dir, "b.txt")))
}

func TestApplyCpDefaults(t *testing.T) {
	t.Parallel()

	c := NewCp(&Session{Config: config.Config{Cp: config.CpConfig{
		Preserve: boolPtr(false),
		Progress: boolPtr(true),
		NoHidden: boolPtr(true),
		Verify:   boolPtr(true),
		BWLimit:  strPtr("10M"),
	}}})

	f, err := c.parse([]string{"cp", "--bwlimit", "1M", "a", "b"})
	require.NoError(t, err)
	assert.True(t, f.noPreserve)
	assert.True(t, f.progress)
	assert.True(t, f.noHidden)
	assert.True(t, f.verify)
	assert.True(t, f.interactive)
	assert.Equal(t, "1M", f.bwlimit)
	assert.Equal(t, []string{"a", "b"}, f.operands)
}

func TestCp_ExcludeFromConfigAndFlags(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "keep.txt"), "k")
	writeFile(t, filepath.Join(dir, "src", "drop.log"), "d")
	writeFile(t, filepath.Join(dir, "src", "drop.tmp"), "t")
	writeFile(t, filepath.Join(dir, "src", "important.log"), "i")

	s := NewSession(config.Config{Cp: config.CpConfig{Exclude: []string{"*.log"}}})
	ctx, _ := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(s).Run(ctx, []string{
		"cp", "-r", "--exclude", "*.tmp", "--include", "important.log", "src", "dst",
	}))

	assert.FileExists(t, filepath.Join(dir, "dst", "keep.txt"))
	assert.FileExists(t, filepath.Join(dir, "dst", "important.log"))
	assert.NoFileExists(t, filepath.Join(dir, "dst", "drop.log"))
	assert.NoFileExists(t, filepath.Join(dir, "dst", "drop.tmp"))
}

func TestCp_FilterFile(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "keep.txt"), "k")
	writeFile(t, filepath.Join(dir, "src", "drop.bin"), "d")
	writeFile(t, filepath.Join(dir, "rules"), "# binaries\n- *.bin\n")

	ctx, _ := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-r", "--filter", "rules", "src", "dst"}))
	assert.FileExists(t, filepath.Join(dir, "dst", "keep.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "dst", "drop.bin"))
}

func TestCp_SizeRange(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "small"), "x")
	writeFile(t, filepath.Join(dir, "src", "big"), strings.Repeat("x", 4096))

	ctx, _ := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-r", "--min-size", "1K", "src", "dst"}))
	assert.FileExists(t, filepath.Join(dir, "dst", "big"))
	assert.NoFileExists(t, filepath.Join(dir, "dst", "small"))

	err := NewCp(nil).Run(ctx, []string{"cp", "-r", "--min-size", "2K", "--max-size", "1K", "src", "dst2"})
	var uerr *UsageError
	require.ErrorAs(t, err, &uerr)
}

func TestCp_InterruptedIsNotAnError(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "one.txt"), "1")

	s := NewSession(config.Config{})
	s.Interrupt.Set()

	ctx, tio := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(s).Run(ctx, []string{"cp", "-r", "-v", "src", "dst"}))
	assert.NoDirExists(t, filepath.Join(dir, "dst"))
	assert.Contains(t, tio.stdout.String(), "Aborted")
}

func TestCp_Progress(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "one.txt"), "1")

	ctx, tio := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-rv", "src", "dst"}))
	assert.Contains(t, tio.stdout.String(), "one.txt")
	assert.True(t, strings.HasSuffix(tio.stdout.String(), "Ok\n"))
	assert.Contains(t, tio.stderr.String(), "done")
}

func TestCp_DebugTracesPlan(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	ctx, tio := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-d", "a.txt", "b.txt"}))
	assert.Contains(t, tio.stderr.String(), "level=DEBUG")
	assert.Contains(t, tio.stderr.String(), "msg=plan")
	assert.NotContains(t, tio.stderr.String(), "time=")
}

func TestCp_SessionLogReceivesEvents(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "x")

	var logBuf bytes.Buffer
	s := NewSession(config.Config{})
	s.LogHandler = slog.NewJSONHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	ctx, _ := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(s).Run(ctx, []string{"cp", "a.txt", "b.txt"}))
	assert.Contains(t, logBuf.String(), `"msg":"burrow.event"`)
	assert.Contains(t, logBuf.String(), `"type":"Finished"`)
}

func TestCp_Verify(t *testing.T) {
	t.Parallel()

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "src", "one.txt"), "1")
	writeFile(t, filepath.Join(dir, "src", "two.txt"), "2")

	ctx, tio := newTestContext(dir, "", nil)
	require.NoError(t, NewCp(nil).Run(ctx, []string{"cp", "-rv", "--verify", "src", "dst"}))
	assert.Contains(t, tio.stderr.String(), "verified 2")
}

func TestCp_ExecErrorIsReturned(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	dir := realTempDir(t)
	writeFile(t, filepath.Join(dir, "a.txt"), "x")
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0o555))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	ctx, _ := newTestContext(dir, "", nil)
	err := NewCp(nil).Run(ctx, []string{"cp", "a.txt", "locked"})
	require.Error(t, err)
	var xerr *engine.ExecError
	assert.True(t, errors.As(err, &xerr))
}

func TestAbsPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", absPath("/work", ""))
	assert.Equal(t, "/abs", absPath("/work", "/abs"))
	assert.Equal(t, filepath.Join("/work", "rel"), absPath("/work", "rel"))
}
