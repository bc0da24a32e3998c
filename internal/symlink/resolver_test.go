package symlink

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// realTempDir returns a temp dir with its own symlinks already resolved
// (macOS puts TMPDIR behind /var -> /private/var).
func realTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestDereference_PlainPath(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	got, err := NewResolver(dir).Dereference(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestDereference_RelativeAnchoredAtDir(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "f"), nil, 0o644))

	got, err := NewResolver(dir).Dereference(filepath.Join("sub", ".", "f"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sub", "f"), got)
}

func TestDereference_LinkChain(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	require.NoError(t, os.Symlink("target.txt", filepath.Join(dir, "l2")))
	require.NoError(t, os.Symlink("l2", filepath.Join(dir, "l1")))

	got, err := NewResolver(dir).Dereference(filepath.Join(dir, "l1"))
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestDereference_AbsoluteTargetReplacesPrefix(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	real := filepath.Join(dir, "real", "dir")
	require.NoError(t, os.MkdirAll(real, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(real, "f"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a"), 0o755))
	require.NoError(t, os.Symlink(real, filepath.Join(dir, "a", "lnk")))

	got, err := NewResolver(dir).Dereference(filepath.Join(dir, "a", "lnk", "f"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(real, "f"), got)
}

func TestDereference_DotDotInTarget(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	target := filepath.Join(dir, "target")
	require.NoError(t, os.WriteFile(target, nil, 0o644))
	require.NoError(t, os.Symlink(filepath.Join("..", "target"), filepath.Join(dir, "sub", "l")))

	got, err := NewResolver(dir).Dereference(filepath.Join(dir, "sub", "l"))
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestDereference_DotDotAfterLinkIsPhysical(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	deep := filepath.Join(dir, "other", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other", "x"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "base"), 0o755))
	require.NoError(t, os.Symlink(deep, filepath.Join(dir, "base", "lnk")))

	got, err := NewResolver(dir).Dereference(filepath.Join(dir, "base", "lnk", "..", "x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "other", "x"), got)
}

func TestDereference_CycleTerminates(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	require.NoError(t, os.Symlink("b", filepath.Join(dir, "a")))
	require.NoError(t, os.Symlink("a", filepath.Join(dir, "b")))

	got, err := NewResolver(dir).Dereference(filepath.Join(dir, "a"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a"), got)
}

func TestDereference_SelfLoop(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	require.NoError(t, os.Symlink("self", filepath.Join(dir, "self")))

	got, err := NewResolver(dir).Dereference(filepath.Join(dir, "self"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "self"), got)
}

func TestDereference_MissingComponent(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	missing := filepath.Join(dir, "nope")

	_, err := NewResolver(dir).Dereference(filepath.Join(missing, "f"))
	require.Error(t, err)

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, missing, re.Path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestDereference_CachesPrefixes(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real", "f"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real", "g"), nil, 0o644))
	require.NoError(t, os.Symlink("real", filepath.Join(dir, "lnk")))

	r := NewResolver(dir)
	queries := 0
	r.readLink = func(p string) (string, bool, error) {
		queries++
		return readLink(p)
	}

	_, err := r.Dereference(filepath.Join(dir, "lnk", "f"))
	require.NoError(t, err)
	first := queries

	got, err := r.Dereference(filepath.Join(dir, "lnk", "f"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "real", "f"), got)
	assert.Equal(t, first, queries, "repeat resolution must not query the filesystem")

	_, err = r.Dereference(filepath.Join(dir, "lnk", "g"))
	require.NoError(t, err)
	assert.Equal(t, first+1, queries, "shared prefix resolved once")
}

func TestDereference_NovelChainHitsDepthBound(t *testing.T) {
	t.Parallel()
	root := string(filepath.Separator)

	r := NewResolver(root)
	// Every path ending in "l" links to "l/l", producing a new string per step.
	r.readLink = func(p string) (string, bool, error) {
		if filepath.Base(p) == "l" {
			return filepath.Join("l", "l"), true, nil
		}
		return "", false, nil
	}

	_, err := r.Dereference(root + "l")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyLinks)
}

func TestResolve_NoFollow(t *testing.T) {
	t.Parallel()
	r := NewResolver("")
	got, err := r.Resolve(filepath.Join("does", "not", "exist"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("does", "not", "exist"), got)
}

func TestIsLink(t *testing.T) {
	t.Parallel()
	dir := realTempDir(t)
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.NoError(t, os.Symlink("f", filepath.Join(dir, "l")))

	ok, err := IsLink(file)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsLink(filepath.Join(dir, "l"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = IsLink(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestPushPopComponent(t *testing.T) {
	t.Parallel()
	sep := string(filepath.Separator)
	root := sep

	assert.Equal(t, root+"a", pushComponent(root, "a"))
	assert.Equal(t, root+"a"+sep+"b", pushComponent(root+"a", "b"))
	assert.Equal(t, root+"a", popComponent(root+"a"+sep+"b"))
	assert.Equal(t, root, popComponent(root+"a"))
	assert.Equal(t, root, popComponent(root))
}

func lxBuffer(tag uint32, target string) []byte {
	buf := make([]byte, 12+len(target))
	binary.LittleEndian.PutUint32(buf[0:4], tag)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(4+len(target)))
	binary.LittleEndian.PutUint32(buf[8:12], 2)
	copy(buf[12:], target)
	return buf
}

func TestParseLxSymlink(t *testing.T) {
	t.Parallel()

	got, ok, err := parseLxSymlink(lxBuffer(ioReparseTagLxSymlink, "../dir/file"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, filepath.FromSlash("../dir/file"), got)

	_, ok, err = parseLxSymlink(lxBuffer(0xA000000C, "ignored"))
	require.NoError(t, err)
	assert.False(t, ok, "native symlink tag is not a foreign link")

	bad := lxBuffer(ioReparseTagLxSymlink, "x")
	binary.LittleEndian.PutUint16(bad[4:6], 200)
	_, _, err = parseLxSymlink(bad)
	assert.ErrorIs(t, err, errMalformedReparse)

	_, _, err = parseLxSymlink([]byte{1, 2})
	assert.ErrorIs(t, err, errMalformedReparse)
}

func TestResolveError_Message(t *testing.T) {
	t.Parallel()
	err := &ResolveError{Path: "/x", Err: fs.ErrPermission}
	assert.True(t, strings.HasPrefix(err.Error(), "/x: "))
	assert.ErrorIs(t, err, fs.ErrPermission)
}
