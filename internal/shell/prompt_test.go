package shell

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mapLookup(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestPromptBuilder_Default(t *testing.T) {
	t.Parallel()

	home := filepath.FromSlash("/home/alice")
	b := PromptBuilder{Lookup: mapLookup(map[string]string{
		"USER":     "alice",
		"HOSTNAME": "burrow",
		"HOME":     home,
	})}

	got := b.Build(`\u@\h|\w\$ `, filepath.Join(home, "src"))
	assert.Equal(t, "alice@burrow|~"+string(filepath.Separator)+"src$ ", got)
}

func TestPromptBuilder_Root(t *testing.T) {
	t.Parallel()

	b := PromptBuilder{Lookup: mapLookup(map[string]string{"USERNAME": "root", "NAME": "box"})}
	assert.Equal(t, "root@box# ", b.Build(`\u@\h\$ `, "/"))

	b = PromptBuilder{Lookup: mapLookup(nil), Elevated: true}
	assert.Equal(t, "#", b.Build(`\$`, "/"))
}

func TestPromptBuilder_HostFallbackOrder(t *testing.T) {
	t.Parallel()

	b := PromptBuilder{Lookup: mapLookup(map[string]string{
		"COMPUTERNAME": "third",
		"USERDOMAIN":   "second",
	})}
	assert.Equal(t, "second", b.Build(`\h`, "/"))
}

func TestPromptBuilder_Escapes(t *testing.T) {
	t.Parallel()

	b := PromptBuilder{Lookup: mapLookup(nil)}
	assert.Equal(t, `x\y> `, b.Build(`\x\\y> `, "/"))
	assert.Equal(t, "end", b.Build(`end\`, "/"))
	assert.Equal(t, "plain", b.Build("plain", "/"))
}

func TestPromptBuilder_TildeNeedsBoundary(t *testing.T) {
	t.Parallel()

	home := filepath.FromSlash("/home/al")
	b := PromptBuilder{Lookup: mapLookup(map[string]string{"HOME": home})}

	other := filepath.FromSlash("/home/alice")
	assert.Equal(t, other, b.Build(`\w`, other))
	assert.Equal(t, "~", b.Build(`\w`, home))
}

func TestPromptBuilder_NoHome(t *testing.T) {
	t.Parallel()

	b := PromptBuilder{Lookup: mapLookup(nil)}
	dir := filepath.FromSlash("/work")
	assert.Equal(t, dir, b.Build(`\w`, dir))
}
