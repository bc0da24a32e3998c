package shell

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// PromptBuilder expands a prompt template. Supported escapes:
//
//	\u  user name ($USER or $USERNAME)
//	\h  host name ($HOSTNAME, $USERDOMAIN, $COMPUTERNAME, $NAME, then the OS)
//	\w  working directory, with $HOME shown as ~
//	\$  '#' for the superuser, '$' otherwise
//
// Any other escaped character stands for itself.
type PromptBuilder struct {
	Lookup func(name string) (string, bool)
	// Elevated forces the superuser marker regardless of the user name.
	Elevated bool
}

// Build expands tmpl for the working directory dir.
func (b PromptBuilder) Build(tmpl, dir string) string {
	var sb strings.Builder
	runes := []rune(tmpl)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			sb.WriteRune(runes[i])
			continue
		}
		i++
		if i == len(runes) {
			break
		}
		switch runes[i] {
		case 'u':
			sb.WriteString(b.user())
		case 'h':
			sb.WriteString(b.host())
		case 'w':
			sb.WriteString(b.tildeDir(dir))
		case '$':
			if b.isRoot() {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('$')
			}
		default:
			sb.WriteRune(runes[i])
		}
	}
	return sb.String()
}

func (b PromptBuilder) first(names ...string) (string, bool) {
	if b.Lookup == nil {
		return "", false
	}
	for _, name := range names {
		if v, ok := b.Lookup(name); ok {
			return v, true
		}
	}
	return "", false
}

func (b PromptBuilder) user() string {
	u, _ := b.first("USER", "USERNAME")
	return u
}

func (b PromptBuilder) host() string {
	if h, ok := b.first("HOSTNAME", "USERDOMAIN", "COMPUTERNAME", "NAME"); ok {
		return h
	}
	h, _ := os.Hostname()
	return h
}

func (b PromptBuilder) isRoot() bool {
	return b.Elevated || b.user() == "root"
}

// tildeDir replaces a leading $HOME in dir with ~.
func (b PromptBuilder) tildeDir(dir string) string {
	home, ok := b.first("HOME")
	if !ok || home == "" {
		return dir
	}
	home = filepath.Clean(home)
	if len(dir) < len(home) || !samePath(dir[:len(home)], home) {
		return dir
	}
	rest := dir[len(home):]
	if rest != "" && !os.IsPathSeparator(rest[0]) {
		return dir
	}
	return "~" + rest
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
