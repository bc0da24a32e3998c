package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern is a glob compiled to a regular expression over slash-separated
// relative paths.
type pattern struct {
	re      *regexp.Regexp
	glob    string
	dirOnly bool // trailing "/": matches directories only
}

// compilePattern translates an rsync-style glob. A leading "/" or any
// inner "/" anchors the pattern at the copy root; otherwise it matches a
// trailing run of path components.
func compilePattern(glob string) (*pattern, error) {
	if glob == "" || glob == "/" {
		return nil, fmt.Errorf("empty filter pattern")
	}
	p := &pattern{glob: glob}

	body := glob
	if strings.HasSuffix(body, "/") {
		p.dirOnly = true
		body = strings.TrimSuffix(body, "/")
	}
	anchored := strings.Contains(body, "/")
	body = strings.TrimPrefix(body, "/")

	prefix := "(^|/)"
	if anchored {
		prefix = "^"
	}
	re, err := regexp.Compile(prefix + translateGlob(body) + "$")
	if err != nil {
		return nil, fmt.Errorf("filter pattern %q: %w", glob, err)
	}
	p.re = re
	return p, nil
}

func (p *pattern) match(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	return p.re.MatchString(rel)
}

// translateGlob converts glob syntax to regexp syntax:
//
//	**/  zero or more leading directories
//	**   anything, including "/"
//	*    anything within one component
//	?    one character other than "/"
//	[..] character class, "!" negates
func translateGlob(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch {
		case strings.HasPrefix(glob[i:], "**/"):
			b.WriteString("(.*/)?")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			b.WriteString(".*")
			i++
		case c == '*':
			b.WriteString("[^/]*")
		case c == '?':
			b.WriteString("[^/]")
		case c == '[':
			end := classEnd(glob, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return b.String()
}

// classEnd returns the index of the "]" closing the class opened at
// glob[open], or -1. A "]" directly after "[" or "[!" is literal.
func classEnd(glob string, open int) int {
	j := open + 1
	if j < len(glob) && glob[j] == '!' {
		j++
	}
	if j < len(glob) && glob[j] == ']' {
		j++
	}
	if k := strings.IndexByte(glob[j:], ']'); k >= 0 {
		return j + k
	}
	return -1
}
