package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// AddRule parses one rule line: "+ glob" includes, "- glob" or a bare glob
// excludes. Blank lines and "#" comments are accepted and ignored.
func (c *Chain) AddRule(line string) error {
	line = strings.TrimSpace(line)
	switch {
	case line == "", strings.HasPrefix(line, "#"):
		return nil
	case strings.HasPrefix(line, "+ "):
		return c.AddInclude(strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "- "):
		return c.AddExclude(strings.TrimSpace(line[2:]))
	default:
		return c.AddExclude(line)
	}
}

// LoadFile reads rules from path, one per line, in AddRule syntax.
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		if err := c.AddRule(scanner.Text()); err != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, n, err)
		}
	}
	return scanner.Err()
}
