// Package filter decides which entries of a source tree take part in a copy.
//
// Rules are rsync-style globs evaluated in the order they were added; the
// first matching rule decides. Entries no rule matches are included.
package filter

import (
	"path/filepath"
	"strings"
)

type rule struct {
	pat     *pattern
	include bool
}

// Chain holds an ordered list of filter rules plus size bounds.
type Chain struct {
	rules   []rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends a rule dropping entries that match glob.
func (c *Chain) AddExclude(glob string) error {
	return c.add(glob, false)
}

// AddInclude appends a rule keeping entries that match glob.
func (c *Chain) AddInclude(glob string) error {
	return c.add(glob, true)
}

func (c *Chain) add(glob string, include bool) error {
	p, err := compilePattern(glob)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, rule{pat: p, include: include})
	return nil
}

// SetSizeRange bounds the size of regular files. Zero disables a bound.
func (c *Chain) SetSizeRange(minSize, maxSize int64) {
	c.minSize = minSize
	c.maxSize = maxSize
}

// Empty reports whether the chain has no rules and no size bounds.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Len returns the number of glob rules.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// Match reports whether the entry at rel takes part in the copy. rel is
// relative to the copy root and may use OS separators; size is ignored for
// directories. A nil chain matches everything.
func (c *Chain) Match(rel string, isDir bool, size int64) bool {
	if c.Empty() {
		return true
	}
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	rel = filepath.ToSlash(rel)
	for _, r := range c.rules {
		if r.pat.match(rel, isDir) {
			return r.include
		}
	}
	return true
}

// String lists the rules in evaluation order, e.g. "+ *.go, - *.log".
func (c *Chain) String() string {
	if c == nil {
		return ""
	}
	parts := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		sign := "-"
		if r.include {
			sign = "+"
		}
		parts = append(parts, sign+" "+r.pat.glob)
	}
	return strings.Join(parts, ", ")
}
