package engine

import (
	"os"
	"slices"
	"strings"
)

// Action is the kind of filesystem operation a WorkItem performs.
type Action int

const (
	// Copy streams a regular file (or recreates a special file).
	Copy Action = iota + 1
	// CreateDir creates a directory if it does not already exist.
	CreateDir
	// Link recreates a symbolic link.
	Link
)

func (a Action) String() string {
	switch a {
	case Copy:
		return "copy"
	case CreateDir:
		return "mkdir"
	case Link:
		return "link"
	default:
		return "unknown"
	}
}

// WorkItem is one planned filesystem operation.
type WorkItem struct {
	// Origin is the command-line source argument the item descends from.
	// It is used only to locate errors on the command line.
	Origin string
	Action Action
	// Src is the path to read from for Copy and CreateDir, and the
	// destination-relative link target for Link.
	Src string
	// Size is the apparent size of a Copy source.
	Size int64
}

// Plan maps destination paths to work items. Iteration is in component-wise
// lexical order of the destination, so a directory always precedes its
// contents.
type Plan struct {
	items map[string]WorkItem
	keys  []string // sorted lazily
	size  int64
}

func newPlan() *Plan {
	return &Plan{items: make(map[string]WorkItem)}
}

// Len returns the number of planned items.
func (p *Plan) Len() int { return len(p.items) }

// Count returns the number of items with action a.
func (p *Plan) Count(a Action) int {
	n := 0
	for _, w := range p.items {
		if w.Action == a {
			n++
		}
	}
	return n
}

// TotalSize is the summed apparent size of all Copy items.
func (p *Plan) TotalSize() int64 { return p.size }

// Get returns the item planned for dest.
func (p *Plan) Get(dest string) (WorkItem, bool) {
	w, ok := p.items[dest]
	return w, ok
}

// put stores w under dest, returning the item it replaced.
func (p *Plan) put(dest string, w WorkItem) (WorkItem, bool) {
	prev, replaced := p.items[dest]
	if replaced {
		p.size -= prev.Size
	} else {
		p.keys = nil
	}
	p.items[dest] = w
	p.size += w.Size
	return prev, replaced
}

// Keys returns the planned destinations in execution order.
func (p *Plan) Keys() []string {
	if p.keys == nil {
		p.keys = make([]string, 0, len(p.items))
		for k := range p.items {
			p.keys = append(p.keys, k)
		}
		slices.SortFunc(p.keys, comparePaths)
	}
	return p.keys
}

// Each calls fn for every item in execution order until fn returns false.
func (p *Plan) Each(fn func(dest string, w WorkItem) bool) {
	for _, k := range p.Keys() {
		if !fn(k, p.items[k]) {
			return
		}
	}
}

// comparePaths orders paths component by component, so "a/b" sorts
// between "a" and "a-b".
func comparePaths(a, b string) int {
	return slices.Compare(splitComponents(a), splitComponents(b))
}

func splitComponents(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r < 0x80 && os.IsPathSeparator(uint8(r))
	})
}
