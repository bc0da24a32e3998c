package filter

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = map[byte]int64{
	'B': 1,
	'K': 1 << 10,
	'M': 1 << 20,
	'G': 1 << 30,
	'T': 1 << 40,
}

// ParseSize parses a size such as "512", "100K" or "1.5G" into bytes.
// Suffixes are case-insensitive powers of 1024.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	num, mult := s, int64(1)
	if m, ok := sizeUnits[strings.ToUpper(s[len(s)-1:])[0]]; ok {
		num, mult = s[:len(s)-1], m
	}

	if n, err := strconv.ParseInt(num, 10, 64); err == nil && n >= 0 {
		return n * mult, nil
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(mult)), nil
}
