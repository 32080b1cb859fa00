package updates

import (
	"strconv"
	"strings"
)

// IsNewer reports whether candidate is a strictly newer release than
// current. Both accept an optional "v" prefix; numeric segments compare
// numerically, and a longer version with a non-zero tail (1.2.1 vs 1.2)
// counts as newer. Pre-release suffixes after "-" are ignored for ordering.
func IsNewer(current, candidate string) bool {
	cur := versionSegments(current)
	cand := versionSegments(candidate)
	if len(cand) == 0 {
		return false
	}
	if len(cur) == 0 {
		return true
	}
	n := len(cur)
	if len(cand) > n {
		n = len(cand)
	}
	for i := 0; i < n; i++ {
		a, b := 0, 0
		if i < len(cur) {
			a = cur[i]
		}
		if i < len(cand) {
			b = cand[i]
		}
		if b > a {
			return true
		}
		if b < a {
			return false
		}
	}
	return false
}

func versionSegments(v string) []int {
	v = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(v), "v"))
	if v == "" {
		return nil
	}
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return out
		}
		out = append(out, n)
	}
	return out
}
