package services

import (
	"fmt"
	"path/filepath"
	"strings"
)

// namePlanner hands out output paths that are unique within one batch.
// A repeated name gets "-2", "-3", ... before its extension, in input order.
// Paths are compared case-insensitively so plans hold on case-folding
// filesystems too.
type namePlanner struct {
	taken map[string]struct{}
}

func newNamePlanner(reserved ...string) *namePlanner {
	p := &namePlanner{taken: make(map[string]struct{}, len(reserved))}
	for _, path := range reserved {
		p.taken[planKey(path)] = struct{}{}
	}
	return p
}

// Claim returns path, or the first free suffixed variant of it
func (p *namePlanner) Claim(path string) string {
	candidate := path
	if _, used := p.taken[planKey(candidate)]; used {
		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(path, ext)
		for n := 2; ; n++ {
			candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
			if _, used := p.taken[planKey(candidate)]; !used {
				break
			}
		}
	}
	p.taken[planKey(candidate)] = struct{}{}
	return candidate
}

func planKey(path string) string {
	return strings.ToLower(filepath.Clean(path))
}
