// control/vars.go
// Author: momentics <momentics@gmail.com>
//
// Named debug vars: cheap callbacks sampled on demand for state dumps.

package control

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Vars holds named sampling functions.
type Vars struct {
	mu     sync.RWMutex
	vars map[string]func() any
}

// NewVars creates a var registry.
func NewVars() *Vars {
	return &Vars{
		vars: make(map[string]func() any),
	}
}

// Register inserts or replaces a named var.
func (p *Vars) Register(name string, fn func() any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vars[name] = fn
}

// UnregisterPrefix drops every var whose name starts with prefix.
func (p *Vars) UnregisterPrefix(prefix string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name := range p.vars {
		if strings.HasPrefix(name, prefix) {
			delete(p.vars, name)
		}
	}
}

// Dump samples every var. Nil registries dump nothing.
func (p *Vars) Dump() map[string]any {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	fns := make(map[string]func() any, len(p.vars))
	for k, fn := range p.vars {
		fns[k] = fn
	}
	p.mu.RUnlock()

	// sampled outside the lock; a sampler may itself register vars
	out := make(map[string]any, len(fns))
	for k, fn := range fns {
		out[k] = fn()
	}
	return out
}

// Fields renders a dump as zap fields in name order.
func (p *Vars) Fields() []zap.Field {
	state := p.Dump()
	names := make([]string, 0, len(state))
	for k := range state {
		names = append(names, k)
	}
	sort.Strings(names)
	fields := make([]zap.Field, 0, len(names))
	for _, k := range names {
		fields = append(fields, zap.Any(k, state[k]))
	}
	return fields
}
