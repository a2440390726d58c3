package control_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/hioload-evio/control"
)

func TestVarsDumpAndFields(t *testing.T) {
	p := control.NewVars()
	n := 0
	p.Register("b.count", func() any { n++; return n })
	p.Register("a.name", func() any { return "io" })

	state := p.Dump()
	assert.Equal(t, map[string]any{"a.name": "io", "b.count": 1}, state)

	fields := p.Fields()
	if assert.Len(t, fields, 2) {
		assert.Equal(t, "a.name", fields[0].Key)
		assert.Equal(t, "b.count", fields[1].Key)
	}
}

func TestVarsUnregisterPrefix(t *testing.T) {
	p := control.NewVars()
	p.Register("loop.io.state", func() any { return "running" })
	p.Register("loop.io.queue_depth", func() any { return 0 })
	p.Register("loop.timer.state", func() any { return "idle" })

	p.UnregisterPrefix("loop.io.")
	assert.Equal(t, map[string]any{"loop.timer.state": "idle"}, p.Dump())
}

func TestVarMayRegisterWhileDumping(t *testing.T) {
	p := control.NewVars()
	p.Register("self", func() any {
		p.Register("late", func() any { return true })
		return 1
	})
	assert.NotPanics(t, func() { p.Dump() })
	assert.Contains(t, p.Dump(), "late")
}

func TestNilVars(t *testing.T) {
	var p *control.Vars
	assert.Nil(t, p.Dump())
	assert.Empty(t, p.Fields())
}
