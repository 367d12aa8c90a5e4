package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	phase Phase
	name  string
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

type countingActivator struct {
	runs int
	log  *[]string
}

func (a *countingActivator) Run(fn func()) {
	a.runs++
	fn()
	*a.log = append(*a.log, "flush")
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	act := &countingActivator{log: &log}
	r := NewRunner(act)
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseInput, "input", &log})
	r.Register(recorder{PhaseRender, "render", &log})
	r.Register(recorder{PhaseInput, "input2", &log})

	r.Tick(time.Millisecond)
	assert.Equal(t, []string{
		"input", "flush",
		"input2", "flush",
		"render", "flush",
		"cleanup", "flush",
	}, log)
	assert.Equal(t, 4, act.runs)
	assert.Equal(t, uint64(1), r.Ticks())
	assert.Equal(t, 4, r.Len())
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner(nil)
	r.Register(recorder{PhaseRender, "render", &log})
	r.Register(recorder{PhaseInput, "input", &log})

	r.TickPhase(PhaseInput, 0)
	assert.Equal(t, []string{"input"}, log)
	assert.Equal(t, uint64(0), r.Ticks())
	assert.Equal(t, "render", PhaseRender.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
