package scheduler

import (
	"testing"
	"time"

	"github.com/allmytab/startpage/internal/logger"
)

type fakePruner struct {
	pruned int
	gotAge time.Duration
	calls  int
}

func (f *fakePruner) Prune(age time.Duration) int {
	f.calls++
	f.gotAge = age
	return f.pruned
}

func TestCacheJanitorSweep(t *testing.T) {
	log := logger.New("error", false)
	a := &fakePruner{pruned: 3}
	b := &fakePruner{pruned: 0}

	cj := NewCacheJanitor(log, time.Minute, 10*time.Minute, a, b)
	cj.Sweep()

	if a.calls != 1 || b.calls != 1 {
		t.Errorf("pruner calls = %d/%d, want 1/1", a.calls, b.calls)
	}
	if a.gotAge != 10*time.Minute {
		t.Errorf("prune age = %v, want 10m", a.gotAge)
	}
}

func TestCacheJanitorDefaultMaxAge(t *testing.T) {
	log := logger.New("error", false)
	p := &fakePruner{}

	cj := NewCacheJanitor(log, time.Minute, 0, p)
	cj.Sweep()

	if p.gotAge != DefaultJanitorMaxAge {
		t.Errorf("prune age = %v, want default %v", p.gotAge, DefaultJanitorMaxAge)
	}
}
