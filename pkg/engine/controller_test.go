package engine

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dosewatch/dosewatch/pkg/models"
)

// fakeCue records play/stop calls for assertions
type fakeCue struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeCue) Play() { f.record("play") }
func (f *fakeCue) Stop() { f.record("stop") }

func (f *fakeCue) record(ev string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakeCue) count(ev string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == ev {
			n++
		}
	}
	return n
}

func (f *fakeCue) sequence() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

func testDose(id string) *models.Dose {
	return &models.Dose{
		ID:            id,
		MedicineID:    "m1",
		ScheduledDate: "2024-01-01",
		ScheduledTime: "09:00",
		Frequency:     models.FrequencyOnce,
	}
}

func TestControllerEntryIsIdempotent(t *testing.T) {
	cue := &fakeCue{}
	c := NewController(cue, zap.NewNop())

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	c.SetDue(testDose("d1"), "Paracetamol (500mg)", at)
	firstTimer := c.repeat

	// Re-reporting the same dose must not re-play the cue or re-arm the
	// repeat timer.
	c.SetDue(testDose("d1"), "Paracetamol (500mg)", at)
	c.SetDue(testDose("d1"), "Paracetamol (500mg)", at)

	if got := cue.count("play"); got != 1 {
		t.Errorf("cue played %d times, want 1", got)
	}
	if c.repeat != firstTimer {
		t.Error("repeat timer was re-armed on idempotent re-entry")
	}
	if c.RepeatC() == nil {
		t.Error("repeat channel nil while alerting")
	}

	alert := c.Active()
	if alert == nil || alert.DoseID != "d1" || alert.MedicineLabel != "Paracetamol (500mg)" {
		t.Errorf("active alert = %+v", alert)
	}
}

func TestControllerSwitchesDose(t *testing.T) {
	cue := &fakeCue{}
	c := NewController(cue, zap.NewNop())

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	c.SetDue(testDose("d1"), "A", at)
	c.SetDue(testDose("d2"), "B", at)

	// The old alert is torn down before the new one starts.
	want := []string{"play", "stop", "play"}
	got := cue.sequence()
	if len(got) != len(want) {
		t.Fatalf("cue events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cue events = %v, want %v", got, want)
		}
	}

	if alert := c.Active(); alert == nil || alert.DoseID != "d2" {
		t.Errorf("active alert = %+v, want d2", alert)
	}
}

func TestControllerStopOnNone(t *testing.T) {
	cue := &fakeCue{}
	c := NewController(cue, zap.NewNop())

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	c.SetDue(testDose("d1"), "A", at)
	c.SetDue(nil, "", time.Time{})

	if cue.count("stop") != 1 {
		t.Errorf("cue stopped %d times, want 1", cue.count("stop"))
	}
	if c.Active() != nil {
		t.Error("controller still has an active alert")
	}
	if c.RepeatC() != nil {
		t.Error("repeat channel survived stop")
	}

	// Stopping again is harmless.
	c.Stop()
	if cue.count("stop") != 1 {
		t.Error("idle stop touched the cue")
	}
}

func TestControllerRepeatReplaysCue(t *testing.T) {
	cue := &fakeCue{}
	c := NewController(cue, zap.NewNop())

	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	c.SetDue(testDose("d1"), "A", at)

	c.Repeat()
	c.Repeat()
	if got := cue.count("play"); got != 3 {
		t.Errorf("cue played %d times, want 3 (entry + two repeats)", got)
	}

	// Repeat after stop is a no-op.
	c.Stop()
	c.Repeat()
	if got := cue.count("play"); got != 3 {
		t.Error("repeat played the cue while idle")
	}
}
