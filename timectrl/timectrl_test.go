package timectrl

import (
	"math"
	"testing"
)

func TestTimeControllerSetTime(t *testing.T) {
	tc := NewTimeController(0, 10)

	tc.SetTime(42)
	if got := tc.Now(); got != 42 {
		t.Fatalf("Now() = %v, want 42", got)
	}
}

func TestTimeControllerAdvance(t *testing.T) {
	tc := NewTimeController(100, 10)

	if got := tc.Advance(); got != 110 {
		t.Fatalf("Advance() = %v, want 110", got)
	}
	if got := tc.Advance(); got != 120 {
		t.Fatalf("Advance() = %v, want 120", got)
	}
	if got := tc.Now(); got != 120 {
		t.Fatalf("Now() = %v, want 120", got)
	}
}

func TestTimeControllerNotifiesListeners(t *testing.T) {
	tc := NewTimeController(0, 5)

	var seen []float64
	tc.RegisterListener(func(now float64) { seen = append(seen, now) })

	tc.Advance()
	tc.SetTime(99)
	tc.Advance()

	want := []float64{5, 99, 104}
	if len(seen) != len(want) {
		t.Fatalf("listener calls = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("listener call %d = %v, want %v", i, seen[i], want[i])
		}
	}
}

func TestTimeControllerPhase(t *testing.T) {
	tc := NewTimeController(0, 1)
	tc.SetTime(5550)

	if got, want := tc.Phase(5400), 150.0/5400.0; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Phase(5400) = %v, want %v", got, want)
	}
	if got := tc.Phase(0); got != 0 {
		t.Fatalf("Phase(0) = %v, want 0", got)
	}
}
