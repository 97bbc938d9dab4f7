package param

import (
	"math"
	"sync"
	"testing"
)

func testDescs() []Desc {
	return []Desc{
		{ID: "gain", Min: 0, Max: 1, Default: 0.5, SmoothingMs: 20},
		{ID: "feedback", Min: -0.99, Max: 0.99, Default: 0.35},
		{ID: "mix", Min: 0, Max: 1, Default: 1},
	}
}

func TestNewStoreValidation(t *testing.T) {
	tests := []struct {
		name  string
		descs []Desc
	}{
		{"empty", nil},
		{"blank id", []Desc{{ID: ""}}},
		{"duplicate id", []Desc{{ID: "a", Max: 1}, {ID: "a", Max: 1}}},
		{"inverted range", []Desc{{ID: "a", Min: 1, Max: 0}}},
		{"nan bound", []Desc{{ID: "a", Min: math.NaN(), Max: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewStore(tt.descs); err == nil {
				t.Error("NewStore should fail")
			}
		})
	}
}

func TestNewStoreClampsDefault(t *testing.T) {
	s, err := NewStore([]Desc{{ID: "a", Min: 0, Max: 1, Default: 7}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got != 1 {
		t.Errorf("default = %g, want clamp to 1", got)
	}
}

func TestSetGetClampsToRange(t *testing.T) {
	s, err := NewStore(testDescs())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	tests := []struct {
		id    string
		value float64
		want  float64
	}{
		{"gain", 0.25, 0.25},
		{"gain", -3, 0},
		{"gain", 42, 1},
		{"feedback", -2, -0.99},
		{"feedback", 0.5, 0.5},
	}

	for _, tt := range tests {
		if err := s.Set(tt.id, tt.value); err != nil {
			t.Fatalf("Set(%s, %g): %v", tt.id, tt.value, err)
		}

		got, err := s.Get(tt.id)
		if err != nil {
			t.Fatalf("Get(%s): %v", tt.id, err)
		}

		if got != tt.want {
			t.Errorf("Set(%s, %g) then Get = %g, want %g", tt.id, tt.value, got, tt.want)
		}
	}
}

func TestSetUnknownIDFails(t *testing.T) {
	s, err := NewStore(testDescs())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Set("bogus", 1); err == nil {
		t.Error("Set of unknown id should fail")
	}

	if _, err := s.Get("bogus"); err == nil {
		t.Error("Get of unknown id should fail")
	}
}

func TestSetNonFiniteFallsBackToDefault(t *testing.T) {
	s, err := NewStore(testDescs())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := s.Set("gain", v); err != nil {
			t.Fatalf("Set: %v", err)
		}

		got, _ := s.Get("gain")
		if got != 0.5 {
			t.Errorf("Set(gain, %v) then Get = %g, want default 0.5", v, got)
		}
	}
}

func TestSnapshotDeclarationOrder(t *testing.T) {
	s, err := NewStore(testDescs())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Set("feedback", 0.7); err != nil {
		t.Fatalf("Set: %v", err)
	}

	snap := make([]float64, s.Count())
	if n := s.Snapshot(snap); n != 3 {
		t.Fatalf("Snapshot wrote %d values, want 3", n)
	}

	want := []float64{0.5, 0.7, 1}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("snapshot[%d] = %g, want %g", i, snap[i], want[i])
		}
	}
}

func TestConcurrentSetWhileSnapshotting(t *testing.T) {
	s, err := NewStore(testDescs())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var wg sync.WaitGroup

	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}

			s.SetIndex(0, float64(i%100)/100)
		}
	}()

	snap := make([]float64, s.Count())
	for i := 0; i < 10000; i++ {
		s.Snapshot(snap)

		if snap[0] < 0 || snap[0] > 1 {
			t.Errorf("torn or out-of-range read: %g", snap[0])
			break
		}
	}

	close(stop)
	wg.Wait()
}

func TestResetDefaults(t *testing.T) {
	s, err := NewStore(testDescs())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := s.Set("gain", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	s.ResetDefaults()

	got, _ := s.Get("gain")
	if got != 0.5 {
		t.Errorf("gain after ResetDefaults = %g, want 0.5", got)
	}
}
