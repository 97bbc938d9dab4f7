package smooth

import (
	"math"
	"testing"
)

func TestMonotoneConvergenceWithoutOvershoot(t *testing.T) {
	s := New(20)
	s.SnapTo(0)
	s.SetTarget(1)

	prev := 0.0
	for i := 0; i < 200; i++ {
		got := s.NextBlock(48000, 128)

		if got < prev {
			t.Fatalf("block %d: value decreased from %g to %g", i, prev, got)
		}

		if got > 1 {
			t.Fatalf("block %d: overshoot to %g", i, got)
		}

		prev = got
	}

	if math.Abs(prev-1) > 1e-6 {
		t.Errorf("did not converge: %g", prev)
	}
}

func TestConvergesNearTargetAfterTimeConstant(t *testing.T) {
	const (
		sampleRate = 48000.0
		frames     = 128
		tcMs       = 20.0
	)

	s := New(tcMs)
	s.SnapTo(0)
	s.SetTarget(1)

	// After one time constant an exponential approach reaches 1-1/e ≈ 63%.
	blocks := int(math.Floor(tcMs * 0.001 * sampleRate / frames))
	for i := 0; i < blocks; i++ {
		s.NextBlock(sampleRate, frames)
	}

	if got := s.Current(); math.Abs(got-0.632) > 0.02 {
		t.Errorf("after one time constant: %g, want ≈0.632", got)
	}

	// After five time constants the ramp is effectively finished.
	for i := 0; i < 4*blocks; i++ {
		s.NextBlock(sampleRate, frames)
	}

	if got := s.Current(); math.Abs(got-1) > 0.01 {
		t.Errorf("after five time constants: %g, want ≈1", got)
	}
}

func TestZeroTimeConstantSnaps(t *testing.T) {
	s := New(0)
	s.SnapTo(0)
	s.SetTarget(0.8)

	if got := s.NextBlock(48000, 64); got != 0.8 {
		t.Errorf("NextBlock = %g, want 0.8", got)
	}
}

func TestSnapToSkipsRamp(t *testing.T) {
	s := New(20)
	s.SnapTo(0.4)

	if s.Current() != 0.4 || s.Target() != 0.4 {
		t.Errorf("SnapTo: current=%g target=%g, want both 0.4", s.Current(), s.Target())
	}

	// No drift when current equals target.
	if got := s.NextBlock(48000, 128); got != 0.4 {
		t.Errorf("NextBlock = %g, want 0.4", got)
	}
}

func TestDownwardRampSymmetry(t *testing.T) {
	s := New(20)
	s.SnapTo(1)
	s.SetTarget(0)

	prev := 1.0
	for i := 0; i < 200; i++ {
		got := s.NextBlock(48000, 128)
		if got > prev || got < 0 {
			t.Fatalf("block %d: non-monotone or undershoot: prev=%g got=%g", i, prev, got)
		}

		prev = got
	}

	if math.Abs(prev) > 1e-6 {
		t.Errorf("did not converge to 0: %g", prev)
	}
}
