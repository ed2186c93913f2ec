package keystate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		vk   uint16
		code uint16
	}{
		{"r", 0x52, 19},
		{" R ", 0x52, 19},
		{"a", 0x41, 30},
		{"m", 0x4D, 50},
		{"1", 0x31, 2},
		{"0", 0x30, 11},
		{"f1", 0x70, 59},
		{"F10", 0x79, 68},
		{"F12", 0x7B, 88},
		{"space", 0x20, 57},
		{"Shift", 0x10, 42},
	}
	for _, tc := range cases {
		key, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if key.VK != tc.vk || key.Code != tc.code {
			t.Fatalf("Parse(%q) = vk %#x code %d, want vk %#x code %d", tc.in, key.VK, key.Code, tc.vk, tc.code)
		}
	}
	for _, bad := range []string{"", "F13", "F0", "F05", "ENTERPRISE", "!"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("expected Parse(%q) to fail", bad)
		}
	}
}

func TestSamplerSingleCheckWhenWindowZero(t *testing.T) {
	var calls atomic.Int32
	s := Sampler{Checker: CheckerFunc(func(Key) (bool, error) {
		calls.Add(1)
		return false, nil
	})}
	held, err := s.Held(context.Background(), Key{Name: "R"})
	if err != nil || held {
		t.Fatalf("expected not held without error, got %v %v", held, err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one sample, got %d", calls.Load())
	}
}

func TestSamplerDetectsPressWithinWindow(t *testing.T) {
	var calls atomic.Int32
	s := Sampler{
		Window:   time.Second,
		Interval: time.Millisecond,
		Checker: CheckerFunc(func(Key) (bool, error) {
			return calls.Add(1) >= 3, nil
		}),
	}
	held, err := s.Held(context.Background(), Key{Name: "R"})
	if err != nil || !held {
		t.Fatalf("expected held, got %v %v", held, err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected sampling to stop at the first press, got %d samples", calls.Load())
	}
}

func TestSamplerWindowElapsesNotHeld(t *testing.T) {
	s := Sampler{
		Window:   20 * time.Millisecond,
		Interval: 5 * time.Millisecond,
		Checker:  CheckerFunc(func(Key) (bool, error) { return false, nil }),
	}
	start := time.Now()
	held, err := s.Held(context.Background(), Key{Name: "R"})
	if err != nil || held {
		t.Fatalf("expected not held, got %v %v", held, err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Fatal("expected sampler to wait out the window")
	}
}

func TestSamplerAllErrorsReported(t *testing.T) {
	boom := errors.New("permission denied")
	s := Sampler{
		Window:   5 * time.Millisecond,
		Interval: time.Millisecond,
		Checker:  CheckerFunc(func(Key) (bool, error) { return false, boom }),
	}
	held, err := s.Held(context.Background(), Key{Name: "R"})
	if held {
		t.Fatal("a failing query must never read as held")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestSamplerIntermittentErrorsIgnored(t *testing.T) {
	var calls atomic.Int32
	s := Sampler{
		Window:   time.Second,
		Interval: time.Millisecond,
		Checker: CheckerFunc(func(Key) (bool, error) {
			if calls.Add(1) == 1 {
				return false, errors.New("transient")
			}
			return true, nil
		}),
	}
	held, err := s.Held(context.Background(), Key{Name: "R"})
	if err != nil || !held {
		t.Fatalf("expected held after transient error, got %v %v", held, err)
	}
}

func TestSamplerStopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Sampler{
		Window:   time.Hour,
		Interval: time.Hour,
		Checker:  CheckerFunc(func(Key) (bool, error) { return false, nil }),
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if held, _ := s.Held(ctx, Key{Name: "R"}); held {
			t.Error("expected not held")
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sampler ignored context cancellation")
	}
}

func TestSamplerWithoutChecker(t *testing.T) {
	if _, err := (Sampler{}).Held(context.Background(), Key{Name: "R"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
