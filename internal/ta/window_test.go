package ta

import "testing"

func TestWindow_PushAndEvict(t *testing.T) {
	w, err := NewWindow(3)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []TAFloat{1, 2, 3} {
		w.Push(v)
	}
	if !w.Full() {
		t.Fatal("window should be full after capacity pushes")
	}
	if got := w.Oldest(); got != 1 {
		t.Errorf("Oldest() = %v, want 1", got)
	}
	if dropped := w.Push(4); dropped != 1 {
		t.Errorf("Push(4) dropped %v, want 1", dropped)
	}
	got := w.Slice(nil)
	want := []TAFloat{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Slice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWindow_PartialSlice(t *testing.T) {
	w, _ := NewWindow(4)
	w.Push(7)
	w.Push(8)
	if w.Full() {
		t.Fatal("window should not be full")
	}
	got := w.Slice(nil)
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Errorf("partial Slice() = %v", got)
	}
}

func TestMonotonicWindow_TracksMax(t *testing.T) {
	m, err := NewMonotonicWindow(3, true)
	if err != nil {
		t.Fatal(err)
	}
	input := []TAFloat{5, 3, 8, 1, 9, 2, 2, 2, 1}
	want := []TAFloat{5, 5, 8, 8, 9, 9, 9, 2, 2}
	for i, v := range input {
		got := m.Push(v)
		if got != want[i] {
			t.Errorf("push %v: extremum %v, want %v", v, got, want[i])
		}
	}
}

func TestMonotonicWindow_TracksMin(t *testing.T) {
	m, _ := NewMonotonicWindow(3, false)
	input := []TAFloat{5, 3, 8, 1, 9, 4}
	want := []TAFloat{5, 3, 3, 1, 1, 1}
	for i, v := range input {
		got := m.Push(v)
		if got != want[i] {
			t.Errorf("push %v: extremum %v, want %v", v, got, want[i])
		}
	}
}

func TestMonotonicWindow_DepartingExtremum(t *testing.T) {
	// The window max must fall back to a younger candidate when the current
	// maximum ages out, without ever rescanning.
	m, _ := NewMonotonicWindow(2, true)
	m.Push(9)
	m.Push(4)
	if got := m.Push(3); got != 4 {
		t.Errorf("after 9 leaves window: extremum %v, want 4", got)
	}
}

func TestMonotonicWindow_InvalidPeriod(t *testing.T) {
	if _, err := NewMonotonicWindow(1, true); err == nil {
		t.Error("period 1 should be rejected")
	}
}
