package eeg

import (
	"sync"
	"testing"
)

func TestRingTailOrder(t *testing.T) {
	r := NewPairRing(10)
	for i := 0; i < 5; i++ {
		r.Append(float64(i), float64(-i))
	}
	tail := r.Tail(3)
	if len(tail) != 3 {
		t.Fatalf("tail length %d", len(tail))
	}
	for i, p := range tail {
		want := float64(i + 2)
		if p[0] != want || p[1] != -want {
			t.Fatalf("tail[%d] = %v, want (%v,%v)", i, p, want, -want)
		}
	}
}

func TestRingEvictsOldest(t *testing.T) {
	r := NewPairRing(4)
	for i := 0; i < 10; i++ {
		r.Append(float64(i), 0)
	}
	if r.Len() != 4 {
		t.Fatalf("len %d, want capacity 4", r.Len())
	}
	tail := r.Tail(4)
	for i, p := range tail {
		if p[0] != float64(i+6) {
			t.Fatalf("tail[%d] = %v, want %d", i, p[0], i+6)
		}
	}
}

func TestRingTailBeyondLen(t *testing.T) {
	r := NewPairRing(8)
	r.Append(1, 2)
	if got := len(r.Tail(100)); got != 1 {
		t.Fatalf("tail returned %d entries", got)
	}
}

func TestRingConcurrentSnapshot(t *testing.T) {
	r := NewPairRing(1024)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 10000; i++ {
			r.Append(float64(i), float64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			for _, p := range r.Tail(64) {
				if p[0] != p[1] {
					t.Errorf("torn pair %v", p)
					return
				}
			}
		}
	}()
	wg.Wait()
}

func TestColumn(t *testing.T) {
	pairs := [][2]float64{{1, 10}, {2, 20}}
	left := Column(pairs, Left)
	right := Column(pairs, Right)
	if left[0] != 1 || left[1] != 2 || right[0] != 10 || right[1] != 20 {
		t.Fatalf("columns wrong: %v %v", left, right)
	}
}
