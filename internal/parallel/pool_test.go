package parallel

import (
	"sync/atomic"
	"testing"
)

func TestBands(t *testing.T) {
	tests := []struct {
		h, n int
		want [][2]int
	}{
		{10, 3, [][2]int{{0, 3}, {3, 6}, {6, 10}}},
		{2, 8, [][2]int{{0, 1}, {1, 2}}},
		{5, 0, [][2]int{{0, 5}}},
		{0, 4, nil},
	}
	for _, tt := range tests {
		got := Bands(tt.h, tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Bands(%d, %d) = %v, want %v", tt.h, tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Bands(%d, %d) = %v, want %v", tt.h, tt.n, got, tt.want)
				break
			}
		}
	}
}

func TestRowsCoversEveryRowOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const h = 257
	var hits [h]atomic.Int32
	p.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			hits[y].Add(1)
		}
	})
	for y := range hits {
		if n := hits[y].Load(); n != 1 {
			t.Fatalf("row %d shaded %d times", y, n)
		}
	}
}

func TestRowsAfterClose(t *testing.T) {
	p := NewPool(3)
	p.Close()
	p.Close()
	calls := 0
	p.Rows(10, func(y0, y1 int) {
		calls++
		if y0 != 0 || y1 != 10 {
			t.Errorf("band = [%d, %d), want [0, 10)", y0, y1)
		}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestWorkersDefault(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Errorf("Workers = %d", p.Workers())
	}
}
