package entity

import (
	"testing"
	"time"
)

func TestWeekCommencing(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday stays", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), "2026-08-31"},
		{"wednesday rolls back", time.Date(2026, 9, 2, 15, 30, 0, 0, time.UTC), "2026-08-31"},
		{"sunday rolls back", time.Date(2026, 9, 6, 23, 59, 0, 0, time.UTC), "2026-08-31"},
		{"next monday", time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), "2026-09-07"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekCommencing(tc.in)
			if got.Format("2006-01-02") != tc.want {
				t.Fatalf("WeekCommencing(%v) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
			}
			if got.Weekday() != time.Monday {
				t.Fatalf("WeekCommencing(%v) is %s, want Monday", tc.in, got.Weekday())
			}
		})
	}
}

func TestWeekQuantitiesIndexing(t *testing.T) {
	var w WeekQuantities
	for d := 0; d < DaysPerWeek; d++ {
		w.SetQuantity(d, float64(d+1)*10)
	}

	got := w.Quantities()
	want := [DaysPerWeek]float64{10, 20, 30, 40, 50, 60, 70}
	if got != want {
		t.Fatalf("Quantities() = %v, want %v", got, want)
	}
	if w.MondayQty != 10 || w.SundayQty != 70 {
		t.Fatalf("index mapping broken: monday=%v sunday=%v", w.MondayQty, w.SundayQty)
	}
	if w.Total() != 280 {
		t.Fatalf("Total() = %v, want 280", w.Total())
	}

	// 越界索引忽略
	w.SetQuantity(7, 999)
	w.SetQuantity(-1, 999)
	if w.Total() != 280 {
		t.Fatalf("out-of-range SetQuantity must be a no-op, total = %v", w.Total())
	}
}
