package calendar

import (
	"errors"
	"testing"
	"time"

	"calendo/internal/todo"
)

type fakeSource struct {
	days          map[todo.Date][]todo.Priority
	priorityCalls []todo.Date
	failOn        todo.Date
}

func (f *fakeSource) ExistsByDate(d todo.Date) (bool, error) {
	if d == f.failOn {
		return false, errors.New("boom")
	}
	return len(f.days[d]) > 0, nil
}

func (f *fakeSource) HighestPriorityForDate(d todo.Date) (todo.Priority, bool, error) {
	f.priorityCalls = append(f.priorityCalls, d)
	ps := f.days[d]
	if len(ps) == 0 {
		return 0, false, nil
	}
	best := ps[0]
	for _, p := range ps[1:] {
		if p < best {
			best = p
		}
	}
	return best, true, nil
}

func TestFirstDayOffset(t *testing.T) {
	cases := []struct {
		m    Month
		want int
	}{
		{Month{2023, time.March}, 3},
		{Month{2024, time.September}, 0},
		{Month{2024, time.June}, 6},
	}
	for _, tc := range cases {
		if got := FirstDayOffset(tc.m); got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.m, got, tc.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		m    Month
		want int
	}{
		{Month{2024, time.February}, 29},
		{Month{2023, time.February}, 28},
		{Month{1900, time.February}, 28},
		{Month{2000, time.February}, 29},
		{Month{2024, time.April}, 30},
		{Month{2024, time.December}, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.m); got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.m, got, tc.want)
		}
	}
}

func TestMonthNavigation(t *testing.T) {
	dec := Month{2023, time.December}
	if got := dec.Next(); got != (Month{2024, time.January}) {
		t.Fatalf("next of december: %v", got)
	}
	if got := dec.Next().Prev(); got != dec {
		t.Fatalf("prev of january: %v", got)
	}
	if dec.String() != "2023-12" {
		t.Fatalf("string: %q", dec.String())
	}
	if !dec.Contains(todo.NewDate(2023, 12, 31)) || dec.Contains(todo.NewDate(2024, 12, 1)) {
		t.Fatalf("contains mismatch")
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth(" 2024-03 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m != (Month{2024, time.March}) {
		t.Fatalf("got %v", m)
	}
	if _, err := ParseMonth("March"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuild(t *testing.T) {
	src := &fakeSource{days: map[todo.Date][]todo.Priority{
		todo.NewDate(2024, 3, 5):  {todo.Low, todo.High, todo.Medium},
		todo.NewDate(2024, 3, 31): {todo.Low},
		todo.NewDate(2024, 4, 1):  {todo.High},
	}}
	g, err := NewAggregator(src).Build(Month{2024, time.March})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(g.Days) != 31 || g.Offset != 5 {
		t.Fatalf("unexpected shape: days=%d offset=%d", len(g.Days), g.Offset)
	}
	d5, _ := g.Day(todo.NewDate(2024, 3, 5))
	if !d5.HasTodos || d5.Indicator != todo.High {
		t.Fatalf("day 5: %+v", d5)
	}
	d31, _ := g.Day(todo.NewDate(2024, 3, 31))
	if !d31.HasTodos || d31.Indicator != todo.Low {
		t.Fatalf("day 31: %+v", d31)
	}
	d6, _ := g.Day(todo.NewDate(2024, 3, 6))
	if d6.HasTodos || d6.Indicator != 0 {
		t.Fatalf("day 6 should be empty: %+v", d6)
	}
	if _, ok := g.Day(todo.NewDate(2024, 4, 1)); ok {
		t.Fatalf("april should be outside the grid")
	}
	if len(src.priorityCalls) != 2 {
		t.Fatalf("priority queried for empty days: %v", src.priorityCalls)
	}
}

func TestBuildWrapsErrors(t *testing.T) {
	bad := todo.NewDate(2024, 3, 9)
	src := &fakeSource{failOn: bad}
	_, err := NewAggregator(src).Build(Month{2024, time.March})
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "calendar 2024-03-09: boom"; err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}

func TestWeeks(t *testing.T) {
	g, err := NewAggregator(&fakeSource{}).Build(Month{2023, time.March})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	weeks := g.Weeks()
	if len(weeks) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(weeks))
	}
	for i := 0; i < 3; i++ {
		if weeks[0][i] != nil {
			t.Fatalf("cell %d of first row should be blank", i)
		}
	}
	if weeks[0][3].Date.Day != 1 {
		t.Fatalf("day 1 should sit on wednesday, got %+v", weeks[0][3])
	}
	last := weeks[4]
	if last[5].Date.Day != 31 || last[6] != nil {
		t.Fatalf("unexpected last row: %+v %+v", last[5], last[6])
	}
}
