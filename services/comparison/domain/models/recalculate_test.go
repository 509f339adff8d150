package models

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
)

func itemsWith(pairs ...[2]string) []Item {
	out := make([]Item, len(pairs))
	for i, p := range pairs {
		out[i] = Item{ID: uuid.New(), Price: p[0], Weight: p[1]}
	}
	return out
}

func unit(t *testing.T, it Item) float64 {
	t.Helper()
	if it.UnitPrice == nil {
		t.Fatalf("expected unit price for item %+v", it)
	}
	return *it.UnitPrice
}

func TestRecalculate_Scenarios(t *testing.T) {
	t.Run("cheaper second item is the best deal", func(t *testing.T) {
		in := itemsWith([2]string{"1000", "250"}, [2]string{"300", "100"})
		out, best := Recalculate(in)

		if got := unit(t, out[0]); got != 4 {
			t.Errorf("first unit price: got %v, want 4", got)
		}
		if got := unit(t, out[1]); got != 3 {
			t.Errorf("second unit price: got %v, want 3", got)
		}
		if best != in[1].ID {
			t.Errorf("best deal: got %v, want second item %v", best, in[1].ID)
		}
	})

	t.Run("zero price has no unit price", func(t *testing.T) {
		out, best := Recalculate(itemsWith([2]string{"0", "100"}))
		if out[0].UnitPrice != nil {
			t.Errorf("expected nil unit price, got %v", *out[0].UnitPrice)
		}
		if best != uuid.Nil {
			t.Errorf("expected no best deal, got %v", best)
		}
	})

	t.Run("tie goes to the earliest item", func(t *testing.T) {
		in := itemsWith([2]string{"500", "100"}, [2]string{"250", "50"})
		out, best := Recalculate(in)
		if unit(t, out[0]) != 5 || unit(t, out[1]) != 5 {
			t.Fatalf("expected both unit prices to be 5, got %v and %v", *out[0].UnitPrice, *out[1].UnitPrice)
		}
		if best != in[0].ID {
			t.Errorf("best deal: got %v, want first item %v", best, in[0].ID)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		out, best := Recalculate(nil)
		if len(out) != 0 || best != uuid.Nil {
			t.Fatalf("expected empty result, got %v %v", out, best)
		}
	})
}

func TestRecalculate_UnitPriceIsExactQuotient(t *testing.T) {
	pairs := [][2]float64{{1000, 250}, {1, 3}, {0.1, 0.7}, {199.99, 453.59}, {1e-3, 7}, {12345.678, 0.001}}
	for _, p := range pairs {
		in := []Item{{
			ID:     uuid.New(),
			Price:  strconv.FormatFloat(p[0], 'g', -1, 64),
			Weight: strconv.FormatFloat(p[1], 'g', -1, 64),
		}}
		out, _ := Recalculate(in)
		if got, want := unit(t, out[0]), p[0]/p[1]; got != want {
			t.Errorf("%v/%v: got %v, want %v", p[0], p[1], got, want)
		}
	}
}

func TestRecalculate_InvalidInputs(t *testing.T) {
	tests := []struct {
		name          string
		price, weight string
	}{
		{"empty price", "", "100"},
		{"empty weight", "100", ""},
		{"both empty", "", ""},
		{"negative price", "-5", "100"},
		{"negative weight", "5", "-100"},
		{"zero weight", "5", "0"},
		{"unparsable price", "abc", "100"},
		{"trailing garbage", "12abc", "100"},
		{"unparsable weight", "100", "1,5"},
		{"NaN", "NaN", "1"},
		{"infinity", "Inf", "1"},
		{"hex literal", "0x10", "1"},
		{"digit separators", "1_000", "1"},
		{"overflowing quotient", "1e308", "1e-308"},
		{"out of range price", "1e400", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, best := Recalculate(itemsWith([2]string{tt.price, tt.weight}))
			if out[0].UnitPrice != nil {
				t.Fatalf("expected nil unit price, got %v", *out[0].UnitPrice)
			}
			if best != uuid.Nil {
				t.Fatalf("expected no best deal, got %v", best)
			}
		})
	}
}

func TestRecalculate_SkipsInvalidWhenPickingBest(t *testing.T) {
	in := itemsWith(
		[2]string{"", ""},
		[2]string{"900", "300"},
		[2]string{"0", "10"},
		[2]string{" 200 ", "100"},
	)
	out, best := Recalculate(in)

	if out[0].UnitPrice != nil || out[2].UnitPrice != nil {
		t.Fatal("expected invalid rows to stay without unit price")
	}
	if best != in[3].ID {
		t.Fatalf("best deal: got %v, want %v", best, in[3].ID)
	}
}

func TestRecalculate_PreservesOrderAndInputs(t *testing.T) {
	in := itemsWith([2]string{"3", "1"}, [2]string{"1", "1"}, [2]string{"2", "1"})
	in[0].Name = "first"
	stale := 42.0
	in[1].UnitPrice = &stale

	out, _ := Recalculate(in)

	for i := range in {
		if out[i].ID != in[i].ID {
			t.Fatalf("order changed at %d", i)
		}
	}
	if out[0].Name != "first" {
		t.Errorf("name not preserved: %q", out[0].Name)
	}
	if in[1].UnitPrice != &stale || *in[1].UnitPrice != 42 {
		t.Error("input slice was modified")
	}
	if unit(t, out[1]) != 1 {
		t.Errorf("stale unit price not recomputed: %v", *out[1].UnitPrice)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1000", 1000, true},
		{"2.5", 2.5, true},
		{" 7 ", 7, true},
		{"1e3", 1000, true},
		{".5", 0.5, true},
		{"-3", -3, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"nan", 0, false},
		{"-Infinity", 0, false},
		{"0X1p-2", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseAmount(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFormatUnitPrice(t *testing.T) {
	four := 4.0
	third := 1.0 / 3
	if got := FormatUnitPrice(&four); got != "¥ 4.00 /g" {
		t.Errorf("got %q", got)
	}
	if got := FormatUnitPrice(&third); got != "¥ 0.33 /g" {
		t.Errorf("got %q", got)
	}
	if got := FormatUnitPrice(nil); got != "---" {
		t.Errorf("got %q", got)
	}
}
