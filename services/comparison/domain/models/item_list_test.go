package models

import (
	"testing"

	"github.com/google/uuid"
)

// sequentialIDs returns a generator yielding distinct, predictable ids.
func sequentialIDs() IDGenerator {
	var n byte
	return func() uuid.UUID {
		n++
		var id uuid.UUID
		id[15] = n
		return id
	}
}

func fill(l *ItemList, id uuid.UUID, price, weight string) {
	l.Update(id, FieldPrice, price)
	l.Update(id, FieldWeight, weight)
}

func TestNewItemList(t *testing.T) {
	l := NewItemList(nil)

	if l.Len() != 1 {
		t.Fatalf("expected one item, got %d", l.Len())
	}
	it := l.Items()[0]
	if it.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}
	if it.Name != "" || it.Price != "" || it.Weight != "" || it.UnitPrice != nil {
		t.Fatalf("expected blank item, got %+v", it)
	}
	if _, ok := l.BestDealID(); ok {
		t.Fatal("expected no best deal on a blank list")
	}
}

func TestItemList_Update(t *testing.T) {
	l := NewItemList(sequentialIDs())
	first := l.Items()[0]
	second := l.Add()

	l.Update(first.ID, FieldName, "Brand A")
	fill(l, first.ID, "1000", "250")
	fill(l, second.ID, "300", "100")

	items := l.Items()
	if items[0].Name != "Brand A" || items[0].Price != "1000" || items[0].Weight != "250" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Name != "" {
		t.Fatalf("second item name changed: %q", items[1].Name)
	}
	best, ok := l.BestDealID()
	if !ok || best != second.ID {
		t.Fatalf("expected second item as best deal, got %v (%v)", best, ok)
	}

	t.Run("only the named field changes", func(t *testing.T) {
		before := l.Items()
		l.Update(first.ID, FieldWeight, "500")
		after := l.Items()

		if after[0].Name != before[0].Name || after[0].Price != before[0].Price {
			t.Fatalf("unrelated fields changed: %+v -> %+v", before[0], after[0])
		}
		if after[0].Weight != "500" {
			t.Fatalf("weight not updated: %q", after[0].Weight)
		}
		if after[1].Price != before[1].Price || after[1].Weight != before[1].Weight {
			t.Fatalf("other item changed: %+v -> %+v", before[1], after[1])
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := l.Items()
		l.Update(uuid.New(), FieldPrice, "1")
		after := l.Items()
		for i := range before {
			if before[i].Price != after[i].Price || before[i].Weight != after[i].Weight {
				t.Fatalf("item %d changed on unknown id", i)
			}
		}
	})

	t.Run("unknown field is a no-op", func(t *testing.T) {
		before := l.Items()
		l.Update(first.ID, Field("unitPrice"), "0.01")
		after := l.Items()
		if *after[0].UnitPrice != *before[0].UnitPrice {
			t.Fatalf("unit price changed through update: %v", *after[0].UnitPrice)
		}
	})
}

func TestItemList_Add(t *testing.T) {
	l := NewItemList(sequentialIDs())
	first := l.Items()[0]
	fill(l, first.ID, "100", "10")

	added := l.Add()

	items := l.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[1].ID != added.ID {
		t.Fatal("expected new item to be appended at the end")
	}
	if items[0].Price != "100" || items[0].Weight != "10" || *items[0].UnitPrice != 10 {
		t.Fatalf("existing item changed: %+v", items[0])
	}
	if added.ID == first.ID {
		t.Fatal("expected a fresh id for the added item")
	}
	if best, _ := l.BestDealID(); best != first.ID {
		t.Fatalf("best deal lost after add: %v", best)
	}
}

func TestItemList_Remove(t *testing.T) {
	t.Run("deletes the matching item and recalculates", func(t *testing.T) {
		l := NewItemList(sequentialIDs())
		first := l.Items()[0]
		second := l.Add()
		fill(l, first.ID, "100", "10")
		fill(l, second.ID, "50", "10")

		l.Remove(second.ID)

		items := l.Items()
		if len(items) != 1 || items[0].ID != first.ID {
			t.Fatalf("unexpected items after remove: %+v", items)
		}
		if best, _ := l.BestDealID(); best != first.ID {
			t.Fatalf("expected best deal to move to remaining item, got %v", best)
		}
	})

	t.Run("unknown id leaves the list unchanged", func(t *testing.T) {
		l := NewItemList(sequentialIDs())
		l.Add()
		l.Remove(uuid.New())
		if l.Len() != 2 {
			t.Fatalf("expected 2 items, got %d", l.Len())
		}
	})

	t.Run("last item is reset instead of deleted", func(t *testing.T) {
		l := NewItemList(sequentialIDs())
		only := l.Items()[0]
		fill(l, only.ID, "100", "10")

		l.Remove(only.ID)

		items := l.Items()
		if len(items) != 1 {
			t.Fatalf("expected exactly one item, got %d", len(items))
		}
		if items[0].ID == only.ID {
			t.Fatal("expected a fresh id after resetting the last item")
		}
		if items[0].Price != "" || items[0].Weight != "" || items[0].UnitPrice != nil {
			t.Fatalf("expected blank item, got %+v", items[0])
		}
		if _, ok := l.BestDealID(); ok {
			t.Fatal("expected best deal to be cleared")
		}
	})

	t.Run("single item with unknown id still resets", func(t *testing.T) {
		l := NewItemList(sequentialIDs())
		only := l.Items()[0]
		l.Remove(uuid.New())
		if l.Items()[0].ID == only.ID {
			t.Fatal("expected reset on single-item list")
		}
	})
}

func TestItemList_Reset(t *testing.T) {
	l := NewItemList(sequentialIDs())
	first := l.Items()[0]
	l.Add()
	l.Add()
	fill(l, first.ID, "10", "1")

	l.Reset()

	items := l.Items()
	if len(items) != 1 {
		t.Fatalf("expected one item after reset, got %d", len(items))
	}
	if items[0].ID == first.ID {
		t.Fatal("expected fresh id after reset")
	}
	if _, ok := l.BestDealID(); ok {
		t.Fatal("expected best deal cleared after reset")
	}
}

func TestItemList_IDsNeverReused(t *testing.T) {
	l := NewItemList(nil)
	seen := map[uuid.UUID]bool{}
	for range 20 {
		it := l.Add()
		if seen[it.ID] {
			t.Fatalf("id %v reused", it.ID)
		}
		seen[it.ID] = true
		l.Remove(it.ID)
	}
}

func TestItemList_ItemsReturnsCopy(t *testing.T) {
	l := NewItemList(nil)
	items := l.Items()
	items[0].Name = "mutated"
	if l.Items()[0].Name != "" {
		t.Fatal("Items must not expose internal state")
	}
}

func TestParseField(t *testing.T) {
	for _, name := range []string{"name", "price", "weight"} {
		f, err := ParseField(name)
		if err != nil || string(f) != name {
			t.Errorf("ParseField(%q) = %q, %v", name, f, err)
		}
	}
	for _, name := range []string{"", "id", "unitPrice", "Price"} {
		if _, err := ParseField(name); err == nil {
			t.Errorf("ParseField(%q): expected error", name)
		}
	}
}
