package models

import (
	"slices"

	"github.com/google/uuid"
)

// IDGenerator produces item identifiers. It must never return uuid.Nil and
// never repeat a value during the lifetime of a list.
type IDGenerator func() uuid.UUID

// ItemList is the authoritative ordered set of items of one comparison plus
// the best deal derived from it. It always holds at least one item.
//
// ItemList is not safe for concurrent use; callers serialize access.
// None of its mutations fail: unknown ids and fields are ignored.
type ItemList struct {
	items    []Item
	bestDeal uuid.UUID
	newID    IDGenerator
}

// NewItemList returns a list holding a single blank item. A nil generator
// falls back to uuid.New.
func NewItemList(gen IDGenerator) *ItemList {
	if gen == nil {
		gen = uuid.New
	}
	l := &ItemList{newID: gen}
	l.Reset()
	return l
}

// Items returns a copy of the current items in list order.
func (l *ItemList) Items() []Item {
	return slices.Clone(l.items)
}

// Len returns the number of items.
func (l *ItemList) Len() int {
	return len(l.items)
}

// BestDealID returns the id of the best deal and whether one exists.
func (l *ItemList) BestDealID() (uuid.UUID, bool) {
	return l.bestDeal, l.bestDeal != uuid.Nil
}

// Update replaces one field of the item with the given id.
func (l *ItemList) Update(id uuid.UUID, field Field, value string) {
	next := slices.Clone(l.items)
	for i, it := range next {
		if it.ID == id {
			next[i] = it.with(field, value)
		}
	}
	l.apply(next)
}

// Add appends a blank item and returns it.
func (l *ItemList) Add() Item {
	it := l.create()
	l.apply(append(slices.Clone(l.items), it))
	return it
}

// Remove deletes the item with the given id. Removing from a single-item
// list resets it instead, so the list never becomes empty.
func (l *ItemList) Remove(id uuid.UUID) {
	if len(l.items) <= 1 {
		l.Reset()
		return
	}
	l.apply(slices.DeleteFunc(slices.Clone(l.items), func(it Item) bool {
		return it.ID == id
	}))
}

// Reset replaces the whole list with one fresh blank item.
func (l *ItemList) Reset() {
	l.apply([]Item{l.create()})
}

func (l *ItemList) create() Item {
	return NewBlankItem(l.newID())
}

func (l *ItemList) apply(items []Item) {
	l.items, l.bestDeal = Recalculate(items)
}
