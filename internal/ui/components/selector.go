// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

// =============================================================================
// SELECTOR
// =============================================================================

// Selector is a scrollable list with exactly one highlighted entry. The
// visible window follows the selection.
type Selector[T any] struct {
	label    func(T) string
	items    []T
	selected int
	offset   int
	visible  int
}

// NewSelector creates an empty selector that renders entries with label.
func NewSelector[T any](label func(T) string) *Selector[T] {
	return &Selector[T]{label: label, visible: 1}
}

// SetItems replaces the entries and resets the selection to the top.
func (s *Selector[T]) SetItems(items []T) {
	s.items = items
	s.selected = 0
	s.offset = 0
}

// Items returns the entries.
func (s *Selector[T]) Items() []T { return s.items }

// Len returns the entry count.
func (s *Selector[T]) Len() int { return len(s.items) }

// Index returns the highlighted index.
func (s *Selector[T]) Index() int { return s.selected }

// Offset returns the index of the first visible entry.
func (s *Selector[T]) Offset() int { return s.offset }

// SetVisibleRows sets how many entries fit on screen.
func (s *Selector[T]) SetVisibleRows(n int) {
	if n < 1 {
		n = 1
	}
	s.visible = n
	s.follow()
}

// Up moves the highlight up one entry, stopping at the first.
func (s *Selector[T]) Up() {
	if s.selected > 0 {
		s.selected--
		s.follow()
	}
}

// Down moves the highlight down one entry, stopping at the last.
func (s *Selector[T]) Down() {
	if s.selected < len(s.items)-1 {
		s.selected++
		s.follow()
	}
}

// Select highlights index i when it is in range.
func (s *Selector[T]) Select(i int) {
	if i < 0 || i >= len(s.items) {
		return
	}
	s.selected = i
	s.follow()
}

// Selected returns the highlighted entry.
func (s *Selector[T]) Selected() (T, bool) {
	var zero T
	if len(s.items) == 0 {
		return zero, false
	}
	return s.items[s.selected], true
}

// Visible returns the on-screen window of entries and the index of the
// highlighted entry within it.
func (s *Selector[T]) Visible() ([]T, int) {
	end := s.offset + s.visible
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[s.offset:end], s.selected - s.offset
}

// VisibleLabels is Visible rendered through the label function.
func (s *Selector[T]) VisibleLabels() ([]string, int) {
	items, sel := s.Visible()
	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = s.label(it)
	}
	return labels, sel
}

func (s *Selector[T]) follow() {
	if s.selected < s.offset {
		s.offset = s.selected
	}
	if s.selected >= s.offset+s.visible {
		s.offset = s.selected - s.visible + 1
	}
	if limit := len(s.items) - s.visible; s.offset > limit {
		s.offset = limit
	}
	if s.offset < 0 {
		s.offset = 0
	}
}
