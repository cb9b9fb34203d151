package tui

import "github.com/tormodhaugland/cim/internal/model"

// itemScroller tracks the cursor and scroll window over the visible items.
type itemScroller struct {
	items        []model.ItemView
	cursor       int
	scrollOffset int
	height       int // visible lines
}

func newItemScroller(height int) *itemScroller {
	return &itemScroller{height: height}
}

// setItems replaces the list, keeping the cursor on the same id when it is
// still visible.
func (s *itemScroller) setItems(items []model.ItemView) {
	current := ""
	if item, ok := s.current(); ok {
		current = item.ID
	}
	s.items = items

	if current != "" {
		for i, item := range items {
			if item.ID == current {
				s.cursor = i
				s.ensureVisible()
				return
			}
		}
	}
	if s.cursor >= len(s.items) {
		s.cursor = len(s.items) - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.ensureVisible()
}

func (s *itemScroller) setHeight(height int) {
	s.height = height
	s.ensureVisible()
}

func (s *itemScroller) moveUp() {
	if s.cursor > 0 {
		s.cursor--
		s.ensureVisible()
	}
}

func (s *itemScroller) moveDown() {
	if s.cursor < len(s.items)-1 {
		s.cursor++
		s.ensureVisible()
	}
}

func (s *itemScroller) moveToTop() {
	s.cursor = 0
	s.scrollOffset = 0
}

func (s *itemScroller) moveToBottom() {
	if len(s.items) > 0 {
		s.cursor = len(s.items) - 1
		s.ensureVisible()
	}
}

func (s *itemScroller) ensureVisible() {
	if s.height <= 0 {
		return
	}
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+s.height {
		s.scrollOffset = s.cursor - s.height + 1
	}
	if s.scrollOffset > 0 && s.scrollOffset+s.height > len(s.items) {
		s.scrollOffset = max(0, len(s.items)-s.height)
	}
}

// visibleRange returns the start and end indices of visible items.
func (s *itemScroller) visibleRange() (start, end int) {
	start = s.scrollOffset
	end = s.scrollOffset + s.height
	if end > len(s.items) {
		end = len(s.items)
	}
	if start > end {
		start = end
	}
	return start, end
}

// current returns the item under the cursor.
func (s *itemScroller) current() (model.ItemView, bool) {
	if s.cursor >= 0 && s.cursor < len(s.items) {
		return s.items[s.cursor], true
	}
	return model.ItemView{}, false
}
