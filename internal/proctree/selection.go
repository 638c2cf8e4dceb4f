package proctree

import "sync"

// Selection is the highlighted process, the list scroll offset and the
// detailed-view pin. The selection is held by pid so it follows its
// process through re-sorts; an index of -1 means nothing is selected.
type Selection struct {
	mu sync.Mutex

	pid    int32
	index  int
	offset int

	detailed  bool
	detailPid int32
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{index: -1}
}

// Selected returns the selected pid.
func (s *Selection) Selected() (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid, s.index >= 0
}

// Index returns the selected row index, or -1.
func (s *Selection) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Offset returns the index of the first visible row.
func (s *Selection) Offset() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Clear drops the selection. The scroll offset is kept.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = -1
	s.pid = 0
}

// Sync relocates the selected pid in v after a rebuild, clearing the
// selection if the pid is gone, and keeps the selected row within a window
// of rows lines.
func (s *Selection) Sync(v *View, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= 0 {
		if i, ok := v.Index(s.pid); ok {
			s.index = i
		} else {
			s.index = -1
			s.pid = 0
		}
	}
	s.clamp(v, rows)
}

// Move shifts the selection by delta rows. With nothing selected, moving
// down selects the first visible row; moving up from the first row clears
// the selection.
func (s *Selection) Move(v *View, delta, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := rowCount(v)
	if n == 0 || delta == 0 {
		return
	}

	switch {
	case s.index < 0 && delta < 0:
		return
	case s.index < 0:
		s.set(v, s.offset)
	case s.index+delta < 0:
		if s.index == 0 {
			s.index = -1
			s.pid = 0
		} else {
			s.set(v, 0)
		}
	default:
		s.set(v, min(s.index+delta, n-1))
	}
	s.clamp(v, rows)
}

// Home selects the first row.
func (s *Selection) Home(v *View, rows int) {
	s.Jump(v, 0, rows)
}

// End selects the last row.
func (s *Selection) End(v *View, rows int) {
	s.Jump(v, rowCount(v)-1, rows)
}

// Jump selects the row at index i.
func (s *Selection) Jump(v *View, i, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= rowCount(v) {
		return
	}
	s.set(v, i)
	s.clamp(v, rows)
}

// Scroll moves the viewport by delta rows when nothing is selected, and
// moves the selection otherwise.
func (s *Selection) Scroll(v *View, delta, rows int) {
	s.mu.Lock()
	if s.index >= 0 {
		s.mu.Unlock()
		s.Move(v, delta, rows)
		return
	}
	defer s.mu.Unlock()
	s.offset += delta
	s.clamp(v, rows)
}

// Click selects the row at screen line line (0-based within the list). A
// click on the selected row, or past the last row, clears the selection.
func (s *Selection) Click(v *View, line, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.offset + line
	if line < 0 || i >= rowCount(v) || i == s.index {
		s.index = -1
		s.pid = 0
		return
	}
	s.set(v, i)
	s.clamp(v, rows)
}

func rowCount(v *View) int {
	if v == nil {
		return 0
	}
	return len(v.Rows)
}

func (s *Selection) set(v *View, i int) {
	s.index = i
	s.pid = v.Rows[i].Pid
}

// clamp keeps offset within the list and the selected row on screen.
func (s *Selection) clamp(v *View, rows int) {
	if rows <= 0 {
		s.offset = 0
		return
	}
	if s.index >= 0 {
		if s.index < s.offset {
			s.offset = s.index
		} else if s.index >= s.offset+rows {
			s.offset = s.index - rows + 1
		}
	}
	maxOffset := rowCount(v) - rows
	if maxOffset < 0 {
		maxOffset = 0
	}
	s.offset = max(0, min(s.offset, maxOffset))
}

// EnterDetail pins pid for the detailed view.
func (s *Selection) EnterDetail(pid int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailed = true
	s.detailPid = pid
}

// ExitDetail leaves the detailed view.
func (s *Selection) ExitDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailed = false
	s.detailPid = 0
}

// Detailed returns the pinned pid, if the detailed view is open.
func (s *Selection) Detailed() (int32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailPid, s.detailed
}

// SyncDetail closes the detailed view if its pid is no longer in v and
// reports whether the view is still open.
func (s *Selection) SyncDetail(v *View) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.detailed {
		return false
	}
	if _, ok := v.Lookup(s.detailPid); !ok {
		s.detailed = false
		s.detailPid = 0
	}
	return s.detailed
}
