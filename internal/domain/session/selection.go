package session

import (
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// MultiSelect reports whether multi-select mode is active.
func (s *Session) MultiSelect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multiSelect
}

// ToggleMultiSelect flips multi-select mode. Leaving it clears the
// selection.
func (s *Session) ToggleMultiSelect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setMultiSelectLocked(!s.multiSelect)
	return s.multiSelect
}

func (s *Session) setMultiSelectLocked(on bool) {
	s.multiSelect = on
	if !on {
		s.selection = nil
	}
}

// Toggle adds entry to the selection, or removes it when already
// selected. It reports whether entry is selected afterwards.
func (s *Session) Toggle(entry types.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.selection {
		if e.Path == entry.Path {
			s.selection = append(s.selection[:i:i], s.selection[i+1:]...)
			return false
		}
	}
	s.selection = append(s.selection, entry)
	return true
}

// IsSelected reports whether an entry with path p is selected.
func (s *Session) IsSelected(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.selection {
		if e.Path == p {
			return true
		}
	}
	return false
}

// SelectAll selects every loaded entry.
func (s *Session) SelectAll() {
	loaded := s.Listing.Entries()
	s.mu.Lock()
	s.selection = loaded
	s.mu.Unlock()
}

// ClearAll empties the selection.
func (s *Session) ClearAll() {
	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()
}

// IsAllSelected reports whether every loaded entry is selected.
func (s *Session) IsAllSelected() bool {
	loaded := s.Listing.Entries()
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(loaded) > 0 && len(s.selection) == len(loaded)
}

// ToggleSelectAll selects everything, or clears the selection when
// everything is already selected.
func (s *Session) ToggleSelectAll() {
	if s.IsAllSelected() {
		s.ClearAll()
		return
	}
	s.SelectAll()
}

// Selection returns the selected entries in selection order.
func (s *Session) Selection() []types.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Entry(nil), s.selection...)
}

// SelectedPaths returns the paths of the selection in selection order.
func (s *Session) SelectedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selection) == 0 {
		return nil
	}
	paths := make([]string, len(s.selection))
	for i, e := range s.selection {
		paths[i] = e.Path
	}
	return paths
}
