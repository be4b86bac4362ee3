package session

import (
	"context"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/listing"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// SearchResults is the accumulated result of a remote search.
type SearchResults struct {
	Keyword string
	Entries []types.Entry
	Page    int
	Total   int64
	HasMore bool
}

// RemoteSearch queries the backend index. Page 1 starts a new result set;
// later pages append to it.
func (s *Session) RemoteSearch(ctx context.Context, keyword string, page int) (*SearchResults, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, &types.ValidationError{Field: "keyword", Message: "enter a search keyword"}
	}
	if page < 1 {
		page = 1
	}
	result, err := s.api.SearchFiles(ctx, keyword, page, s.searchPageSize)
	if err != nil {
		s.logger.Warn("search failed", zap.String("keyword", keyword), zap.Error(err))
		return nil, err
	}
	if result == nil {
		result = &types.ListingPage{PageNumber: page}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.search
	next := &SearchResults{
		Keyword: keyword,
		Page:    page,
		Total:   result.TotalCount,
		HasMore: result.HasMore(),
	}
	if page > 1 && prev != nil && prev.Keyword == keyword {
		next.Entries = listing.AppendPage(prev.Entries, result.Records)
	} else {
		next.Entries = append([]types.Entry(nil), result.Records...)
	}
	s.search = next
	out := *next
	out.Entries = append([]types.Entry(nil), next.Entries...)
	return &out, nil
}

// SearchResults returns the last remote search, or nil.
func (s *Session) SearchResults() *SearchResults {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		return nil
	}
	out := *s.search
	out.Entries = append([]types.Entry(nil), s.search.Entries...)
	return &out
}

// ClearSearch drops the remote search results.
func (s *Session) ClearSearch() {
	s.mu.Lock()
	s.search = nil
	s.mu.Unlock()
}

// Filter returns the loaded entries whose name matches pattern. Patterns
// with glob metacharacters are matched with doublestar; anything else is a
// case-insensitive substring.
func (s *Session) Filter(pattern string) ([]types.Entry, error) {
	return FilterEntries(s.Listing.Entries(), pattern)
}

// FilterEntries applies the Filter rules to entries.
func FilterEntries(entries []types.Entry, pattern string) ([]types.Entry, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return entries, nil
	}
	glob := strings.ContainsAny(pattern, "*?[{")
	if glob && !doublestar.ValidatePattern(pattern) {
		return nil, &types.ValidationError{Field: "pattern", Message: "invalid pattern " + pattern}
	}
	needle := strings.ToLower(pattern)

	out := make([]types.Entry, 0, len(entries))
	for _, e := range entries {
		var ok bool
		if glob {
			subject := e.Name
			if strings.Contains(pattern, "/") {
				subject = strings.TrimPrefix(e.Path, "/")
			}
			ok, _ = doublestar.Match(pattern, subject)
		} else {
			ok = strings.Contains(strings.ToLower(e.Name), needle)
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// SortField selects the sort key of Sorted.
type SortField string

const (
	SortName     SortField = "name"
	SortSize     SortField = "size"
	SortModified SortField = "lastModified"
)

// ParseSortField accepts the field names and their short forms.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "":
		return SortName, true
	case "size":
		return SortSize, true
	case "lastmodified", "modified", "mtime", "time":
		return SortModified, true
	}
	return "", false
}

// Sorted returns the loaded entries ordered by field.
func (s *Session) Sorted(field SortField, desc bool) []types.Entry {
	return SortEntries(s.Listing.Entries(), field, desc)
}

// SortEntries orders a copy of entries. Directories always precede files;
// ties fall back to the name.
func SortEntries(entries []types.Entry, field SortField, desc bool) []types.Entry {
	out := append([]types.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDirectory != b.IsDirectory {
			return a.IsDirectory
		}
		var cmp int
		switch field {
		case SortSize:
			cmp = compareInt(a.Size, b.Size)
		case SortModified:
			cmp = compareInt(a.LastModified, b.LastModified)
		}
		if cmp == 0 {
			cmp = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
