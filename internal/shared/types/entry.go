package types

import (
	"strings"
	"time"
)

// Entry is one file or directory record returned by a listing.
type Entry struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	LastModified int64  `json:"lastModified"`
	IsDirectory  bool   `json:"directory"`
	Owner        string `json:"owner"`
	Tags         []Tag  `json:"tags,omitempty"`
}

// Extension returns the lowercase suffix after the last '.' of the name,
// or "" when the name has none.
func (e Entry) Extension() string {
	idx := strings.LastIndex(e.Name, ".")
	if idx < 0 || idx == len(e.Name)-1 {
		return ""
	}
	return strings.ToLower(e.Name[idx+1:])
}

// ModTime converts LastModified (epoch millis) to a time.Time.
func (e Entry) ModTime() time.Time {
	return time.UnixMilli(e.LastModified)
}

// BrowsingMode alters pagination and filtering of a listing.
type BrowsingMode string

const (
	ModeNormal       BrowsingMode = "NORMAL"
	ModeFolderSelect BrowsingMode = "FOLDER_SELECT"
	ModeTagFilter    BrowsingMode = "TAG_FILTER"
)

// ParseBrowsingMode accepts the wire names and the short forms used on the
// command line.
func ParseBrowsingMode(s string) (BrowsingMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, true
	case "folder", "folder_select", "folder-select":
		return ModeFolderSelect, true
	case "tags", "tag", "tag_filter", "tag-filter":
		return ModeTagFilter, true
	}
	return "", false
}

// ListingPage is one page of a paginated listing.
type ListingPage struct {
	Records    []Entry `json:"records"`
	TotalCount int64   `json:"total"`
	PageSize   int     `json:"size"`
	PageNumber int     `json:"current"`
	TotalPages int     `json:"pages"`
}

// HasMore reports whether pages follow this one.
func (p *ListingPage) HasMore() bool {
	if p == nil {
		return false
	}
	return p.PageNumber < p.TotalPages
}
