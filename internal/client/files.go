package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const (
	endpointQueryFiles = "queryFiles"
	endpointTagsAll    = "filesContainAllTags"
	endpointTagsAny    = "filesContainAnyTags"
	endpointSearch     = "search"
	endpointContent    = "content"
	endpointSave       = "saveContent"
	endpointMkdir      = "mkdir"
	endpointUpload     = "upload"
	endpointUsers      = "systemUsers"
	endpointChown      = "changeOwner"
)

// FetchListing returns one page of the directory at path.
func (c *Client) FetchListing(ctx context.Context, path string, page, size int) (*types.ListingPage, error) {
	body := map[string]any{"path": path, "page": page, "size": size}
	return call[*types.ListingPage](ctx, c, endpointQueryFiles, http.MethodPost, "/api/files/queryFiles",
		func(r *resty.Request) { r.SetBody(body) })
}

// FetchListingByTags returns one page of files carrying all (matchAll) or
// any of tagIDs.
func (c *Client) FetchListingByTags(ctx context.Context, tagIDs []int64, matchAll bool, page, size int) (*types.ListingPage, error) {
	ids := make([]string, len(tagIDs))
	for i, id := range tagIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}

	endpoint, path := endpointTagsAny, "/api/files/get-files-contain-any-tags"
	if matchAll {
		endpoint, path = endpointTagsAll, "/api/files/get-files-contain-all-tags"
	}
	return call[*types.ListingPage](ctx, c, endpoint, http.MethodGet, path, func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"tagIds": strings.Join(ids, ","),
			"page":   strconv.Itoa(page),
			"size":   strconv.Itoa(size),
		})
	})
}

// SearchFiles runs a backend-wide name search.
func (c *Client) SearchFiles(ctx context.Context, keyword string, page, size int) (*types.ListingPage, error) {
	return call[*types.ListingPage](ctx, c, endpointSearch, http.MethodGet, "/api/files/search", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{
			"keyword": keyword,
			"page":    strconv.Itoa(page),
			"size":    strconv.Itoa(size),
		})
	})
}

// GetFileContent returns the text content of a file.
func (c *Client) GetFileContent(ctx context.Context, path string) (string, error) {
	return call[string](ctx, c, endpointContent, http.MethodGet, "/api/files/content", func(r *resty.Request) {
		r.SetQueryParam("path", path)
	})
}

// SaveFileContent replaces the content of a file.
func (c *Client) SaveFileContent(ctx context.Context, path, content string) error {
	_, err := call[any](ctx, c, endpointSave, http.MethodPost, "/api/files/content", func(r *resty.Request) {
		r.SetQueryParam("path", path).
			SetHeader("Content-Type", "text/plain").
			SetBody(content)
	})
	return err
}

// CreateDirectory creates the directory at path.
func (c *Client) CreateDirectory(ctx context.Context, path string) error {
	_, err := call[any](ctx, c, endpointMkdir, http.MethodPost, "/api/files/mkdir", func(r *resty.Request) {
		r.SetQueryParam("path", path)
	})
	return err
}

// SystemUsers lists the accounts a file owner may be changed to.
func (c *Client) SystemUsers(ctx context.Context) ([]string, error) {
	return call[[]string](ctx, c, endpointUsers, http.MethodGet, "/api/files/system-users", nil)
}

// ChangeOwner changes the owner of path.
func (c *Client) ChangeOwner(ctx context.Context, path, owner string) error {
	_, err := call[any](ctx, c, endpointChown, http.MethodPost, "/api/files/change-owner", func(r *resty.Request) {
		r.SetQueryParams(map[string]string{"path": path, "owner": owner})
	})
	return err
}
