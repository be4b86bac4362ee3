package client

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const (
	endpointTags       = "tags"
	endpointFileTags   = "fileTags"
	endpointUpdateTags = "updateFileTags"
)

// Tags returns the tag tree.
func (c *Client) Tags(ctx context.Context) ([]types.Tag, error) {
	return call[[]types.Tag](ctx, c, endpointTags, http.MethodGet, "/api/tags", nil)
}

// FileTags returns the tags bound to path.
func (c *Client) FileTags(ctx context.Context, path string) ([]types.Tag, error) {
	return call[[]types.Tag](ctx, c, endpointFileTags, http.MethodGet, "/api/files/tags", func(r *resty.Request) {
		r.SetQueryParam("path", path)
	})
}

// UpdateFileTags replaces the tags bound to path.
func (c *Client) UpdateFileTags(ctx context.Context, path string, tags types.FileTags) error {
	if tags.TagIDs == nil {
		tags.TagIDs = []int64{}
	}
	_, err := call[any](ctx, c, endpointUpdateTags, http.MethodPost, "/api/files/tags", func(r *resty.Request) {
		r.SetQueryParam("path", path).SetBody(tags)
	})
	return err
}
