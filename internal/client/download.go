package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const endpointDownload = "download"

// DownloadURL builds the direct retrieval URL for path. The token travels
// as a query parameter because the URL is handed to a downloader that
// cannot set headers.
func (c *Client) DownloadURL(path string) string {
	return fmt.Sprintf("%s/api/files/download?path=%s&authorization=%s",
		c.baseURL, encodeComponent(path), encodeComponent(c.Token()))
}

// encodeComponent escapes s like a URI component: spaces become %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// DownloadTo streams rawURL into the file dest and returns its size. No
// default timeout applies; bound the call with ctx.
func (c *Client) DownloadTo(ctx context.Context, rawURL, dest string) (int64, error) {
	req, cancel, err := c.request(ctx, 0)
	if err != nil {
		return 0, &types.TransportError{Op: endpointDownload, Message: msgCancelled, Err: err}
	}
	defer cancel()

	resp, err := req.SetOutput(dest).Get(rawURL)
	if err != nil {
		os.Remove(dest)
		return 0, c.classify(req.Context(), endpointDownload, 0, err)
	}
	if resp.StatusCode() != http.StatusOK {
		os.Remove(dest)
		return 0, &types.TransportError{
			Op:      endpointDownload,
			Status:  resp.StatusCode(),
			Message: fmt.Sprintf("download failed: HTTP %d", resp.StatusCode()),
		}
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to stat downloaded file: %w", err)
	}
	c.logger.Info("downloaded file", zap.String("dest", dest), zap.Int64("size", stat.Size()))
	return stat.Size(), nil
}
