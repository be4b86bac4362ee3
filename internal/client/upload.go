package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// maxReplySize bounds the envelope read back from an upload.
const maxReplySize = 1 << 20

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// UploadFile streams r as a multipart upload stored at targetPath. The
// form is encoded while it is sent, so r is read no faster than the
// backend accepts it. Bound the call with a context deadline; the default
// request timeout does not apply to a context that already has one.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, name, contentType, targetPath string) error {
	if err := c.checkToken(endpointUpload); err != nil {
		return err
	}
	ctx, cancel, err := c.wait(ctx, c.timeout)
	if err != nil {
		return &types.TransportError{Op: endpointUpload, Message: msgCancelled, Err: err}
	}
	defer cancel()

	body, pw := io.Pipe()
	defer body.Close()
	form := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := c.Breaker.Allow(); err != nil {
		return &types.TransportError{Op: endpointUpload, Message: err.Error(), Err: err}
	}

	// failed is filled before the pipe closes, so it is visible by the
	// time the transport reports the broken body.
	failed := make(chan error, 1)
	go func() {
		src := &sourceReader{r: r}
		err := writeUploadForm(form, src, name, contentType, targetPath)
		if src.err != nil {
			failed <- src.err
		}
		pw.CloseWithError(err)
	}()

	timer := monitoring.NewTimer(c.metrics, endpointUpload)
	start := time.Now()
	resp, err := c.direct.Do(req)
	if err != nil {
		timer.Stop("error")
		select {
		case readErr := <-failed:
			c.Breaker.Release()
			return fmt.Errorf("failed to read upload source: %w", readErr)
		default:
		}
		return c.failure(ctx, endpointUpload, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		timer.Stop("error")
		return c.failure(ctx, endpointUpload, resp.StatusCode, err)
	}
	timer.Stop(strconv.Itoa(resp.StatusCode))

	// A body that is not an envelope leaves Code at zero, which unwrap
	// reports from the status.
	var env envelope[any]
	_ = sonic.Unmarshal(data, &env)
	_, err = unwrap(c, endpointUpload, resp.StatusCode, &env, time.Since(start))
	return err
}

// writeUploadForm encodes the target path and the file part of an upload.
func writeUploadForm(form *multipart.Writer, r io.Reader, name, contentType, targetPath string) error {
	if err := form.WriteField("path", targetPath); err != nil {
		return err
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return form.Close()
}

// sourceReader remembers the first read error of the upload source, which
// the pipe would otherwise report as a transport failure.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF && s.err == nil {
		s.err = err
	}
	return n, err
}
