package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/navigation"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// Messages of the client-enforced deadlines.
const (
	MsgUploadTimeout = "upload timed out, please retry"
	MsgSaveTimeout   = "save timed out, please retry"
)

const (
	illegalNameChars = `\/:*?"<>|`
	sniffLen         = 3072
)

// ValidateName rejects blank names and names the backend cannot store.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &types.ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.ContainsAny(name, illegalNameChars) {
		return &types.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("name cannot contain any of %s", strings.Join(strings.Split(illegalNameChars, ""), " ")),
		}
	}
	return nil
}

// UploadEvent reports upload progress. The last event has Done set and
// carries the outcome in Err.
type UploadEvent struct {
	Sent    int64
	Total   int64
	Percent int
	Done    bool
	Err     error
}

// progressReader counts bytes read and publishes a progress event each
// time the rounded percentage changes.
type progressReader struct {
	r       io.Reader
	total   int64
	sent    atomic.Int64
	last    int
	events  chan<- UploadEvent
	publish bool
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		sent := p.sent.Add(int64(n))
		if p.publish {
			p.emit(sent)
		}
	}
	return n, err
}

func (p *progressReader) emit(sent int64) {
	pct := percent(sent, p.total)
	if pct == p.last {
		return
	}
	p.last = pct
	select {
	case p.events <- UploadEvent{Sent: sent, Total: p.total, Percent: pct}:
	default:
	}
}

func percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(sent) * 100 / float64(total)))
}

// Upload sends r as name into the current directory. size may be zero when
// unknown. The returned channel yields progress and then exactly one Done
// event before it is closed; callers must drain it. Name validation fails
// before any network call.
func (s *Session) Upload(ctx context.Context, r io.Reader, name string, size int64) (<-chan UploadEvent, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	target := navigation.Join(s.Navigator.Current(), name)

	events := make(chan UploadEvent, 16)
	go func() {
		defer close(events)
		sent, err := s.upload(ctx, r, name, size, target, events)
		if err == nil {
			s.refreshAfter(ctx, "upload")
		}
		events <- UploadEvent{Sent: sent, Total: size, Percent: percent(sent, size), Done: true, Err: err}
	}()
	return events, nil
}

// upload performs one bounded upload and returns the bytes read from r.
func (s *Session) upload(ctx context.Context, r io.Reader, name string, size int64, target string, events chan<- UploadEvent) (int64, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return 0, fmt.Errorf("failed to read %s: %w", name, err)
	}
	contentType := uploadContentType(head)

	pr := &progressReader{r: br, total: size, events: events, publish: events != nil}

	uctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	s.logger.Debug("uploading file",
		zap.String("target", target),
		zap.String("contentType", contentType),
		zap.Int64("size", size))

	err = s.api.UploadFile(uctx, pr, name, contentType, target)
	sent := pr.sent.Load()
	if err != nil {
		if errors.Is(uctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = &types.TimeoutError{Op: "upload", Message: MsgUploadTimeout}
		}
		s.metrics.RecordUpload("error", 0)
		s.logger.Warn("upload failed", zap.String("target", target), zap.Error(err))
		return sent, err
	}
	s.metrics.RecordUpload("ok", sent)
	s.logger.Info("uploaded file", zap.String("target", target), zap.Int64("bytes", sent))
	return sent, nil
}

// UploadReport summarizes UploadDirectory.
type UploadReport struct {
	Root    string
	Folders int
	Files   int
	Bytes   int64
}

// UploadDirectory recreates localDir under the current directory and
// uploads every regular file in it. Individual failures are collected and
// returned together; the remaining files are still uploaded.
func (s *Session) UploadDirectory(ctx context.Context, localDir string) (UploadReport, error) {
	localDir = filepath.Clean(localDir)
	info, err := os.Stat(localDir)
	if err != nil {
		return UploadReport{}, fmt.Errorf("failed to stat %s: %w", localDir, err)
	}
	if !info.IsDir() {
		return UploadReport{}, &types.ValidationError{Field: "path", Message: localDir + " is not a directory"}
	}
	base := filepath.Base(localDir)
	if err := ValidateName(base); err != nil {
		return UploadReport{}, err
	}

	var (
		mu       sync.Mutex
		dirs     []string
		files    []string
		walkErrs []error
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, localDir, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			// Unreadable entries are reported; the rest of the tree is
			// still uploaded.
			mu.Lock()
			walkErrs = append(walkErrs, fmt.Errorf("walk %s: %w", p, err))
			mu.Unlock()
			return nil
		}
		rel, rerr := filepath.Rel(localDir, p)
		if rerr != nil {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		switch {
		case d.IsDir():
			if rel != "." {
				dirs = append(dirs, filepath.ToSlash(rel))
			}
		case d.Type().IsRegular():
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return UploadReport{}, fmt.Errorf("failed to walk %s: %w", localDir, err)
	}

	// parents sort before their children
	sort.Strings(dirs)
	sort.Strings(files)

	root := navigation.Join(s.Navigator.Current(), base)
	report := UploadReport{Root: root}
	var result *multierror.Error

	if err := s.api.CreateDirectory(ctx, root); err != nil {
		return report, fmt.Errorf("mkdir %s: %w", root, err)
	}
	report.Folders++
	sort.Slice(walkErrs, func(i, j int) bool { return walkErrs[i].Error() < walkErrs[j].Error() })
	result = multierror.Append(result, walkErrs...)
	for _, rel := range dirs {
		remote := root + "/" + rel
		if err := s.api.CreateDirectory(ctx, remote); err != nil {
			result = multierror.Append(result, fmt.Errorf("mkdir %s: %w", remote, err))
			continue
		}
		report.Folders++
	}

	for _, rel := range files {
		if ctx.Err() != nil {
			result = multierror.Append(result, ctx.Err())
			break
		}
		name := filepath.Base(filepath.FromSlash(rel))
		if err := ValidateName(name); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		sent, err := s.uploadLocal(ctx, filepath.Join(localDir, filepath.FromSlash(rel)), name, root+"/"+rel)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		report.Files++
		report.Bytes += sent
	}

	s.refreshAfter(ctx, "upload directory")
	return report, result.ErrorOrNil()
}

func (s *Session) uploadLocal(ctx context.Context, local, name, target string) (int64, error) {
	f, err := os.Open(local)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	var size int64
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	return s.upload(ctx, f, name, size, target, nil)
}

// DownloadURL returns the direct download link of a file.
func (s *Session) DownloadURL(entry types.Entry) (string, error) {
	if entry.IsDirectory {
		return "", &types.ValidationError{Field: "path", Message: "folders cannot be downloaded"}
	}
	return s.api.DownloadURL(entry.Path), nil
}

// CreateFolder creates name under the current directory and refreshes the
// listing.
func (s *Session) CreateFolder(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	target := navigation.Join(s.Navigator.Current(), name)
	if err := s.api.CreateDirectory(ctx, target); err != nil {
		s.logger.Warn("create folder failed", zap.String("path", target), zap.Error(err))
		return "", err
	}
	s.logger.Info("created folder", zap.String("path", target))
	s.refreshAfter(ctx, "mkdir")
	return target, nil
}
