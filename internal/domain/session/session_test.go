package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/FileFlex/client/internal/domain/navigation"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
	"github.com/GriffinCanCode/FileFlex/client/internal/storage"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) FetchListing(ctx context.Context, path string, page, size int) (*types.ListingPage, error) {
	args := m.Called(ctx, path, page, size)
	p, _ := args.Get(0).(*types.ListingPage)
	return p, args.Error(1)
}

func (m *mockAPI) FetchListingByTags(ctx context.Context, tagIDs []int64, matchAll bool, page, size int) (*types.ListingPage, error) {
	args := m.Called(ctx, tagIDs, matchAll, page, size)
	p, _ := args.Get(0).(*types.ListingPage)
	return p, args.Error(1)
}

func (m *mockAPI) FetchOperationCatalogue(ctx context.Context) ([]types.OperationDescriptor, error) {
	args := m.Called(ctx)
	ops, _ := args.Get(0).([]types.OperationDescriptor)
	return ops, args.Error(1)
}

func (m *mockAPI) ExecuteOperation(ctx context.Context, opType string, payload types.Payload) (string, error) {
	args := m.Called(ctx, opType, payload)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) UploadFile(ctx context.Context, r io.Reader, name, contentType, targetPath string) error {
	return m.Called(ctx, r, name, contentType, targetPath).Error(0)
}

func (m *mockAPI) GetFileContent(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *mockAPI) SaveFileContent(ctx context.Context, path, content string) error {
	return m.Called(ctx, path, content).Error(0)
}

func (m *mockAPI) CreateDirectory(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *mockAPI) SearchFiles(ctx context.Context, keyword string, page, size int) (*types.ListingPage, error) {
	args := m.Called(ctx, keyword, page, size)
	p, _ := args.Get(0).(*types.ListingPage)
	return p, args.Error(1)
}

func (m *mockAPI) DownloadURL(path string) string {
	return "http://backend/api/files/download?path=" + path
}

type mockConfirmer struct {
	mock.Mock
}

func (m *mockConfirmer) Confirm(ctx context.Context, title, message string, targets []string) (bool, error) {
	args := m.Called(ctx, title, message, targets)
	return args.Bool(0), args.Error(1)
}

var any4 = []any{mock.Anything, mock.Anything, mock.Anything, mock.Anything}

func page(records ...types.Entry) *types.ListingPage {
	return &types.ListingPage{Records: records, TotalCount: int64(len(records)), PageSize: 20, PageNumber: 1, TotalPages: 1}
}

func file(p string) types.Entry {
	return types.Entry{Name: filepath.Base(p), Path: p}
}

func dir(p string) types.Entry {
	return types.Entry{Name: filepath.Base(p), Path: p, IsDirectory: true}
}

var catalogue = []types.OperationDescriptor{
	{Type: types.OpCopy, Description: "Copy", SupportsFile: true, SupportsDirectory: true, SupportsMultiSelect: true,
		ParamSchema: []types.ParameterSpec{
			{Key: "selectedPaths", Type: "FOLDER_FILE_MULTI_SELECT"},
			{Key: "targetPath", Label: "Target", Type: "FOLDER", Required: true},
		}},
	{Type: types.OpDecompress, Description: "Decompress", SupportsFile: true, SupportedExtensions: []string{"zip"}},
	{Type: types.OpDelete, Description: "Delete", SupportsFile: true, SupportsDirectory: true, SupportsMultiSelect: true},
	{Type: types.OpFileChangeOwner, Description: "Change owner", SupportsDirectory: true},
}

func newSession(t *testing.T, api *mockAPI, confirmer Confirmer, opts ...func(*Options)) *Session {
	t.Helper()
	o := Options{Navigation: navigation.Options{InitialPath: "/"}}
	for _, fn := range opts {
		fn(&o)
	}
	return New(api, confirmer, storage.NewMemory(), o)
}

func started(t *testing.T, api *mockAPI, confirmer Confirmer, records ...types.Entry) *Session {
	t.Helper()
	api.On("FetchOperationCatalogue", mock.Anything).Return(catalogue, nil)
	api.On("FetchListing", mock.Anything, "/", 1, 20).Return(page(records...), nil)
	s := newSession(t, api, confirmer)
	require.NoError(t, s.Start(context.Background()))
	return s
}

func actionIDs(menu []Action) []string {
	ids := make([]string, len(menu))
	for i, a := range menu {
		ids[i] = a.ID
	}
	return ids
}

func TestStartReportsBothFailures(t *testing.T) {
	api := new(mockAPI)
	api.On("FetchOperationCatalogue", mock.Anything).Return(nil, errors.New("down"))
	api.On("FetchListing", any4...).Return(nil, errors.New("down"))

	s := newSession(t, api, nil)
	err := s.Start(context.Background())
	require.Error(t, err)

	var unavailable *types.CatalogueUnavailable
	assert.ErrorAs(t, err, &unavailable)
	assert.False(t, s.Catalogue.Loaded())
}

func TestNavigateTwiceDoesNotDuplicateHistory(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil, file("/a.txt"))
	api.On("FetchListing", mock.Anything, "/docs", 1, 20).Return(page(file("/docs/r.md")), nil)

	s.Toggle(file("/a.txt"))
	snap, err := s.NavigateTo(context.Background(), "/docs")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Page)
	assert.Empty(t, s.Selection())

	snap, err = s.NavigateTo(context.Background(), "/docs/")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Page)

	assert.Equal(t, []string{"/docs"}, s.Navigator.History())
	assert.Equal(t, "/docs", s.CurrentPath())
	api.AssertNumberOfCalls(t, "FetchListing", 3)
}

func TestNavigateToSegmentAndBack(t *testing.T) {
	api := new(mockAPI)
	api.On("FetchOperationCatalogue", mock.Anything).Return(catalogue, nil)
	api.On("FetchListing", any4...).Return(page(), nil)
	s := newSession(t, api, nil, func(o *Options) {
		o.Navigation = navigation.Options{InitialPath: "/a/b/c", FromNavigation: true}
	})

	_, err := s.NavigateToSegment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/a/b", s.CurrentPath())

	action, err := s.GoBack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, navigation.BackNavigate, action)
	assert.Equal(t, "/a", s.CurrentPath())
}

func TestBuildActionMenu(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)

	menu := s.BuildActionMenu(file("/notes.txt"), false, ScopeLocal)
	assert.Equal(t, []string{
		ActionMultiSelect, ActionManageTags, ActionDownload, ActionEdit,
		types.OpCopy, types.OpDelete,
	}, actionIDs(menu))
	assert.True(t, menu[5].Danger)
	assert.False(t, menu[4].Danger)
	assert.Equal(t, "Copy", menu[4].Label)

	menu = s.BuildActionMenu(file("/pack.zip"), true, ScopeRemote)
	assert.Equal(t, []string{
		ActionMultiSelect, ActionGoToFolder, ActionManageTags, ActionDownload,
		types.OpCopy, types.OpDecompress, types.OpDelete,
	}, actionIDs(menu))

	menu = s.BuildActionMenu(dir("/photos"), true, ScopeLocal)
	assert.Equal(t, []string{
		ActionMultiSelect, ActionManageTags,
		types.OpCopy, types.OpDelete, types.OpFileChangeOwner,
	}, actionIDs(menu))
	assert.True(t, menu[4].Danger)

	s.ToggleMultiSelect()
	menu = s.BuildActionMenu(file("/pack.zip"), false, ScopeLocal)
	assert.Equal(t, []string{
		ActionCancelMultiSelect, ActionDownload, types.OpCopy, types.OpDelete,
	}, actionIDs(menu))
}

func TestDestructiveOperationDeclined(t *testing.T) {
	api := new(mockAPI)
	confirmer := new(mockConfirmer)
	s := started(t, api, confirmer, file("/a.txt"))

	confirmer.On("Confirm", mock.Anything, "Confirm Delete", mock.Anything, []string{"/a.txt"}).
		Run(func(mock.Arguments) {
			api.AssertNotCalled(t, "ExecuteOperation", mock.Anything, mock.Anything, mock.Anything)
		}).
		Return(false, nil)

	outcome, err := s.Dispatch(context.Background(), types.OpDelete, file("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome.Kind)
	confirmer.AssertExpectations(t)
	api.AssertNotCalled(t, "ExecuteOperation", mock.Anything, mock.Anything, mock.Anything)
}

func TestDestructiveOperationCancelledByUserError(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, ConfirmFunc(func(context.Context, string, string, []string) (bool, error) {
		return false, types.ErrCancelledByUser
	}), file("/a.txt"))

	outcome, err := s.Dispatch(context.Background(), types.OpDelete, file("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCancelled, outcome.Kind)
}

func TestDestructiveOperationConfirmed(t *testing.T) {
	api := new(mockAPI)
	confirmer := new(mockConfirmer)
	s := started(t, api, confirmer, file("/a.txt"), file("/b.txt"))

	s.ToggleMultiSelect()
	s.SelectAll()
	require.True(t, s.IsAllSelected())

	confirmer.On("Confirm", mock.Anything, mock.Anything, mock.Anything, []string{"/a.txt", "/b.txt"}).Return(true, nil)
	api.On("ExecuteOperation", mock.Anything, types.OpDelete,
		types.Payload{"selectedPaths": []string{"/a.txt", "/b.txt"}}).Return("deleted 2", nil)

	outcome, err := s.Dispatch(context.Background(), types.OpDelete, file("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, outcome.Kind)
	assert.Equal(t, "deleted 2", outcome.Result)
	assert.Empty(t, s.Selection())

	// start load plus the refresh after success
	api.AssertNumberOfCalls(t, "FetchListing", 2)
}

func TestOperationFailureKeepsSelection(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil, file("/a.zip"))
	s.Toggle(file("/a.zip"))

	api.On("ExecuteOperation", mock.Anything, types.OpDecompress, types.Payload{"selectPath": "/a.zip"}).
		Return("", &types.TransportError{Op: "execute", Code: 500, Message: "archive is corrupt"}).Once()

	_, err := s.Dispatch(context.Background(), types.OpDecompress, file("/a.zip"))
	require.Error(t, err)
	assert.Equal(t, "archive is corrupt", types.UserMessage(err))
	assert.Len(t, s.Selection(), 1)
	api.AssertNumberOfCalls(t, "FetchListing", 1)

	api.On("ExecuteOperation", mock.Anything, types.OpDecompress, mock.Anything).
		Return("", errors.New("connection reset")).Once()
	_, err = s.Dispatch(context.Background(), types.OpDecompress, file("/a.zip"))
	require.Error(t, err)
	assert.Equal(t, "Decompress failed", types.UserMessage(err))

	var te *types.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, types.OpDecompress, te.Op)
}

func TestDispatchUnknownOrIllegalOperation(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)

	_, err := s.Dispatch(context.Background(), "RENAME", file("/a.txt"))
	assert.True(t, types.IsValidation(err))

	_, err = s.Dispatch(context.Background(), types.OpDecompress, file("/a.txt"))
	assert.True(t, types.IsValidation(err))
	api.AssertNotCalled(t, "ExecuteOperation", mock.Anything, mock.Anything, mock.Anything)
}

func TestParameterFormFlow(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil, file("/a.txt"))

	outcome, err := s.Dispatch(context.Background(), types.OpCopy, file("/a.txt"))
	require.NoError(t, err)
	require.Equal(t, OutcomeParamForm, outcome.Kind)
	assert.Equal(t, types.OpCopy, outcome.Form.Descriptor.Type)
	require.NotNil(t, s.PendingParameters())

	// missing required target keeps the form pending
	_, err = s.SubmitParameters(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	require.NotNil(t, s.PendingParameters())

	api.On("ExecuteOperation", mock.Anything, types.OpCopy, types.Payload{
		"selectedPaths": []string{"/a.txt"},
		"targetPath":    "/backup",
	}).Return("", nil)

	outcome, err = s.SubmitParameters(context.Background(), map[string]any{"targetPath": "/backup"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, outcome.Kind)
	assert.Equal(t, "Copy succeeded", outcome.Result)
	assert.Nil(t, s.PendingParameters())
}

func TestSubmitWithoutPendingForm(t *testing.T) {
	s := newSession(t, new(mockAPI), nil)
	_, err := s.SubmitParameters(context.Background(), nil)
	assert.True(t, types.IsValidation(err))
}

func TestDispatchBuiltins(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)
	ctx := context.Background()

	outcome, err := s.Dispatch(ctx, ActionManageTags, file("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeTagManager, outcome.Kind)

	outcome, err = s.Dispatch(ctx, ActionDownload, file("/a b.txt"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDownload, outcome.Kind)
	assert.Contains(t, outcome.URL, "/api/files/download")

	_, err = s.Dispatch(ctx, ActionDownload, dir("/photos"))
	assert.True(t, types.IsValidation(err))

	outcome, err = s.Dispatch(ctx, ActionMultiSelect, file("/a.txt"))
	require.NoError(t, err)
	assert.True(t, outcome.MultiSelect)
	assert.True(t, s.MultiSelect())

	s.Toggle(file("/a.txt"))
	outcome, err = s.Dispatch(ctx, ActionCancelMultiSelect, file("/a.txt"))
	require.NoError(t, err)
	assert.False(t, outcome.MultiSelect)
	assert.Empty(t, s.Selection())

	api.On("FetchListing", mock.Anything, "/deep", 1, 20).Return(page(), nil)
	outcome, err = s.Dispatch(ctx, ActionGoToFolder, file("/deep/x.txt"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNavigated, outcome.Kind)
	assert.Equal(t, "/deep", s.CurrentPath())
}

func TestSelection(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil, file("/a"), file("/b"))

	assert.False(t, s.IsAllSelected())
	assert.True(t, s.Toggle(file("/b")))
	assert.True(t, s.Toggle(file("/a")))
	assert.Equal(t, []string{"/b", "/a"}, s.SelectedPaths())
	assert.True(t, s.IsAllSelected())
	assert.False(t, s.Toggle(file("/b")))
	assert.True(t, s.IsSelected("/a"))

	s.ToggleSelectAll()
	assert.True(t, s.IsAllSelected())
	s.ToggleSelectAll()
	assert.Empty(t, s.Selection())

	assert.True(t, s.ToggleMultiSelect())
	s.SelectAll()
	assert.False(t, s.ToggleMultiSelect())
	assert.Empty(t, s.Selection())
}

func TestUploadRejectsIllegalNames(t *testing.T) {
	api := new(mockAPI)
	s := newSession(t, api, nil)
	for _, name := range []string{"", "a/b", `a\b`, "a:b", "a*b", "a?b", `a"b`, "a<b", "a>b", "a|b"} {
		_, err := s.Upload(context.Background(), strings.NewReader("x"), name, 1)
		assert.True(t, types.IsValidation(err), name)
	}
	api.AssertNotCalled(t, "UploadFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func drain(events <-chan UploadEvent) (progress []UploadEvent, last UploadEvent) {
	for ev := range events {
		if ev.Done {
			last = ev
			continue
		}
		progress = append(progress, ev)
	}
	return progress, last
}

func TestUploadSuccess(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)
	_, err := s.NavigateTo(context.Background(), "/")
	require.NoError(t, err)

	data := strings.Repeat("hello world\n", 1000)
	api.On("UploadFile", mock.Anything, mock.Anything, "notes.txt",
		mock.MatchedBy(func(ct string) bool { return strings.HasPrefix(ct, "text/plain") }),
		"/notes.txt").
		Run(func(args mock.Arguments) {
			_, _ = io.ReadAll(args.Get(1).(io.Reader))
		}).
		Return(nil)

	events, err := s.Upload(context.Background(), strings.NewReader(data), "notes.txt", int64(len(data)))
	require.NoError(t, err)
	_, last := drain(events)

	require.NoError(t, last.Err)
	assert.Equal(t, int64(len(data)), last.Sent)
	assert.Equal(t, 100, last.Percent)
	api.AssertExpectations(t)
}

func TestUploadTimeout(t *testing.T) {
	api := new(mockAPI)
	api.On("UploadFile", mock.Anything, mock.Anything, "big.bin", mock.Anything, "/docs/big.bin").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	s := newSession(t, api, nil, func(o *Options) {
		o.Navigation.InitialPath = "/docs"
		o.UploadTimeout = 20 * time.Millisecond
	})

	events, err := s.Upload(context.Background(), strings.NewReader("payload"), "big.bin", 7)
	require.NoError(t, err)
	_, last := drain(events)

	require.Error(t, last.Err)
	var te *types.TimeoutError
	require.ErrorAs(t, last.Err, &te)
	assert.Equal(t, MsgUploadTimeout, te.Message)
	assert.Equal(t, "upload timed out, please retry", types.UserMessage(last.Err))
}

func TestUploadDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "album")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cover.txt"), []byte("cover"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2024", "jan.txt"), []byte("january"), 0o644))

	api := new(mockAPI)
	s := started(t, api, nil)
	api.On("CreateDirectory", mock.Anything, "/album").Return(nil)
	api.On("CreateDirectory", mock.Anything, "/album/2024").Return(nil)
	api.On("UploadFile", mock.Anything, mock.Anything, "cover.txt", mock.Anything, "/album/cover.txt").
		Run(func(args mock.Arguments) { _, _ = io.ReadAll(args.Get(1).(io.Reader)) }).Return(nil)
	api.On("UploadFile", mock.Anything, mock.Anything, "jan.txt", mock.Anything, "/album/2024/jan.txt").
		Return(errors.New("quota exceeded"))

	report, err := s.UploadDirectory(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, "/album", report.Root)
	assert.Equal(t, 2, report.Folders)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, int64(5), report.Bytes)
	api.AssertExpectations(t)
}

func TestUploadDirectoryReportsUnreadableFolders(t *testing.T) {
	root := filepath.Join(t.TempDir(), "photos")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.MkdirAll(locked, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok.txt"), []byte("fine"), 0o644))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	if _, err := os.ReadDir(locked); err == nil {
		t.Skip("permissions are not enforced for this user")
	}

	api := new(mockAPI)
	s := started(t, api, nil)
	api.On("CreateDirectory", mock.Anything, "/photos").Return(nil)
	api.On("CreateDirectory", mock.Anything, "/photos/locked").Return(nil)
	api.On("UploadFile", mock.Anything, mock.Anything, "ok.txt", mock.Anything, "/photos/ok.txt").
		Run(func(args mock.Arguments) { _, _ = io.ReadAll(args.Get(1).(io.Reader)) }).Return(nil)

	report, err := s.UploadDirectory(context.Background(), root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walk "+locked)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, int64(4), report.Bytes)
	api.AssertExpectations(t)
}

func TestEditor(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)

	_, err := s.OpenEditor(context.Background(), file("/photo.png"))
	assert.True(t, types.IsValidation(err))

	api.On("GetFileContent", mock.Anything, "/conf/app.yml").Return("port: 8080\n", nil)
	api.On("SaveFileContent", mock.Anything, "/conf/app.yml", "port: 9090\n").Return(nil)

	ed, err := s.OpenEditor(context.Background(), file("/conf/app.yml"))
	require.NoError(t, err)
	assert.False(t, ed.Lossy)
	assert.False(t, ed.Dirty())

	ed.SetContent("port: 9090\n")
	assert.True(t, ed.Dirty())
	require.NoError(t, ed.Save(context.Background()))
	assert.False(t, ed.Dirty())
	api.AssertExpectations(t)
}

func TestEditorFlagsLossyContent(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)
	api.On("GetFileContent", mock.Anything, "/legacy.txt").Return("Gr\uFFFD\uFFFDe", nil)

	ed, err := s.OpenEditor(context.Background(), file("/legacy.txt"))
	require.NoError(t, err)
	assert.True(t, ed.Lossy)
}

func latin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}

func TestDetectCharset(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"ascii", []byte("hello world\nkey=value\n")},
		{"json", []byte(`{"name": "config"}`)},
		{"utf-8 letters", []byte("Grüße aus Köln")},
		{"rune cut at window end", []byte("Grüße aus Köln, schö")[:len("Grüße aus Köln, schö")-1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "utf-8", DetectCharset(tt.data))
		})
	}

	text := latin1("Grüße aus Köln! Die schöne Größe der Straße ist bemerkenswert. Äpfel, Öl und Käse für alle Gäste.")
	got := DetectCharset(text)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "utf-8", got)
}

func TestUploadLabelsNonUTF8Text(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)

	data := latin1(strings.Repeat("Grüße aus Köln, die schöne Straße und die Größe der Gäste. ", 20))
	var contentType string
	api.On("UploadFile", mock.Anything, mock.Anything, "brief.txt", mock.Anything, "/brief.txt").
		Run(func(args mock.Arguments) {
			contentType = args.String(3)
			_, _ = io.ReadAll(args.Get(1).(io.Reader))
		}).
		Return(nil)

	events, err := s.Upload(context.Background(), bytes.NewReader(data), "brief.txt", int64(len(data)))
	require.NoError(t, err)
	_, last := drain(events)
	require.NoError(t, last.Err)

	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
	assert.NotEmpty(t, params["charset"])
	assert.NotEqual(t, "utf-8", params["charset"])
}

func TestEditorSaveTimeout(t *testing.T) {
	api := new(mockAPI)
	api.On("GetFileContent", mock.Anything, "/a.txt").Return("x", nil)
	api.On("SaveFileContent", mock.Anything, "/a.txt", "y").
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(context.DeadlineExceeded)

	s := newSession(t, api, nil, func(o *Options) { o.SaveTimeout = 20 * time.Millisecond })
	ed, err := s.OpenEditor(context.Background(), file("/a.txt"))
	require.NoError(t, err)
	ed.SetContent("y")

	err = ed.Save(context.Background())
	assert.Equal(t, "save timed out, please retry", types.UserMessage(err))
	assert.True(t, ed.Dirty())
}

func TestCreateFolder(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)

	_, err := s.CreateFolder(context.Background(), "  ")
	assert.True(t, types.IsValidation(err))
	_, err = s.CreateFolder(context.Background(), "a|b")
	assert.True(t, types.IsValidation(err))

	api.On("CreateDirectory", mock.Anything, "/reports").Return(nil)
	p, err := s.CreateFolder(context.Background(), "reports")
	require.NoError(t, err)
	assert.Equal(t, "/reports", p)
	api.AssertNumberOfCalls(t, "FetchListing", 2)
}

func TestRemoteSearch(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)

	_, err := s.RemoteSearch(context.Background(), " ", 1)
	assert.True(t, types.IsValidation(err))

	first := &types.ListingPage{Records: []types.Entry{file("/x/a.log")}, TotalCount: 2, PageNumber: 1, TotalPages: 2}
	second := &types.ListingPage{Records: []types.Entry{file("/y/b.log")}, TotalCount: 2, PageNumber: 2, TotalPages: 2}
	api.On("SearchFiles", mock.Anything, "log", 1, 20).Return(first, nil)
	api.On("SearchFiles", mock.Anything, "log", 2, 20).Return(second, nil)

	res, err := s.RemoteSearch(context.Background(), "log", 1)
	require.NoError(t, err)
	assert.True(t, res.HasMore)

	res, err = s.RemoteSearch(context.Background(), "log", 2)
	require.NoError(t, err)
	assert.False(t, res.HasMore)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "/y/b.log", res.Entries[1].Path)
	assert.NotNil(t, s.SearchResults())

	s.ClearSearch()
	assert.Nil(t, s.SearchResults())
}

func TestFilterEntries(t *testing.T) {
	entries := []types.Entry{file("/docs/Report.PDF"), file("/docs/notes.md"), dir("/docs/reports"), file("/docs/a.go")}

	got, err := FilterEntries(entries, "report")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = FilterEntries(entries, "*.md")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "notes.md", got[0].Name)

	got, err = FilterEntries(entries, "docs/**/*.go")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.go", got[0].Name)

	got, err = FilterEntries(entries, "")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	_, err = FilterEntries(entries, "[a-")
	assert.True(t, types.IsValidation(err))
}

func TestSortEntries(t *testing.T) {
	entries := []types.Entry{
		{Name: "b.txt", Size: 10, LastModified: 3},
		{Name: "Z", IsDirectory: true, LastModified: 1},
		{Name: "a.txt", Size: 30, LastModified: 2},
		{Name: "c.txt", Size: 20, LastModified: 1},
		{Name: "m", IsDirectory: true, LastModified: 2},
	}
	names := func(es []types.Entry) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Name
		}
		return out
	}

	assert.Equal(t, []string{"m", "Z", "a.txt", "b.txt", "c.txt"}, names(SortEntries(entries, SortName, false)))
	assert.Equal(t, []string{"Z", "m", "a.txt", "c.txt", "b.txt"}, names(SortEntries(entries, SortSize, true)))
	assert.Equal(t, []string{"Z", "m", "c.txt", "a.txt", "b.txt"}, names(SortEntries(entries, SortModified, false)))

	f, ok := ParseSortField("mtime")
	assert.True(t, ok)
	assert.Equal(t, SortModified, f)
	_, ok = ParseSortField("owner")
	assert.False(t, ok)
}

func TestSetModeTagFilter(t *testing.T) {
	api := new(mockAPI)
	s := started(t, api, nil)
	api.On("FetchListingByTags", mock.Anything, []int64{4}, false, 1, 20).Return(page(file("/t.txt")), nil)

	snap, err := s.SetMode(context.Background(), types.ModeTagFilter, []int64{4}, false)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 1)
	assert.Equal(t, types.ModeTagFilter, s.Navigator.Mode())
}
