package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "success", "data": data, "timestamp": time.Now().UnixMilli()})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, gin.H{"code": code, "message": message, "data": nil, "timestamp": time.Now().UnixMilli()})
}

func newTestClient(t *testing.T, router *gin.Engine, mutate ...func(*Options)) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	opts := Options{
		BaseURL:        srv.URL,
		Token:          "tok",
		RequestTimeout: 2 * time.Second,
		RetryMax:       0,
	}
	for _, m := range mutate {
		m(&opts)
	}

	c, err := New(opts)
	require.NoError(t, err)
	return c, srv
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestFetchListing(t *testing.T) {
	router := newRouter()
	var gotAuth, gotRequestID string
	var body struct {
		Path string `json:"path"`
		Page int    `json:"page"`
		Size int    `json:"size"`
	}
	router.POST("/api/files/queryFiles", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotRequestID = c.GetHeader("X-Request-ID")
		assert.NoError(t, c.ShouldBindJSON(&body))
		ok(c, gin.H{
			"records": []gin.H{
				{"name": "docs", "path": "/docs", "size": 0, "lastModified": 1700000000000, "directory": true, "owner": "root"},
				{"name": "a.txt", "path": "/a.txt", "size": 12, "lastModified": 1700000000000, "directory": false, "owner": "me"},
			},
			"total": 2, "size": 20, "current": 1, "pages": 1,
		})
	})
	c, _ := newTestClient(t, router)

	page, err := c.FetchListing(context.Background(), "/", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "/", body.Path)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 20, body.Size)

	require.Len(t, page.Records, 2)
	assert.True(t, page.Records[0].IsDirectory)
	assert.Equal(t, "a.txt", page.Records[1].Name)
	assert.Equal(t, int64(12), page.Records[1].Size)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.False(t, page.HasMore())
}

func TestFetchListingByTags(t *testing.T) {
	router := newRouter()
	var allQuery, anyQuery string
	router.GET("/api/files/get-files-contain-all-tags", func(c *gin.Context) {
		allQuery = c.Query("tagIds") + "|" + c.Query("page") + "|" + c.Query("size")
		ok(c, gin.H{"records": []gin.H{}, "total": 0, "size": 20, "current": 1, "pages": 0})
	})
	router.GET("/api/files/get-files-contain-any-tags", func(c *gin.Context) {
		anyQuery = c.Query("tagIds")
		ok(c, gin.H{"records": []gin.H{}, "total": 0, "size": 20, "current": 1, "pages": 0})
	})
	c, _ := newTestClient(t, router)

	_, err := c.FetchListingByTags(context.Background(), []int64{3, 7}, true, 2, 20)
	require.NoError(t, err)
	_, err = c.FetchListingByTags(context.Background(), []int64{9}, false, 1, 20)
	require.NoError(t, err)

	assert.Equal(t, "3,7|2|20", allQuery)
	assert.Equal(t, "9", anyQuery)
}

func TestFetchOperationCatalogue(t *testing.T) {
	router := newRouter()
	router.GET("/api/file-operations/types", func(c *gin.Context) {
		ok(c, []gin.H{
			{
				"type": "DECOMPRESS", "description": "Decompress", "supportFile": true, "supportDirectory": false,
				"supportedExtensions": []string{".zip", ".tar"}, "isTask": true, "isSync": false, "supportMultiSelect": false,
				"paramConfigs": []gin.H{{"name": "Target", "key": "targetPath", "type": "FOLDER", "required": true}},
			},
			{"type": "DELETE", "description": "Delete", "supportFile": true, "supportDirectory": true, "supportMultiSelect": true},
		})
	})
	c, _ := newTestClient(t, router)

	ops, err := c.FetchOperationCatalogue(context.Background())
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, "DECOMPRESS", ops[0].Type)
	assert.True(t, ops[0].IsAsyncTask)
	assert.True(t, ops[0].AcceptsExtension("zip"))
	require.Len(t, ops[0].ParamSchema, 1)
	assert.Equal(t, types.KindPath, ops[0].ParamSchema[0].Kind())
	assert.Equal(t, "Target", ops[0].ParamSchema[0].Label)

	assert.True(t, ops[1].SupportsMultiSelect)
	assert.True(t, ops[1].AcceptsAnyExtension())
}

func TestExecuteOperation(t *testing.T) {
	router := newRouter()
	var payload map[string]any
	var opType string
	router.POST("/api/file-operations/:type/execute", func(c *gin.Context) {
		opType = c.Param("type")
		assert.NoError(t, c.ShouldBindJSON(&payload))
		ok(c, "deleted 2 files")
	})
	c, _ := newTestClient(t, router)

	msg, err := c.ExecuteOperation(context.Background(), "DELETE", types.Payload{
		types.SelectedPathsKey: []string{"/a", "/b"},
	})
	require.NoError(t, err)

	assert.Equal(t, "deleted 2 files", msg)
	assert.Equal(t, "DELETE", opType)
	assert.Equal(t, []any{"/a", "/b"}, payload[types.SelectedPathsKey])
}

func TestBackendErrorCode(t *testing.T) {
	router := newRouter()
	router.POST("/api/file-operations/:type/execute", func(c *gin.Context) {
		fail(c, 500, "target exists")
	})
	c, _ := newTestClient(t, router)

	_, err := c.ExecuteOperation(context.Background(), "MOVE", nil)
	require.Error(t, err)

	var te *types.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.Code)
	assert.Equal(t, "target exists", te.Message)
	assert.Equal(t, resilience.StateClosed, c.Breaker.State())
}

func TestUnauthorizedCode(t *testing.T) {
	router := newRouter()
	router.GET("/api/tags", func(c *gin.Context) {
		fail(c, types.CodeTokenInvalid, "invalid token")
	})
	c, _ := newTestClient(t, router)

	_, err := c.Tags(context.Background())
	var te *types.TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Unauthorized())
}

func TestHTTPErrorWithoutEnvelope(t *testing.T) {
	router := newRouter()
	router.POST("/api/files/mkdir", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
	c, _ := newTestClient(t, router)

	err := c.CreateDirectory(context.Background(), "/new")
	var te *types.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.Status)
	assert.Equal(t, "server returned 502", te.Message)
}

func TestNonJSONReply(t *testing.T) {
	router := newRouter()
	router.GET("/api/files/content", func(c *gin.Context) {
		c.String(http.StatusOK, "<html>proxy login</html>")
	})
	c, _ := newTestClient(t, router)

	_, err := c.GetFileContent(context.Background(), "/a.txt")
	var te *types.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, msgBadReply, te.Message)
}

func TestRequestTimeout(t *testing.T) {
	router := newRouter()
	router.GET("/api/tasks/running", func(c *gin.Context) {
		time.Sleep(300 * time.Millisecond)
		ok(c, []gin.H{})
	})
	c, _ := newTestClient(t, router, func(o *Options) { o.RequestTimeout = 50 * time.Millisecond })

	_, err := c.RunningTasks(context.Background())
	var to *types.TimeoutError
	require.True(t, errors.As(err, &to))
	assert.Equal(t, msgTimeout, to.Message)
}

func TestCallerDeadlineOverridesDefault(t *testing.T) {
	router := newRouter()
	router.GET("/api/tasks/running", func(c *gin.Context) {
		time.Sleep(100 * time.Millisecond)
		ok(c, []gin.H{{"id": 1, "type": "COMPRESS", "status": "RUNNING", "progress": 40}})
	})
	c, _ := newTestClient(t, router, func(o *Options) { o.RequestTimeout = 20 * time.Millisecond })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tasks, err := c.RunningTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.TaskRunning, tasks[0].Status)
	assert.False(t, tasks[0].Status.Finished())
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestExpiredTokenFailsFast(t *testing.T) {
	router := newRouter()
	var hits int32
	router.GET("/api/tags", func(c *gin.Context) {
		atomic.AddInt32(&hits, 1)
		ok(c, []gin.H{})
	})
	c, _ := newTestClient(t, router, func(o *Options) { o.Token = "" })
	c.SetToken(signedToken(t, time.Now().Add(-time.Hour)))

	_, err := c.Tags(context.Background())
	var te *types.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, types.CodeTokenExpired, te.Code)
	assert.Zero(t, atomic.LoadInt32(&hits))

	c.SetToken(signedToken(t, time.Now().Add(time.Hour)))
	_, err = c.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
	_, ok = TokenExpiry("")
	assert.False(t, ok)
}

func TestLogin(t *testing.T) {
	router := newRouter()
	var creds map[string]string
	router.POST("/api/auth/login", func(c *gin.Context) {
		assert.Empty(t, c.GetHeader("Authorization"))
		assert.NoError(t, c.ShouldBindJSON(&creds))
		ok(c, gin.H{"token": "fresh"})
	})
	router.GET("/api/files/system-users", func(c *gin.Context) {
		assert.Equal(t, "Bearer fresh", c.GetHeader("Authorization"))
		ok(c, []string{"root", "www-data"})
	})
	c, _ := newTestClient(t, router, func(o *Options) { o.Token = "" })

	token, err := c.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Equal(t, "fresh", c.Token())
	assert.Equal(t, map[string]string{"username": "admin", "password": "pw"}, creds)

	users, err := c.SystemUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "www-data"}, users)
}

func TestUploadFile(t *testing.T) {
	router := newRouter()
	var gotPath, gotName, gotContent, gotType, gotAuth string
	router.POST("/api/files/upload", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotPath = c.PostForm("path")
		fh, err := c.FormFile("file")
		if !assert.NoError(t, err) {
			c.Status(http.StatusBadRequest)
			return
		}
		gotName = fh.Filename
		gotType = fh.Header.Get("Content-Type")
		f, err := fh.Open()
		if !assert.NoError(t, err) {
			c.Status(http.StatusBadRequest)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		gotContent = string(data)
		ok(c, true)
	})
	c, _ := newTestClient(t, router)

	err := c.UploadFile(context.Background(), strings.NewReader("hello"), "hi.txt", "text/plain", "/docs/hi.txt")
	require.NoError(t, err)

	assert.Equal(t, "/docs/hi.txt", gotPath)
	assert.Equal(t, "hi.txt", gotName)
	assert.Equal(t, "hello", gotContent)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "Bearer tok", gotAuth)
}

// zeroSource yields size zero bytes and counts how many were read.
type zeroSource struct {
	size int64
	read atomic.Int64
}

func (s *zeroSource) Read(p []byte) (int, error) {
	left := s.size - s.read.Load()
	if left <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > left {
		p = p[:left]
	}
	clear(p)
	s.read.Add(int64(len(p)))
	return len(p), nil
}

func TestUploadStreamsBody(t *testing.T) {
	src := &zeroSource{size: 64 << 20}
	var atEntry, received atomic.Int64
	router := newRouter()
	router.POST("/api/files/upload", func(c *gin.Context) {
		atEntry.Store(src.read.Load())
		n, err := io.Copy(io.Discard, c.Request.Body)
		assert.NoError(t, err)
		received.Store(n)
		ok(c, true)
	})
	c, _ := newTestClient(t, router)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, c.UploadFile(ctx, src, "big.bin", "application/octet-stream", "/big.bin"))

	assert.Less(t, atEntry.Load(), src.size, "handler should start before the source is drained")
	assert.Equal(t, src.size, src.read.Load())
	assert.Greater(t, received.Load(), src.size)
}

type brokenSource struct{}

func (brokenSource) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestUploadSourceReadError(t *testing.T) {
	router := newRouter()
	router.POST("/api/files/upload", func(c *gin.Context) {
		_, _ = io.Copy(io.Discard, c.Request.Body)
		ok(c, true)
	})
	c, _ := newTestClient(t, router)

	err := c.UploadFile(context.Background(), io.MultiReader(strings.NewReader("partial"), brokenSource{}),
		"a.txt", "text/plain", "/a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Zero(t, c.Breaker.Failures())
}

func TestSystemUsersAndChangeOwner(t *testing.T) {
	router := newRouter()
	var gotPath, gotOwner string
	router.GET("/api/files/system-users", func(c *gin.Context) {
		ok(c, []string{"root", "alice"})
	})
	router.POST("/api/files/change-owner", func(c *gin.Context) {
		gotPath, gotOwner = c.Query("path"), c.Query("owner")
		ok(c, nil)
	})
	c, _ := newTestClient(t, router)

	users, err := c.SystemUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "alice"}, users)

	require.NoError(t, c.ChangeOwner(context.Background(), "/srv/a b.txt", "alice"))
	assert.Equal(t, "/srv/a b.txt", gotPath)
	assert.Equal(t, "alice", gotOwner)
}

func TestSaveFileContent(t *testing.T) {
	router := newRouter()
	var gotBody, gotType, gotPath string
	router.POST("/api/files/content", func(c *gin.Context) {
		gotPath = c.Query("path")
		gotType = c.ContentType()
		data, _ := io.ReadAll(c.Request.Body)
		gotBody = string(data)
		ok(c, true)
	})
	c, _ := newTestClient(t, router)

	require.NoError(t, c.SaveFileContent(context.Background(), "/etc/app.conf", "key=value\n"))
	assert.Equal(t, "/etc/app.conf", gotPath)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "key=value\n", gotBody)
}

func TestFileTags(t *testing.T) {
	router := newRouter()
	var update types.FileTags
	router.GET("/api/files/tags", func(c *gin.Context) {
		ok(c, []gin.H{{"id": 4, "name": "work", "quickAccess": true}})
	})
	router.POST("/api/files/tags", func(c *gin.Context) {
		assert.NoError(t, c.ShouldBindJSON(&update))
		ok(c, nil)
	})
	c, _ := newTestClient(t, router)

	tags, err := c.FileTags(context.Background(), "/a.txt")
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "work", tags[0].Name)

	require.NoError(t, c.UpdateFileTags(context.Background(), "/a.txt", types.FileTags{TagIDs: []int64{4, 5}}))
	assert.Equal(t, []int64{4, 5}, update.TagIDs)
}

func TestTaskLookupAndCancel(t *testing.T) {
	router := newRouter()
	var cancelled string
	router.GET("/api/tasks/:id", func(c *gin.Context) {
		ok(c, gin.H{"id": 12, "type": "COMPRESS", "status": "COMPLETED", "progress": 100})
	})
	router.POST("/api/tasks/:id/cancel", func(c *gin.Context) {
		cancelled = c.Param("id")
		ok(c, nil)
	})
	c, _ := newTestClient(t, router)

	task, err := c.Task(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, task.Status.Finished())

	require.NoError(t, c.CancelTask(context.Background(), 12))
	assert.Equal(t, "12", cancelled)
}

func TestDownloadURL(t *testing.T) {
	c, err := New(Options{BaseURL: "http://nas:8080/", Token: "a b"})
	require.NoError(t, err)

	assert.Equal(t,
		"http://nas:8080/api/files/download?path=%2Fmy%20docs%2Fa%26b.txt&authorization=a%20b",
		c.DownloadURL("/my docs/a&b.txt"))
}

func TestDownloadTo(t *testing.T) {
	router := newRouter()
	router.GET("/api/files/download", func(c *gin.Context) {
		if c.Query("path") == "/missing" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "application/octet-stream", []byte("payload"))
	})
	c, _ := newTestClient(t, router)
	dir := t.TempDir()

	dest := filepath.Join(dir, "a.bin")
	n, err := c.DownloadTo(context.Background(), c.DownloadURL("/a.bin"), dest)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	missing := filepath.Join(dir, "missing.bin")
	_, err = c.DownloadTo(context.Background(), c.DownloadURL("/missing"), missing)
	require.Error(t, err)
	assert.NoFileExists(t, missing)
}

func TestRetriesOnlyIdempotentCalls(t *testing.T) {
	router := newRouter()
	var gets, posts int32
	router.GET("/api/tags", func(c *gin.Context) {
		if atomic.AddInt32(&gets, 1) == 1 {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		ok(c, []gin.H{})
	})
	router.POST("/api/file-operations/:type/execute", func(c *gin.Context) {
		atomic.AddInt32(&posts, 1)
		c.Status(http.StatusServiceUnavailable)
	})
	c, _ := newTestClient(t, router, func(o *Options) {
		o.RetryMax = 2
		o.RetryWaitMin = time.Millisecond
		o.RetryWaitMax = 5 * time.Millisecond
	})

	_, err := c.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&gets))

	_, err = c.ExecuteOperation(context.Background(), "MOVE", types.Payload{"selectPath": "/a"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
}

func TestBreakerOpensWhenBackendUnreachable(t *testing.T) {
	router := newRouter()
	c, srv := newTestClient(t, router, func(o *Options) {
		o.BreakerThreshold = 2
		o.BreakerCooldown = time.Minute
	})
	srv.Close()

	for i := 0; i < 2; i++ {
		_, err := c.Tags(context.Background())
		var te *types.TransportError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, msgNetwork, te.Message)
	}

	_, err := c.Tags(context.Background())
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Equal(t, resilience.StateOpen, c.Breaker.State())
}

func TestLimiterCancelLeavesHalfOpenBreaker(t *testing.T) {
	router := newRouter()
	router.GET("/api/tags", func(c *gin.Context) {
		ok(c, []gin.H{})
	})
	c, _ := newTestClient(t, router, func(o *Options) {
		o.BreakerThreshold = 1
		o.BreakerCooldown = time.Millisecond
	})
	require.NoError(t, c.Breaker.Allow())
	c.Breaker.Record(true)
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, resilience.StateHalfOpen, c.Breaker.State())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Tags(ctx)
	var te *types.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, msgCancelled, te.Message)
	assert.Equal(t, resilience.StateHalfOpen, c.Breaker.State(), "no request was sent")

	_, err = c.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resilience.StateClosed, c.Breaker.State())
}
