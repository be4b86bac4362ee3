package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/config"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FileFlex/client/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

const userAgent = "FileFlex-Client/1.0"

// Messages shown when the backend gives none.
const (
	msgNetwork    = "network error, please check the connection"
	msgTimeout    = "request timed out"
	msgCancelled  = "request cancelled"
	msgBadReply   = "unexpected response from server"
	msgExpired    = "login expired, please sign in again"
	msgOpCallFail = "request failed"
)

// Options configures a Client.
type Options struct {
	BaseURL          string
	Token            string
	RequestTimeout   time.Duration
	RetryMax         int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration
	RateLimit        float64
	RateBurst        int
	BreakerThreshold int
	BreakerCooldown  time.Duration
	Logger           *zap.Logger
	Metrics          *monitoring.Metrics
}

// OptionsFromConfig maps backend configuration onto client options.
func OptionsFromConfig(cfg config.BackendConfig) Options {
	return Options{
		BaseURL:          cfg.URL,
		Token:            cfg.Token,
		RequestTimeout:   cfg.RequestTimeout,
		RetryMax:         cfg.RetryMax,
		RetryWaitMin:     cfg.RetryWaitMin,
		RetryWaitMax:     cfg.RetryWaitMax,
		RateLimit:        cfg.RateLimit,
		RateBurst:        cfg.RateBurst,
		BreakerThreshold: cfg.BreakerThreshold,
		BreakerCooldown:  cfg.BreakerCooldown,
	}
}

// Client talks to the FileFlex backend. It wraps resty with retries for
// idempotent calls, rate limiting, a circuit breaker and envelope decoding.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	Mu      sync.RWMutex

	// direct sends uploads. It skips the retry layer, which reads a
	// request body into memory before the first attempt.
	direct *http.Client

	baseURL string
	token   string
	timeout time.Duration
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

type idempotentKey struct{}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("backend url is required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.BreakerThreshold <= 0 {
		opts.BreakerThreshold = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}
	logger := logging.OrNop(opts.Logger).Named("client")

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.Logger = nil // Disable logging
	retryClient.CheckRetry = retryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	breaker, err := resilience.New("fileflex-backend", opts.BreakerThreshold, opts.BreakerCooldown,
		resilience.OnStateChange(func(name string, from, to resilience.State) {
			logger.Warn("backend breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		}),
	)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = int(opts.RateLimit)
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	c := &Client{
		Resty:   restyClient,
		Limiter: limiter,
		Breaker: breaker,
		direct:  &http.Client{Transport: retryClient.HTTPClient.Transport},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.RequestTimeout,
		logger:  logger,
		metrics: opts.Metrics,
	}
	c.SetToken(opts.Token)
	return c, nil
}

// retryPolicy retries only requests marked idempotent. Operations and
// uploads are never replayed.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if idempotent, _ := ctx.Value(idempotentKey{}).(bool); !idempotent {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetToken installs the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.token = token
	c.Resty.SetAuthToken(token)
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.token
}

// Request creates a request with rate limiting and a request id. Unless ctx
// already carries a deadline the default request timeout applies; the
// returned cancel func must be called once the response is consumed.
func (c *Client) Request(ctx context.Context) (*resty.Request, context.CancelFunc, error) {
	return c.request(ctx, c.timeout)
}

func (c *Client) request(ctx context.Context, timeout time.Duration) (*resty.Request, context.CancelFunc, error) {
	ctx, cancel, err := c.wait(ctx, timeout)
	if err != nil {
		return nil, nil, err
	}

	c.Mu.RLock()
	defer c.Mu.RUnlock()
	req := c.Resty.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
	return req, cancel, nil
}

// wait applies the default timeout to ctx and blocks on the rate limiter.
func (c *Client) wait(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	if err := c.Limiter.Wait(ctx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("rate limit error: %w", err)
	}
	return ctx, cancel, nil
}

// envelope is the backend response wrapper.
type envelope[T any] struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// call sends one request and unwraps the envelope. prepare sets the body,
// query and path parameters.
func call[T any](ctx context.Context, c *Client, endpoint, method, path string, prepare func(*resty.Request)) (T, error) {
	var zero T

	if err := c.checkToken(endpoint); err != nil {
		return zero, err
	}
	if method == http.MethodGet {
		ctx = context.WithValue(ctx, idempotentKey{}, true)
	}

	// The breaker is consulted only once the request is sure to be sent,
	// so a call abandoned in the limiter never settles a half-open breaker.
	req, cancel, err := c.Request(ctx)
	if err != nil {
		return zero, &types.TransportError{Op: endpoint, Message: msgCancelled, Err: err}
	}
	defer cancel()
	if err := c.Breaker.Allow(); err != nil {
		return zero, &types.TransportError{Op: endpoint, Message: err.Error(), Err: err}
	}

	var env envelope[T]
	req.SetResult(&env).SetError(&env)
	if prepare != nil {
		prepare(req)
	}

	timer := monitoring.NewTimer(c.metrics, endpoint)
	resp, err := req.Execute(method, path)
	if err != nil {
		status := 0
		if resp != nil && resp.RawResponse != nil {
			status = resp.StatusCode()
		}
		failure := c.failure(req.Context(), endpoint, status, err)
		timer.Stop("error")
		return zero, failure
	}

	status := resp.StatusCode()
	timer.Stop(strconv.Itoa(status))
	return unwrap(c, endpoint, status, &env, resp.Time())
}

// unwrap feeds the breaker with the response status and turns the envelope
// into its payload or a typed error.
func unwrap[T any](c *Client, endpoint string, status int, env *envelope[T], elapsed time.Duration) (T, error) {
	var zero T
	c.Breaker.Record(status >= http.StatusInternalServerError)

	if env.Code == 0 {
		msg := msgBadReply
		if status >= http.StatusBadRequest {
			msg = fmt.Sprintf("server returned %d", status)
		}
		return zero, &types.TransportError{Op: endpoint, Status: status, Message: msg}
	}
	if env.Code != types.CodeSuccess {
		msg := env.Message
		if msg == "" {
			msg = msgOpCallFail
		}
		c.logger.Debug("backend rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("code", env.Code),
			zap.String("message", msg))
		return zero, &types.TransportError{Op: endpoint, Code: env.Code, Status: status, Message: msg}
	}

	c.logger.Debug("backend call",
		zap.String("endpoint", endpoint),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed))
	return env.Data, nil
}

// failure classifies a transport error and feeds the breaker. Timeouts
// and unreachable hosts count against the backend; an undecodable body
// counts as a reply. A cancelled call gives no verdict either way.
func (c *Client) failure(ctx context.Context, endpoint string, status int, err error) error {
	classified := c.classify(ctx, endpoint, status, err)
	var te *types.TransportError
	switch {
	case errors.As(classified, &te) && errors.Is(te.Err, context.Canceled):
		c.Breaker.Release()
	case te != nil:
		c.Breaker.Record(te.Status == 0)
	default:
		c.Breaker.Record(true)
	}
	return classified
}

// classify maps a transport error onto the typed errors callers see. A
// non-zero status means the round trip completed.
func (c *Client) classify(ctx context.Context, endpoint string, status int, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &types.TimeoutError{Op: endpoint, Message: msgTimeout}
	case errors.Is(ctx.Err(), context.Canceled):
		return &types.TransportError{Op: endpoint, Message: msgCancelled, Err: ctx.Err()}
	case status != 0:
		// The round trip succeeded but the body could not be decoded.
		return &types.TransportError{Op: endpoint, Status: status, Message: msgBadReply, Err: err}
	default:
		c.logger.Warn("backend unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return &types.TransportError{Op: endpoint, Message: msgNetwork, Err: err}
	}
}

// checkToken fails fast when the installed token is a JWT that has already
// expired, sparing a round trip that would be rejected anyway.
func (c *Client) checkToken(endpoint string) error {
	if endpoint == endpointLogin {
		return nil
	}
	exp, ok := TokenExpiry(c.Token())
	if ok && time.Now().After(exp) {
		return &types.TransportError{Op: endpoint, Code: types.CodeTokenExpired, Message: msgExpired}
	}
	return nil
}
