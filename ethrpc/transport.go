package ethrpc

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/log"
	"github.com/quantumauth-io/quantum-wallet-rpc/retry"
)

// StatusTransportFailure is delivered when no HTTP response was received.
const StatusTransportFailure = -1

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxConcurrency   = 16
	defaultMaxNetworkRetry  = 3
	defaultRetryMaxDelay    = 2 * time.Second
	maxResponseBodyBytes    = 10 << 20
	defaultTransportUAValue = "quantum-wallet-rpc"
)

// ResponseCallback receives the outcome of one request. Header names are
// lower-cased.
type ResponseCallback func(status int, body string, headers map[string]string)

// Transport sends one HTTP request and calls cb exactly once, without
// blocking the caller. Statuses are delivered as-is; only connection-level
// failures caused by a network change are retried, and only when asked.
type Transport interface {
	Request(method, url, payload, contentType string, autoRetryOnNetworkChange bool, cb ResponseCallback)
}

type TransportOptions struct {
	Timeout        time.Duration
	MaxConcurrency int
	// MaxRetries bounds retries on network change, per request.
	MaxRetries int32
	HTTPClient *http.Client
	UserAgent  string
}

// HTTPTransport runs requests on a bounded worker pool.
type HTTPTransport struct {
	http      *http.Client
	pool      pond.Pool
	retryCfg  *retry.Config
	userAgent string

	ctx    context.Context
	cancel context.CancelFunc
}

var _ Transport = (*HTTPTransport)(nil)

func NewHTTPTransport(opts TransportOptions) *HTTPTransport {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxNetworkRetry
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultTransportUAValue
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	retryCfg := retry.Bounded(opts.MaxRetries, defaultRetryMaxDelay)
	retryCfg.LogLevelWhenFailure = log.DebugLevel

	ctx, cancel := context.WithCancel(context.Background())
	return &HTTPTransport{
		http:      client,
		pool:      pond.NewPool(opts.MaxConcurrency),
		retryCfg:  retryCfg,
		userAgent: opts.UserAgent,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close aborts in-flight requests and waits for their callbacks.
func (t *HTTPTransport) Close() {
	t.cancel()
	t.pool.StopAndWait()
}

func (t *HTTPTransport) Request(method, url, payload, contentType string, autoRetryOnNetworkChange bool, cb ResponseCallback) {
	err := t.pool.Go(func() {
		status, body, headers := t.do(method, url, payload, contentType, autoRetryOnNetworkChange)
		cb(status, body, headers)
	})
	if err != nil {
		log.Warn("ethrpc: transport rejected request", "err", err, "url", url)
		cb(StatusTransportFailure, "", nil)
	}
}

type httpResult struct {
	status  int
	body    string
	headers map[string]string
}

func (t *HTTPTransport) do(method, url, payload, contentType string, autoRetry bool) (int, string, map[string]string) {
	cfg := t.retryCfg
	if !autoRetry {
		cfg = retry.Bounded(0, 0)
	}

	res, err := retry.Do(t.ctx, cfg, func(ctx context.Context) (httpResult, error) {
		return t.once(ctx, method, url, payload, contentType)
	}, isNetworkChange, "ethrpc "+method+" "+url)
	if err != nil {
		log.Debug("ethrpc: transport failure", "err", err, "url", url)
		return StatusTransportFailure, "", nil
	}
	return res.status, res.body, res.headers
}

func (t *HTTPTransport) once(ctx context.Context, method, url, payload, contentType string) (httpResult, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(payload))
	if err != nil {
		return httpResult{}, errors.Wrap(err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", jsonContentType)
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.http.Do(req)
	if err != nil {
		return httpResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return httpResult{}, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k, v := range resp.Header {
		headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return httpResult{status: resp.StatusCode, body: string(body), headers: headers}, nil
}

// isNetworkChange classifies errors that mean the connection went away under
// us, as opposed to the server answering badly. Timeouts are not retried: an
// endpoint that does not answer would hold a pool worker for every attempt.
func isNetworkChange(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.ENETDOWN) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
