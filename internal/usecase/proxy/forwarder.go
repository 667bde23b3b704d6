package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"mcpgate/internal/errs"
)

// skippedHeaders are connection-specific headers the transport layer owns on
// each hop. They are dropped in both directions; everything else is forwarded
// verbatim, including authorization headers.
var skippedHeaders = map[string]struct{}{
	"Host":                {},
	"Content-Length":      {},
	"Connection":          {},
	"Proxy-Connection":    {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// ForwardError maps a failed upstream round trip to the status and detail the
// caller should receive. It is only returned before any response bytes are
// committed downstream.
type ForwardError struct {
	Status int
	Detail string
	Err    error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("status %d: %s: %v", e.Status, e.Detail, e.Err)
}

func (e *ForwardError) Unwrap() error {
	return e.Err
}

// Forwarder relays inbound requests to approved backend servers over a shared
// pooled client. It holds no per-call state.
type Forwarder struct {
	client  *http.Client
	timeout time.Duration
}

// NewForwarder builds a forwarder whose non-streaming round trips are bounded
// by timeout. Streaming requests only bound the wait for response headers and
// then run until either side closes.
func NewForwarder(timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &Forwarder{
		client: &http.Client{
			Transport: transport,
			// Redirects belong to the caller, not the gateway.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}
}

// Forward sends the inbound request to baseURL+pathSuffix and relays the
// backend response. Transport failures before the response is committed come
// back as *ForwardError; once bytes are flowing downstream, a failed leg only
// stops the relay.
func (f *Forwarder) Forward(w http.ResponseWriter, r *http.Request, baseURL, pathSuffix string) error {
	// The query string rides along, SSE transports carry session ids there.
	targetURL := baseURL + pathSuffix
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}
	wantsStream := wantsEventStream(r)

	var flusher http.Flusher
	if wantsStream {
		var ok bool
		if flusher, ok = w.(http.Flusher); !ok {
			return &ForwardError{
				Status: http.StatusInternalServerError,
				Detail: "streaming unsupported",
				Err:    errors.New("response writer does not support flushing"),
			}
		}
	}

	ctx := r.Context()
	if !wantsStream {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, r.Method, targetURL, r.Body)
	if err != nil {
		return &ForwardError{
			Status: http.StatusBadGateway,
			Detail: "Cannot connect to MCP server: " + baseURL,
			Err:    err,
		}
	}
	upstreamReq.ContentLength = r.ContentLength
	copyFilteredHeaders(upstreamReq.Header, r.Header)

	resp, err := f.client.Do(upstreamReq)
	if err != nil {
		return classifyTransportError(err, baseURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if wantsStream {
		return relayStream(w, flusher, resp)
	}
	return relayResponse(w, resp)
}

// relayResponse returns the backend's status, headers, and body unmodified.
func relayResponse(w http.ResponseWriter, resp *http.Response) error {
	copyFilteredHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		return errs.Wrap(err, "relay backend response")
	}
	return nil
}

// relayStream forwards the backend body chunk by chunk, flushing each write so
// no event is buffered beyond the pass-through copy. A failed client write or
// a dropped backend connection ends the loop.
func relayStream(w http.ResponseWriter, flusher http.Flusher, resp *http.Response) error {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(resp.StatusCode)
	flusher.Flush()

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return errs.Wrap(writeErr, "relay stream chunk")
			}
			flusher.Flush()
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return errs.Wrap(readErr, "read backend stream")
		}
	}
}

func classifyTransportError(err error, baseURL string) error {
	if isTimeout(err) {
		return &ForwardError{
			Status: http.StatusGatewayTimeout,
			Detail: "MCP server timeout: " + baseURL,
			Err:    err,
		}
	}
	return &ForwardError{
		Status: http.StatusBadGateway,
		Detail: "Cannot connect to MCP server: " + baseURL,
		Err:    err,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func wantsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func copyFilteredHeaders(dst, src http.Header) {
	for key, values := range src {
		if _, skip := skippedHeaders[key]; skip {
			continue
		}
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
