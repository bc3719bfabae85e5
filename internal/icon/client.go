package icon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/valyala/fasthttp"

	"github.com/i474232898/weather-widget/internal/weather"
)

// DefaultTimeout bounds a single icon download.
const DefaultTimeout = 10 * time.Second

const maxIconSize = 512 << 10

var (
	ErrNoIcon   = errors.New("snapshot has no icon")
	ErrNotImage = errors.New("icon response is not an image")
)

// Icon is a downloaded condition icon.
type Icon struct {
	URL         string
	ContentType string
	Data        []byte
}

// Client downloads condition icons. The last icon is kept so repeated
// requests for the same URL are served without a round trip.
type Client struct {
	http      *fasthttp.Client
	timeout   time.Duration
	userAgent string

	mu   sync.Mutex
	last *Icon
}

// NewClient returns a client with the given per-download timeout. A
// non-positive timeout uses DefaultTimeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                userAgent,
			MaxResponseBodySize: maxIconSize,
		},
		timeout:   timeout,
		userAgent: userAgent,
	}
}

// Fetch downloads the icon at url. The download is bounded by the client
// timeout or the context deadline, whichever comes first.
func (c *Client) Fetch(ctx context.Context, url string) (Icon, error) {
	if url == "" {
		return Icon{}, ErrNoIcon
	}
	if icon, ok := c.cached(url); ok {
		return icon, nil
	}
	if err := ctx.Err(); err != nil {
		return Icon{}, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return Icon{}, fmt.Errorf("download icon %s: %w", url, err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return Icon{}, &weather.TransportError{StatusCode: status, Body: string(resp.Body())}
	}

	// resp is returned to the pool, so the body must be copied.
	data := append([]byte(nil), resp.Body()...)
	mtype := mimetype.Detect(data)
	if !isImage(mtype) {
		return Icon{}, fmt.Errorf("download icon %s: %w (%s)", url, ErrNotImage, mtype.String())
	}

	icon := Icon{URL: url, ContentType: mtype.String(), Data: data}
	c.mu.Lock()
	c.last = &icon
	c.mu.Unlock()
	return icon, nil
}

func (c *Client) cached(url string) (Icon, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil || c.last.URL != url {
		return Icon{}, false
	}
	return *c.last, true
}

func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
