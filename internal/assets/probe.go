package assets

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// HTTPProber checks asset existence with HEAD requests.
type HTTPProber struct {
	Client  *http.Client
	Timeout time.Duration
	Log     *zap.Logger
}

// Exists reports whether url answers a HEAD request with a 2xx status.
// Network failures count as absent.
func (p *HTTPProber) Exists(ctx context.Context, url string) bool {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		p.log().Debug("probe request", zap.String("url", url), zap.Error(err))
		return false
	}
	resp, err := p.client().Do(req)
	if err != nil {
		p.log().Debug("probe failed", zap.String("url", url), zap.Error(err))
		return false
	}
	resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	p.log().Debug("probe", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.Bool("ok", ok))
	return ok
}

func (p *HTTPProber) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *HTTPProber) log() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

// Candidates returns primary followed by alternatives, without blanks or
// repeats, keeping the first occurrence.
func Candidates(primary string, alternatives []string) []string {
	return lo.Uniq(lo.Compact(append([]string{primary}, alternatives...)))
}

// FindAvailable returns the first candidate exists reports as present.
func FindAvailable(ctx context.Context, candidates []string, exists func(context.Context, string) bool) (string, bool) {
	for _, c := range candidates {
		if ctx.Err() != nil {
			return "", false
		}
		if exists(ctx, c) {
			return c, true
		}
	}
	return "", false
}
