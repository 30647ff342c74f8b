package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// ProgressFunc receives the bytes read so far and the expected total,
// which is negative when the server did not announce a length.
type ProgressFunc func(loaded, total int64)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Fetcher downloads assets over HTTP.
type Fetcher struct {
	Client *http.Client
	Log    *zap.Logger
}

// Fetch GETs url and returns the body. progress may be nil.
func (f *Fetcher) Fetch(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	var body io.Reader = resp.Body
	if progress != nil {
		body = &progressReader{r: resp.Body, total: total, fn: progress}
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if progress != nil {
		progress(int64(len(data)), total)
	}

	if f.Log != nil {
		f.Log.Debug("fetched asset", zap.String("url", url), zap.Int("bytes", len(data)))
	}
	return data, nil
}

type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	fn     ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.fn(p.loaded, p.total)
	}
	return n, err
}
