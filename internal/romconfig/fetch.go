package romconfig

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/onerom/onerom/errs"
)

// SourceFetcher resolves a ROM's file reference to bytes. Production code
// uses an HTTPS client with bounded retry; tests inject an in-memory
// fetcher so no real network or filesystem access is needed.
type SourceFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	OpenLocal(path string) ([]byte, error)
}

// fetchRetries and fetchDeadline bound the config loader's network I/O:
// at most 3 attempts, total wall-clock no more than 60s.
const (
	fetchRetries  = 3
	fetchDeadline = 60 * time.Second
)

// HTTPFetcher is the production SourceFetcher: local paths are read
// directly, and http/https URLs are fetched with exponential-backoff
// retry bounded by fetchRetries and fetchDeadline.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a SourceFetcher using a default *http.Client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: fetchDeadline}}
}

func (f *HTTPFetcher) OpenLocal(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.FetchFailedError{URL: path, Reason: err.Error()}
	}
	return b, nil
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchDeadline)
	defer cancel()

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < fetchRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, &errs.FetchFailedError{URL: rawURL, Reason: "deadline exceeded"}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, &errs.FetchFailedError{URL: rawURL, Reason: err.Error()}
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := func() ([]byte, error) {
			defer func() { _ = resp.Body.Close() }()
			if resp.StatusCode >= 500 {
				return nil, &errs.FetchFailedError{URL: rawURL, Reason: resp.Status}
			}
			if resp.StatusCode != http.StatusOK {
				return nil, &errs.FetchFailedError{URL: rawURL, Reason: resp.Status}
			}
			return io.ReadAll(resp.Body)
		}()
		if err != nil {
			if fe, ok := err.(*errs.FetchFailedError); ok && resp.StatusCode < 500 {
				return nil, fe
			}
			lastErr = err
			continue
		}
		return body, nil
	}
	return nil, &errs.FetchFailedError{URL: rawURL, Reason: "exhausted retries: " + errString(lastErr)}
}

func errString(err error) string {
	if err == nil {
		return "unknown"
	}
	return err.Error()
}

// resolve reads r.File (a local path or an http(s) URL) via fetcher,
// unpacking a zip archive and selecting r.ZipMember when the reference
// names a .zip file.
func resolve(ctx context.Context, r RomConfig, fetcher SourceFetcher) ([]byte, error) {
	raw, err := readReference(ctx, r.File, fetcher)
	if err != nil {
		return nil, err
	}
	if !isZip(r.File) {
		return raw, nil
	}
	return extractZipMember(raw, r.File, r.ZipMember)
}

func readReference(ctx context.Context, ref string, fetcher SourceFetcher) ([]byte, error) {
	u, err := url.Parse(ref)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return fetcher.Fetch(ctx, ref)
	}
	return fetcher.OpenLocal(ref)
}

func isZip(ref string) bool {
	return len(ref) > 4 && ref[len(ref)-4:] == ".zip"
}

func extractZipMember(raw []byte, archiveName, member string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &errs.FetchFailedError{URL: archiveName, Reason: "not a valid zip archive"}
	}
	if member == "" {
		if len(zr.File) != 1 {
			return nil, &errs.ArchiveMemberMissingError{Archive: archiveName, Member: "(unspecified, archive has multiple members)"}
		}
		return readZipFile(zr.File[0])
	}
	for _, f := range zr.File {
		if f.Name == member {
			return readZipFile(f)
		}
	}
	return nil, &errs.ArchiveMemberMissingError{Archive: archiveName, Member: member}
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &errs.FetchFailedError{URL: f.Name, Reason: err.Error()}
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
