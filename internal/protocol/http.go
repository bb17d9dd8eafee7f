package protocol

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"dte/internal/connector"
	"dte/internal/xerr"
)

func init() {
	httpFactory := func(loc Location, opts connector.Options) (connector.Source, error) {
		return openHTTPSource(loc, opts)
	}
	Register(Scheme{Name: "http", SourceFactory: httpFactory})
	Register(Scheme{Name: "https", SourceFactory: httpFactory})
}

// openHTTPSource downloads the endpoint to a temporary file and opens it
// under format dispatch (§9 "Temporary file lifecycle": the temp file's
// ownership transfers to the returned Source, which deletes it on Close).
func openHTTPSource(loc Location, opts connector.Options) (connector.Source, error) {
	url := loc.Raw

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, xerr.Configuration("malformed HTTP URI %s: %v", loc.Masked(), err)
	}

	if basic, ok := opts.Get("auth.basic"); ok {
		user, pass, found := strings.Cut(basic, ":")
		if !found {
			return nil, xerr.Configuration("auth.basic must be in user:pass form")
		}
		req.SetBasicAuth(user, pass)
	}
	if bearer, ok := opts.Get("auth.bearer"); ok {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for key, value := range opts {
		if name, ok := strings.CutPrefix(key, "header."); ok {
			req.Header.Set(name, value)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, xerr.Connection("fetching %s: %v", loc.Masked(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerr.Connection("fetching %s: unexpected status %s", loc.Masked(), resp.Status)
	}

	tmpPath, err := downloadToTemp(resp.Body, guessExtension(loc, opts))
	if err != nil {
		return nil, xerr.Connection("staging %s to temp file: %v", loc.Masked(), err)
	}

	f, err := DetectFormat(tmpPath, opts.GetDefault("source_type", ""))
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	src, err := f.SourceFactory(tmpPath, loc.Fragment, opts)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return &tempFileSource{Source: src, path: tmpPath}, nil
}

func guessExtension(loc Location, opts connector.Options) string {
	if override, ok := opts.Get("source_type"); ok {
		return "." + override
	}
	return filepath.Ext(loc.Path)
}

func downloadToTemp(r io.Reader, ext string) (string, error) {
	name := filepath.Join(os.TempDir(), fmt.Sprintf("dte-%s%s", uuid.NewString(), ext))
	out, err := os.Create(name)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// tempFileSource wraps a format Source opened against a materialized
// temporary file. Close deletes the file once the underlying Source is
// closed, unless MarkFailed was called first: a failed run retains the
// staged file for diagnostics instead (§6).
type tempFileSource struct {
	connector.Source
	path   string
	failed bool
}

// MarkFailed records that the run using this source did not complete
// successfully, so Close keeps the staged temp file on disk.
func (t *tempFileSource) MarkFailed() {
	t.failed = true
}

func (t *tempFileSource) Close() error {
	err := t.Source.Close()
	if !t.failed {
		os.Remove(t.path)
	}
	return err
}
