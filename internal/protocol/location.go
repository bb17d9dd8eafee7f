package protocol

import (
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"dte/internal/xerr"
)

// Location is a parsed source/target endpoint: scheme://[user[:pass]@]host[:port]/database#table
// or a bare filesystem path, optionally with a #fragment selecting an
// intra-file container (spreadsheet sheet, embedded-DB table) (§4.2).
type Location struct {
	Raw      string
	Scheme   string
	User     string
	Password string
	Host     string
	Port     string
	Path     string // database name for DB schemes, filesystem path otherwise
	Fragment string // table / sheet name
}

// schemeless local paths: no "://" present at all.
func isBarePath(s string) bool {
	return !strings.Contains(s, "://")
}

// Parse interprets uri under the grammar in §4.2. A bare path with no
// scheme is treated as a sqlite:// location when it ends in .db, .sqlite or
// .sqlite3, and as a file:// location otherwise.
func Parse(uri string) (Location, error) {
	if uri == "" {
		return Location{}, xerr.Configuration("empty source/target URI")
	}

	if isBarePath(uri) {
		path, fragment := splitFragment(uri)
		scheme := "file"
		switch strings.ToLower(filepath.Ext(path)) {
		case ".db", ".sqlite", ".sqlite3":
			scheme = "sqlite"
		}
		return Location{Raw: uri, Scheme: scheme, Path: path, Fragment: fragment}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, xerr.Configuration("malformed URI %s: %v", xerr.Mask(uri), err)
	}
	if u.Scheme == "" {
		return Location{}, xerr.Configuration("URI %s has no scheme", xerr.Mask(uri))
	}

	loc := Location{
		Raw:      uri,
		Scheme:   strings.ToLower(u.Scheme),
		Host:     u.Hostname(),
		Port:     u.Port(),
		Path:     strings.TrimPrefix(u.Path, "/"),
		Fragment: u.Fragment,
	}
	if u.User != nil {
		loc.User = u.User.Username()
		loc.Password, _ = u.User.Password()
	}

	if loc.Scheme == "file" {
		// file:///abs/path#fragment — u.Path already carries the leading slash.
		loc.Path = u.Path
	}

	return loc, nil
}

// splitFragment splits "path#fragment" for schemeless inputs, which
// url.Parse would otherwise mis-handle as relative-reference edge cases on
// Windows-style paths.
func splitFragment(s string) (path, fragment string) {
	idx := strings.LastIndex(s, "#")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], s[idx+1:]
}

// RequireTable returns the fragment as a table identifier, or a
// Configuration error if the endpoint has none (§4.2: mandatory for DB
// endpoints when the connector cannot otherwise infer a single default
// table).
func (l Location) RequireTable() (string, error) {
	if l.Fragment == "" {
		return "", xerr.Configuration("%s endpoint requires a #table fragment", l.Scheme)
	}
	return l.Fragment, nil
}

// PortOrDefault parses Port as an integer, or returns def if Port is empty
// or unparseable.
func (l Location) PortOrDefault(def int) int {
	if l.Port == "" {
		return def
	}
	p, err := strconv.Atoi(l.Port)
	if err != nil {
		return def
	}
	return p
}

// Masked returns Raw with any embedded credentials replaced, safe for logs
// and error messages.
func (l Location) Masked() string {
	return xerr.Mask(l.Raw)
}
