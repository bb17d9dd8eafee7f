package protocol

import (
	"path/filepath"
	"strings"
	"sync"

	"dte/internal/connector"
	"dte/internal/xerr"
)

// FormatSourceFactory opens a local file path as a Source for a given
// format (csv, json, columnar binary, spreadsheet, ...).
type FormatSourceFactory func(path string, fragment string, opts connector.Options) (connector.Source, error)

// FormatTargetFactory opens a local file path as a Target for a given
// format.
type FormatTargetFactory func(path string, fragment string, opts connector.Options) (connector.Target, error)

// Format bundles a data-format's factories together with the file
// extensions it claims, so file/http/ssh endpoints can be dispatched by
// extension the same way DB endpoints are dispatched by URI scheme (§4.2).
type Format struct {
	Name          string
	Extensions    []string // without the leading dot, lowercase
	SourceFactory FormatSourceFactory
	TargetFactory FormatTargetFactory
}

var (
	formatMu           sync.RWMutex
	formatsByName      = map[string]Format{}
	formatsByExtension = map[string]string{} // extension -> format name
)

// RegisterFormat adds a data format to the registry. Called from each
// format connector package's init().
func RegisterFormat(f Format) {
	formatMu.Lock()
	defer formatMu.Unlock()
	formatsByName[f.Name] = f
	for _, ext := range f.Extensions {
		formatsByExtension[ext] = f.Name
	}
}

// DetectFormat resolves a format name from an explicit source_type option
// override (highest priority) or the file extension of path.
func DetectFormat(path string, sourceTypeOverride string) (Format, error) {
	formatMu.RLock()
	defer formatMu.RUnlock()

	name := strings.ToLower(sourceTypeOverride)
	if name == "" {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		n, ok := formatsByExtension[ext]
		if !ok {
			return Format{}, xerr.Configuration("cannot infer format for %q: unrecognized extension %q and no source_type override given", path, ext)
		}
		name = n
	}

	f, ok := formatsByName[name]
	if !ok {
		return Format{}, xerr.Configuration("unknown format %q", name)
	}
	return f, nil
}

// resetFormats replaces the format registry wholesale. Intended for tests.
func resetFormats(names map[string]Format, exts map[string]string) {
	formatMu.Lock()
	defer formatMu.Unlock()
	formatsByName = names
	formatsByExtension = exts
}
