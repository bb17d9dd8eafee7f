// Package protocol parses source/target URIs and dispatches each scheme to
// the connector that handles it (§4.2 of SPEC_FULL.md). The registry follows
// the same registration pattern the teacher repo uses for its SQL dialects:
// a scheme registers a constructor at init time, and OpenSource/OpenTarget
// look it up by name instead of a type switch, so a new connector is purely
// additive.
package protocol

import (
	"fmt"
	"sync"

	"dte/internal/connector"
	"dte/internal/xerr"
)

// Role distinguishes a Source-side open from a Target-side open, since some
// schemes (e.g. http) are source-only.
type Role int

const (
	RoleSource Role = iota
	RoleTarget
)

// SourceFactory builds a Source from a parsed Location and option bag.
type SourceFactory func(loc Location, opts connector.Options) (connector.Source, error)

// TargetFactory builds a Target from a parsed Location and option bag.
type TargetFactory func(loc Location, opts connector.Options) (connector.Target, error)

// Scheme bundles the factories a URI scheme supports. A scheme need not
// support both roles: http registers only SourceFactory.
type Scheme struct {
	Name          string
	SourceFactory SourceFactory
	TargetFactory TargetFactory
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Scheme{}
)

// Register adds a scheme to the registry. Called from the init() of this
// package's per-scheme files (file, http, ssh, database schemes).
func Register(s Scheme) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[s.Name] = s
}

func lookup(name string) (Scheme, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[name]
	return s, ok
}

// OpenSource parses uri and opens the connector-level Source for it.
func OpenSource(uri string, opts connector.Options) (connector.Source, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	s, ok := lookup(loc.Scheme)
	if !ok {
		return nil, xerr.Configuration("protocol: unrecognized scheme %q", loc.Scheme)
	}
	if s.SourceFactory == nil {
		return nil, fmt.Errorf("protocol: scheme %q cannot be used as a source", loc.Scheme)
	}
	return s.SourceFactory(loc, opts)
}

// OpenTarget parses uri and opens the connector-level Target for it.
func OpenTarget(uri string, opts connector.Options) (connector.Target, error) {
	loc, err := Parse(uri)
	if err != nil {
		return nil, err
	}
	s, ok := lookup(loc.Scheme)
	if !ok {
		return nil, xerr.Configuration("protocol: unrecognized scheme %q", loc.Scheme)
	}
	if s.TargetFactory == nil {
		return nil, fmt.Errorf("protocol: scheme %q cannot be used as a target", loc.Scheme)
	}
	return s.TargetFactory(loc, opts)
}

// resetRegistry replaces the registry wholesale. Intended for tests.
func resetRegistry(r map[string]Scheme) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = r
}
