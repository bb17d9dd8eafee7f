// Package config loads the optional YAML configuration document (§6) that
// stands in for CLI flags: source/target endpoints plus engine options.
package config

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"dte/internal/connector"
	"dte/internal/transform"
	"dte/internal/xerr"
)

// Document is the YAML shape of a configuration file.
type Document struct {
	Version int        `yaml:"version"`
	Source  Endpoint   `yaml:"source"`
	Target  Endpoint   `yaml:"target"`
	Options RunOptions `yaml:"options"`
}

// Endpoint names a source or target URI plus its connector options.
type Endpoint struct {
	URI     string            `yaml:"uri"`
	Options map[string]string `yaml:"options"`
}

// RunOptions is the engine-level knobs a configuration document may set.
type RunOptions struct {
	BatchSize  int            `yaml:"batch_size"`
	Truncate   bool           `yaml:"truncate"`
	SchemaFile string         `yaml:"schema_file"`
	Transform  *TransformSpec `yaml:"transform"`
}

// TransformSpec mirrors transform.Config with YAML tags; Type is mandatory
// whenever options.transform is present (§6).
type TransformSpec struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses a configuration document from path, interpolating
// ${ENV_VAR} references from the process environment before YAML parsing.
// An unresolved variable is a Configuration error.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerr.Configuration("reading config file %s: %v", path, err)
	}

	interpolated, err := interpolate(string(raw))
	if err != nil {
		return nil, xerr.Configuration("config file %s: %v", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal([]byte(interpolated), &doc); err != nil {
		return nil, xerr.Configuration("parsing config file %s: %v", path, err)
	}

	if doc.Source.URI == "" {
		return nil, xerr.Configuration("config file %s: source.uri is required", path)
	}
	if doc.Target.URI == "" {
		return nil, xerr.Configuration("config file %s: target.uri is required", path)
	}
	if doc.Options.Transform != nil && doc.Options.Transform.Type == "" {
		return nil, xerr.Configuration("config file %s: options.transform.type is required when options.transform is set", path)
	}

	return &doc, nil
}

func interpolate(text string) (string, error) {
	var firstErr error
	out := envVarPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := envVarPattern.FindStringSubmatch(match)[1]
		v, ok := os.LookupEnv(name)
		if !ok && firstErr == nil {
			firstErr = xerr.Configuration("unresolved environment variable ${%s}", name)
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ConnectorOptions converts an Endpoint's option map into connector.Options.
func (e Endpoint) ConnectorOptions() connector.Options {
	return connector.Options(e.Options)
}

// TransformConfig converts the optional TransformSpec into transform.Config.
func (o RunOptions) TransformConfig() transform.Config {
	if o.Transform == nil {
		return transform.Config{}
	}
	return transform.Config{Type: transform.Mode(o.Transform.Type), Value: o.Transform.Value}
}
