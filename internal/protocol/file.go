package protocol

import (
	"dte/internal/connector"
)

func init() {
	Register(Scheme{
		Name: "file",
		SourceFactory: func(loc Location, opts connector.Options) (connector.Source, error) {
			f, err := DetectFormat(loc.Path, opts.GetDefault("source_type", ""))
			if err != nil {
				return nil, err
			}
			return f.SourceFactory(loc.Path, loc.Fragment, opts)
		},
		TargetFactory: func(loc Location, opts connector.Options) (connector.Target, error) {
			f, err := DetectFormat(loc.Path, opts.GetDefault("target_type", ""))
			if err != nil {
				return nil, err
			}
			return f.TargetFactory(loc.Path, loc.Fragment, opts)
		},
	})
}
