// Package main contains the cli implementation of the tool. It uses cobra
// for cli argument parsing, mirroring the rest of this codebase's command
// surface.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	_ "dte/internal/connector/columnarconn"
	_ "dte/internal/connector/delimitedconn"
	_ "dte/internal/connector/jsonconn"
	_ "dte/internal/connector/spreadsheetconn"

	"dte/internal/config"
	"dte/internal/connector"
	"dte/internal/engine"
	"dte/internal/output"
	"dte/internal/protocol"
	"dte/internal/transform"
	"dte/internal/xerr"
)

type transferFlags struct {
	schemaFile    string
	transformStr  string
	transformFile string
	batchSize     int
	truncate      bool
	dryRun        bool
	preview       int
	sourceType    string
	targetType    string
	configFile    string
	logLevel      string
	format        string
}

func main() {
	flags := &transferFlags{}
	rootCmd := &cobra.Command{
		Use:   "dte <source-uri> <target-uri>",
		Short: "Transfer tabular data between heterogeneous sources and targets",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args, flags)
		},
	}

	rootCmd.Flags().StringVar(&flags.schemaFile, "schema-file", "", "Explicit schema document; overrides inferred schema")
	rootCmd.Flags().StringVar(&flags.transformStr, "transform", "", "Inline transform expression(s), e.g. 'col=expr;col2=expr2'")
	rootCmd.Flags().StringVar(&flags.transformFile, "transform-file", "", "Path to a transform expression or Lua script (.lua)")
	rootCmd.Flags().IntVar(&flags.batchSize, "batch-size", engine.DefaultBatchSize, "Rows per batch")
	rootCmd.Flags().BoolVar(&flags.truncate, "truncate", false, "Truncate the target before writing")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate and transform the first batch without opening the target")
	rootCmd.Flags().IntVar(&flags.preview, "preview", 0, "Print N transformed rows instead of writing")
	rootCmd.Flags().StringVar(&flags.sourceType, "source-type", "", "Override format detection for the source (e.g. csv)")
	rootCmd.Flags().StringVar(&flags.targetType, "target-type", "", "Override format detection for the target (e.g. json)")
	rootCmd.Flags().StringVar(&flags.configFile, "config", "", "Configuration document; alternative to positional args and flags")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "Log verbosity: error, warn, info, debug")
	rootCmd.Flags().StringVar(&flags.format, "format", "human", "Progress/result output format: human or json")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func run(args []string, flags *transferFlags) error {
	sourceURI, targetURI, sourceOpts, targetOpts, opts, reportFormat, err := resolveRun(args, flags)
	if err != nil {
		return err
	}

	reporter, err := output.NewReporter(reportFormat)
	if err != nil {
		return err
	}

	logf := newLogger(flags.logLevel)

	logf("info", "opening source %s", xerr.Mask(sourceURI))
	src, err := protocol.OpenSource(sourceURI, sourceOpts)
	if err != nil {
		return err
	}

	logf("info", "opening target %s", xerr.Mask(targetURI))
	tgt, err := protocol.OpenTarget(targetURI, targetOpts)
	if err != nil {
		return err
	}

	stats, runErr := engine.Execute(context.Background(), src, tgt, opts)
	for _, w := range stats.Warnings {
		logf("warn", "%s", w)
	}

	var text string
	var formatErr error
	if opts.Preview > 0 && runErr == nil {
		text, formatErr = reporter.Preview(stats)
	} else {
		text, formatErr = reporter.Result(stats, runErr)
	}
	if formatErr != nil {
		return formatErr
	}
	fmt.Print(text)

	return runErr
}

// resolveRun merges the --config document (if given) with positional args
// and flags. Flags always win over config-document values for the engine
// options they overlap with; apart from source_type and target_type, which
// --source-type and --target-type set, the config document is the only way
// to supply per-connector options.
func resolveRun(args []string, flags *transferFlags) (sourceURI, targetURI string, sourceOpts, targetOpts connector.Options, opts engine.Options, reportFormat string, err error) {
	sourceOpts = connector.Options{}
	targetOpts = connector.Options{}
	reportFormat = flags.format

	if flags.configFile != "" {
		doc, loadErr := config.Load(flags.configFile)
		if loadErr != nil {
			err = loadErr
			return
		}
		sourceURI = doc.Source.URI
		targetURI = doc.Target.URI
		sourceOpts = doc.Source.ConnectorOptions()
		targetOpts = doc.Target.ConnectorOptions()
		opts.BatchSize = doc.Options.BatchSize
		opts.Truncate = doc.Options.Truncate
		opts.SchemaFile = doc.Options.SchemaFile
		opts.Transform = doc.Options.TransformConfig()
	} else {
		if len(args) != 2 {
			err = xerr.Configuration("expected <source-uri> <target-uri>, or --config")
			return
		}
		sourceURI, targetURI = args[0], args[1]
	}

	if flags.sourceType != "" {
		sourceOpts["source_type"] = flags.sourceType
	}
	if flags.targetType != "" {
		targetOpts["target_type"] = flags.targetType
	}

	if flags.batchSize != engine.DefaultBatchSize {
		opts.BatchSize = flags.batchSize
	}
	if flags.truncate {
		opts.Truncate = true
	}
	if flags.dryRun {
		opts.DryRun = true
	}
	if flags.preview > 0 {
		opts.Preview = flags.preview
	}
	if flags.schemaFile != "" {
		opts.SchemaFile = flags.schemaFile
	}

	transformCfg, err := resolveTransform(flags)
	if err != nil {
		return
	}
	if transformCfg.Type != "" {
		opts.Transform = transformCfg
	}

	return
}

func resolveTransform(flags *transferFlags) (transform.Config, error) {
	switch {
	case flags.transformStr != "" && flags.transformFile != "":
		return transform.Config{}, xerr.Configuration("--transform and --transform-file are mutually exclusive")
	case flags.transformStr != "":
		return transform.Config{Type: transform.ModeInline, Value: flags.transformStr}, nil
	case flags.transformFile != "":
		return transform.Config{Type: transform.ModeFile, Value: flags.transformFile}, nil
	default:
		return transform.Config{}, nil
	}
}

var logLevels = map[string]int{"error": 0, "warn": 1, "info": 2, "debug": 3}

// newLogger returns a minimal leveled logger writing to stderr. No external
// logging framework is introduced: the teacher codebase reports exclusively
// through an injected io.Writer, never a logging package.
func newLogger(level string) func(level, format string, args ...any) {
	threshold, ok := logLevels[strings.ToLower(level)]
	if !ok {
		threshold = logLevels["info"]
	}
	return func(msgLevel, format string, args ...any) {
		if logLevels[msgLevel] > threshold {
			return
		}
		fmt.Fprintf(os.Stderr, "["+msgLevel+"] "+format+"\n", args...)
	}
}

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return xerr.ExitCode(err)
}
