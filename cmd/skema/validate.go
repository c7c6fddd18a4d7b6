package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/skema"
)

type validateFlags struct {
	format   string
	maxBytes int64
	maxDepth int
}

func newValidateCmd(a *app) *cobra.Command {
	var f validateFlags
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate documents against the schema",
		Long:  `Validates each FILE ("-" reads stdin) and prints "ok" or its issues. Exits with status 1 if any document is invalid.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.loadSchema()
			if err != nil {
				return err
			}
			return a.validate(cmd.Context(), t, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", "auto", "input format: json, yaml or auto (by extension)")
	cmd.Flags().Int64Var(&f.maxBytes, "max-bytes", 0, "reject inputs larger than this many bytes (0 = unlimited)")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "nesting limit (0 = default)")
	return cmd
}

func (a *app) validate(ctx context.Context, t skema.AnyType, f validateFlags, files []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	failed := 0
	for _, name := range files {
		src, closeFn, err := a.open(name, f.format)
		if err != nil {
			return err
		}
		res := skema.SafeParseFrom(ctx, t, src, skema.ParseOpt{MaxBytes: f.maxBytes, MaxDepth: f.maxDepth})
		closeFn()
		if res.Success {
			a.log.Debug().Str("file", name).Msg("valid")
			fmt.Fprintf(a.out, "%s: ok\n", name)
			continue
		}
		failed++
		a.log.Debug().Str("file", name).Int("issues", len(res.Issues)).Bool("aborted", res.Err != nil).Msg("invalid")
		fmt.Fprintf(a.out, "%s: invalid\n", name)
		for _, it := range res.Issues {
			path := it.Path
			if path == "" {
				path = "/"
			}
			fmt.Fprintf(a.out, "  %s: %s (%s)\n", path, it.Message, it.Code)
		}
	}
	if failed > 0 {
		return errInvalid
	}
	return nil
}

func (a *app) open(name, format string) (skema.Source, func(), error) {
	var (
		r       io.Reader
		closeFn = func() {}
	)
	if name == "-" {
		r = os.Stdin
	} else {
		fh, err := os.Open(name)
		if err != nil {
			return nil, nil, err
		}
		r = fh
		closeFn = func() { _ = fh.Close() }
	}
	switch resolveFormat(name, format) {
	case "yaml":
		return skema.YAMLReader(r), closeFn, nil
	case "json":
		return skema.JSONReader(r), closeFn, nil
	}
	closeFn()
	return nil, nil, fmt.Errorf("unknown format %q", format)
}

func resolveFormat(name, format string) string {
	if format != "auto" {
		return format
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}
