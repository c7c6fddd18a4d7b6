package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/skema"
	"github.com/reoring/skema/i18n"
	"github.com/reoring/skema/openapi"
	"github.com/reoring/skema/schemafile"
)

// errInvalid marks a run where at least one document failed validation. The
// failures themselves have already been printed.
var errInvalid = errors.New("validation failed")

type app struct {
	out, errOut io.Writer
	log         zerolog.Logger

	lang    string
	verbose bool

	schemaPath string
	openAPI    bool
	crdKind    string
	enableCEL  bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "skema",
		Short:         "Validate JSON and YAML documents against skema schemas",
		Long:          `skema loads a schema document (or a JSON Schema / OpenAPI / CRD schema) and validates data files against it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// messages are rendered when rules are registered, so the
			// language must be set before any schema is loaded
			i18n.SetLanguage(a.lang)
			level := zerolog.InfoLevel
			if a.verbose {
				level = zerolog.DebugLevel
			}
			a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut, NoColor: true}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().StringVar(&a.lang, "lang", "en", "message language (en, ja)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.schemaPath, "schema", "s", "", "schema file")
	root.PersistentFlags().BoolVar(&a.openAPI, "openapi", false, "read --schema as JSON Schema / OpenAPI v3 (or a CRD)")
	root.PersistentFlags().StringVar(&a.crdKind, "crd-kind", "", "import the CRD with this kind from a multi-document --schema")
	root.PersistentFlags().BoolVar(&a.enableCEL, "cel", true, "compile x-kubernetes-validations, enum and multipleOf into CEL rules")

	root.AddCommand(newValidateCmd(a), newJSONSchemaCmd(a), newServeCmd(a))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, out, errOut io.Writer) int {
	cmd := newRootCmd(out, errOut)
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errInvalid) {
			fmt.Fprintln(errOut, "Error:", err)
		}
		return 1
	}
	return 0
}

func (a *app) loadSchema() (skema.AnyType, error) {
	if a.schemaPath == "" {
		return nil, errors.New("--schema is required")
	}
	data, err := os.ReadFile(a.schemaPath)
	if err != nil {
		return nil, err
	}
	if !a.openAPI && a.crdKind == "" {
		a.log.Debug().Str("schema", a.schemaPath).Msg("loading schema document")
		t, err := schemafile.Load(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.schemaPath, err)
		}
		return t, nil
	}

	opts := openapi.Options{EnableCEL: a.enableCEL}
	var (
		t    skema.AnyType
		diag openapi.Diag
	)
	if a.crdKind != "" {
		a.log.Debug().Str("schema", a.schemaPath).Str("kind", a.crdKind).Msg("importing CRD")
		t, diag, err = openapi.ImportYAMLForCRDKind(data, a.crdKind, opts)
	} else {
		a.log.Debug().Str("schema", a.schemaPath).Msg("importing OpenAPI schema")
		t, diag, err = openapi.Import(data, opts)
	}
	if diag != nil {
		for _, w := range diag.Warnings() {
			a.log.Warn().Str("schema", a.schemaPath).Msg(w)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.schemaPath, err)
	}
	return t, nil
}
