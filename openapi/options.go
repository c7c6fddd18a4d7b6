package openapi

import "fmt"

// Options controls import behavior.
type Options struct {
	// EnableCEL turns x-kubernetes-validations, enum and multipleOf into CEL
	// rules. When false they are skipped with a warning.
	EnableCEL bool
	// Strict turns every warning into an import error.
	Strict bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return append([]string(nil), d.ws...) }

func (d *simpleDiag) warnf(at, f string, a ...any) {
	if at == "" {
		at = "/"
	}
	d.ws = append(d.ws, at+": "+fmt.Sprintf(f, a...))
}
