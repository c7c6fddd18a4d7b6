package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/skema"
	"github.com/reoring/skema/middleware"
)

type serveFlags struct {
	addr     string
	maxBytes int64
	maxDepth int
	allowDup bool
	watch    bool
}

func newServeCmd(a *app) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schema as an HTTP validation endpoint",
		Long: `Starts an HTTP server. POST /validate with a JSON or YAML body (by Content-Type)
returns {"valid": true, "data": ...} or 400 with the issues. GET /schema returns the JSON Schema,
GET /metrics the Prometheus metrics. With --watch the schema is reloaded when its file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := newSchemaHolder(a.schemaPath, a.loadSchema, a.log)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, h, f)
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().Int64Var(&f.maxBytes, "max-bytes", 1<<20, "reject bodies larger than this many bytes")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "nesting limit (0 = default)")
	cmd.Flags().BoolVar(&f.allowDup, "allow-duplicate-keys", false, "accept JSON objects that repeat a key")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "reload the schema when its file changes")
	return cmd
}

func (a *app) serve(ctx context.Context, h *schemaHolder, f serveFlags) error {
	m := newServeMetrics()
	h.onReload = m.observeReload
	if f.watch {
		if err := h.Watch(ctx); err != nil {
			return err
		}
	}
	srv := &http.Server{
		Addr:              f.addr,
		Handler:           newServeHandler(h, f, a.log, m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", f.addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newServeHandler(h *schemaHolder, f serveFlags, log zerolog.Logger, m *serveMetrics) http.Handler {
	opt := skema.ParseOpt{
		MaxBytes:            f.maxBytes,
		MaxDepth:            f.maxDepth,
		RejectDuplicateKeys: !f.allowDup,
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/schema", func(w http.ResponseWriter, _ *http.Request) {
		s, err := h.JSONSchema()
		if err != nil {
			middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, s)
	})
	r.With(m.instrument, middleware.Validate[any](h, opt)).
		Post("/validate", func(w http.ResponseWriter, r *http.Request) {
			v, _ := middleware.ParsedFromContext[any](r.Context())
			middleware.WriteJSON(w, http.StatusOK, map[string]any{"valid": true, "data": v})
		})
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if r.URL.Path == "/metrics" || strings.HasPrefix(r.URL.Path, "/healthz") {
				return
			}
			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimw.GetReqID(r.Context())).
				Msg("http request")
		})
	}
}
