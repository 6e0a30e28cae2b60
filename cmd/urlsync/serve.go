package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/urlsync-dev/urlsync/pkg/bridge"
	"github.com/urlsync-dev/urlsync/pkg/codec"
	"github.com/urlsync-dev/urlsync/pkg/tableparams"
	"github.com/urlsync-dev/urlsync/pkg/views"
)

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long: `Run a demo server exposing:

  /         demo page
  /sync     websocket bridge endpoint
  /views    saved-views API (POST to save, GET to list)
  /v/{id}   redirect to the URL captured by a saved view
  /metrics  Prometheus metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":3000", "listen address")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&opts.viewsBackend, "views-backend", "memory", "saved-views backend (memory or s3)")
	cmd.Flags().StringVar(&opts.viewsBucket, "views-bucket", "", "S3 bucket for saved views (s3 backend)")
	cmd.Flags().StringVar(&opts.viewsPrefix, "views-prefix", "views/", "S3 key prefix for saved views")
	cmd.Flags().DurationVar(&opts.viewTTL, "view-ttl", 0, "expiry for saved views (memory backend, 0 = never)")

	return cmd
}

type serveOptions struct {
	addr         string
	debug        bool
	viewsBackend string
	viewsBucket  string
	viewsPrefix  string
	viewTTL      time.Duration
}

// newViewStore builds the saved-views backend selected by the flags.
// AWS credentials and region come from the default config chain.
func newViewStore(opts serveOptions) (views.Store, error) {
	switch opts.viewsBackend {
	case "memory":
		return views.NewMemoryStore(views.WithTTL(opts.viewTTL)), nil
	case "s3":
		if opts.viewsBucket == "" {
			return nil, fmt.Errorf("--views-bucket is required with the s3 backend")
		}
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return views.NewS3Store(s3.NewFromConfig(cfg), opts.viewsBucket, opts.viewsPrefix), nil
	default:
		return nil, fmt.Errorf("unknown views backend %q", opts.viewsBackend)
	}
}

func runServe(opts serveOptions) error {
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	viewStore, err := newViewStore(opts)
	if err != nil {
		return err
	}
	defer viewStore.Close()

	metrics := bridge.NewMetrics()

	syncHandler := bridge.NewHandler(
		func(s *bridge.Session) { bindDemoTable(s, logger) },
		bridge.WithLogger(logger),
		bridge.WithMetrics(metrics),
	)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", demoPage)
	r.Handle("/sync", syncHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/views", func(r chi.Router) {
		r.Get("/", listViews(viewStore))
		r.Post("/", saveView(viewStore))
	})
	r.Get("/v/{id}", resolveView(viewStore))

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", opts.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		logger.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		syncHandler.Close()
		return srv.Shutdown(ctx)
	}
}

// bindDemoTable attaches a table parameter store to a fresh session and
// logs state changes. It runs on the session loop once the hello event
// has populated the location.
func bindDemoTable(s *bridge.Session, logger *slog.Logger) {
	tp, err := tableparams.New(s)
	if err != nil {
		logger.Warn("table store init failed", "error", err)
		s.Close()
		return
	}

	unsub := tp.Subscribe(func(values codec.Values) {
		logger.Debug("table state",
			"page", values.Int(tableparams.KeyPage, tableparams.DefaultPage),
			"pageSize", values.Int(tableparams.KeyPageSize, tableparams.DefaultPageSize),
			"search", values.String(tableparams.KeySearch),
		)
	})

	go func() {
		<-s.Done()
		unsub()
		tp.Close()
	}()
}

func listViews(store views.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vs, err := store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, vs)
	}
}

func saveView(store views.Store) http.HandlerFunc {
	type request struct {
		Name  string `json:"name"`
		Query string `json:"query"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		v, err := views.NewFromQuery(req.Name, req.Query)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.Save(r.Context(), v); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, v)
	}
}

func resolveView(store views.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		v, err := store.Load(r.Context(), id)
		if errors.Is(err, views.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/?"+v.Query, http.StatusFound)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "error", err)
	}
}

func demoPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, demoHTML)
}

const demoHTML = `<!DOCTYPE html>
<html>
<head><title>urlsync demo</title></head>
<body>
<h1>urlsync</h1>
<p>Server-held URL state. Connect a client to <code>/sync</code> over
websocket; the server mirrors table parameters (page, pageSize, search,
sort) into the query string and restores them on back/forward.</p>
<ul>
<li><a href="/views">Saved views</a></li>
<li><a href="/metrics">Metrics</a></li>
</ul>
</body>
</html>
`
