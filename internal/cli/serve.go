package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fourup/pkg/buildinfo"
	"github.com/matzehuels/fourup/pkg/errors"
	"github.com/matzehuels/fourup/pkg/pipeline"
)

// maxUploadBytes caps the total size of a multipart collage request.
const maxUploadBytes = 128 << 20

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	geomOpts
	addr      string
	redisAddr string
	noCache   bool
}

// serveCommand creates the serve command, exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collage pipeline over HTTP",
		Long: `Serve starts an HTTP server with two endpoints:

  POST /collage   multipart form with an "images" field per image,
                  responds with the composed JPEG
  GET  /healthz   liveness check with version info

Geometry query parameters (width, padding, border, quality, seed,
background, border_color) override the configured defaults per request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	addGeomFlags(cmd, &opts.geomOpts)
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "redis address for a shared source cache (host:port)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the source image cache")

	return cmd
}

// server holds the HTTP handler state.
type server struct {
	runner *pipeline.Runner
	base   pipeline.Options
}

// runServe builds the server and blocks until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	base, cfg, err := opts.options()
	if err != nil {
		return err
	}
	if opts.redisAddr != "" {
		cfg.Cache.Backend = "redis"
		cfg.Cache.RedisAddr = opts.redisAddr
	}

	store, err := newCache(opts.noCache, cfg)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	s := &server{
		runner: pipeline.NewRunner(store, logger),
		base:   base,
	}
	defer s.runner.Close()

	srv := &http.Server{
		Addr:         opts.addr,
		Handler:      s.routes(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logger.Info("listening", "addr", opts.addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// routes builds the chi router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/collage", s.handleCollage)
	return r
}

// handleHealth reports liveness and version info.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleCollage composes the uploaded images and responds with the JPEG.
func (s *server) handleCollage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, `multipart field "images" is required`))
		return
	}

	// The pipeline reads sources by reference; spool the uploads to a
	// per-request scratch directory.
	dir, err := os.MkdirTemp("", "fourup-upload-")
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "creating scratch dir"))
		return
	}
	defer os.RemoveAll(dir)

	opts := s.base
	for i, fh := range files {
		src, err := fh.Open()
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "opening upload %q", fh.Filename))
			return
		}
		path := filepath.Join(dir, fmt.Sprintf("%03d_%s", i, filepath.Base(fh.Filename)))
		dst, err := os.Create(path)
		if err == nil {
			_, err = dst.ReadFrom(src)
			if cerr := dst.Close(); err == nil {
				err = cerr
			}
		}
		src.Close()
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "spooling upload %q", fh.Filename))
			return
		}
		opts.Sources = append(opts.Sources, path)
	}

	if err := applyQueryParams(&opts, r); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Arrangement", res.Arrangement.Kind.String())
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// applyQueryParams overlays per-request geometry parameters onto opts.
func applyQueryParams(opts *pipeline.Options, r *http.Request) error {
	q := r.URL.Query()

	intParam := func(name string, dst *int) error {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
			}
			*dst = n
		}
		return nil
	}

	if err := intParam("width", &opts.TotalWidth); err != nil {
		return err
	}
	if err := intParam("padding", &opts.Padding); err != nil {
		return err
	}
	if err := intParam("border", &opts.BorderWidth); err != nil {
		return err
	}
	if err := intParam("quality", &opts.Quality); err != nil {
		return err
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", v)
		}
		opts.Seed = n
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	if v := q.Get("border_color"); v != "" {
		opts.BorderColor = v
	}
	return nil
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error code to an HTTP status and writes a JSON body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidImage, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidColor, errors.ErrCodeInvalidSize, errors.ErrCodeInsufficientImages,
		errors.ErrCodeUnsupportedFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}
