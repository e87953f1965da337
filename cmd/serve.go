package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/geo-profiler/internal/geo"
	"github.com/sells-group/geo-profiler/internal/model"
	"github.com/sells-group/geo-profiler/internal/semantic"
	"github.com/sells-group/geo-profiler/internal/table"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestBytes = 32 << 20
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP geo-profiling service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		} else {
			cfg.Server.Port = port
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.Burst)
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(newProfiler(cfg), limiter),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// geoProfileRequest is the body of POST /v1/geo-profile. Columns maps each
// column name to its values in row order; cells may be any JSON scalar.
type geoProfileRequest struct {
	SemanticProfile  string           `json:"semantic_profile"`
	Columns          map[string][]any `json:"columns"`
	Dataset          map[string]any   `json:"dataset,omitempty"`
	IncludeSemantics bool             `json:"include_semantics,omitempty"`
	Explain          bool             `json:"explain,omitempty"`
}

type geoProfileResponse struct {
	RequestID string `json:"request_id"`
	*model.GeoProfile
	Semantics   *model.DatasetSemanticProfile `json:"dataset_semantics,omitempty"`
	Dataset     map[string]any                `json:"dataset,omitempty"`
	Explanation *geo.Explanation              `json:"explanation,omitempty"`
}

// buildRouter wires the HTTP routes. limiter bounds the profiling endpoint;
// a nil limiter disables rate limiting.
func buildRouter(profiler *geo.Profiler, limiter *rate.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(rateLimit(limiter)).Post("/v1/geo-profile", handleGeoProfile(profiler))

	return r
}

type requestIDKey struct{}

// requestID assigns each request an ID, reusing the caller's X-Request-ID when set.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				zap.L().Warn("rate limit exceeded", zap.String("request_id", requestIDFrom(r.Context())))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func handleGeoProfile(profiler *geo.Profiler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := requestIDFrom(r.Context())
		log := zap.L().With(zap.String("request_id", id))

		var req geoProfileRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err := dec.Decode(&req); err != nil {
			log.Debug("invalid request body", zap.Error(err))
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		frame, err := table.FromJSONColumns(req.Columns)
		if err != nil {
			log.Debug("invalid column values", zap.Error(err))
			writeError(w, http.StatusBadRequest, "invalid column values")
			return
		}

		enriched, err := profiler.ProfileDataset(req.SemanticProfile, frame, req.Dataset)
		if err != nil {
			var lookupErr *semantic.LookupError
			if errors.As(err, &lookupErr) {
				log.Info("semantic profile names unknown column", zap.String("column", lookupErr.Column))
				writeError(w, http.StatusUnprocessableEntity, lookupErr.Error())
				return
			}
			log.Error("geo profile failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := geoProfileResponse{
			RequestID:  id,
			GeoProfile: enriched.GeoProfile,
			Dataset:    enriched.RawMetadata,
		}
		if req.IncludeSemantics {
			resp.Semantics = enriched.DatasetSemantics
		}
		if req.Explain {
			ex := geo.Explain(enriched.DatasetSemantics)
			resp.Explanation = &ex
		}

		log.Info("geo profile served",
			zap.Int("columns", len(enriched.DatasetSemantics.Columns)),
			zap.String("spatial_role", string(enriched.GeoProfile.SpatialRole)),
		)
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
