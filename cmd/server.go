package main

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/analysis"
	"github.com/sells-group/brand-scope/internal/metrics"
	"github.com/sells-group/brand-scope/internal/model"
	"github.com/sells-group/brand-scope/internal/results"
)

// server holds the dependencies of the HTTP handlers.
type server struct {
	analyzer   *analysis.Analyzer
	persister  *results.Persister
	reader     *results.Reader
	metrics    *metrics.Metrics // may be nil
	cronSecret string
}

func newServer(env *appEnv, cronSecret string) *server {
	return &server{
		analyzer:   env.Analyzer,
		persister:  env.Persister,
		reader:     env.Reader,
		metrics:    env.Metrics,
		cronSecret: cronSecret,
	}
}

// routes builds the chi router with CORS for the given origins.
func (s *server) routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleRunSearch)
		r.Get("/search", s.handleGetSearch)
		r.Post("/generate-brands", s.handleGenerateBrands)
		r.Post("/find-competitors", s.handleFindCompetitors)
		r.Post("/analyze-brand", s.handleAnalyzeBrand)
		r.Post("/brand-data", s.handleBrandData)
		r.Get("/cron/daily-analysis", s.handleDailyAnalysis)
	})
	return r
}

type searchBody struct {
	Mode        string   `json:"mode"`
	UserID      string   `json:"user_id"`
	Query       string   `json:"query"`
	Queries     []string `json:"queries"`
	Brand       string   `json:"brand"`
	Competitors []string `json:"competitors"`
}

func (s *server) handleRunSearch(w http.ResponseWriter, r *http.Request) {
	var body searchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	mode, err := model.ParseMode(body.Mode)
	if err != nil {
		// Validate reports the unknown mode with the other field errors.
		mode = model.AnalysisMode(body.Mode)
	}
	req := analysis.Request{
		Mode:        mode,
		UserID:      body.UserID,
		Query:       body.Query,
		Queries:     body.Queries,
		Brand:       body.Brand,
		Competitors: body.Competitors,
	}

	res, err := s.analyzer.Run(r.Context(), req)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.As(err, &ve) && len(ve.Fields) == 1 && ve.Fields["competitors"] != "":
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Explorer mode requires competitors"})
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, "Invalid request data", ve.Fields)
		default:
			writeError(w, http.StatusInternalServerError, "Analysis failed", err.Error())
		}
		return
	}

	if _, err := s.persister.Save(r.Context(), res, req.UserID); err != nil {
		zap.L().Error("save results failed", zap.String("mode_id", res.ModeID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save results", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Analysis complete for mode %s. Results have been stored with search ID: %s", res.Mode, res.ModeID),
		"mode_id": res.ModeID,
	})
}

func (s *server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	modeID := r.URL.Query().Get("mode_id")
	userID := r.URL.Query().Get("user_id")

	switch {
	case modeID != "":
		res, err := s.reader.ByModeID(r.Context(), modeID)
		if err != nil {
			zap.L().Error("fetch run failed", zap.String("mode_id", modeID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error fetching search results", err.Error())
			return
		}
		if res == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No results found"})
			return
		}
		writeJSON(w, http.StatusOK, res)
	case userID != "":
		runs, err := s.reader.ByUserID(r.Context(), userID)
		if err != nil {
			zap.L().Error("fetch runs failed", zap.String("user_id", userID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Error fetching search results", err.Error())
			return
		}
		if len(runs) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No results found"})
			return
		}
		writeJSON(w, http.StatusOK, runs)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing mode_id, or user_id parameter"})
	}
}

func (s *server) handleGenerateBrands(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Industry string `json:"industry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	brands, err := s.analyzer.GenerateTopBrands(r.Context(), body.Industry)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Industry is required"})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to generate brands", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

func (s *server) handleFindCompetitors(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Brand    string `json:"brand"`
		Industry string `json:"industry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	names, err := s.analyzer.FindCompetitors(r.Context(), body.Brand, body.Industry)
	if err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, "Brand and industry are required", ve.Fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to find competitors", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"competitors": names})
}

func (s *server) handleAnalyzeBrand(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BrandID string `json:"brandId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	report, err := s.analyzer.AnalyzeBrand(r.Context(), body.BrandID)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.As(err, &ve):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Brand ID is required"})
		case errors.Is(err, analysis.ErrBrandNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Brand not found"})
		default:
			zap.L().Error("brand analysis failed", zap.String("brand_id", body.BrandID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Analysis failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Brand analysis completed successfully",
		"data":    report,
	})
}

func (s *server) handleBrandData(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}
	if body.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "User ID is required"})
		return
	}

	data, err := s.reader.BrandData(r.Context(), body.UserID)
	if err != nil {
		zap.L().Error("fetch brand data failed", zap.String("user_id", body.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch brand data", err.Error())
		return
	}
	if data == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No brand found for user"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *server) handleDailyAnalysis(w http.ResponseWriter, r *http.Request) {
	secret := r.URL.Query().Get("secret")
	if s.cronSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.cronSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	report, err := s.analyzer.DailyAnalysis(r.Context())
	if err != nil {
		zap.L().Error("daily analysis failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Daily analysis failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Daily analysis completed for %d brands", len(report.Results)),
		"results": report.Results,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	writeJSON(w, status, map[string]any{"error": msg, "details": details})
}

// requestLogger logs one line per request with the chi request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
