package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/supreme-sprinklers/backflow-cli/internal/capture"
	"github.com/supreme-sprinklers/backflow-cli/internal/email"
	"github.com/supreme-sprinklers/backflow-cli/internal/extract"
	"github.com/supreme-sprinklers/backflow-cli/internal/model"
	"github.com/supreme-sprinklers/backflow-cli/internal/render"
	"github.com/supreme-sprinklers/backflow-cli/internal/store"
	"github.com/supreme-sprinklers/backflow-cli/internal/tracking"
)

var servePort int

// app bundles the services behind the HTTP surface. The tracker is single
// session, so handler access is serialized with trackerMu.
type app struct {
	store     store.Store
	extractor *extract.Extractor
	renderer  *render.Renderer
	email     *email.Service

	trackerMu sync.Mutex
	tracker   *tracking.Tracker
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the inspection pipeline HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}

		a := &app{
			store:    st,
			renderer: initRenderer(),
			email:    email.NewService(st),
			tracker:  tracking.NewTracker(st),
		}
		defer a.Close()

		if extractor, err := initExtractor(); err != nil {
			zap.L().Warn("extraction disabled", zap.Error(err))
		} else {
			a.extractor = extractor
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(a),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /extract", a.handleExtract)
	mux.HandleFunc("POST /tracking/start", a.handleTrackingStart)
	mux.HandleFunc("POST /tracking/edit", a.handleTrackingEdit)
	mux.HandleFunc("POST /tracking/stop", a.handleTrackingStop)
	mux.HandleFunc("POST /render", a.handleRender)
	mux.HandleFunc("GET /stats", a.handleStats)
	mux.HandleFunc("GET /settings/email", a.handleGetEmail)
	mux.HandleFunc("PUT /settings/email", a.handleSetEmail)

	return mux
}

func (a *app) handleExtract(w http.ResponseWriter, r *http.Request) {
	if a.extractor == nil {
		http.Error(w, `{"error":"extraction is not configured"}`, http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Image string `json:"image"`
		MIME  string `json:"mime"`
		Crop  bool   `json:"crop"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Image == "" {
		http.Error(w, `{"error":"image is required"}`, http.StatusBadRequest)
		return
	}

	img, err := normalizeRequestImage(req.Image, req.MIME)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Crop {
		img, err = capture.CropFrame(img)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	fields, err := a.extractor.Extract(r.Context(), img)
	if err != nil {
		zap.L().Error("extraction failed", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "extraction failed"})
		return
	}

	record := model.InspectionRecord{}.Apply(fields)
	writeJSON(w, http.StatusOK, map[string]any{
		"record": record,
		"issues": record.Validate(),
	})
}

// normalizeRequestImage accepts either a canonical data URI or a bare
// base64 payload with an explicit mime type.
func normalizeRequestImage(image, mime string) (capture.NormalizedImage, error) {
	if strings.HasPrefix(image, "data:") {
		return capture.FromDataURI(image)
	}

	raw, err := base64.StdEncoding.DecodeString(image)
	if err != nil {
		return capture.NormalizedImage{}, eris.Wrap(err, "decode image payload")
	}
	return capture.Normalize(raw, mime)
}

func (a *app) handleTrackingStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	a.trackerMu.Lock()
	id := a.tracker.StartTracking(req.Fields)
	a.trackerMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"session_id": id})
}

func (a *app) handleTrackingEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Field == "" {
		http.Error(w, `{"error":"field is required"}`, http.StatusBadRequest)
		return
	}

	a.trackerMu.Lock()
	a.tracker.TrackEdit(req.Field, req.Value)
	a.trackerMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (a *app) handleTrackingStop(w http.ResponseWriter, r *http.Request) {
	a.trackerMu.Lock()
	id := a.tracker.SessionID()
	edits := a.tracker.StopTracking(r.Context())
	a.trackerMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"edits":      edits,
	})
}

func (a *app) handleRender(w http.ResponseWriter, r *http.Request) {
	var record model.InspectionRecord
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	doc, err := a.renderer.Render(r.Context(), record)
	if err != nil {
		zap.L().Error("render failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "render failed"})
		return
	}
	defer doc.Release()

	data, err := doc.Download.Bytes()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "document unavailable"})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="certificate.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *app) handleStats(w http.ResponseWriter, r *http.Request) {
	a.trackerMu.Lock()
	stats, err := a.tracker.Statistics(r.Context())
	a.trackerMu.Unlock()
	if err != nil {
		zap.L().Error("statistics failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "statistics unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, statsReport{Statistics: stats, Accuracy: stats.Accuracy()})
}

func (a *app) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"email": a.email.DefaultOfficeEmail(r.Context()),
	})
}

func (a *app) handleSetEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	if err := a.email.SetDefaultOfficeEmail(r.Context(), req.Email); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
