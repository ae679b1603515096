package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/domain/stats"
	"github.com/JiarongF/StatsLearning/domain/stimulus"
	"github.com/JiarongF/StatsLearning/internal/generator"
	"github.com/JiarongF/StatsLearning/internal/session"
)

// datasetResponse is the generator output shape sent to the renderer.
type datasetResponse struct {
	Points      []stimulus.Point `json:"points"`
	ActualSlope *float64         `json:"actual_slope,omitempty"`
	Pearson     *float64         `json:"pearson,omitempty"`
}

func toDatasetResponse(dataset stimulus.GeneratedDataset) datasetResponse {
	resp := datasetResponse{
		Points:      dataset.Points,
		ActualSlope: dataset.ActualSlope,
	}
	if r, ok := stats.Pearson(dataset.Points); ok {
		resp.Pearson = &r
	}
	return resp
}

// handleGenerate produces a dataset for an explicit generation request.
func (a *App) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req stimulus.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dataset, err := a.generator.Generate(req)
	if err != nil {
		a.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, toDatasetResponse(dataset))
}

// clusteredRequest configures the cluster-mixture variant.
type clusteredRequest struct {
	TargetCorrelation float64        `json:"target_correlation"`
	SampleSize        int            `json:"sample_size"`
	Seed              int64          `json:"seed"`
	Clusters          int            `json:"clusters"`
	XRange            stimulus.Range `json:"x_range"`
	YRange            stimulus.Range `json:"y_range"`
}

// handleGenerateClustered produces a cluster-mixture dataset.
func (a *App) handleGenerateClustered(w http.ResponseWriter, r *http.Request) {
	var req clusteredRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dataset, err := generator.GenerateClustered(req.TargetCorrelation, generator.MixtureOptions{
		SampleSize: req.SampleSize,
		Seed:       req.Seed,
		Clusters:   req.Clusters,
		XRange:     req.XRange,
		YRange:     req.YRange,
	})
	if err != nil {
		a.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, toDatasetResponse(dataset))
}

// handlePearson computes the live correlation of an arbitrary point set.
// An undefined correlation comes back as JSON null, never NaN.
func (a *App) handlePearson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Points []stimulus.Point `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var result *float64
	if value, ok := stats.Pearson(req.Points); ok {
		result = &value
	}
	a.respondJSON(w, http.StatusOK, map[string]interface{}{"r": result})
}

// sessionResponse is the live session state sent to the renderer.
type sessionResponse struct {
	SessionID           string           `json:"session_id"`
	CorrelationStrength float64          `json:"correlation_strength"`
	Dataset             datasetResponse  `json:"dataset"`
	UserPoints          []stimulus.Point `json:"user_points"`
	DisplayedR          *float64         `json:"displayed_r"`
}

func toSessionResponse(s *session.Session) sessionResponse {
	resp := sessionResponse{
		SessionID:           s.ID().String(),
		CorrelationStrength: s.CorrelationStrength(),
		Dataset:             toDatasetResponse(s.Dataset()),
		UserPoints:          s.UserPoints(),
	}
	if r, ok := s.DisplayedCorrelation(); ok {
		display := stats.DisplayR(r)
		resp.DisplayedR = &display
	}
	return resp
}

// handleCreateSession starts a session for the posted stimulus parameters.
func (a *App) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var params stimulus.Parameters
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid parameters")
		return
	}

	s, err := session.New(params, a.generator, a.provenance)
	if err != nil {
		a.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	a.storeSession(s)
	a.logger.Info("session %s started for stimulus %s", s.ID(), params.StimulusID)
	a.respondJSON(w, http.StatusCreated, toSessionResponse(s))
}

// handleGetSession returns the current session state.
func (a *App) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	a.respondJSON(w, http.StatusOK, toSessionResponse(s))
}

// handleSetCorrelation moves the correlation slider.
func (a *App) handleSetCorrelation(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var req struct {
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.SetCorrelation(r.Context(), req.Value); err != nil {
		a.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, toSessionResponse(s))
}

// handleAddUserPoint appends a participant-placed point.
func (a *App) handleAddUserPoint(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	var point stimulus.Point
	if err := json.NewDecoder(r.Body).Decode(&point); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid point")
		return
	}

	if err := s.AddUserPoint(r.Context(), point); err != nil {
		a.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, toSessionResponse(s))
}

// handleRemoveUserPoint deletes a participant-placed point by index.
func (a *App) handleRemoveUserPoint(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid index")
		return
	}

	if err := s.RemoveUserPoint(r.Context(), index); err != nil {
		a.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, toSessionResponse(s))
}

// handleSubmitAnswer assembles and delivers the session's answer.
func (a *App) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	answer, err := s.Submit(r.Context(), a.sink, a.answers)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, answer)
}

// handleReplay rebuilds the session from its recorded provenance and returns
// the replayed state, which must match the live one bit for bit.
func (a *App) handleReplay(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	states, err := a.provenance.States(r.Context(), core.SessionID(chi.URLParam(r, "id")))
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	replayed, err := session.Replay(s.Parameters(), a.generator, states)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, toSessionResponse(replayed))
}

// handleInstructions renders the stimulus instructions markdown as HTML.
func (a *App) handleInstructions(w http.ResponseWriter, r *http.Request) {
	s, ok := a.lookupSession(chi.URLParam(r, "id"))
	if !ok {
		a.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	html := markdown.ToHTML([]byte(s.Parameters().InstructionsMarkdown), nil, nil)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

// respondJSON writes a JSON response
func (a *App) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

// respondError writes a JSON error response
func (a *App) respondError(w http.ResponseWriter, status int, message string) {
	a.respondJSON(w, status, map[string]string{"error": message})
}
