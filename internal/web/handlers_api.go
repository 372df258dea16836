package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/domain"
)

const maxBodyBytes = 1 << 16

type chiSquareJSON struct {
	DF        int     `json:"df"`
	PValue    float64 `json:"p_value"`
	Statistic float64 `json:"statistic"`
}

type tableJSON struct {
	Rows    []domain.Group      `json:"rows"`
	Columns []domain.QuizStatus `json:"columns"`
	Counts  [][]int64           `json:"counts"`
}

type runJSON struct {
	ID            string         `json:"id"`
	Dataset       string         `json:"dataset"`
	Days          int            `json:"days"`
	WindowStart   time.Time      `json:"window_start"`
	WindowEnd     time.Time      `json:"window_end"`
	AssignedCount int64          `json:"assigned_count"`
	Table         tableJSON      `json:"table"`
	ChiSquare     *chiSquareJSON `json:"chi_square"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toChiSquareJSON(res *domain.ChiSquareResult) *chiSquareJSON {
	if res == nil {
		return nil
	}
	return &chiSquareJSON{DF: res.DF, PValue: res.PValue, Statistic: res.Statistic}
}

func toRunJSON(run *domain.ExperimentRun) runJSON {
	return runJSON{
		ID:            run.ID,
		Dataset:       run.Dataset,
		Days:          run.Days,
		WindowStart:   run.Window.Start,
		WindowEnd:     run.Window.End,
		AssignedCount: run.AssignedCount,
		Table: tableJSON{
			Rows:    run.Table.Rows,
			Columns: run.Table.Columns,
			Counts:  run.Table.Counts,
		},
		ChiSquare: toChiSquareJSON(run.ChiSquare),
		CreatedAt: run.CreatedAt,
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

func (s *Server) handleAPISampleSize(w http.ResponseWriter, r *http.Request) {
	effect, err := parseEffect(r.URL.Query().Get("effect"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	n, err := s.svc.SampleSize(effect)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"effect_size":  effect,
		"observations": n,
	})
}

func (s *Server) handleAPIProbability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	effect, err := parseEffect(q.Get("effect"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days, err := parseDays(q.Get("days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := s.planning(effect, days)
	resp := map[string]any{
		"effect_size":     effect,
		"days":            days,
		"observations":    p.SampleSize,
		"probability_pct": nil,
	}
	if p.ProbabilityOK {
		resp["probability_pct"] = p.Probability
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPIChiSquare(w http.ResponseWriter, r *http.Request) {
	res := s.svc.ChiSquare()
	writeJSON(w, http.StatusOK, map[string]any{
		"tested":     res != nil,
		"chi_square": toChiSquareJSON(res),
	})
}

func (s *Server) handleAPIRunExperiment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if err := validate(runExperimentValidator, body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Days int `json:"days"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := s.svc.RunExperiment(r.Context(), req.Days)
	if err != nil {
		s.logger.Error("experiment failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toRunJSON(run))
}

func (s *Server) handleAPIResetExperiment(w http.ResponseWriter, r *http.Request) {
	s.svc.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIRuns(w http.ResponseWriter, r *http.Request) {
	limit := runsPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.svc.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, toRunJSON(run))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.svc.Run(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, toRunJSON(run))
}
