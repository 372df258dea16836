package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/apodwikat/abtest/internal/charts"
	"github.com/apodwikat/abtest/internal/web/templates"
)

const runsPageSize = 50

func (s *Server) planning(effect float64, days int) templates.Planning {
	p := templates.Planning{EffectSize: effect, Days: days}

	n, err := s.svc.SampleSize(effect)
	if err != nil {
		return p
	}
	p.SampleSize, p.SampleSizeOK = n, true
	p.Probability, p.ProbabilityOK = s.svc.Probability(n, days)
	return p
}

func (s *Server) dashboardData(r *http.Request) templates.DashboardData {
	demo := r.FormValue("demographic")
	found := false
	for _, d := range templates.Demographics {
		if d.Chart == demo {
			found = true
			break
		}
	}
	if !found {
		demo = templates.Demographics[0].Chart
	}

	effect := templates.EffectDefault
	if v := r.FormValue("effect"); v != "" {
		effect = effectFromForm(v)
	}
	days := templates.DaysDefault
	if v := r.FormValue("days"); v != "" {
		days = daysFromForm(v)
	}

	return templates.DashboardData{
		Demographic: demo,
		Applicants:  s.svc.ApplicantCount(),
		Planning:    s.planning(effect, days),
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	_ = templates.Dashboard(s.dashboardData(r)).Render(r.Context(), w)
}

func (s *Server) handlePlanning(w http.ResponseWriter, r *http.Request) {
	p := s.planning(effectFromForm(r.FormValue("effect")), daysFromForm(r.FormValue("days")))
	_ = templates.PlanningBlock(p).Render(r.Context(), w)
}

func (s *Server) handleExperiment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := s.dashboardData(r)
	run, err := s.svc.RunExperiment(ctx, data.Planning.Days)
	if err != nil {
		s.logger.Error("experiment failed", zap.Error(err))
		if IsHTMX(r) {
			_ = templates.ExperimentError(err.Error()).Render(ctx, w)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if IsHTMX(r) {
		_ = templates.Results(run).Render(ctx, w)
		return
	}
	data.Run = run
	_ = templates.Dashboard(data).Render(ctx, w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	known := false
	for _, n := range charts.Names {
		if n == name {
			known = true
			break
		}
	}
	if !known {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.charts.Render(w, name); err != nil {
		s.logger.Error("failed to render chart", zap.String("chart", name), zap.Error(err))
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	runs, err := s.svc.Runs(ctx, runsPageSize)
	data := templates.RunsData{Runs: runs}
	if err != nil {
		s.logger.Warn("failed to list runs", zap.Error(err))
		data.Unavailable = true
	}
	_ = templates.Runs(data).Render(ctx, w)
}
