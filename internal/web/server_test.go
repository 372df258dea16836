package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/apodwikat/abtest/internal/adapters/memory"
	"github.com/apodwikat/abtest/internal/charts"
	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/experiment"
	"github.com/apodwikat/abtest/internal/ports"
	"github.com/apodwikat/abtest/internal/stats"
)

type memRuns struct {
	mu   sync.Mutex
	runs []*domain.ExperimentRun
}

func (m *memRuns) Create(_ context.Context, run *domain.ExperimentRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append([]*domain.ExperimentRun{run}, m.runs...)
	return nil
}

func (m *memRuns) GetByID(_ context.Context, id string) (*domain.ExperimentRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memRuns) List(_ context.Context, limit int) ([]*domain.ExperimentRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *memRuns) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = nil
	return nil
}

var _ ports.RunRepository = (*memRuns)(nil)

// testApplicants spreads applicants over six days with an uneven number of
// incomplete quizzes per day.
func testApplicants() []domain.Applicant {
	start := time.Date(2022, 5, 1, 8, 0, 0, 0, time.UTC)
	perDay := []int{10, 14, 8, 12, 16, 9}

	var out []domain.Applicant
	for day, n := range perDay {
		for i := 0; i < n*2; i++ {
			quiz := domain.QuizComplete
			if i%2 == 1 {
				quiz = domain.QuizIncomplete
			}
			out = append(out, domain.Applicant{
				CountryISO2:   "NG",
				Birthday:      time.Date(1990+i%10, 1, 1, 0, 0, 0, 0, time.UTC),
				HighestDegree: "Bachelor's degree",
				Quiz:          quiz,
				CreatedAt:     start.AddDate(0, 0, day).Add(time.Duration(i) * time.Minute),
			})
		}
	}
	return out
}

func newTestServer(t *testing.T) (*Server, *memRuns) {
	t.Helper()
	repo := memory.NewApplicantRepository(testApplicants())
	sim := experiment.NewSimulator(repo, experiment.NewSeededSource(7))
	runs := &memRuns{}
	svc := stats.NewService(repo, sim, runs, nil, zaptest.NewLogger(t), stats.WithDatasetName("test.csv"))
	return NewServer(":0", svc, charts.NewBuilder(repo), zaptest.NewLogger(t)), runs
}

func do(t *testing.T, s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsRoute(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/metrics", "").Code)

	repo := memory.NewApplicantRepository(testApplicants())
	svc := stats.NewService(repo, experiment.NewSimulator(repo, experiment.NewSeededSource(1)), nil, nil, nil)
	withMetrics := NewServer(":0", svc, charts.NewBuilder(repo), nil,
		WithMetricsHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("abtest_experiment_runs_total 0"))
		})))
	rec := do(t, withMetrics, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "abtest_experiment_runs_total")
}

func TestDashboard_Defaults(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Application Demographics")
	assert.Contains(t, body, "138 applicants loaded")
	assert.Contains(t, body, "To detect an effect size of 0.2, you would need 394 observations.")
	assert.Contains(t, body, "The probability of getting this number of observations in 1 days is")
	assert.Contains(t, body, "Begin Experiment")
	assert.Contains(t, body, `src="/charts/nationality"`)
}

func TestDashboard_ClampsInputs(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/?effect=5&days=99&demographic=age", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "To detect an effect size of 0.8, you would need 26 observations.")
	assert.Contains(t, body, "in 20 days")
	assert.Contains(t, body, `src="/charts/age"`)
}

func TestPlanningFragment(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/planning?effect=0.5&days=3", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "you would need 64 observations.")
	assert.NotContains(t, rec.Body.String(), "<html")
}

func TestExperiment_HTMXFragment(t *testing.T) {
	s, runs := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/experiment", "days=3",
		"Content-Type", "application/x-www-form-urlencoded",
		"HX-Request", "true",
	)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Chi-Square Test for Independence")
	assert.Contains(t, body, "Degrees of Freedom: 1")
	assert.NotContains(t, body, "<html")
	require.Len(t, runs.runs, 1)
	assert.Equal(t, 3, runs.runs[0].Days)
}

func TestExperiment_FullPage(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/experiment", "days=2",
		"Content-Type", "application/x-www-form-urlencoded",
	)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<html")
	assert.Contains(t, body, "Observations")
}

func TestCharts(t *testing.T) {
	s, _ := newTestServer(t)

	for _, name := range charts.Names {
		rec := do(t, s, http.MethodGet, "/charts/"+name, "")
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", name)
	}

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/charts/pie", "").Code)

	rec := do(t, s, http.MethodGet, "/charts/contingency", "")
	assert.Contains(t, rec.Body.String(), charts.TitleNoData)
}

func TestRunsPage(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Contains(t, do(t, s, http.MethodGet, "/runs", "").Body.String(), "No experiments have been run yet.")

	do(t, s, http.MethodPost, "/api/experiments", `{"days": 2}`)
	body := do(t, s, http.MethodGet, "/runs", "").Body.String()
	assert.Contains(t, body, "test.csv")
	assert.NotContains(t, body, "No experiments have been run yet.")
}

func TestAPISampleSize(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/sample-size?effect=0.2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		EffectSize   float64 `json:"effect_size"`
		Observations int     `json:"observations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 394, resp.Observations)

	for _, q := range []string{"", "effect=abc", "effect=0.05", "effect=0.9"} {
		rec := do(t, s, http.MethodGet, "/api/sample-size?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestAPIProbability(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/probability?effect=0.8&days=20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Observations   int      `json:"observations"`
		ProbabilityPct *float64 `json:"probability_pct"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 26, resp.Observations)
	require.NotNil(t, resp.ProbabilityPct)
	assert.InDelta(t, 100, *resp.ProbabilityPct, 0.01)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/probability?effect=0.2&days=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/api/probability?effect=0.2&days=21", "").Code)
}

func TestAPIExperimentLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	var chi struct {
		Tested bool `json:"tested"`
	}
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/chi-square", "").Body.Bytes(), &chi))
	assert.False(t, chi.Tested)

	rec := do(t, s, http.MethodPost, "/api/experiments", `{"days": 6}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var run struct {
		ID            string `json:"id"`
		Days          int    `json:"days"`
		AssignedCount int64  `json:"assigned_count"`
		Dataset       string `json:"dataset"`
		ChiSquare     *struct {
			DF int `json:"df"`
		} `json:"chi_square"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, 6, run.Days)
	assert.Equal(t, int64(len(testApplicants())), run.AssignedCount)
	assert.Equal(t, "test.csv", run.Dataset)
	require.NotNil(t, run.ChiSquare)
	assert.Equal(t, 1, run.ChiSquare.DF)

	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/chi-square", "").Body.Bytes(), &chi))
	assert.True(t, chi.Tested)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/runs/"+run.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/api/runs/missing", "").Code)

	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/runs", "").Body.Bytes(), &list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusNoContent, do(t, s, http.MethodDelete, "/api/experiments", "").Code)
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/api/chi-square", "").Body.Bytes(), &chi))
	assert.False(t, chi.Tested)
}

func TestAPIRunExperiment_Validation(t *testing.T) {
	s, runs := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `days=3`},
		{"missing days", `{}`},
		{"days too small", `{"days": 0}`},
		{"days too large", `{"days": 21}`},
		{"days not integer", `{"days": 2.5}`},
		{"unknown field", `{"days": 2, "seed": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/experiments", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
	assert.Empty(t, runs.runs)
}

func TestParams(t *testing.T) {
	assert.Equal(t, 0.2, effectFromForm(""))
	assert.Equal(t, 0.1, effectFromForm("-3"))
	assert.Equal(t, 0.8, effectFromForm("2"))
	assert.Equal(t, 0.3, effectFromForm("0.30000000000000004"))
	assert.Equal(t, 1, daysFromForm("x"))
	assert.Equal(t, 20, daysFromForm("50"))
	assert.Equal(t, 1, daysFromForm("0"))

	_, err := parseEffect("0.8")
	assert.NoError(t, err)
	_, err = parseDays("20")
	assert.NoError(t, err)
}
