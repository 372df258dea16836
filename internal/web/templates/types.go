package templates

import "github.com/apodwikat/abtest/internal/domain"

// Demographics are the selectable applicant charts, keyed by chart name.
var Demographics = []struct {
	Label string
	Chart string
}{
	{"Nationality", "nationality"},
	{"Age", "age"},
	{"Education", "education"},
}

// Planning is the sample-size and duration guidance for the chosen inputs.
type Planning struct {
	EffectSize    float64
	Days          int
	SampleSize    int
	SampleSizeOK  bool
	Probability   float64
	ProbabilityOK bool
}

// DashboardData is everything the dashboard page renders.
type DashboardData struct {
	Demographic string
	Applicants  int
	Planning    Planning
	// Run is the experiment just executed, if any.
	Run *domain.ExperimentRun
}

// RunsData lists recorded experiment runs.
type RunsData struct {
	Runs        []*domain.ExperimentRun
	Unavailable bool
}

// Input bounds of the dashboard sliders.
const (
	EffectMin     = 0.1
	EffectMax     = 0.8
	EffectDefault = 0.2
	DaysMin       = 1
	DaysMax       = 20
	DaysDefault   = 1
)
