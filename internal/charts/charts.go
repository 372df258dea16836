// Package charts builds the dashboard's go-echarts figures from the
// applicant repository.
package charts

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/ports"
)

const (
	ageBins = 20

	TitleNationality = "DS Applicants: Nationality"
	TitleAge         = "DS Applicants: Distribution of Ages"
	TitleEducation   = "DS Applicants: Highest Degree Earned"
	TitleContingency = "Admissions Quiz Completion by Group"
	TitleNoData      = "No experiment data available"
	SubtitleNoData   = "No data available - Run the experiment first"
)

// Names lists the charts served by Render, in dashboard order.
var Names = []string{"nationality", "age", "education", "contingency"}

// oranges approximates a sequential orange scale.
var oranges = []string{"#fff5eb", "#fdd0a2", "#fd8d3c", "#d94801", "#7f2704"}

type renderer interface {
	Render(w io.Writer) error
}

// Builder creates charts over one applicant repository.
type Builder struct {
	repo ports.ApplicantRepository
	now  func() time.Time
}

func NewBuilder(repo ports.ApplicantRepository) *Builder {
	return &Builder{repo: repo, now: time.Now}
}

// Render writes the named chart as a standalone HTML page.
func (b *Builder) Render(w io.Writer, name string) error {
	var r renderer
	switch name {
	case "nationality":
		r = b.NationalityChoropleth()
	case "age":
		r = b.AgeHistogram()
	case "education":
		r = b.EducationBar()
	case "contingency":
		r = b.ContingencyBar()
	default:
		return fmt.Errorf("unknown chart %q", name)
	}
	return r.Render(w)
}

// NationalityChoropleth shades each country by its share of applicants.
func (b *Builder) NationalityChoropleth() *charts.Map {
	data, max := nationalityData(b.repo.NationalityCounts(true))

	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: TitleNationality}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min:     0,
			Max:     float32(max),
			Text:    []string{"count_pct"},
			InRange: &opts.VisualMapInRange{Color: oranges},
		}),
	)
	m.AddSeries("count_pct", data)
	return m
}

func nationalityData(counts []domain.CountryCount) ([]opts.MapData, float64) {
	var max float64
	data := make([]opts.MapData, 0, len(counts))
	for _, c := range counts {
		name := regionName(c)
		if name == "" {
			continue
		}
		data = append(data, opts.MapData{Name: name, Value: c.Percent})
		max = math.Max(max, c.Percent)
	}
	return data, max
}

// AgeHistogram bins applicant ages into equal-width buckets.
func (b *Builder) AgeHistogram() *charts.Bar {
	ages := b.repo.Ages(b.now())
	labels, counts := histogram(ages, ageBins)

	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		data[i] = opts.BarData{Value: c}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: TitleAge}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Age"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency [count]"}),
	)
	bar.SetXAxis(labels).AddSeries("count", data)
	return bar
}

// EducationBar is a horizontal bar of each degree's share of applicants.
func (b *Builder) EducationBar() *charts.Bar {
	counts := b.repo.EducationCounts(true)

	degrees := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		degrees[i] = c.Degree
		data[i] = opts.BarData{Value: c.Value}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: TitleEducation}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Degree"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency [count]"}),
	)
	bar.SetXAxis(degrees).AddSeries("proportion", data)
	bar.XYReversal()
	return bar
}

// ContingencyBar groups applicants by experiment group, one series per quiz
// status. Without assigned groups it returns an empty placeholder chart.
func (b *Builder) ContingencyBar() *charts.Bar {
	return ContingencyBar(b.repo.ContingencyTable())
}

// ContingencyBar renders t as grouped bars.
func ContingencyBar(t domain.ContingencyTable) *charts.Bar {
	bar := charts.NewBar()
	if t.Empty() {
		bar.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: TitleNoData, Subtitle: SubtitleNoData}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Group"}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
		)
		return bar
	}

	groups := make([]string, len(t.Rows))
	for i, g := range t.Rows {
		groups[i] = string(g)
	}

	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: TitleContingency}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Group"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of Applicants"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Right: "10%"}),
	)
	bar.SetXAxis(groups)
	for j, q := range t.Columns {
		data := make([]opts.BarData, len(t.Rows))
		for i := range t.Rows {
			data[i] = opts.BarData{Value: t.Counts[i][j]}
		}
		bar.AddSeries(string(q), data)
	}
	return bar
}

// histogram splits values into bins equal-width buckets spanning their range.
// Labels are the bucket lower bounds.
func histogram(values []int, bins int) ([]string, []float64) {
	if len(values) == 0 {
		return nil, nil
	}

	x := make([]float64, len(values))
	for i, v := range values {
		x[i] = float64(v)
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		hi = lo + 1
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// the last divider is exclusive
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.1f", dividers[i])
	}
	return labels, counts
}
