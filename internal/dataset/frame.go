package dataset

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/apodwikat/abtest/internal/domain"
)

// FromFrame converts a DataFrame into applicants.
// Rows with an unparseable creation timestamp are skipped.
func FromFrame(df dataframe.DataFrame) (*Result, error) {
	names := df.Names()
	for _, col := range RequiredColumns {
		if !slices.Contains(names, col) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, col)
		}
	}

	countries := df.Col(ColCountry).Records()
	birthdays := df.Col(ColBirthday).Records()
	degrees := df.Col(ColDegree).Records()
	quizzes := df.Col(ColQuiz).Records()
	created := df.Col(ColCreated).Records()

	var groups []string
	if slices.Contains(names, ColGroup) {
		groups = df.Col(ColGroup).Records()
	}

	res := &Result{Applicants: make([]domain.Applicant, 0, df.Nrow())}
	for i := 0; i < df.Nrow(); i++ {
		createdAt, ok := ParseTime(created[i])
		if !ok {
			res.Skipped++
			continue
		}
		birthday, _ := ParseTime(birthdays[i])

		a := domain.Applicant{
			CountryISO2:   strings.ToUpper(clean(countries[i])),
			Birthday:      birthday,
			HighestDegree: clean(degrees[i]),
			Quiz:          domain.QuizStatus(strings.ToLower(clean(quizzes[i]))),
			CreatedAt:     createdAt,
		}
		if groups != nil {
			a.Group = domain.Group(clean(groups[i]))
		}
		res.Applicants = append(res.Applicants, a)
	}

	if len(res.Applicants) == 0 {
		return nil, domain.ErrEmptyDataset
	}
	return res, nil
}

// ToFrame builds a DataFrame of string columns from applicants.
func ToFrame(applicants []domain.Applicant) dataframe.DataFrame {
	n := len(applicants)
	countries := make([]string, n)
	birthdays := make([]string, n)
	degrees := make([]string, n)
	quizzes := make([]string, n)
	created := make([]string, n)
	groups := make([]string, n)

	for i, a := range applicants {
		countries[i] = a.CountryISO2
		if !a.Birthday.IsZero() {
			birthdays[i] = a.Birthday.Format(time.DateOnly)
		}
		degrees[i] = a.HighestDegree
		quizzes[i] = string(a.Quiz)
		created[i] = a.CreatedAt.Format(time.RFC3339)
		groups[i] = string(a.Group)
	}

	return dataframe.New(
		series.New(countries, series.String, ColCountry),
		series.New(birthdays, series.String, ColBirthday),
		series.New(degrees, series.String, ColDegree),
		series.New(quizzes, series.String, ColQuiz),
		series.New(created, series.String, ColCreated),
		series.New(groups, series.String, ColGroup),
	)
}

// WriteCSV exports applicants, including their group labels, as CSV.
func WriteCSV(w io.Writer, applicants []domain.Applicant) error {
	df := ToFrame(applicants)
	if df.Err != nil {
		return fmt.Errorf("failed to build frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// clean maps gota's missing-value marker to the empty string.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "NaN" {
		return ""
	}
	return s
}
