package domain

// ChiSquareResult holds the outcome of a chi-square test of independence.
type ChiSquareResult struct {
	DF        int
	PValue    float64
	Statistic float64
}

// CountryCount is the number of applicants from one country.
type CountryCount struct {
	ISO2    string
	ISO3    string
	Name    string
	Count   int64
	Percent float64
}

// DegreeCount is the number (or share, when normalized) of applicants per degree.
type DegreeCount struct {
	Degree string
	Value  float64
}

// DailyCount is the number of events observed on one calendar day.
type DailyCount struct {
	Date  string
	Count int64
}
