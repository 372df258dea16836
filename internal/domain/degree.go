package domain

import "sort"

// DegreeOrder lists the known education levels from lowest to highest.
var DegreeOrder = []string{
	"High School or Baccalaureate",
	"Some College (1-3 years)",
	"Bachelor's degree",
	"Master's degree",
	"Doctorate (e.g. PhD)",
}

// DegreeRank returns the position of degree in DegreeOrder.
// Unknown degrees rank after every known one.
func DegreeRank(degree string) int {
	for i, d := range DegreeOrder {
		if d == degree {
			return i
		}
	}
	return len(DegreeOrder)
}

// SortDegrees orders degrees by DegreeRank, then alphabetically among equals.
func SortDegrees(degrees []string) {
	sort.SliceStable(degrees, func(i, j int) bool {
		ri, rj := DegreeRank(degrees[i]), DegreeRank(degrees[j])
		if ri != rj {
			return ri < rj
		}
		return degrees[i] < degrees[j]
	})
}
