package domain

import "sort"

// ContingencyTable is a cross-tabulation of experiment group by quiz status.
type ContingencyTable struct {
	Rows    []Group
	Columns []QuizStatus
	Counts  [][]int64
}

// Crosstab counts applicants by group and quiz status. Rows missing either
// value are ignored. Labels are the observed values in lexical order.
func Crosstab(applicants []Applicant) ContingencyTable {
	rowSet := make(map[Group]struct{})
	colSet := make(map[QuizStatus]struct{})
	for _, a := range applicants {
		if !a.HasGroup() || a.Quiz == "" {
			continue
		}
		rowSet[a.Group] = struct{}{}
		colSet[a.Quiz] = struct{}{}
	}

	t := ContingencyTable{
		Rows:    make([]Group, 0, len(rowSet)),
		Columns: make([]QuizStatus, 0, len(colSet)),
	}
	for g := range rowSet {
		t.Rows = append(t.Rows, g)
	}
	for q := range colSet {
		t.Columns = append(t.Columns, q)
	}
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i] < t.Rows[j] })
	sort.Slice(t.Columns, func(i, j int) bool { return t.Columns[i] < t.Columns[j] })

	rowIdx := make(map[Group]int, len(t.Rows))
	for i, g := range t.Rows {
		rowIdx[g] = i
	}
	colIdx := make(map[QuizStatus]int, len(t.Columns))
	for i, q := range t.Columns {
		colIdx[q] = i
	}

	t.Counts = make([][]int64, len(t.Rows))
	for i := range t.Counts {
		t.Counts[i] = make([]int64, len(t.Columns))
	}
	for _, a := range applicants {
		if !a.HasGroup() || a.Quiz == "" {
			continue
		}
		t.Counts[rowIdx[a.Group]][colIdx[a.Quiz]]++
	}
	return t
}

// Empty reports whether the table has no cells.
func (t ContingencyTable) Empty() bool {
	return len(t.Rows) == 0 || len(t.Columns) == 0
}

// Is2x2 reports whether the table has exactly two rows and two columns.
func (t ContingencyTable) Is2x2() bool {
	return len(t.Rows) == 2 && len(t.Columns) == 2
}

// Total returns the sum of all cells.
func (t ContingencyTable) Total() int64 {
	var n int64
	for _, row := range t.Counts {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Cell returns the count for a group and quiz status, zero if either label is absent.
func (t ContingencyTable) Cell(g Group, q QuizStatus) int64 {
	for i, r := range t.Rows {
		if r != g {
			continue
		}
		for j, c := range t.Columns {
			if c == q {
				return t.Counts[i][j]
			}
		}
	}
	return 0
}

// Float returns the cells as a flat row-major float64 slice.
func (t ContingencyTable) Float() []float64 {
	out := make([]float64, 0, len(t.Rows)*len(t.Columns))
	for _, row := range t.Counts {
		for _, c := range row {
			out = append(out, float64(c))
		}
	}
	return out
}
