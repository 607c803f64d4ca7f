package frame

// Matrix is a numeric-only feature table. Data is row-major; missing values
// are NaN until alignment or model handling decides otherwise.
type Matrix struct {
	Cols []string
	Data [][]float64
}

func NewMatrix(cols []string, rows int) *Matrix {
	data := make([][]float64, rows)
	for i := range data {
		data[i] = make([]float64, len(cols))
	}
	return &Matrix{Cols: append([]string(nil), cols...), Data: data}
}

func (m *Matrix) NumRows() int { return len(m.Data) }

func (m *Matrix) colIndex() map[string]int {
	idx := make(map[string]int, len(m.Cols))
	for i, c := range m.Cols {
		idx[c] = i
	}
	return idx
}

// Align reindexes the matrix to exactly the canonical column list: columns not
// in the list are dropped, absent columns are filled with 0, and the output
// order is the canonical order. Tree models resolve features by position, so
// this step fixes the numeric semantics of every split.
func (m *Matrix) Align(canonical []string) *Matrix {
	idx := m.colIndex()
	out := NewMatrix(canonical, len(m.Data))
	for j, col := range canonical {
		src, ok := idx[col]
		if !ok {
			continue // zero-filled
		}
		for i := range m.Data {
			out.Data[i][j] = m.Data[i][src]
		}
	}
	return out
}
