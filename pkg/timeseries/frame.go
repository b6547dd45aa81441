package timeseries

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Frame is the column layout the model consumes: a timestamp column (ds),
// an optional target column (y) and one column per extra regressor.
type Frame struct {
	DS         []time.Time
	Y          []float64
	Regressors map[string][]float64
}

// NewFrame allocates a frame with room for n rows.
func NewFrame(n int) *Frame {
	return &Frame{
		DS:         make([]time.Time, 0, n),
		Y:          make([]float64, 0, n),
		Regressors: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.DS)
}


// SetRegressor assigns a regressor column.
func (f *Frame) SetRegressor(name string, values []float64) {
	if f.Regressors == nil {
		f.Regressors = make(map[string][]float64)
	}
	f.Regressors[name] = values
}

// Slice returns rows [i, j) as a new frame sharing no backing arrays with f.
func (f *Frame) Slice(i, j int) *Frame {
	if i < 0 {
		i = 0
	}
	if j > f.Len() {
		j = f.Len()
	}
	if i > j {
		i = j
	}
	out := &Frame{
		DS:         append([]time.Time(nil), f.DS[i:j]...),
		Regressors: make(map[string][]float64, len(f.Regressors)),
	}
	if len(f.Y) == len(f.DS) {
		out.Y = append([]float64(nil), f.Y[i:j]...)
	}
	for name, col := range f.Regressors {
		if len(col) == len(f.DS) {
			out.Regressors[name] = append([]float64(nil), col[i:j]...)
		}
	}
	return out
}

// sorted returns a copy of f ordered by ds.
func (f *Frame) sorted() *Frame {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return f.DS[idx[a]].Before(f.DS[idx[b]]) })

	out := &Frame{
		DS:         make([]time.Time, len(idx)),
		Regressors: make(map[string][]float64, len(f.Regressors)),
	}
	if len(f.Y) == len(f.DS) {
		out.Y = make([]float64, len(idx))
	}
	for name := range f.Regressors {
		out.Regressors[name] = make([]float64, len(idx))
	}
	for dst, src := range idx {
		out.DS[dst] = f.DS[src]
		if out.Y != nil {
			out.Y[dst] = f.Y[src]
		}
		for name, col := range f.Regressors {
			out.Regressors[name][dst] = col[src]
		}
	}
	return out
}

// validate checks column lengths and finiteness for the given regressors.
func (f *Frame) validate(requireY bool, regressors []string) error {
	n := f.Len()
	if requireY {
		if len(f.Y) != n {
			return fmt.Errorf("column y has %d rows, ds has %d", len(f.Y), n)
		}
		for i, v := range f.Y {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("y is not finite at row %d", i)
			}
		}
	}
	for _, name := range regressors {
		col, ok := f.Regressors[name]
		if !ok {
			return fmt.Errorf("regressor %q missing from frame", name)
		}
		if len(col) != n {
			return fmt.Errorf("regressor %q has %d rows, ds has %d", name, len(col), n)
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("regressor %q is not finite at row %d", name, i)
			}
		}
	}
	return nil
}
