package timeseries

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNotFitted      = errors.New("timeseries: model has not been fitted")
	ErrAlreadyFitted  = errors.New("timeseries: model is already fitted")
	ErrTooFewRows     = errors.New("timeseries: history has less than 2 rows")
	ErrZeroTimeSpan   = errors.New("timeseries: history spans a single timestamp")
	ErrDuplicateValue = errors.New("timeseries: regressor already added")
)

// Model is an additive model y(t) = trend(t) + seasonality(t) + Σ β·x(t):
// a piecewise-linear trend with changepoints, Fourier seasonalities and
// linear extra regressors, fitted as a MAP estimate. Changepoint deltas take
// a Laplace prior, every other coefficient a Gaussian one.
type Model struct {
	cfg        Config
	regressors []string

	fitted        bool
	start         time.Time
	tScale        float64
	yScale        float64
	changepoints  []float64
	seasonalities []seasonality
	regStats      map[string]regStat
	beta          []float64
	history       *Frame
}

type regStat struct {
	mu  float64
	std float64
}

// Prediction is one predicted row split into its additive components.
type Prediction struct {
	DS       time.Time
	YHat     float64
	Trend    float64
	Seasonal float64
	Extra    float64
}

// New creates an unfitted model.
func New(opts ...Option) *Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Model{cfg: cfg}
}

// AddRegressor registers an extra regressor column. Must be called before Fit.
func (m *Model) AddRegressor(name string) error {
	if m.fitted {
		return ErrAlreadyFitted
	}
	for _, r := range m.regressors {
		if r == name {
			return fmt.Errorf("%w: %s", ErrDuplicateValue, name)
		}
	}
	m.regressors = append(m.regressors, name)
	return nil
}

// Seasonalities returns the names of the seasonalities used by the fitted model.
func (m *Model) Seasonalities() []string {
	out := make([]string, len(m.seasonalities))
	for i, s := range m.seasonalities {
		out[i] = s.name
	}
	return out
}

// Fit estimates the model parameters on history.
func (m *Model) Fit(history *Frame) error {
	if m.fitted {
		return ErrAlreadyFitted
	}
	if history.Len() < 2 {
		return ErrTooFewRows
	}
	if err := history.validate(true, m.regressors); err != nil {
		return fmt.Errorf("timeseries: %w", err)
	}
	h := history.sorted()
	n := h.Len()

	m.start = h.DS[0]
	m.tScale = h.DS[n-1].Sub(h.DS[0]).Seconds()
	if m.tScale <= 0 {
		return ErrZeroTimeSpan
	}
	m.yScale = 0
	for _, v := range h.Y {
		m.yScale = math.Max(m.yScale, math.Abs(v))
	}
	if m.yScale == 0 {
		m.yScale = 1
	}

	t := m.scaleTime(h.DS)
	m.changepoints = placeChangepoints(t, m.cfg.NChangepoints, m.cfg.ChangepointRange)
	m.seasonalities = resolveSeasonalities(m.cfg, h.DS)
	m.regStats = make(map[string]regStat, len(m.regressors))
	for _, name := range m.regressors {
		m.regStats[name] = standardize(h.Regressors[name])
	}

	x, p := m.design(h, t)
	y := make([]float64, n)
	for i := range y {
		y[i] = h.Y[i] / m.yScale
	}

	weights := m.penalties()
	beta, err := solveRidge(x, y, p, weights)
	if err != nil {
		return err
	}
	if len(m.changepoints) > 0 {
		if beta, err = m.sparseChangepoints(x, y, p, weights, beta); err != nil {
			return err
		}
	}
	m.beta = beta
	m.history = h
	m.fitted = true
	return nil
}

// Predict evaluates the fitted model on the rows of df. y is ignored.
func (m *Model) Predict(df *Frame) ([]Prediction, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if err := df.validate(false, m.regressors); err != nil {
		return nil, fmt.Errorf("timeseries: %w", err)
	}
	t := m.scaleTime(df.DS)
	x, p := m.design(df, t)
	nTrend := 2 + len(m.changepoints)
	nSeason := 0
	for _, s := range m.seasonalities {
		nSeason += s.columns()
	}

	out := make([]Prediction, df.Len())
	for i := range out {
		row := x[i*p : (i+1)*p]
		var trend, seasonal, extra float64
		for j := 0; j < p; j++ {
			v := row[j] * m.beta[j]
			switch {
			case j < nTrend:
				trend += v
			case j < nTrend+nSeason:
				seasonal += v
			default:
				extra += v
			}
		}
		out[i] = Prediction{
			DS:       df.DS[i],
			Trend:    trend * m.yScale,
			Seasonal: seasonal * m.yScale,
			Extra:    extra * m.yScale,
			YHat:     (trend + seasonal + extra) * m.yScale,
		}
	}
	return out, nil
}

// MakeFutureFrame returns the fitted history dates followed by periods
// calendar days after the last one. Regressor columns are left to the caller.
func (m *Model) MakeFutureFrame(periods int, includeHistory bool) (*Frame, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	out := &Frame{Regressors: make(map[string][]float64)}
	if includeHistory {
		out.DS = append(out.DS, m.history.DS...)
	}
	last := m.history.DS[m.history.Len()-1]
	for i := 1; i <= periods; i++ {
		out.DS = append(out.DS, last.AddDate(0, 0, i))
	}
	return out, nil
}

func (m *Model) scaleTime(ds []time.Time) []float64 {
	t := make([]float64, len(ds))
	for i, d := range ds {
		t[i] = d.Sub(m.start).Seconds() / m.tScale
	}
	return t
}

// design builds the row-major feature matrix: intercept, slope, changepoint
// hinges, Fourier terms, standardized regressors.
func (m *Model) design(df *Frame, t []float64) ([]float64, int) {
	p := 2 + len(m.changepoints)
	for _, s := range m.seasonalities {
		p += s.columns()
	}
	p += len(m.regressors)

	n := df.Len()
	x := make([]float64, n*p)
	for i := 0; i < n; i++ {
		row := x[i*p : (i+1)*p]
		row[0] = 1
		row[1] = t[i]
		col := 2
		for _, cp := range m.changepoints {
			if t[i] > cp {
				row[col] = t[i] - cp
			}
			col++
		}
		for _, s := range m.seasonalities {
			s.fill(df.DS[i], row[col:col+s.columns()])
			col += s.columns()
		}
		for _, name := range m.regressors {
			st := m.regStats[name]
			row[col] = (df.Regressors[name][i] - st.mu) / st.std
			col++
		}
	}
	return x, p
}

// penalties returns the ridge weight 1/σ² of each coefficient's prior.
func (m *Model) penalties() []float64 {
	var w []float64
	trend := 1 / (m.cfg.TrendPriorScale * m.cfg.TrendPriorScale)
	w = append(w, trend, trend)
	cp := 1 / (m.cfg.ChangepointPriorScale * m.cfg.ChangepointPriorScale)
	for range m.changepoints {
		w = append(w, cp)
	}
	season := 1 / (m.cfg.SeasonalityPriorScale * m.cfg.SeasonalityPriorScale)
	for _, s := range m.seasonalities {
		for j := 0; j < s.columns(); j++ {
			w = append(w, season)
		}
	}
	reg := 1 / (m.cfg.RegressorPriorScale * m.cfg.RegressorPriorScale)
	for range m.regressors {
		w = append(w, reg)
	}
	return w
}

// solveRidge minimizes |Xβ - y|² + Σ w_j β_j² by QR on the system augmented
// with sqrt(w) penalty rows. x is row-major with p columns.
func solveRidge(x, y []float64, p int, w []float64) ([]float64, error) {
	n := len(y)
	a := mat.NewDense(n+p, p, nil)
	b := mat.NewVecDense(n+p, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			a.Set(i, j, x[i*p+j])
		}
		b.SetVec(i, y[i])
	}
	for j := 0; j < p; j++ {
		a.Set(n+j, j, math.Sqrt(w[j]))
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("timeseries: solve: %w", err)
		}
	}
	beta := make([]float64, p)
	for j := range beta {
		v := sol.AtVec(j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("timeseries: solve produced a non-finite coefficient")
		}
		beta[j] = v
	}
	return beta, nil
}

const (
	irlsIterations = 30
	irlsEpsilon    = 1e-3
	irlsTolerance  = 1e-8
	minNoiseVar    = 1e-4
	maxNoiseVar    = 1.0
)

// sparseChangepoints refits under a Laplace prior on the changepoint deltas
// by iteratively reweighted least squares, starting from the Gaussian fit.
// The noise variance is fixed from the residuals of that first fit.
//
// With noise variance σ² the objective is |Xβ - y|² + 2σ²Σ|δ_j|/τ, and each
// |δ_j| is approximated around the previous iterate as δ_j²/2|δ_j'|.
func (m *Model) sparseChangepoints(x, y []float64, p int, weights, beta []float64) ([]float64, error) {
	sigma2 := math.Min(math.Max(residualVariance(x, y, p, beta), minNoiseVar), maxNoiseVar)
	tau := m.cfg.ChangepointPriorScale
	first, last := 2, 2+len(m.changepoints)

	w := append([]float64(nil), weights...)
	for iter := 0; iter < irlsIterations; iter++ {
		for j := first; j < last; j++ {
			w[j] = sigma2 / (tau * (math.Abs(beta[j]) + irlsEpsilon))
		}
		next, err := solveRidge(x, y, p, w)
		if err != nil {
			return nil, err
		}
		var change float64
		for j := range next {
			change = math.Max(change, math.Abs(next[j]-beta[j]))
		}
		beta = next
		if change < irlsTolerance {
			break
		}
	}
	return beta, nil
}

func residualVariance(x, y []float64, p int, beta []float64) float64 {
	var rss float64
	for i, target := range y {
		var fit float64
		for j := 0; j < p; j++ {
			fit += x[i*p+j] * beta[j]
		}
		rss += (target - fit) * (target - fit)
	}
	return rss / float64(len(y))
}

// standardize centres and scales a regressor. Binary columns are left as is
// and constant columns collapse to zero.
func standardize(col []float64) regStat {
	uniq := make(map[float64]struct{})
	for _, v := range col {
		uniq[v] = struct{}{}
		if len(uniq) > 2 {
			break
		}
	}
	if len(uniq) < 2 {
		return regStat{mu: col[0], std: 1}
	}
	if len(uniq) == 2 {
		_, zero := uniq[0]
		_, one := uniq[1]
		if zero && one {
			return regStat{mu: 0, std: 1}
		}
	}
	mu, std := stat.MeanStdDev(col, nil)
	if std == 0 {
		std = 1
	}
	return regStat{mu: mu, std: std}
}
