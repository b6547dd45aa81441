package timeseries

import (
	"errors"
	"math"
	"testing"
	"time"
)

func dailyFrame(n int, y func(i int) float64) *Frame {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFrame(n)
	for i := 0; i < n; i++ {
		f.DS = append(f.DS, start.AddDate(0, 0, i))
		f.Y = append(f.Y, y(i))
	}
	return f
}

func TestFitRecoversLinearTrend(t *testing.T) {
	hist := dailyFrame(40, func(i int) float64 { return 100 + 2*float64(i) })
	m := New(WithYearlySeasonality(Off), WithWeeklySeasonality(Off), WithDailySeasonality(Off))
	if err := m.Fit(hist); err != nil {
		t.Fatalf("fit: %v", err)
	}
	future, err := m.MakeFutureFrame(5, false)
	if err != nil {
		t.Fatalf("future: %v", err)
	}
	preds, err := m.Predict(future)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i, p := range preds {
		want := 100 + 2*float64(40+i)
		if math.Abs(p.YHat-want) > 0.5 {
			t.Fatalf("row %d: got %.3f want %.3f", i, p.YHat, want)
		}
	}
}

func TestFitFollowsLateTrendChange(t *testing.T) {
	// a year of rising prices that turn down at row 221 and keep falling
	kink := func(i int) float64 {
		if i <= 221 {
			return 100 + 0.2*float64(i)
		}
		return 144.2 - 0.3*float64(i-221)
	}
	hist := dailyFrame(365, kink)
	m := New(WithYearlySeasonality(Off), WithWeeklySeasonality(Off), WithDailySeasonality(Off))
	if err := m.Fit(hist); err != nil {
		t.Fatalf("fit: %v", err)
	}
	future, err := m.MakeFutureFrame(5, false)
	if err != nil {
		t.Fatalf("future: %v", err)
	}
	preds, err := m.Predict(future)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	last := hist.Y[len(hist.Y)-1]
	if math.Abs(preds[0].YHat-kink(365)) > 1.5 {
		t.Fatalf("first step: got %.3f want near %.3f (last close %.3f)", preds[0].YHat, kink(365), last)
	}
	if slope := (preds[4].YHat - preds[0].YHat) / 4; math.Abs(slope+0.3) > 0.1 {
		t.Fatalf("forecast slope: got %.3f want -0.3", slope)
	}
}

func TestFitRecoversWeeklyPattern(t *testing.T) {
	hist := dailyFrame(56, func(i int) float64 {
		return 50 + 3*math.Sin(2*math.Pi*float64(i)/7)
	})
	m := New(WithYearlySeasonality(Off), WithDailySeasonality(Off))
	if err := m.Fit(hist); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if got := m.Seasonalities(); len(got) != 1 || got[0] != "weekly" {
		t.Fatalf("expected weekly seasonality only, got %v", got)
	}
	preds, err := m.Predict(hist)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i, p := range preds {
		if math.Abs(p.YHat-hist.Y[i]) > 0.1 {
			t.Fatalf("row %d: got %.3f want %.3f", i, p.YHat, hist.Y[i])
		}
	}
}

func TestFitWithRegressor(t *testing.T) {
	hist := dailyFrame(30, func(i int) float64 { return 0 })
	vol := make([]float64, hist.Len())
	for i := range vol {
		vol[i] = 1000 + float64((i*37)%1000)
		hist.Y[i] = 50 + 0.01*vol[i]
	}
	hist.SetRegressor("volume", vol)

	m := New(WithYearlySeasonality(Off), WithWeeklySeasonality(Off), WithDailySeasonality(Off))
	if err := m.AddRegressor("volume"); err != nil {
		t.Fatalf("add regressor: %v", err)
	}
	if err := m.Fit(hist); err != nil {
		t.Fatalf("fit: %v", err)
	}
	preds, err := m.Predict(hist)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	for i, p := range preds {
		if math.Abs(p.YHat-hist.Y[i]) > 0.2 {
			t.Fatalf("row %d: got %.3f want %.3f", i, p.YHat, hist.Y[i])
		}
	}
}

func TestAutoSeasonalityRules(t *testing.T) {
	hist := dailyFrame(20, func(i int) float64 { return float64(i) })
	m := New()
	if err := m.Fit(hist); err != nil {
		t.Fatalf("fit: %v", err)
	}
	got := m.Seasonalities()
	if len(got) != 1 || got[0] != "weekly" {
		t.Fatalf("daily history of 20 days should only enable weekly, got %v", got)
	}
}

func TestModelErrors(t *testing.T) {
	m := New()
	if _, err := m.Predict(dailyFrame(3, func(int) float64 { return 1 })); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if _, err := m.MakeFutureFrame(7, true); !errors.Is(err, ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if err := m.Fit(dailyFrame(1, func(int) float64 { return 1 })); !errors.Is(err, ErrTooFewRows) {
		t.Fatalf("expected ErrTooFewRows, got %v", err)
	}

	m = New()
	if err := m.AddRegressor("volume"); err != nil {
		t.Fatalf("add regressor: %v", err)
	}
	if err := m.AddRegressor("volume"); !errors.Is(err, ErrDuplicateValue) {
		t.Fatalf("expected ErrDuplicateValue, got %v", err)
	}
	if err := m.Fit(dailyFrame(10, func(i int) float64 { return float64(i) })); err == nil {
		t.Fatalf("expected error for missing regressor column")
	}

	m = New()
	bad := dailyFrame(10, func(i int) float64 { return float64(i) })
	bad.Y[3] = math.NaN()
	if err := m.Fit(bad); err == nil {
		t.Fatalf("expected error for NaN target")
	}
}

func TestMakeFutureFrame(t *testing.T) {
	hist := dailyFrame(10, func(i int) float64 { return float64(i) })
	m := New()
	if err := m.Fit(hist); err != nil {
		t.Fatalf("fit: %v", err)
	}
	f, err := m.MakeFutureFrame(7, true)
	if err != nil {
		t.Fatalf("future: %v", err)
	}
	if f.Len() != 17 {
		t.Fatalf("expected 17 rows, got %d", f.Len())
	}
	last := hist.DS[9]
	for i := 0; i < 7; i++ {
		want := last.AddDate(0, 0, i+1)
		if !f.DS[10+i].Equal(want) {
			t.Fatalf("row %d: got %s want %s", 10+i, f.DS[10+i], want)
		}
	}
}

func TestPlaceChangepoints(t *testing.T) {
	tt := make([]float64, 100)
	for i := range tt {
		tt[i] = float64(i) / 99
	}
	cps := placeChangepoints(tt, 25, 0.8)
	if len(cps) != 25 {
		t.Fatalf("expected 25 changepoints, got %d", len(cps))
	}
	if cps[len(cps)-1] > 0.8 {
		t.Fatalf("changepoints must stay within the first 80%% of history, last=%.3f", cps[len(cps)-1])
	}
	if got := placeChangepoints(tt[:5], 25, 0.8); len(got) != 3 {
		t.Fatalf("expected 3 changepoints for 5 rows, got %d", len(got))
	}
}

func TestStandardize(t *testing.T) {
	if st := standardize([]float64{5, 5, 5}); st.mu != 5 || st.std != 1 {
		t.Fatalf("constant column: %+v", st)
	}
	if st := standardize([]float64{0, 1, 1, 0}); st.mu != 0 || st.std != 1 {
		t.Fatalf("binary column: %+v", st)
	}
	st := standardize([]float64{1, 2, 3, 4})
	if math.Abs(st.mu-2.5) > 1e-9 || math.Abs(st.std-math.Sqrt(5.0/3.0)) > 1e-9 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}
