package usecase

import (
	"context"

	"FinSight/internal/domain/models"
	"FinSight/pkg/util"
)

// Comparator ranks two tickers by percentage return over their history.
type Comparator struct {
	resolver *Resolver
}

func NewComparator(resolver *Resolver) *Comparator {
	return &Comparator{resolver: resolver}
}

// Compare resolves a then b. The first failure is returned and b is not
// resolved when a fails. Ties go to b.
func (c *Comparator) Compare(ctx context.Context, a, b string) (*models.ComparisonResult, error) {
	ra, err := c.resolver.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	rb, err := c.resolver.Resolve(ctx, b)
	if err != nil {
		return nil, err
	}

	pa, err := performance(ra)
	if err != nil {
		return nil, err
	}
	pb, err := performance(rb)
	if err != nil {
		return nil, err
	}

	res := &models.ComparisonResult{First: pa.TickerPerformance, Second: pb.TickerPerformance, Leader: rb.Ticker}
	if pa.ret > pb.ret {
		res.Leader = ra.Ticker
	}
	return res, nil
}

type perf struct {
	models.TickerPerformance
	ret float64 // unrounded, used for ranking
}

func performance(r *models.Resolution) (perf, error) {
	if r.Series.Len() == 0 {
		return perf{}, models.NewError(models.KindInsufficientData, "no rows for %s", r.Ticker)
	}
	first := r.Series.Bars[0].Close
	last := r.Series.Bars[r.Series.Len()-1].Close
	if first <= 0 || !util.IsFinite(first) {
		return perf{}, models.NewError(models.KindInsufficientData, "first close of %s is not positive", r.Ticker)
	}
	ret := (last/first - 1) * 100
	return perf{
		TickerPerformance: models.TickerPerformance{
			Ticker:          r.Ticker,
			LastPrice:       util.Round2(last),
			PeriodReturnPct: util.Round2(ret),
			Source:          r.Source,
		},
		ret: ret,
	}, nil
}
