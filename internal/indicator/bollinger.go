package indicator

import "math"

// Bollinger calculates Bollinger Bands (basis, upper, lower, width)
// over a rolling window using running sum and sum-of-squares.
// Standard deviation is the population stddev over the window, matching
// the incremental formulation. Width is raw (upper - lower).
type Bollinger struct {
	period int
	k      float64
	buf    []float64
	idx    int
	count  int
	sum    float64
	sumSq  float64
}

// NewBollinger creates Bollinger Bands with the given period and band
// multiplier (typically 20 and 2.0).
func NewBollinger(period int, k float64) *Bollinger {
	return &Bollinger{
		period: period,
		k:      k,
		buf:    make([]float64, period),
	}
}

func (b *Bollinger) Update(close float64) {
	if b.count >= b.period {
		old := b.buf[b.idx]
		b.sum -= old
		b.sumSq -= old * old
	}

	b.buf[b.idx] = close
	b.sum += close
	b.sumSq += close * close
	b.idx = (b.idx + 1) % b.period
	b.count++
}

func (b *Bollinger) Ready() bool { return b.count >= b.period }

// Value returns the basis (the window SMA), or NaN during warm-up.
func (b *Bollinger) Value() float64 {
	basis, _, _, _ := b.Bands()
	return basis
}

// Bands returns basis, upper, lower, and width. All NaN during warm-up.
// Whenever defined, lower <= basis <= upper holds.
func (b *Bollinger) Bands() (basis, upper, lower, width float64) {
	if b.count < b.period {
		nan := math.NaN()
		return nan, nan, nan, nan
	}

	n := float64(b.period)
	mean := b.sum / n
	variance := b.sumSq/n - mean*mean
	if variance < 0 {
		// Floating-point cancellation on near-constant series
		variance = 0
	}
	sd := math.Sqrt(variance)

	basis = mean
	upper = basis + b.k*sd
	lower = basis - b.k*sd
	width = upper - lower
	return basis, upper, lower, width
}
