package indicator

import "math"

// RSI calculates the Relative Strength Index using Wilder's smoothing
// method. Update is O(1) per bar — no history scans.
type RSI struct {
	period    int
	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
	current   float64
}

// NewRSI creates a new RSI indicator with the given period (typically 14).
func NewRSI(period int) *RSI {
	return &RSI{period: period, current: math.NaN()}
}

func (r *RSI) Update(close float64) {
	r.count++

	if r.count == 1 {
		// First bar — just record price, no delta yet
		r.prevClose = close
		return
	}

	delta := close - r.prevClose
	r.prevClose = close

	gain := 0.0
	loss := 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.count <= r.period+1 {
		// Accumulation phase: build initial averages
		r.avgGain += gain
		r.avgLoss += loss

		if r.count == r.period+1 {
			// First RSI value using SMA seed
			r.avgGain /= float64(r.period)
			r.avgLoss /= float64(r.period)
			r.current = r.compute()
		}
		return
	}

	// Wilder's smoothing: avgGain = (prevAvgGain * (period-1) + gain) / period
	p := float64(r.period)
	r.avgGain = (r.avgGain*(p-1) + gain) / p
	r.avgLoss = (r.avgLoss*(p-1) + loss) / p
	r.current = r.compute()
}

// compute maps the current averages to [0, 100]. A flat or all-gain
// window (avgLoss == 0) is defined as 100, not NaN or +Inf.
func (r *RSI) compute() float64 {
	if r.avgLoss == 0 {
		return 100.0
	}
	rs := r.avgGain / r.avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// Value returns the current RSI, or NaN for the first period bars.
func (r *RSI) Value() float64 { return r.current }

func (r *RSI) Ready() bool { return r.count > r.period }
