package indicator

import "strconv"

// ROC calculates the percentage rate of change of close versus the close
// lookback periods earlier: 100 * (c_t - c_{t-lookback}) / c_{t-lookback}.
// Keeps a circular buffer of the last lookback closes.
type ROC struct {
	lookback int
	buf      []float64
	idx      int
	count    int
	current  float64
}

// NewROC creates a new ROC indicator with the given lookback.
func NewROC(lookback int) *ROC {
	return &ROC{
		lookback: lookback,
		buf:      make([]float64, lookback),
	}
}

func (r *ROC) Name() string { return "ROC_" + strconv.Itoa(r.lookback) }

func (r *ROC) Update(close float64) {
	if r.count >= r.lookback {
		// The slot about to be overwritten holds the close from
		// exactly lookback updates ago.
		ref := r.buf[r.idx]
		if ref != 0 {
			r.current = 100 * (close - ref) / ref
		}
	}

	r.buf[r.idx] = close
	r.idx = (r.idx + 1) % r.lookback
	r.count++
}

func (r *ROC) Value() float64 { return r.current }
func (r *ROC) Ready() bool    { return r.count > r.lookback }
