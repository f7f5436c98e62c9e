package indicator

import "strconv"

// EMA calculates an Exponential Moving Average with an SMA seed: the first
// value is the plain average of the first span closes, after which
// EMA = close*multiplier + prev*(1-multiplier) with multiplier 2/(span+1).
type EMA struct {
	span       int
	multiplier float64
	current    float64
	count      int
	sum        float64
}

// NewEMA creates a new EMA indicator with the given span.
func NewEMA(span int) *EMA {
	return &EMA{
		span:       span,
		multiplier: 2.0 / float64(span+1),
	}
}

func (e *EMA) Name() string { return "EMA_" + strconv.Itoa(e.span) }

func (e *EMA) Update(close float64) {
	e.count++

	if e.count <= e.span {
		// Accumulate for the initial SMA seed
		e.sum += close
		if e.count == e.span {
			e.current = e.sum / float64(e.span)
		}
		return
	}

	e.current = (close * e.multiplier) + (e.current * (1 - e.multiplier))
}

func (e *EMA) Value() float64 { return e.current }
func (e *EMA) Ready() bool    { return e.count >= e.span }
