// Package indicator provides technical indicator calculations over close-price
// sequences.
//
// All indicators implement the Indicator interface, receiving closes one at a
// time and producing float64 values. Updates are O(1), no history scans.
package indicator

// Indicator is the interface for all streaming indicators.
type Indicator interface {
	// Name returns the indicator name (e.g., "EMA_5", "RSI_7").
	Name() string

	// Update feeds the next close price and recalculates.
	Update(close float64)

	// Value returns the current calculated value. Returns 0 if not enough data.
	Value() float64

	// Ready returns true once enough data has been accumulated for the
	// value to be defined.
	Ready() bool
}
