package reading

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Missing is rendered in place of an absent value.
const Missing = "Err"

// Value is a numeric sample that may be absent.
type Value struct {
	v  float64
	ok bool
}

// Some returns a present value. NaN and infinities are treated as absent.
func Some(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, ok: true}
}

// None returns an absent value.
func None() Value { return Value{} }

func (v Value) Get() (float64, bool) { return v.v, v.ok }

func (v Value) Present() bool { return v.ok }

// Reading is a single temperature/humidity sample.
type Reading struct {
	Timestamp   time.Time
	Temperature Value
	Humidity    Value
}

// Complete reports whether both fields are present.
func (r Reading) Complete() bool {
	return r.Temperature.ok && r.Humidity.ok
}

// Format renders v with exactly one fractional digit, rounding half away
// from zero on the shortest decimal form of the float.
func Format(v Value) string {
	f, ok := v.Get()
	if !ok {
		return Missing
	}
	return decimal.NewFromFloat(f).StringFixed(1)
}
