package ledger

import "fmt"

// Numeric is an exact fixed-point rational used for monetary amounts and
// quantities. It is persisted as two integer columns rather than a floating
// type.
type Numeric struct {
	Num   int64
	Denom int64
}

// NewNumeric builds a rational from numerator and denominator.
func NewNumeric(num, denom int64) Numeric {
	return Numeric{Num: num, Denom: denom}
}

// ZeroNumeric is the 0/1 value.
func ZeroNumeric() Numeric {
	return Numeric{Num: 0, Denom: 1}
}

func (n Numeric) String() string {
	return fmt.Sprintf("%d/%d", n.Num, n.Denom)
}
