package pricing

import (
	"math/big"
	"strconv"
)

var hundred = big.NewRat(100, 1)

// RoundHalfUp rounds v to two decimals, ties away from zero. It works on the
// shortest decimal form of v so 2.675 rounds to 2.68.
func RoundHalfUp(v float64) float64 {
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return v
	}
	r.Mul(r, hundred)

	num, den := r.Num(), r.Denom()
	q, m := new(big.Int).QuoRem(num, den, new(big.Int))
	twice := new(big.Int).Mul(new(big.Int).Abs(m), big.NewInt(2))
	if twice.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	out, _ := new(big.Rat).SetFrac(q, big.NewInt(100)).Float64()
	return out
}
