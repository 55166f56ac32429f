package decode

import "math/big"

// ScaleAmount converts a raw integer amount into a display value using the
// currency's decimal count.
func ScaleAmount(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	value, _ := new(big.Float).Quo(
		new(big.Float).SetInt(raw),
		new(big.Float).SetInt(scale),
	).Float64()
	return value
}
