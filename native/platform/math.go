package platform

import "math/big"

var bpsDenominator = big.NewInt(10_000)

// splitFee divides the amount into the creator share and the platform cut at
// the configured basis points. The cut rounds down; the creator share absorbs
// the remainder so the two always sum to the original amount.
func splitFee(amount *big.Int, feeBps uint32) (creatorShare, platformCut *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0), big.NewInt(0)
	}
	if feeBps == 0 {
		return new(big.Int).Set(amount), big.NewInt(0)
	}
	cut := new(big.Int).Mul(amount, big.NewInt(int64(feeBps)))
	cut = cut.Div(cut, bpsDenominator)
	share := new(big.Int).Sub(amount, cut)
	return share, cut
}
