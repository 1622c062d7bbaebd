package tx

// Schnorr witness bytes per input, not covered by SigningBytes.
const witnessBytesPerInput = 64 + 33

// RequiredFee returns the minimum fee for a fully built transaction at the
// given fee rate (base units per byte). Sizing uses SigningBytes plus a
// fixed witness allowance per input, since signatures are excluded from the
// signing serialization.
func RequiredFee(transaction *Transaction, feeRate uint64) uint64 {
	size := len(transaction.SigningBytes()) + witnessBytesPerInput*len(transaction.Inputs)
	return uint64(size) * feeRate
}

// EstimateFee returns an upper-bound fee for a transaction with the given
// shape before its inputs are final. Each output is costed at the worst
// case seen in this client: capacity(8) + lock(1+4+20) + type flag/script
// (1+1+4+32) + data length prefix(4) + dataBytes.
func EstimateFee(numInputs, numOutputs, dataBytes int, feeRate uint64) uint64 {
	const overhead = 4 + 4 + 4                     // version + input count + output count
	const perInput = 36 + witnessBytesPerInput     // outpoint + witness
	const perOutput = 8 + (1 + 4 + 20) + (1 + 1 + 4 + 32) + 4

	size := overhead + perInput*numInputs + perOutput*numOutputs + dataBytes
	return uint64(size) * feeRate
}
