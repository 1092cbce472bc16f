package native

import (
	"fmt"
	"math/big"
)

// DecodeUint64 reads an unsigned big-endian integer that must fit in 64 bits.
func DecodeUint64(b []byte) (uint64, error) {
	v := new(big.Int).SetBytes(b)
	if !v.IsUint64() {
		return 0, fmt.Errorf("value %s overflows 64 bits", v.String())
	}
	return v.Uint64(), nil
}

// DecodeInt reads an unsigned big-endian integer that must fit in an int.
func DecodeInt(b []byte) (int, error) {
	v, err := DecodeUint64(b)
	if err != nil {
		return 0, err
	}
	if v > uint64(int(^uint(0)>>1)) {
		return 0, fmt.Errorf("value %d overflows int", v)
	}
	return int(v), nil
}

// EncodeUint64 is the inverse of DecodeUint64, used by core implementations.
func EncodeUint64(v uint64) []byte {
	return new(big.Int).SetUint64(v).Bytes()
}
