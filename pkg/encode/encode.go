// Package encode packs two race times into the 256 bit value stored by the
// racing contract: player 1 in the high 128 bits, player 2 in the low 128 bits.
package encode

import (
	"errors"
	"fmt"
	"math/big"
)

const (
	HalfBits = 128
	// HexDigits is the width of the textual form without the 0x prefix.
	HexDigits = 64
)

var (
	ErrTimeOverflow  = errors.New("race time does not fit into 128 bits")
	ErrInvalidPacked = errors.New("invalid packed result")
)

var (
	halfMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), HalfBits), big.NewInt(1))
	fullMax  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 2*HalfBits), big.NewInt(1))
)

// Pack returns (t1 << 128) | t2. Both values must be in [0, 2^128).
func Pack(t1, t2 *big.Int) (*big.Int, error) {
	if err := checkHalf("player 1", t1); err != nil {
		return nil, err
	}
	if err := checkHalf("player 2", t2); err != nil {
		return nil, err
	}
	ret := new(big.Int).Lsh(t1, HalfBits)
	return ret.Or(ret, t2), nil
}

// PackTimes packs millisecond race times. uint64 always fits into one half.
func PackTimes(t1, t2 uint64) *big.Int {
	ret := new(big.Int).Lsh(new(big.Int).SetUint64(t1), HalfBits)
	return ret.Or(ret, new(big.Int).SetUint64(t2))
}

// Unpack splits v into (v >> 128, v & (2^128-1)).
func Unpack(v *big.Int) (t1, t2 *big.Int, err error) {
	if v == nil || v.Sign() < 0 || v.Cmp(fullMax) > 0 {
		return nil, nil, fmt.Errorf("%w: not an unsigned 256 bit value", ErrInvalidPacked)
	}
	return new(big.Int).Rsh(v, HalfBits), new(big.Int).And(v, halfMask), nil
}

// UnpackTimes is Unpack for values produced by PackTimes.
func UnpackTimes(v *big.Int) (t1, t2 uint64, err error) {
	a, b, err := Unpack(v)
	if err != nil {
		return 0, 0, err
	}
	if !a.IsUint64() || !b.IsUint64() {
		return 0, 0, fmt.Errorf("%w: time exceeds 64 bits", ErrInvalidPacked)
	}
	return a.Uint64(), b.Uint64(), nil
}

// Hex renders v as 0x followed by 64 zero padded lowercase hex digits.
func Hex(v *big.Int) string {
	return fmt.Sprintf("0x%064x", v)
}

// ParseHex accepts the form produced by Hex: one optional 0x prefix followed
// by hex digits only. Shorter input is treated as zero padded.
func ParseHex(s string) (*big.Int, error) {
	digits := s
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		digits = s[2:]
	}
	if digits == "" || len(digits) > HexDigits || !isHex(digits) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPacked, s)
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPacked, s)
	}
	return v, nil
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// ParseDecimal parses the decimal form used in json responses.
func ParseDecimal(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.Cmp(fullMax) > 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPacked, s)
	}
	return v, nil
}

func checkHalf(name string, v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.BitLen() > HalfBits {
		return fmt.Errorf("%w: %s=%v", ErrTimeOverflow, name, v)
	}
	return nil
}
