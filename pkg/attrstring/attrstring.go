// Package attrstring handles the fixed width digit string a race request is
// transported in:
//
//	CCWW + 8x2 digits player 1 + 8x2 digits player 2
//
// CC is the 0-based circuit index used by the contract, WW the weather score.
// Attributes are in contract order.
package attrstring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/furyracing/race-engine/pkg/model"
)

const (
	fieldWidth = 2
	attrCount  = 8
	// Length of a complete attribute string.
	Length = 2*fieldWidth + 2*attrCount*fieldWidth
)

var (
	ErrInvalidLength = errors.New("invalid attribute string length")
	ErrInvalidDigit  = errors.New("invalid attribute string digit")
)

type Request struct {
	// CircuitIndex is the 0-based contract index, see track.ContractIndex.
	CircuitIndex int
	WeatherScore int
	Player1      model.CarAttributes
	Player2      model.CarAttributes
}

func Parse(s string) (*Request, error) {
	if len(s) != Length {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidLength, len(s), Length)
	}
	fields := make([]int, 0, Length/fieldWidth)
	for i := 0; i < Length; i += fieldWidth {
		part := s[i : i+fieldWidth]
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidDigit, part, i)
			}
		}
		v, _ := strconv.Atoi(part)
		fields = append(fields, v)
	}
	return &Request{
		CircuitIndex: fields[0],
		WeatherScore: fields[1],
		Player1:      model.FromValues([attrCount]int(fields[2 : 2+attrCount])),
		Player2:      model.FromValues([attrCount]int(fields[2+attrCount:])),
	}, nil
}

// Format is the inverse of Parse. Every value must be within 0..99.
func Format(r *Request) (string, error) {
	values := []int{r.CircuitIndex, r.WeatherScore}
	p1, p2 := r.Player1.Values(), r.Player2.Values()
	values = append(values, p1[:]...)
	values = append(values, p2[:]...)

	var b strings.Builder
	b.Grow(Length)
	for i, v := range values {
		if v < 0 || v > 99 {
			return "", fmt.Errorf("%w: field %d value %d needs more than two digits", ErrInvalidDigit, i, v)
		}
		fmt.Fprintf(&b, "%02d", v)
	}
	return b.String(), nil
}
