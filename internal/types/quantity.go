package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Quantity is a 64-bit unsigned chain quantity (block number, block timestamp,
// vote total, token id). It marshals to a decimal JSON string so that
// consumers reading the API as double-precision JSON numbers cannot lose
// precision above 2^53.
type Quantity uint64

// MarshalJSON renders the quantity as a quoted decimal string.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(q), 10) + `"`), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	*q = Quantity(v)
	return nil
}

// String returns the decimal rendering.
func (q Quantity) String() string {
	return strconv.FormatUint(uint64(q), 10)
}
