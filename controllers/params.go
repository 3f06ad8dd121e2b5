package controllers

import (
	"bytes"
	"fmt"
	"strconv"
)

// Numeric request fields accept either a JSON number or a numeric string
// ("qty": 5 and "qty": "5" both work). Anything else fails decoding and the
// handler answers 400.

// FlexInt is an int that also unmarshals from a numeric JSON string.
// Fractional input is truncated toward zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "null" || s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid integer value %q", s)
	}
	*n = FlexInt(int(v))
	return nil
}

// FlexFloat is a float64 that also unmarshals from a numeric JSON string.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "null" || s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q", s)
	}
	*f = FlexFloat(v)
	return nil
}
