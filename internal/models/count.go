package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Count is an integer the API may send as 120, 120.0 or "120". Fractional
// values are rounded half away from zero; null leaves the count at zero.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid count %s: %w", data, err)
	}
	*c = Count(d.Round(0).IntPart())
	return nil
}

// Int returns the count as a plain int
func (c Count) Int() int { return int(c) }
