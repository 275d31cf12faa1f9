package models

import (
	"database/sql/driver"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// Amount is a big-integer token amount stored as a NUMERIC(78,0) column.
// Token amounts use 10^18 base units and do not fit in uint64.
type Amount struct {
	sdkmath.Int
}

func NewAmount(i sdkmath.Int) Amount {
	return Amount{Int: i}
}

func ZeroAmount() Amount {
	return Amount{Int: sdkmath.ZeroInt()}
}

func (a Amount) Value() (driver.Value, error) {
	if a.Int.IsNil() {
		return "0", nil
	}
	return a.Int.String(), nil
}

func (a *Amount) Scan(src interface{}) error {
	if src == nil {
		a.Int = sdkmath.ZeroInt()
		return nil
	}

	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case int64:
		a.Int = sdkmath.NewInt(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}

	i, ok := sdkmath.NewIntFromString(raw)
	if !ok {
		return fmt.Errorf("invalid amount %q", raw)
	}
	a.Int = i
	return nil
}
