package models

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// MicroTari is a non-negative amount in the smallest currency unit.
// The zero value is 0. A MicroTari never shares its backing integer with a caller.
type MicroTari struct {
	v *big.Int
}

// NewMicroTari copies v into a new amount. Negative values are rejected.
func NewMicroTari(v *big.Int) (MicroTari, error) {
	if v == nil {
		return MicroTari{}, nil
	}
	if v.Sign() < 0 {
		return MicroTari{}, fmt.Errorf("negative amount %s", v.String())
	}
	return MicroTari{v: new(big.Int).Set(v)}, nil
}

// MicroTariFromUint64 builds an amount from a machine integer.
func MicroTariFromUint64(v uint64) MicroTari {
	return MicroTari{v: new(big.Int).SetUint64(v)}
}

// ParseMicroTari parses a base-10 amount.
func ParseMicroTari(s string) (MicroTari, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return MicroTari{}, fmt.Errorf("invalid amount %q", s)
	}
	return NewMicroTari(v)
}

// BigInt returns a copy of the underlying integer.
func (m MicroTari) BigInt() *big.Int {
	if m.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(m.v)
}

func (m MicroTari) Clone() MicroTari {
	if m.v == nil {
		return MicroTari{}
	}
	return MicroTari{v: new(big.Int).Set(m.v)}
}

func (m MicroTari) Cmp(o MicroTari) int {
	return m.BigInt().Cmp(o.BigInt())
}

func (m MicroTari) Equal(o MicroTari) bool {
	return m.Cmp(o) == 0
}

func (m MicroTari) Add(o MicroTari) MicroTari {
	return MicroTari{v: new(big.Int).Add(m.BigInt(), o.BigInt())}
}

// Sub subtracts o, failing rather than going negative.
func (m MicroTari) Sub(o MicroTari) (MicroTari, error) {
	return NewMicroTari(new(big.Int).Sub(m.BigInt(), o.BigInt()))
}

func (m MicroTari) IsZero() bool {
	return m.v == nil || m.v.Sign() == 0
}

func (m MicroTari) String() string {
	if m.v == nil {
		return "0"
	}
	return m.v.String()
}

// MarshalJSON encodes the amount as a decimal string so no precision is lost in
// JavaScript clients.
func (m MicroTari) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MicroTari) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a string: %w", err)
	}
	parsed, err := ParseMicroTari(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
