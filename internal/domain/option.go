package domain

import (
	"fmt"
	"math"
	"time"
)

// PayoutType represents how the payout of an option is derived from a price path
type PayoutType string

const (
	PayoutTypeEuropean PayoutType = "European"
	PayoutTypeAsian    PayoutType = "Asian"
)

// Valid reports whether the payout type is one the workers know how to evaluate
func (p PayoutType) Valid() bool {
	switch p {
	case PayoutTypeEuropean, PayoutTypeAsian:
		return true
	}
	return false
}

// OptionSpec describes the option being priced. It is copied into every job request.
type OptionSpec struct {
	Name         string     `db:"name" json:"name"`
	PayoutType   PayoutType `db:"payout_type" json:"payout_type"`
	InterestRate float64    `db:"interest_rate" json:"interest_rate"`
	Volatility   float64    `db:"volatility" json:"volatility"`
	StrikePrice  float64    `db:"strike_price" json:"strike_price"`
	Duration     int        `db:"duration" json:"duration"`
	InitialPrice float64    `db:"initial_price" json:"initial_price"`
}

// Validate checks the option parameters a path generator depends on
func (o OptionSpec) Validate() error {
	switch {
	case o.Name == "":
		return fmt.Errorf("option name is required")
	case !o.PayoutType.Valid():
		return fmt.Errorf("unknown payout type %q", o.PayoutType)
	case o.Duration < 1:
		return fmt.Errorf("duration must be at least 1, got %d", o.Duration)
	case !finite(o.InterestRate):
		return fmt.Errorf("interest rate must be finite, got %g", o.InterestRate)
	case !finite(o.StrikePrice):
		return fmt.Errorf("strike price must be finite, got %g", o.StrikePrice)
	case !(o.Volatility >= 0) || math.IsInf(o.Volatility, 1):
		return fmt.Errorf("volatility must be finite and not negative, got %g", o.Volatility)
	case !(o.InitialPrice > 0) || math.IsInf(o.InitialPrice, 1):
		return fmt.Errorf("initial price must be finite and positive, got %g", o.InitialPrice)
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

type OptionTable struct {
	Name         string
	PayoutType   string
	InterestRate string
	Volatility   string
	StrikePrice  string
	Duration     string
	InitialPrice string
	CreatedAt    string
	UpdatedAt    string
}

func GetOptionTable() OptionTable {
	return OptionTable{
		Name:         "name",
		PayoutType:   "payout_type",
		InterestRate: "interest_rate",
		Volatility:   "volatility",
		StrikePrice:  "strike_price",
		Duration:     "duration",
		InitialPrice: "initial_price",
		CreatedAt:    "created_at",
		UpdatedAt:    "updated_at",
	}
}

func (OptionTable) TableName() string {
	return "options"
}

// OptionRecord is an option definition stored in the catalog
type OptionRecord struct {
	OptionSpec
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
