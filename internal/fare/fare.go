// Package fare prices a booking request. Calculators are pure: the same
// quote always yields the same amount, and adding a passenger never makes
// the total smaller.
package fare

import (
	"fmt"
	"time"

	"railway-booking/internal/data/entity"
	"railway-booking/pkg/utils"

	"github.com/shopspring/decimal"
)

const (
	PolicyFlat       = "flat"
	PolicyConcession = "concession"
)

// Quote carries everything a policy may look at. Ages has one entry per passenger.
type Quote struct {
	Train       *entity.Train
	JourneyDate time.Time
	Ages        []int
}

type Calculator interface {
	Fare(q Quote) decimal.Decimal
}

// Flat charges the same base fare for every seat
type Flat struct {
	BaseFarePerSeat decimal.Decimal
}

func (f Flat) Fare(q Quote) decimal.Decimal {
	return f.BaseFarePerSeat.Mul(decimal.NewFromInt(int64(len(q.Ages)))).Round(2)
}

// Concession discounts children and seniors. A passenger aged at most ChildAge
// pays Base*ChildRate; one aged at least SeniorAge pays Base*SeniorRate.
type Concession struct {
	Base       decimal.Decimal
	ChildAge   int
	ChildRate  decimal.Decimal
	SeniorAge  int
	SeniorRate decimal.Decimal
}

func (c Concession) Fare(q Quote) decimal.Decimal {
	total := decimal.Zero
	for _, age := range q.Ages {
		total = total.Add(c.seat(age))
	}
	return total.Round(2)
}

func (c Concession) seat(age int) decimal.Decimal {
	switch {
	case age <= c.ChildAge:
		return c.Base.Mul(c.ChildRate)
	case age >= c.SeniorAge:
		return c.Base.Mul(c.SeniorRate)
	default:
		return c.Base
	}
}

// New builds the calculator selected by the fare configuration
func New(cfg utils.FareConfig) (Calculator, error) {
	if cfg.BaseFarePerSeat.IsNegative() {
		return nil, fmt.Errorf("base fare must not be negative, got %s", cfg.BaseFarePerSeat)
	}

	switch cfg.Policy {
	case PolicyFlat, "":
		return Flat{BaseFarePerSeat: cfg.BaseFarePerSeat}, nil
	case PolicyConcession:
		if cfg.ChildRate.IsNegative() || cfg.SeniorRate.IsNegative() {
			return nil, fmt.Errorf("concession rates must not be negative")
		}
		return Concession{
			Base:       cfg.BaseFarePerSeat,
			ChildAge:   cfg.ChildAge,
			ChildRate:  cfg.ChildRate,
			SeniorAge:  cfg.SeniorAge,
			SeniorRate: cfg.SeniorRate,
		}, nil
	default:
		return nil, fmt.Errorf("unknown fare policy %q", cfg.Policy)
	}
}
