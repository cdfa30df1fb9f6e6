package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Calculator is a closed set of price calculators. Implementations live
// in this package only; configuration picks one by name and is rejected
// if the name or its parameters are malformed.
type Calculator interface {
	price(nRows int) decimal.Decimal
	validate() error
}

// LinearWithMinThreshold prices a report linearly per row with a floor.
type LinearWithMinThreshold struct {
	MinThreshold decimal.Decimal `json:"min_threshold"`
	RowPrice     decimal.Decimal `json:"row_price"`
}

func (c LinearWithMinThreshold) price(nRows int) decimal.Decimal {
	p := c.RowPrice.Mul(decimal.NewFromInt(int64(nRows)))
	if p.LessThan(c.MinThreshold) {
		return c.MinThreshold
	}
	return p
}

func (c LinearWithMinThreshold) validate() error {
	if c.MinThreshold.IsNegative() || c.RowPrice.IsNegative() {
		return errors.New("linear calculator: negative threshold or row price")
	}
	return nil
}

// Thresholds prices a report by row-count bucket: prices[i] for the
// first threshold >= nRows, the last price when nRows exceeds them all.
type Thresholds struct {
	NRowsThresholds []int             `json:"n_rows_thresholds"`
	Prices          []decimal.Decimal `json:"prices"`
}

func (c Thresholds) price(nRows int) decimal.Decimal {
	for i, thr := range c.NRowsThresholds {
		if nRows <= thr {
			return c.Prices[i]
		}
	}
	return c.Prices[len(c.Prices)-1]
}

func (c Thresholds) validate() error {
	if len(c.Prices) != len(c.NRowsThresholds)+1 {
		return fmt.Errorf(
			"thresholds calculator: %d thresholds require %d prices, got %d",
			len(c.NRowsThresholds), len(c.NRowsThresholds)+1, len(c.Prices),
		)
	}
	for i := 1; i < len(c.NRowsThresholds); i++ {
		if c.NRowsThresholds[i] <= c.NRowsThresholds[i-1] {
			return errors.New("thresholds calculator: thresholds must be strictly ascending")
		}
	}
	return nil
}

// Strategy binds a calculator to the moment it became effective.
type Strategy struct {
	StartedAt  time.Time
	Calculator Calculator
}

// Engine selects a strategy by report creation time and computes the
// price for a given row count.
type Engine struct {
	strategies []Strategy
}

// New validates every strategy and returns an Engine with the
// strategies ordered ascending by effective-from time. Malformed
// configuration is rejected here rather than at first price computation.
func New(strategies []Strategy) (*Engine, error) {
	if len(strategies) == 0 {
		return nil, errors.New("pricing: no strategies configured")
	}
	for i, s := range strategies {
		if s.Calculator == nil {
			return nil, fmt.Errorf("pricing: strategy %d has no calculator", i)
		}
		if err := s.Calculator.validate(); err != nil {
			return nil, fmt.Errorf("pricing: strategy %d: %w", i, err)
		}
	}
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartedAt.Before(sorted[j].StartedAt)
	})
	return &Engine{strategies: sorted}, nil
}

// Calc picks the most recent strategy effective at createdAt and
// returns its price for nRows, rounded to 2 decimal places. A createdAt
// predating every strategy is a configuration error, not a zero price.
func (e *Engine) Calc(nRows int, createdAt time.Time) (decimal.Decimal, error) {
	for i := len(e.strategies) - 1; i >= 0; i-- {
		s := e.strategies[i]
		if !s.StartedAt.After(createdAt) {
			return s.Calculator.price(nRows).Round(2), nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf(
		"pricing: no strategy covers creation time %s", createdAt.Format(time.RFC3339),
	)
}

// strategyConfig is the wire form of one strategy in the config JSON.
type strategyConfig struct {
	StartedAt  time.Time       `json:"started_at"`
	Calculator string          `json:"calculator"`
	Params     json.RawMessage `json:"params"`
}

// Calculator names accepted in configuration.
const (
	calcLinearWithMinThreshold = "linear_with_min_threshold"
	calcThresholds             = "thresholds"
)

// ParseConfig decodes the strategy list from its JSON configuration
// form. Unknown calculator names fail fast.
func ParseConfig(raw string) ([]Strategy, error) {
	var configs []strategyConfig
	if err := json.Unmarshal([]byte(raw), &configs); err != nil {
		return nil, fmt.Errorf("pricing: decoding strategies config: %w", err)
	}

	strategies := make([]Strategy, 0, len(configs))
	for i, c := range configs {
		var calc Calculator
		switch c.Calculator {
		case calcLinearWithMinThreshold:
			var p LinearWithMinThreshold
			if err := json.Unmarshal(c.Params, &p); err != nil {
				return nil, fmt.Errorf("pricing: strategy %d params: %w", i, err)
			}
			calc = p
		case calcThresholds:
			var p Thresholds
			if err := json.Unmarshal(c.Params, &p); err != nil {
				return nil, fmt.Errorf("pricing: strategy %d params: %w", i, err)
			}
			calc = p
		default:
			return nil, fmt.Errorf("pricing: strategy %d: unknown calculator %q", i, c.Calculator)
		}
		strategies = append(strategies, Strategy{StartedAt: c.StartedAt, Calculator: calc})
	}
	return strategies, nil
}
