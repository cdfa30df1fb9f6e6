// Package promo evaluates promo codes against report prices. Evaluation
// is pure; lookup and usage accounting stay with the caller.
package promo

import (
	"time"

	"github.com/shopspring/decimal"

	"reportsvc/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Evaluate produces the price breakdown for a report whose price is
// already set. code is the record looked up for the supplied promo
// string, nil when no record matched; codeSupplied distinguishes "no
// promo requested" from "requested but absent". A personal code owned
// by another user is reported as non-existent so ownership is not
// leaked.
func Evaluate(report *domain.Report, code *domain.Promocode, codeSupplied bool, now time.Time) domain.PriceQuote {
	startPrice := report.Price.Decimal

	usage := domain.PromocodeUsageNotSet
	discount := 0
	var usedPromocode *string

	switch {
	case !codeSupplied:
		usage = domain.PromocodeUsageNotSet
	case code == nil,
		code.UserID != nil && *code.UserID != report.UserID,
		code.RestUsages <= 0:
		usage = domain.PromocodeUsageNotExist
	case now.Before(code.ValidFrom) || now.After(code.ValidTo):
		usage = domain.PromocodeUsageExpired
	default:
		usage = domain.PromocodeUsageSuccess
		discount = code.Discount
		usedPromocode = &code.Promocode
	}

	multiplier := hundred.Sub(decimal.NewFromInt(int64(discount))).Div(hundred)
	finalPrice := startPrice.Mul(multiplier).Round(2)

	return domain.PriceQuote{
		StartPrice:     startPrice,
		FinalPrice:     finalPrice,
		Discount:       discount,
		PromocodeUsage: usage,
		UsedPromocode:  usedPromocode,
	}
}
