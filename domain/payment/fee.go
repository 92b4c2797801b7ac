package payment

// Base fee structure by payment method. Percentages are basis points, fixed
// amounts are minor units.
var baseFees = map[string]Rate{
	"card":           {BasisPoints: 290, Fixed: 30},
	"bank_transfer":  {BasisPoints: 80, Fixed: 25},
	"mobile_money":   {BasisPoints: 250, Fixed: 15},
	"crypto":         {BasisPoints: 100, Fixed: 0},
	"digital_wallet": {BasisPoints: 290, Fixed: 30},
}

var defaultBaseFee = Rate{BasisPoints: 300, Fixed: 30}

var tierDiscounts = map[string]Rate{
	"standard":   {BasisPoints: 0, Fixed: 0},
	"premium":    {BasisPoints: 30, Fixed: 5},
	"enterprise": {BasisPoints: 50, Fixed: 10},
}

var regionalAdjustments = map[string]Rate{
	"US": {BasisPoints: 0, Fixed: 0},
	"CA": {BasisPoints: 10, Fixed: 0},
	"GB": {BasisPoints: 10, Fixed: 0},
	"EU": {BasisPoints: 20, Fixed: 0},
	"IN": {BasisPoints: -50, Fixed: -5},
	"NG": {BasisPoints: -30, Fixed: -5},
	"KE": {BasisPoints: -30, Fixed: -5},
	"BR": {BasisPoints: 30, Fixed: 5},
	"JP": {BasisPoints: 20, Fixed: 5},
}

var euCountries = map[string]struct{}{
	"DE": {}, "FR": {}, "IT": {}, "ES": {}, "NL": {}, "BE": {}, "PT": {},
	"IE": {}, "AT": {}, "FI": {}, "SE": {}, "DK": {}, "PL": {}, "CZ": {},
	"HU": {}, "RO": {}, "BG": {}, "GR": {}, "HR": {},
}

// ComputeFee produces the transparent fee breakdown for a transaction.
// Deterministic: identical inputs always yield an identical breakdown, so
// idempotent retries can reuse a previously computed one without fee drift.
func ComputeFee(amount int64, currency, method, country, merchantTier string) FeeBreakdown {
	base, ok := baseFees[method]
	if !ok {
		base = defaultBaseFee
	}

	discount, ok := tierDiscounts[merchantTier]
	if !ok {
		discount = tierDiscounts["standard"]
	}

	region := country
	if _, eu := euCountries[country]; eu {
		region = "EU"
	}
	regional, ok := regionalAdjustments[region]
	if !ok {
		regional = Rate{}
	}

	final := Rate{
		BasisPoints: max(0, base.BasisPoints-discount.BasisPoints+regional.BasisPoints),
		Fixed:       max(0, base.Fixed-discount.Fixed+regional.Fixed),
	}

	// Round to nearest minor unit; fractional minor units never leave here.
	percentageFee := (amount*final.BasisPoints + 5000) / 10000
	totalFee := percentageFee + final.Fixed

	return FeeBreakdown{
		Currency:           currency,
		BaseRate:           base,
		TierDiscount:       discount,
		RegionalAdjustment: regional,
		Region:             region,
		FinalRate:          final,
		PercentageFee:      percentageFee,
		FixedFee:           final.Fixed,
		TotalFee:           totalFee,
		GrossAmount:        amount,
		NetAmount:          amount - totalFee,
	}
}
