package fitment

// Scoring weights and retrieval multipliers. These are tuned together;
// changing one shifts which candidates clear ValidityThreshold.
const (
	// ValidityThreshold is the minimum validation score, and the minimum
	// combined score, a semantic hit needs to be kept.
	ValidityThreshold = 0.3

	ModelWeight       = 0.6
	MakeWeight        = 0.25
	MakePartialWeight = 0.15
	YearWeight        = 0.15

	// PartialTermCredit is the credit a model term earns when it only
	// overlaps a record token.
	PartialTermCredit = 0.5
	// AllTermsWeight scales the whole-query overlap used when neither a
	// make nor a model term could be extracted.
	AllTermsWeight = 0.5

	SemanticWeight   = 0.4
	ValidationWeight = 0.6

	// FallbackScore is assigned to every fallback candidate as both its
	// validation and combined score.
	FallbackScore = 0.8
	// MinFallbackTermLen drops one-letter model terms from fallback queries.
	MinFallbackTermLen = 2

	MinBatteryOverfetch    = 50
	BatteryOverfetchFactor = 10
	VehicleOverfetchFactor = 5
	FallbackLimitFactor    = 3
)

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
