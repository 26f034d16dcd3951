package pricing

import (
	"fmt"

	"space-booking/internal/pkg/errs"
)

var (
	ErrUnsupportedActivity = errs.New("unsupported activity")
	ErrUnsupportedTier     = errs.New("unsupported tier")
	ErrInvalidPricing      = errs.New("invalid pricing")
)

// Tier is a group-size bracket.
type Tier string

const (
	TierSmall      Tier = "small"
	TierMedium     Tier = "medium"
	TierLarge      Tier = "large"
	TierExtraLarge Tier = "extraLarge"
)

// AllTiers is ordered from the smallest group to the largest.
var AllTiers = []Tier{TierSmall, TierMedium, TierLarge, TierExtraLarge}

func (t Tier) IsValid() bool {
	switch t {
	case TierSmall, TierMedium, TierLarge, TierExtraLarge:
		return true
	default:
		return false
	}
}

func (t Tier) String() string { return string(t) }

func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedTier, s)
	}
	return t, nil
}

// Activity is the declared use of a reservation.
type Activity string

const (
	ActivityPhoto   Activity = "photo"
	ActivityVideo   Activity = "video"
	ActivityEvent   Activity = "event"
	ActivityMeeting Activity = "meeting"
)

var AllActivities = []Activity{ActivityPhoto, ActivityVideo, ActivityEvent, ActivityMeeting}

func (a Activity) IsValid() bool {
	switch a {
	case ActivityPhoto, ActivityVideo, ActivityEvent, ActivityMeeting:
		return true
	default:
		return false
	}
}

func (a Activity) String() string { return string(a) }

func ParseActivity(s string) (Activity, error) {
	a := Activity(s)
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedActivity, s)
	}
	return a, nil
}

type FeeKind string

const (
	FeeFlat       FeeKind = "flat"
	FeePercentage FeeKind = "percentage"
)

func (k FeeKind) IsValid() bool {
	return k == FeeFlat || k == FeePercentage
}

// AdditiveFee is a host-defined charge applied on top of the hourly subtotal.
type AdditiveFee struct {
	Name   string  `json:"name"`
	Kind   FeeKind `json:"kind"`
	Amount float64 `json:"amount"`
}

// RateTable maps activity and tier to an hourly rate. Missing entries are allowed.
type RateTable map[Activity]map[Tier]float64

// Lookup reports the table rate when it is present and positive.
func (rt RateTable) Lookup(a Activity, t Tier) (float64, bool) {
	byTier, ok := rt[a]
	if !ok {
		return 0, false
	}
	rate, ok := byTier[t]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}

// LegacyPricing is the flat-rate pricing used before rate tables existed.
type LegacyPricing struct {
	BasePrice         float64              `json:"basePrice"`
	TierSurcharges    map[Tier]float64     `json:"tierSurcharges,omitempty"`
	ActivityModifiers map[Activity]float64 `json:"activityModifiers,omitempty"`
	AllowedActivities []Activity           `json:"allowedActivities,omitempty"`
	// EnabledActivities narrows AllowedActivities when non-empty.
	EnabledActivities []Activity `json:"enabledActivities,omitempty"`
}

// Pricing is the pricing document of a location.
type Pricing struct {
	RateTable    RateTable     `json:"rateTable,omitempty"`
	Legacy       LegacyPricing `json:"legacy"`
	MinimumHours float64       `json:"minimumHours"`
	Fees         []AdditiveFee `json:"fees,omitempty"`
	EnabledTiers []Tier        `json:"enabledTiers,omitempty"`
}

func (p Pricing) Validate() error {
	for a, byTier := range p.RateTable {
		if !a.IsValid() {
			return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("rate table activity %q", a))
		}
		for t, rate := range byTier {
			if !t.IsValid() {
				return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("rate table tier %q", t))
			}
			if rate < 0 {
				return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("negative rate for %s/%s", a, t))
			}
		}
	}
	if p.Legacy.BasePrice < 0 {
		return errs.Wrap(ErrInvalidPricing, "negative base price")
	}
	for t := range p.Legacy.TierSurcharges {
		if !t.IsValid() {
			return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("surcharge tier %q", t))
		}
	}
	for a := range p.Legacy.ActivityModifiers {
		if !a.IsValid() {
			return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("modifier activity %q", a))
		}
	}
	for _, list := range [][]Activity{p.Legacy.AllowedActivities, p.Legacy.EnabledActivities} {
		for _, a := range list {
			if !a.IsValid() {
				return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("activity %q", a))
			}
		}
	}
	if p.MinimumHours < 0 {
		return errs.Wrap(ErrInvalidPricing, "negative minimum hours")
	}
	for _, f := range p.Fees {
		if !f.Kind.IsValid() {
			return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("fee %q has kind %q", f.Name, f.Kind))
		}
		if f.Amount < 0 {
			return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("fee %q is negative", f.Name))
		}
	}
	for _, t := range p.EnabledTiers {
		if !t.IsValid() {
			return errs.Wrap(ErrInvalidPricing, fmt.Sprintf("enabled tier %q", t))
		}
	}
	return nil
}

// Tiers returns the enabled tiers in canonical order, defaulting to all of them.
func (p Pricing) Tiers() []Tier {
	if len(p.EnabledTiers) == 0 {
		return append([]Tier(nil), AllTiers...)
	}
	enabled := make(map[Tier]bool, len(p.EnabledTiers))
	for _, t := range p.EnabledTiers {
		enabled[t] = true
	}
	tiers := make([]Tier, 0, len(enabled))
	for _, t := range AllTiers {
		if enabled[t] {
			tiers = append(tiers, t)
		}
	}
	return tiers
}
