package domain

import "time"

type PackageTier string

const (
	TierStarter  PackageTier = "starter"
	TierStandard PackageTier = "standard"
	TierPremium  PackageTier = "premium"
)

// TokenPackage is a purchasable token bundle. Rows are read-only for this
// service; pricing and activation live with the payment provider.
type TokenPackage struct {
	ID         int64
	Name       string
	Tokens     int
	PriceCents int64
	Currency   string // ISO 4217
	Tier       PackageTier
	Features   []string
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Active     bool
}

// AvailableAt reports whether the package can be offered at t.
func (p TokenPackage) AvailableAt(t time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && t.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && t.After(*p.ValidUntil) {
		return false
	}
	return true
}

// PendingPurchase marks a checkout that left for the payment provider and
// has not come back yet.
type PendingPurchase struct {
	PackageID int64
	Tokens    int
	CreatedAt time.Time
}
