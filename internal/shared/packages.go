package shared

import "swipess_api/internal/domain"

// DefaultPackages are the token bundles the seeder loads into MySQL.
var DefaultPackages = []domain.TokenPackage{
	{
		ID: 1, Name: "Starter", Tokens: 50, PriceCents: 4900, Currency: "MXN",
		Tier: domain.TierStarter, Active: true,
		Features: []string{"50 message tokens"},
	},
	{
		ID: 2, Name: "Standard", Tokens: 150, PriceCents: 9900, Currency: "MXN",
		Tier: domain.TierStandard, Active: true,
		Features: []string{"150 message tokens", "profile boost"},
	},
	{
		ID: 3, Name: "Premium", Tokens: 400, PriceCents: 19900, Currency: "MXN",
		Tier: domain.TierPremium, Active: true,
		Features: []string{"400 message tokens", "profile boost", "see who liked you"},
	},
	{
		ID: 4, Name: "Premium Plus", Tokens: 1000, PriceCents: 39900, Currency: "MXN",
		Tier: domain.TierPremium, Active: true,
		Features: []string{"1000 message tokens", "profile boost", "see who liked you", "priority support"},
	},
}
