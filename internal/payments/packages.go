package payments

import (
	"strconv"
	"strings"
)

// Package is a purchasable bundle of credits. Amount is the charged total in satang.
type Package struct {
	ID      string `json:"id"`
	PriceID string `json:"-"`
	Amount  int64  `json:"amount"`
	Credits int    `json:"credits"`
}

const (
	PackageStarter = "starter"
	PackagePro     = "pro"
)

// Catalog returns the packages on sale, bound to their Stripe price ids.
func Catalog(starterPrice, proPrice string) map[string]Package {
	return map[string]Package{
		PackageStarter: {ID: PackageStarter, PriceID: starterPrice, Amount: 9900, Credits: 25},
		PackagePro:     {ID: PackagePro, PriceID: proPrice, Amount: 19900, Credits: 75},
	}
}

// creditsForAmount is the fallback used when a session carries no credit metadata.
func creditsForAmount(catalog map[string]Package, amount int64) (int, bool) {
	for _, p := range catalog {
		if p.Amount == amount {
			return p.Credits, true
		}
	}
	return 0, false
}

// creditsFromMetadata reads the grant recorded on the session at checkout time.
func creditsFromMetadata(meta map[string]string) (int, bool) {
	raw := strings.TrimSpace(meta["credits"])
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
