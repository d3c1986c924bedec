package models

import "strings"

type SponsorshipPackage string

const (
	PackageBronze   SponsorshipPackage = "BRONZE"
	PackageSilver   SponsorshipPackage = "SILVER"
	PackageGold     SponsorshipPackage = "GOLD"
	PackagePlatinum SponsorshipPackage = "PLATINUM"
)

var packageAmounts = map[SponsorshipPackage]float64{
	PackageBronze:   5000,
	PackageSilver:   15000,
	PackageGold:     30000,
	PackagePlatinum: 50000,
}

// ParseSponsorshipPackage accepts any case; ok is false for unknown packages.
func ParseSponsorshipPackage(raw string) (SponsorshipPackage, bool) {
	p := SponsorshipPackage(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := packageAmounts[p]
	return p, ok
}

// Amount is the contribution a package adds to the collected amount.
func (p SponsorshipPackage) Amount() float64 {
	return packageAmounts[p]
}

type SponsorshipRequest struct {
	PackageType SponsorshipPackage `json:"package_type"`
	CompanyName string             `json:"company_name"`
}

// ApplicationRequest is a participant (knight) application to a tournament.
type ApplicationRequest struct {
	TournamentID  int64    `json:"tournament_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Height        *float64 `json:"height,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Motivation    string   `json:"motivation,omitempty"`
	BirthDate     string   `json:"birth_date,omitempty"`
	CoatOfArmsURL string   `json:"coat_of_arms_url,omitempty"`
}

type TicketRequest struct {
	Seats        int  `json:"seats"`
	AgreeToRules bool `json:"agree_to_rules"`
}
