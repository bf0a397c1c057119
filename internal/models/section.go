package models

// PortfolioSections is the fixed, ordered list of portfolio sections that can
// carry private comments.
var PortfolioSections = []string{
	"work",
	"experience",
	"service",
	"leadership",
	"research",
}

// ValidSection reports whether name is a known portfolio section
func ValidSection(name string) bool {
	for _, s := range PortfolioSections {
		if s == name {
			return true
		}
	}
	return false
}

// PortfolioStatus pairs an account with its per-section unread counts, used
// by the reviewer-facing "portfolios with updates" listing.
type PortfolioStatus struct {
	Account AccountResponse `json:"account"`
	Unread  map[string]int  `json:"unread"`
}
