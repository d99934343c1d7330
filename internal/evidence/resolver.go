package evidence

import (
	"github.com/ipfs/go-cid"
	"github.com/oceanwatch/marinewatch/internal/models"
)

// Resolver turns a report into the ordered list of URLs its evidence may be
// fetched from. Directly stored locations come first, then one mirror per
// configured gateway derived from the content identifier.
type Resolver struct {
	gateways []string
}

func NewResolver(gateways []string) *Resolver {
	return &Resolver{gateways: gateways}
}

// ResolveCandidates is pure: no I/O, same output for the same report.
// Duplicates are dropped on exact string equality, insertion order kept.
func (r *Resolver) ResolveCandidates(report *models.Report) []string {
	seen := make(map[string]struct{})
	var candidates []string

	add := func(url string) {
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		candidates = append(candidates, url)
	}

	// Direct locations, newest field name first. ImageURL is the column the
	// original submission form wrote before the store integration.
	add(report.EvidenceURL)
	add(report.ImageURL)

	if ValidCID(report.EvidenceCID) {
		for _, gw := range r.gateways {
			add(gw + "/ipfs/" + report.EvidenceCID)
		}
	}

	return candidates
}

// ValidCID accepts anything that parses as a CID, plus the raw-length
// heuristic (46 for CIDv0, 59 for typical CIDv1) for hashes recorded before
// validation existed.
func ValidCID(s string) bool {
	if s == "" {
		return false
	}
	if _, err := cid.Decode(s); err == nil {
		return true
	}
	return len(s) == 46 || len(s) == 59
}
