// Package ranking orders donors by road distance to a request.
package ranking

import (
	"sort"

	"bloodlink/pkg/domain"
)

// Router is the routing dependency of the ranker.
type Router interface {
	Route(from, to string) domain.Route
}

// Ranker builds candidate lists. It keeps no state between calls.
type Ranker struct {
	router Router
}

func NewRanker(router Router) *Ranker {
	return &Ranker{router: router}
}

// RankDonors returns available donors whose blood type equals bloodType
// exactly, nearest first. Donors the router cannot reach are skipped.
// Equal distances keep input order.
func (r *Ranker) RankDonors(bloodType domain.BloodType, target string, donors []domain.Donor) []domain.Candidate {
	return r.rank(target, donors, func(d domain.Donor) bool {
		return d.BloodType == bloodType
	})
}

// RankCompatible is RankDonors widened to every donor type the recipient can
// medically accept. Informational only; allocation uses exact matches.
func (r *Ranker) RankCompatible(recipient domain.BloodType, target string, donors []domain.Donor) []domain.Candidate {
	return r.rank(target, donors, func(d domain.Donor) bool {
		return domain.CanReceive(recipient, d.BloodType)
	})
}

func (r *Ranker) rank(target string, donors []domain.Donor, eligible func(domain.Donor) bool) []domain.Candidate {
	candidates := make([]domain.Candidate, 0)
	for _, donor := range donors {
		if !donor.Available || !eligible(donor) {
			continue
		}
		route := r.router.Route(target, donor.LocationID)
		if !route.Found() {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Donor:    donor,
			Path:     route.Path,
			Distance: route.Distance,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates
}
