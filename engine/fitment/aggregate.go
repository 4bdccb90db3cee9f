package fitment

import (
	"sort"
	"strings"

	"github.com/WessleyAI/wessley-fitment/engine/domain"
	"github.com/WessleyAI/wessley-fitment/pkg/fn"
)

// AggregateBatteries dedups battery candidates by canonical identifier
// (first occurrence wins), keeps at most limit of them, and picks the first
// semantic match as Primary. Fallback-only results have no Primary.
// Aggregating an aggregated result's Matches again yields the same result.
func AggregateBatteries(query string, matches []domain.CandidateMatch, limit int) domain.RankedMatches {
	uniq := fn.UniqueBy(matches, func(m domain.CandidateMatch) string {
		return canonicalBatteryID(m.BatteryModel)
	})
	if limit > 0 && len(uniq) > limit {
		uniq = uniq[:limit]
	}
	if uniq == nil {
		uniq = []domain.CandidateMatch{}
	}

	res := domain.RankedMatches{
		Query:     query,
		Direction: domain.VehicleToBattery,
		Matches:   uniq,
		Total:     len(uniq),
	}
	for i := range uniq {
		if uniq[i].Source == domain.SourceSemantic {
			p := uniq[i]
			res.Primary = &p
			break
		}
	}
	return res
}

// otherMake labels vehicles with no make.
const otherMake = "Other"

// AggregateVehicles dedups vehicle candidates by (make, model, year),
// groups them by make in alphabetical order, and caps each group at perMake
// and the whole listing at total. Caps <= 0 mean unlimited. Group.More and
// Hidden count what the caps left out.
func AggregateVehicles(batteryModel string, matches []domain.CandidateMatch, perMake, total int) domain.RankedMatches {
	uniq := fn.UniqueBy(matches, vehicleKey)
	if uniq == nil {
		uniq = []domain.CandidateMatch{}
	}

	byMake := fn.GroupBy(uniq, func(m domain.CandidateMatch) string {
		return strings.ToLower(makeLabel(m.Make))
	})
	keys := make([]string, 0, len(byMake))
	for k := range byMake {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := domain.RankedMatches{
		Query:     batteryModel,
		Direction: domain.BatteryToVehicle,
		Matches:   uniq,
		Total:     len(uniq),
	}
	shown := 0
	for _, k := range keys {
		vs := byMake[k]
		n := len(vs)
		if perMake > 0 && n > perMake {
			n = perMake
		}
		if total > 0 && n > total-shown {
			n = total - shown
		}
		if n <= 0 {
			continue
		}
		res.Groups = append(res.Groups, domain.VehicleGroup{
			Make:     makeLabel(vs[0].Make),
			Vehicles: vs[:n:n],
			More:     len(vs) - n,
		})
		shown += n
	}
	res.Hidden = res.Total - shown
	return res
}

func vehicleKey(m domain.CandidateMatch) [3]string {
	return [3]string{
		strings.ToLower(strings.TrimSpace(m.Make)),
		strings.ToLower(strings.TrimSpace(m.Model)),
		strings.TrimSpace(m.Year),
	}
}

func makeLabel(make_ string) string {
	if s := strings.TrimSpace(make_); s != "" {
		return s
	}
	return otherMake
}
