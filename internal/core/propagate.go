package core

import (
	"math"
	"sort"
)

// BuildProfiles aggregates a batch of per-domain results into one
// TechnologyProfile per canonical name. A technology's domain occurrence
// count grows once per distinct domain, its source set is the union across
// every instance, and its average evidence count is the mean evidence-list
// length over all instances.
func BuildProfiles(domainResults []DomainResult) map[string]TechnologyProfile {
	type accum struct {
		domains   map[string]struct{}
		sources   map[string]struct{}
		evidence  int
		instances int
	}

	accums := make(map[string]*accum)
	for _, dr := range domainResults {
		for _, tech := range dr.Technologies {
			a, ok := accums[tech.Name]
			if !ok {
				a = &accum{
					domains: make(map[string]struct{}),
					sources: make(map[string]struct{}),
				}
				accums[tech.Name] = a
			}
			a.domains[dr.Domain] = struct{}{}
			for _, s := range tech.Sources {
				a.sources[s] = struct{}{}
			}
			a.evidence += len(tech.Evidence)
			a.instances++
		}
	}

	profiles := make(map[string]TechnologyProfile, len(accums))
	for name, a := range accums {
		sources := make([]string, 0, len(a.sources))
		for s := range a.sources {
			sources = append(sources, s)
		}
		sort.Strings(sources)

		avg := 0.0
		if a.instances > 0 {
			avg = float64(a.evidence) / float64(a.instances)
		}

		profiles[name] = TechnologyProfile{
			Name:                 name,
			DomainOccurrences:    len(a.domains),
			DistinctSources:      sources,
			AverageEvidenceCount: avg,
		}
	}
	return profiles
}

// ApplyProfiles returns a copy of technologies with cross-domain confidence
// bonuses applied. Bonuses are additive only: frequency min(10, domains-1),
// source diversity min(10, 3*(sources-1)), evidence richness
// min(5, floor(average evidence count)). The adjusted confidence never
// exceeds 100 and never drops below its pre-propagation value. Neither the
// input slice nor the profile map is mutated.
func ApplyProfiles(technologies []MergedTechnology, profiles map[string]TechnologyProfile) []MergedTechnology {
	if len(technologies) == 0 {
		return nil
	}

	adjusted := make([]MergedTechnology, len(technologies))
	copy(adjusted, technologies)

	for i := range adjusted {
		profile, ok := profiles[adjusted[i].Name]
		if !ok {
			continue
		}
		adjusted[i].Confidence = propagatedConfidence(adjusted[i].Confidence, profile)
	}
	return adjusted
}

func propagatedConfidence(confidence int, profile TechnologyProfile) int {
	bonus := 0
	if profile.DomainOccurrences > 1 {
		bonus += minInt(10, profile.DomainOccurrences-1)
	}
	if len(profile.DistinctSources) > 1 {
		bonus += minInt(10, 3*(len(profile.DistinctSources)-1))
	}
	if richness := int(math.Floor(profile.AverageEvidenceCount)); richness > 0 {
		bonus += minInt(5, richness)
	}

	propagated := confidence + bonus
	if propagated > 100 {
		propagated = 100
	}
	if propagated < confidence {
		propagated = confidence
	}
	return propagated
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
