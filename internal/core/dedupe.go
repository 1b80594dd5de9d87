package core

import (
	"sort"
	"strings"
)

// Deduplicator groups raw detections by canonical name and compatible
// version, merging each group into a single MergedTechnology.
type Deduplicator struct {
	aliases *Aliases
}

// NewDeduplicator builds a Deduplicator around an alias table. A nil table
// falls back to the built-in defaults.
func NewDeduplicator(aliases *Aliases) *Deduplicator {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Deduplicator{aliases: aliases}
}

// subgroup accumulates detections whose versions are pairwise compatible.
type subgroup struct {
	detections []RawDetection
	versions   []string // normalized, non-empty
}

// Deduplicate merges a batch of raw detections into one entry per canonical
// technology and compatible version line. Detections whose name folds to the
// empty string are dropped. Empty input yields empty output.
func (d *Deduplicator) Deduplicate(detections []RawDetection) []MergedTechnology {
	if len(detections) == 0 {
		return nil
	}

	// Group by canonical name. The final sort and the canonical sub-group
	// ordering make the result independent of input order.
	var order []string
	groups := make(map[string][]RawDetection)
	for _, det := range detections {
		canon := d.aliases.Normalize(det.Name)
		if canon == "" {
			continue
		}
		if _, seen := groups[canon]; !seen {
			order = append(order, canon)
		}
		groups[canon] = append(groups[canon], det)
	}

	var merged []MergedTechnology
	for _, canon := range order {
		for _, sg := range splitByVersion(groups[canon]) {
			merged = append(merged, mergeSubgroup(canon, sg))
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		if merged[i].Name != merged[j].Name {
			return merged[i].Name < merged[j].Name
		}
		return strings.Join(merged[i].Versions, ",") < strings.Join(merged[j].Versions, ",")
	})
	return merged
}

// splitByVersion partitions one canonical-name group into sub-groups whose
// normalized versions are pairwise compatible. The partition runs over a
// canonical ordering of the group, so the same multiset of detections yields
// the same sub-groups whatever order they arrived in. A detection with no
// version never blocks a merge: it sorts last and joins the sub-group with
// the lowest version key.
func splitByVersion(group []RawDetection) []*subgroup {
	var subgroups []*subgroup

next:
	for _, det := range canonicalGroupOrder(group) {
		versions := normalizedVersions(det)
		for _, sg := range subgroups {
			if compatibleWithAll(versions, sg.versions) {
				sg.detections = append(sg.detections, det)
				sg.versions = appendUnique(sg.versions, versions...)
				continue next
			}
		}
		subgroups = append(subgroups, &subgroup{
			detections: []RawDetection{det},
			versions:   appendUnique(nil, versions...),
		})
	}
	return subgroups
}

// canonicalGroupOrder sorts a copy of the group by normalized version key,
// then source, then descending confidence. Versionless detections sort last.
func canonicalGroupOrder(group []RawDetection) []RawDetection {
	type keyed struct {
		det RawDetection
		key string
	}
	items := make([]keyed, len(group))
	for i, det := range group {
		items[i] = keyed{det: det, key: strings.Join(normalizedVersions(det), ",")}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if (items[i].key == "") != (items[j].key == "") {
			return items[i].key != ""
		}
		if items[i].key != items[j].key {
			return items[i].key < items[j].key
		}
		if items[i].det.Source != items[j].det.Source {
			return items[i].det.Source < items[j].det.Source
		}
		return items[i].det.Confidence > items[j].det.Confidence
	})

	ordered := make([]RawDetection, len(items))
	for i, item := range items {
		ordered[i] = item.det
	}
	return ordered
}

func normalizedVersions(det RawDetection) []string {
	var out []string
	for _, v := range det.Versions {
		if nv := NormalizeVersion(v); nv != "" {
			out = append(out, nv)
		}
	}
	return out
}

func compatibleWithAll(versions, existing []string) bool {
	for _, v := range versions {
		for _, u := range existing {
			if !CompatibleVersions(v, u) {
				return false
			}
		}
	}
	return true
}

// mergeSubgroup folds one version-compatible sub-group into a single record.
// Confidence is the maximum contributor confidence plus a corroboration
// bonus of 5 points per additional distinct source, at most 15, capped at
// 100. Category, website, and description follow the highest-confidence
// contributor, the earliest in the sub-group's canonical order winning ties.
func mergeSubgroup(canon string, sg *subgroup) MergedTechnology {
	best := 0
	bestConf := -1
	sources := make(map[string]struct{})
	var evidence []EvidenceItem
	var versions []string

	for i, det := range sg.detections {
		conf := clampConfidence(det.Confidence)
		if conf > bestConf {
			bestConf = conf
			best = i
		}
		if det.Source != "" {
			sources[det.Source] = struct{}{}
		}
		evidence = append(evidence, det.Evidence...)
		versions = appendUnique(versions, normalizedVersions(det)...)
	}

	bonus := 5 * (len(sources) - 1)
	if bonus > 15 {
		bonus = 15
	}
	if bonus < 0 {
		bonus = 0
	}

	top := sg.detections[best]
	website := top.Website
	description := top.Description
	for _, det := range sg.detections {
		if website == "" {
			website = det.Website
		}
		if description == "" {
			description = det.Description
		}
	}

	sort.Strings(versions)
	sourceList := make([]string, 0, len(sources))
	for s := range sources {
		sourceList = append(sourceList, s)
	}
	sort.Strings(sourceList)

	return MergedTechnology{
		Name:        canon,
		Confidence:  clampConfidence(bestConf + bonus),
		Category:    top.Category,
		Versions:    versions,
		Evidence:    ConsolidateEvidence(evidence),
		Sources:     sourceList,
		Website:     website,
		Description: description,
	}
}

func appendUnique(slice []string, values ...string) []string {
outer:
	for _, v := range values {
		for _, existing := range slice {
			if existing == v {
				continue outer
			}
		}
		slice = append(slice, v)
	}
	return slice
}
