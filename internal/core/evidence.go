package core

// ConsolidateEvidence merges evidence items that describe the same finding.
// Items are duplicates when their (field, detail, match) triples are equal;
// duplicates collapse into one entry keeping the maximum confidence seen and
// a repetition count. Distinct match strings under the same (field, detail)
// pair stay separate entries. Ordering is stable first-seen.
func ConsolidateEvidence(items []EvidenceItem) []EvidenceItem {
	if len(items) == 0 {
		return nil
	}

	type key struct {
		field, detail, match string
	}

	out := make([]EvidenceItem, 0, len(items))
	index := make(map[key]int, len(items))

	for _, item := range items {
		k := key{item.Field, item.Detail, item.Match}
		if i, seen := index[k]; seen {
			if item.Confidence > out[i].Confidence {
				out[i].Confidence = item.Confidence
			}
			out[i].Count += repetitions(item)
			continue
		}
		merged := item
		merged.Count = repetitions(item)
		index[k] = len(out)
		out = append(out, merged)
	}
	return out
}

// repetitions treats an unset Count as a single observation so consolidated
// items can be consolidated again without losing their tally.
func repetitions(item EvidenceItem) int {
	if item.Count < 1 {
		return 1
	}
	return item.Count
}
