package quote

import "sort"

// Select filters and ranks venue quotes. Quotes with zero output or from
// disallowed venues are dropped; the rest are sorted by output amount
// descending, ties broken by venue name ascending so equal quotes rank
// deterministically. Exactly the first survivor is marked best.
func Select(quotes []*Quote, allowed func(string) bool) ([]*Quote, *Quote) {
	filtered := make([]*Quote, 0, len(quotes))
	for _, q := range quotes {
		if q == nil || q.OutputAmount == 0 {
			continue
		}
		if allowed != nil && !allowed(q.Venue) {
			continue
		}
		filtered = append(filtered, q)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].OutputAmount != filtered[j].OutputAmount {
			return filtered[i].OutputAmount > filtered[j].OutputAmount
		}
		return filtered[i].Venue < filtered[j].Venue
	})

	for _, q := range filtered {
		q.IsBest = false
	}
	if len(filtered) == 0 {
		return filtered, nil
	}
	filtered[0].IsBest = true
	return filtered, filtered[0]
}
