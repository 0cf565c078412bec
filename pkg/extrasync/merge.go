package extrasync

// MergeSnapshot merges an authoritative snapshot into a keyed local
// collection. For every local entry with a matching snapshot entry the apply
// policy is invoked to copy fields across; local entries absent from the
// snapshot are left untouched, because snapshots may be partial and absence
// never means deletion. Returns the number of entries the policy touched.
//
// The key extractors and the field-copy policy are parameters so every call
// site shares identical merge semantics.
func MergeSnapshot[L any, S any, K comparable](
	local []L,
	snap []S,
	localKey func(*L) K,
	snapKey func(*S) K,
	apply func(*L, *S) bool,
) int {
	if len(local) == 0 || len(snap) == 0 {
		return 0
	}
	byKey := make(map[K]*S, len(snap))
	// A later snapshot entry wins over an earlier one for the same key.
	for i := range snap {
		byKey[snapKey(&snap[i])] = &snap[i]
	}
	var changed int
	for i := range local {
		s, ok := byKey[localKey(&local[i])]
		if !ok {
			continue
		}
		if apply(&local[i], s) {
			changed++
		}
	}
	return changed
}

// MergeSearchResults merges manual (not-yet-confirmed) search results with
// backend-confirmed entries sharing an external video id. Backend fields take
// precedence for shared ids; manual presentation order is preserved, and
// backend-only entries follow in their own order.
func MergeSearchResults(manual, backend []ExtraRecord) []ExtraRecord {
	merged := make([]ExtraRecord, 0, len(manual)+len(backend))
	byId := make(map[string]*ExtraRecord, len(backend))
	for i := range backend {
		byId[backend[i].VideoId] = &backend[i]
	}
	seen := make(map[string]struct{}, len(manual))
	for i := range manual {
		rec := manual[i]
		if b, ok := byId[rec.VideoId]; ok {
			rec = *b
			rec.Confirmed = true
			seen[rec.VideoId] = struct{}{}
		}
		merged = append(merged, rec)
	}
	for i := range backend {
		if _, ok := seen[backend[i].VideoId]; ok {
			continue
		}
		rec := backend[i]
		rec.Confirmed = true
		merged = append(merged, rec)
	}
	return merged
}
