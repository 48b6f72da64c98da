package encounter

import "arkscrape/internal/raids"

// classify flags encounters that don't look like valid raid clears so
// downstream analysis can exclude test runs, disconnects and mis-logged
// fights without manual curation. Any rule matching marks the encounter.
func classify(log *ShortLog) bool {
	nPlayers := len(log.Players)
	if nPlayers != 4 && nPlayers != 8 && nPlayers != 16 {
		return true
	}

	nSupports := 0
	for _, p := range log.Players {
		// a spectator pseudo-class never appears in valid combat data
		if p.Spec == raids.ObserverSpec {
			return true
		}
		// "spec not reported" and "class lookup failed" are distinct
		// conditions upstream; both mean the spec is unresolvable here
		if !p.HasSpec {
			return true
		}
		if p.Spec == raids.UnknownSpec {
			return true
		}
		if raids.IsSupport(p.Spec) {
			nSupports++
		}
	}

	// raid composition expects exactly one support per sub-party of four
	return nSupports != nPlayers/4
}
