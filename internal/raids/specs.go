package raids

// SupportSpecs are the recognized support-role specs. A valid raid has
// exactly one support per sub-party of four.
var SupportSpecs = []string{"Full Bloom", "Blessed Aura", "Desperate Salvation"}

// ObserverSpec is the spectator pseudo-class. It never appears in valid
// combat data.
const ObserverSpec = "Princess"

// UnknownSpec is the placeholder the service emits when a player's spec
// could not be resolved to a class.
const UnknownSpec = "Unknown"

func IsSupport(spec string) bool {
	for _, s := range SupportSpecs {
		if s == spec {
			return true
		}
	}
	return false
}
