package scapeid

import "strings"

// SpikeJump is the canonical name of the spike lane scape.
const SpikeJump = "spike-jump"

// compactAliases maps dash-free spellings to canonical scape names.
var compactAliases = map[string]string{
	"spikejump":  SpikeJump,
	"spikejumps": SpikeJump,
	"spikes":     SpikeJump,
	"sj":         SpikeJump,
	"jumper":     SpikeJump,
}

// Normalize canonicalizes scape names and known aliases. Unknown names are
// returned lower-cased and dash-separated.
func Normalize(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")
	normalized = strings.Trim(normalized, "-")
	if normalized == "" {
		return ""
	}
	for _, candidate := range aliasCandidates(normalized) {
		if canonical, ok := compactAliases[strings.ReplaceAll(candidate, "-", "")]; ok {
			return canonical
		}
	}
	return normalized
}

func aliasCandidates(normalized string) []string {
	candidates := []string{normalized}

	stripped := strings.Trim(strings.TrimPrefix(normalized, "scape"), "-")
	if stripped != "" && stripped != normalized {
		candidates = append(candidates, stripped)
	}
	for _, c := range append([]string(nil), candidates...) {
		if trimmed := trimSimSuffix(c); trimmed != c && trimmed != "" {
			candidates = append(candidates, trimmed)
		}
	}
	return candidates
}

func trimSimSuffix(value string) string {
	for _, suffix := range []string{"-sim1", "sim1", "-sim", "sim"} {
		if strings.HasSuffix(value, suffix) {
			return strings.TrimSuffix(value, suffix)
		}
	}
	return value
}
