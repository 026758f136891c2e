package plate

import (
	"sort"

	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// Extractor selects the plate from OCR output.
//
// By default the first candidate, in engine order, that normalizes to a
// valid plate wins; confidence is ignored. RankByConfidence reorders the
// candidates by descending confidence before that scan.
type Extractor struct {
	RankByConfidence bool
}

// Extract returns the selected plate, or false when no candidate validates.
func (e Extractor) Extract(cands []types.Candidate) (string, bool) {
	if e.RankByConfidence {
		cands = rankByConfidence(cands)
	}
	for _, c := range cands {
		if p, ok := Canonical(c.Text); ok {
			return p, true
		}
	}
	return "", false
}

// rankByConfidence returns a copy sorted by descending confidence. Candidates
// without a confidence go last and keep their relative order.
func rankByConfidence(cands []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := out[i].Confidence, out[j].Confidence
		switch {
		case ci == nil:
			return false
		case cj == nil:
			return true
		default:
			return *ci > *cj
		}
	})
	return out
}
