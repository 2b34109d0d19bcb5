package resonance

import (
	"github.com/thebtf/resonance/internal/scoring"
	"github.com/thebtf/resonance/pkg/models"
)

// SigilResult is the resonance between a sigil and a user frequency.
type SigilResult struct {
	Sigil          models.SigilType       `json:"sigil"`
	Attributes     models.SigilAttributes `json:"attributes"`
	SigilFrequency models.Frequency       `json:"sigil_frequency"`
	UserFrequency  models.Frequency       `json:"user_frequency"`
	Score          scoring.Score          `json:"score"`
}

// SigilResonance scores the distance between the sigil's frequency and
// userFreq across the whole frequency space. Unknown sigils resolve to muhammad.
func (e *Engine) SigilResonance(sigil models.SigilType, userFreq models.Frequency) SigilResult {
	resolved, attrs := models.SigilFor(sigil)
	return SigilResult{
		Sigil:          resolved,
		Attributes:     attrs,
		SigilFrequency: attrs.Frequency,
		UserFrequency:  userFreq,
		Score:          e.sigilNormalizer.Normalize(float64(attrs.Frequency), float64(userFreq)),
	}
}
