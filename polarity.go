package ulasan

// PolarityScorer labels token sequences by summing lexicon weights.
type PolarityScorer struct {
	table LexiconTable
}

// NewPolarityScorer returns a scorer over table.
func NewPolarityScorer(table LexiconTable) *PolarityScorer {
	return &PolarityScorer{table: table}
}

// Score adds the positive weight and the negative weight of every token found
// in the respective table. Negative weights are signed, so the result is a
// single net sum that does not depend on token order.
func (p *PolarityScorer) Score(tokens []string) PolarityResult {
	score := 0
	for _, tok := range tokens {
		if w, found := p.table.Positive[tok]; found {
			score += w
		}
		if w, found := p.table.Negative[tok]; found {
			score += w
		}
	}
	return PolarityResult{Score: score, Label: LabelForScore(score)}
}

// LabelForScore maps a net score to its polarity.
func LabelForScore(score int) Polarity {
	switch {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	}
	return Neutral
}
