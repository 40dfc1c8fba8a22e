package domain

// EvalItem is one gold question with its expected answer.
type EvalItem struct {
	// Line is the 1-based line of the item in the gold file.
	Line int

	Question     string
	Expected     string
	ExpectedRefs string
}

// EvalOptions configures an evaluation run.
type EvalOptions struct {
	// Limit stops after this many items. Zero means no limit.
	Limit int

	// K is the number of chunks retrieved per question.
	K int

	// Provider and Model select the generator.
	Provider string
	Model    string
}

// EvalResult is the outcome of asking one gold question.
type EvalResult struct {
	Item     EvalItem
	Answer   string
	Match    bool
	Latency  float64
	Provider string
	Model    string
}

// EvalSummary aggregates an evaluation run.
type EvalSummary struct {
	Total   int
	Matches int
}

// MatchRate returns the fraction of items whose answer contained the expected text.
func (s EvalSummary) MatchRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matches) / float64(s.Total)
}
