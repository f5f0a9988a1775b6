package attribution

import "github.com/sells-group/attribution-cli/internal/model"

// StageResult is the outcome of scoring one lead in one stage: either no
// match, or a match with the evidence that produced it.
type StageResult struct {
	Matched    bool
	Confidence float64
	Detail     string
	DataSource model.DataSource
}

// NoMatch is the zero outcome.
func NoMatch() StageResult {
	return StageResult{}
}

// Match builds a matched outcome.
func Match(confidence float64, detail string, ds model.DataSource) StageResult {
	return StageResult{
		Matched:    true,
		Confidence: confidence,
		Detail:     detail,
		DataSource: ds,
	}
}
