package attribution

import "github.com/sells-group/attribution-cli/internal/model"

// StageSummary reports one stage's outcome over the batch.
type StageSummary struct {
	Stage      string       `json:"stage"`
	Source     model.Source `json:"source"`
	Considered int          `json:"considered"`
	Attributed int          `json:"attributed"`
	// Skipped marks a stage whose reference data was missing.
	Skipped bool `json:"skipped,omitempty"`
}

// Rate is the stage's attribution percentage over the leads it considered.
func (s StageSummary) Rate() float64 {
	if s.Considered == 0 {
		return 0
	}
	return float64(s.Attributed) / float64(s.Considered) * 100
}

// Summary is the aggregate outcome of a cascade run.
type Summary struct {
	Total        int                           `json:"total"`
	Stages       []StageSummary                `json:"stages"`
	BySource     map[model.Source]int          `json:"by_source"`
	ByLevel      map[model.ConfidenceLevel]int `json:"by_level"`
	ByDataSource map[model.DataSource]int      `json:"by_data_source"`
}
