package attribution

import "github.com/sells-group/attribution-cli/internal/model"

// directStage marks leads from known paying customers. A customer emailing
// in is not a new acquisition, whatever their keywords or timing say.
type directStage struct {
	customers *model.CustomerEmailSet
}

func (s *directStage) name() string         { return "direct" }
func (s *directStage) source() model.Source { return model.SourceDirect }

func (s *directStage) enabled() bool {
	return s.customers != nil && s.customers.Len() > 0
}

func (s *directStage) prepare([]*model.Lead) {}

func (s *directStage) eligible(*model.Lead) bool { return true }

func (s *directStage) evaluate(lead *model.Lead) StageResult {
	if !s.customers.Contains(lead.Email) {
		return NoMatch()
	}
	return Match(100, "Known customer email match (source: customer_db)", model.DataSourceCustomerDB)
}
