package attribution

import "github.com/rotisserie/eris"

// ErrMissingDataSource marks a stage whose reference table was not loaded.
// The stage degrades to a no-op; the run continues.
var ErrMissingDataSource = eris.New("attribution: reference data source missing")
