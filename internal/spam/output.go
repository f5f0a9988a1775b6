package spam

import (
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Output file names, relative to the output directory.
const (
	NotSpamFile = "not_spam_leads.csv"
	SpamFile    = "spam_leads.csv"
)

// WriteResults splits results by classification and writes the two output
// CSVs into dir. Both files are always written, headers included, even
// when one class is empty. Returns the not-spam and spam counts.
func WriteResults(dir string, results []Result) (int, int, error) {
	notSpam := make([]Result, 0, len(results))
	spam := make([]Result, 0, len(results))
	for _, r := range results {
		if r.NotSpam() {
			notSpam = append(notSpam, r)
		} else {
			spam = append(spam, r)
		}
	}

	if err := writeResultFile(filepath.Join(dir, NotSpamFile), notSpam); err != nil {
		return 0, 0, err
	}
	if err := writeResultFile(filepath.Join(dir, SpamFile), spam); err != nil {
		return 0, 0, err
	}
	return len(notSpam), len(spam), nil
}

// LoadResults reads a classification CSV back, for feeding the surviving
// leads into enrichment.
func LoadResults(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "spam: read %s", path)
	}
	var results []Result
	if err := csvutil.Unmarshal(data, &results); err != nil {
		return nil, eris.Wrapf(err, "spam: decode %s", path)
	}
	return results, nil
}

func writeResultFile(path string, results []Result) error {
	data, err := csvutil.Marshal(results)
	if err != nil {
		return eris.Wrap(err, "spam: encode results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "spam: write %s", path)
	}
	return nil
}
