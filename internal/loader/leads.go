package loader

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

// LoadRawLeads reads the primary lead list. CSV files have their email
// column detected from the header; any other extension is treated as plain
// text, one address per line. Rows without an "@" and duplicate addresses
// are skipped and counted. An unreadable or empty file is fatal.
func LoadRawLeads(path string) ([]model.Lead, int, error) {
	var (
		emails  []string
		skipped int
		err     error
	)

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		emails, skipped, err = readLeadCSV(path)
	} else {
		emails, skipped, err = readLeadLines(path)
	}
	if err != nil {
		return nil, 0, err
	}

	log := zap.L().With(zap.String("component", "loader"))

	seen := make(map[string]struct{}, len(emails))
	leads := make([]model.Lead, 0, len(emails))
	for _, email := range emails {
		norm := model.NormalizeEmail(email)
		if _, dup := seen[norm]; dup {
			skipped++
			log.Warn("duplicate lead email skipped", zap.String("email", norm))
			continue
		}
		seen[norm] = struct{}{}
		leads = append(leads, model.NewLead(norm))
	}

	if len(leads) == 0 {
		return nil, 0, eris.Errorf("loader: no valid lead emails in %s", filepath.Base(path))
	}
	if skipped > 0 {
		log.Warn("lead rows skipped",
			zap.String("file", filepath.Base(path)),
			zap.Int("skipped", skipped))
	}
	return leads, skipped, nil
}

func readLeadCSV(path string) ([]string, int, error) {
	records, err := readCSVFile(path)
	if err != nil {
		return nil, 0, err
	}
	if len(records) == 0 {
		return nil, 0, eris.Errorf("loader: %s is empty", filepath.Base(path))
	}

	header := records[0]
	emailCol := -1
	for i, col := range header {
		if strings.Contains(normalizeColumn(col), "email") {
			emailCol = i
			break
		}
	}

	var emails []string
	skipped := 0

	// No email header: the first row may itself be data. Pick the first
	// cell that looks like an address, else fall back to column 0.
	if emailCol == -1 {
		for i, cell := range header {
			if strings.Contains(cell, "@") {
				emailCol = i
				emails = append(emails, cell)
				break
			}
		}
		if emailCol == -1 {
			emailCol = 0
		}
	}

	for _, row := range records[1:] {
		if emailCol >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[emailCol])
		switch {
		case cell == "":
		case strings.Contains(cell, "@"):
			emails = append(emails, cell)
		default:
			skipped++
		}
	}
	return emails, skipped, nil
}

func readLeadLines(path string) ([]string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, eris.Wrap(err, "loader: open leads file")
	}
	defer f.Close()

	var emails []string
	skipped := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.Contains(line, "@"):
			emails = append(emails, line)
		default:
			skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, eris.Wrap(err, "loader: read leads file")
	}
	return emails, skipped, nil
}

// LoadWhitelist reads the trusted-domain list, one domain per line. A
// leading header row is tolerated; entries carrying a full address keep
// only the domain part. The result is lowercased and deduplicated,
// original order preserved.
func LoadWhitelist(path string) ([]string, error) {
	records, err := readCSVFile(path)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var domains []string
	for i, row := range records {
		if len(row) == 0 {
			continue
		}
		entry := strings.ToLower(strings.TrimSpace(row[0]))
		if entry == "" {
			continue
		}
		if at := strings.LastIndex(entry, "@"); at >= 0 {
			entry = entry[at+1:]
		}
		// A first row without a dot is a header, not a domain.
		if i == 0 && !strings.Contains(entry, ".") {
			continue
		}
		if !strings.Contains(entry, ".") {
			continue
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}
		domains = append(domains, entry)
	}
	return domains, nil
}

// LoadCustomerEmails reads a customer export into an email set, detecting
// the email column the same way the lead loader does. It is the offline
// fallback for the CRM fetch.
func LoadCustomerEmails(path string) (*model.CustomerEmailSet, int, error) {
	emails, skipped, err := readLeadCSV(path)
	if err != nil {
		return nil, 0, err
	}
	return model.NewCustomerEmailSet(emails), skipped, nil
}
