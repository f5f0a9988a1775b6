package crm

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// contactEmail is the projection of a Contact record used here.
type contactEmail struct {
	Email string `json:"Email" salesforce:"Email"`
}

// personAccountEmail is the projection of a person Account record.
type personAccountEmail struct {
	PersonEmail string `json:"PersonEmail" salesforce:"PersonEmail"`
}

// CustomerEmails queries Contact emails and, when the org has person
// accounts enabled, Account person emails. The Contact query is required;
// the person-account query is tolerated failing because many orgs never
// enable that feature and the API rejects the field outright.
func (c *sfClient) CustomerEmails(ctx context.Context) ([]string, error) {
	var contacts []contactEmail
	if err := c.query(ctx, "SELECT Email FROM Contact WHERE Email != null", &contacts); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	emails := make([]string, 0, len(contacts))
	add := func(raw string) {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" {
			return
		}
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}

	for _, r := range contacts {
		add(r.Email)
	}

	var accounts []personAccountEmail
	soql := "SELECT PersonEmail FROM Account WHERE IsPersonAccount = true AND PersonEmail != null"
	if err := c.query(ctx, soql, &accounts); err != nil {
		zap.L().Debug("person account email query failed, continuing with contacts only",
			zap.Error(err))
	} else {
		for _, r := range accounts {
			add(r.PersonEmail)
		}
	}

	return emails, nil
}
