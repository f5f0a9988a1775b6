// Package rules holds the tunable text-matching rule data: sales-interaction
// phrases for spam screening, category indicators and generic terms for
// product matching. Defaults are compiled in; a YAML file can override any
// group wholesale.
package rules

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LanyardVariants names the three catalog entries the lanyard special case
// selects between, in descending priority: leather, keychain, generic.
type LanyardVariants struct {
	Leather  string `yaml:"leather"`
	Keychain string `yaml:"keychain"`
	Generic  string `yaml:"generic"`
}

// Rules is the full rule set consumed by the spam classifier and the
// product catalog matcher.
type Rules struct {
	// Multi-word phrases that mark a helpdesk reply as a sales interaction.
	SalesPhrases []string `yaml:"sales_phrases"`
	// Signature fragments that mark a sales reply when a context word is
	// also present.
	SalesSignatures   []string `yaml:"sales_signatures"`
	SignatureContexts []string `yaml:"signature_contexts"`

	// Words that signal purchase intent in lead text.
	BuyingIntentPhrases []string `yaml:"buying_intent_phrases"`
	// Generic terms excluded from n-gram candidates and from the
	// significant-word count in partial matching.
	GenericTerms []string `yaml:"generic_terms"`
	// Indicator keyword -> product category, used when no catalog name
	// matches directly.
	CategoryIndicators map[string]string `yaml:"category_indicators"`
	LanyardVariants    LanyardVariants   `yaml:"lanyard_variants"`
}

// Default returns the compiled-in rule set.
func Default() Rules {
	return Rules{
		SalesPhrases: []string{
			"have attached the quotation for your kind consideration",
			"attached the quotation for your kind consideration",
			"quotation for your kind consideration",
			"attached the quotation",
			"quotation is inclusive of free delivery",
			"attached the digital mock-up",
			"mock-up for your visualization",
			"perhaps you'd like to share your logo/design",
			"create the digital mock-up for your visualization",
			"have attached the digital mock-up for your visualization",
			"thank you for your enquiry",
			"thank you for your inquiry",
		},
		SalesSignatures: []string{
			"sales executive",
			"team lead",
			"corporate accounts",
			"warmest regards",
			"easyprint technologies",
		},
		SignatureContexts: []string{
			"thank you",
			"regards",
			"quotation",
			"attached",
		},
		BuyingIntentPhrases: []string{
			"need", "want", "looking for", "interested in",
			"quote", "quotation", "order", "buy", "purchase", "price", "cost",
		},
		GenericTerms: []string{
			"custom", "customized", "personalised", "personalized",
			"printed", "printing", "print", "promotional", "corporate",
			"branded", "premium", "quality", "bulk", "wholesale",
			"singapore", "cheap", "best", "with", "and", "for",
		},
		CategoryIndicators: map[string]string{
			"mug":      "drinkware",
			"cup":      "drinkware",
			"tumbler":  "drinkware",
			"bottle":   "drinkware",
			"bag":      "bags",
			"tote":     "bags",
			"lanyard":  "lanyards",
			"badge":    "badges",
			"pin":      "badges",
			"sticker":  "stickers",
			"decal":    "stickers",
			"pen":      "stationery",
			"notebook": "stationery",
			"notepad":  "stationery",
			"keychain": "keychains",
			"umbrella": "umbrellas",
			"vest":     "safety",
			"card":     "cards",
			"shirt":    "apparel",
			"cap":      "apparel",
		},
		LanyardVariants: LanyardVariants{
			Leather:  "Leather Lanyards",
			Keychain: "Lanyards with Keychain",
			Generic:  "Custom Lanyards",
		},
	}
}

// Load reads a YAML override file and merges it over the defaults. A group
// present in the file replaces the default group entirely; absent groups
// keep their defaults. An empty path returns the defaults unchanged.
func Load(path string) (Rules, error) {
	base := Default()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return base, eris.Wrapf(err, "rules: read %s", path)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return base, eris.Wrapf(err, "rules: parse %s", path)
	}

	if len(override.SalesPhrases) > 0 {
		base.SalesPhrases = override.SalesPhrases
	}
	if len(override.SalesSignatures) > 0 {
		base.SalesSignatures = override.SalesSignatures
	}
	if len(override.SignatureContexts) > 0 {
		base.SignatureContexts = override.SignatureContexts
	}
	if len(override.BuyingIntentPhrases) > 0 {
		base.BuyingIntentPhrases = override.BuyingIntentPhrases
	}
	if len(override.GenericTerms) > 0 {
		base.GenericTerms = override.GenericTerms
	}
	if len(override.CategoryIndicators) > 0 {
		base.CategoryIndicators = override.CategoryIndicators
	}
	if override.LanyardVariants != (LanyardVariants{}) {
		base.LanyardVariants = override.LanyardVariants
	}
	return base, nil
}
