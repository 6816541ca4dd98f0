package model

// AccountMapping pairs a source account name pattern with the external
// ledger account it posts to. Plain names match exactly, ignoring case;
// names containing regex metacharacters are treated as anchored patterns.
type AccountMapping struct {
	WSAccountName   string `yaml:"ws_account_name" json:"wsAccountName"`
	ActualAccountID string `yaml:"actual_account_id" json:"actualAccountId"`
}

// RawField is one label/value pair scraped from an activity block.
type RawField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Block is everything scraped for one transaction: its label/value rows in
// document order, plus the headline and emphasized text around them.
type Block struct {
	Fields      []RawField `json:"fields"`
	Description string     `json:"description,omitempty"`
	Subheading  string     `json:"subheading,omitempty"`
}
