package account

// Suggestion is one candidate returned by the directory for a partial query.
type Suggestion struct {
	AccountID int64
	AccNum    string
	AccLib    string
}

// LookupResult tells whether an account number exists for a client and, if
// so, its label.
type LookupResult struct {
	Exists    bool
	AccountID int64
	AccLib    string
}
