package importer

// Profile describes the column layout of a supported ledger export.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name        string
	JournalCol  string
	PieceRefCol string
	DateCol     string
	AccNumCol   string
	AccLibCol   string
	LibCol      string
	DebitCol    string
	CreditCol   string
	DateLayouts []string
}

func (p Profile) requiredCols() []string {
	return []string{
		p.JournalCol, p.AccNumCol, p.AccLibCol, p.DateCol,
		p.LibCol, p.PieceRefCol, p.DebitCol, p.CreditCol,
	}
}

// profiles is the ordered list of layouts tried against the header row. The
// first one is the native layout and is the one reported when nothing matches.
var profiles = []Profile{
	{
		Name:        "compta",
		JournalCol:  "jnl",
		PieceRefCol: "pieceRef",
		DateCol:     "date",
		AccNumCol:   "accnum",
		AccLibCol:   "acclib",
		LibCol:      "lib",
		DebitCol:    "debit",
		CreditCol:   "credit",
		DateLayouts: []string{"02/01/2006", "2006-01-02"},
	},
	{
		Name:        "fec",
		JournalCol:  "JournalCode",
		PieceRefCol: "PieceRef",
		DateCol:     "EcritureDate",
		AccNumCol:   "CompteNum",
		AccLibCol:   "CompteLib",
		LibCol:      "EcritureLib",
		DebitCol:    "Debit",
		CreditCol:   "Credit",
		DateLayouts: []string{"20060102", "02/01/2006", "2006-01-02"},
	},
}
