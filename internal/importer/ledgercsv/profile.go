package ledgercsv

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSigned is one column where a negative value is a credit balance.
	amountSigned amountMode = iota
	// amountSplit is separate debit and credit columns.
	amountSplit
)

// Profile describes the header layout of one spreadsheet dialect.
// Optional columns may be missing from the file.
type Profile struct {
	Name        string
	NameCol     string
	TypeCol     string
	AmountMode  amountMode
	AmountCol   string
	DebitCol    string
	CreditCol   string
	CurrencyCol string
	NotesCol    string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.NameCol}

	switch p.AmountMode {
	case amountSigned:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

// profiles are tried in order; split layouts come first because a signed
// header may also be present as a running total.
var profiles = []Profile{
	{
		Name:        "arabic-split",
		NameCol:     "الاسم",
		TypeCol:     "النوع",
		AmountMode:  amountSplit,
		DebitCol:    "مدين",
		CreditCol:   "دائن",
		CurrencyCol: "العملة",
		NotesCol:    "ملاحظات",
	},
	{
		Name:        "arabic",
		NameCol:     "الاسم",
		TypeCol:     "النوع",
		AmountMode:  amountSigned,
		AmountCol:   "المبلغ",
		CurrencyCol: "العملة",
		NotesCol:    "ملاحظات",
	},
	{
		Name:        "english-split",
		NameCol:     "name",
		TypeCol:     "type",
		AmountMode:  amountSplit,
		DebitCol:    "debit",
		CreditCol:   "credit",
		CurrencyCol: "currency",
		NotesCol:    "notes",
	},
	{
		Name:        "english",
		NameCol:     "name",
		TypeCol:     "type",
		AmountMode:  amountSigned,
		AmountCol:   "amount",
		CurrencyCol: "currency",
		NotesCol:    "notes",
	},
}
