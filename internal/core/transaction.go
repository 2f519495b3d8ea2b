package core

import (
	"strings"
	"unicode/utf8"
)

type Category string

const (
	CategoryTransport Category = "Transport"
	CategoryFood      Category = "Food"
	CategoryAirtime   Category = "Airtime"
	CategoryData      Category = "Data"
	CategorySchool    Category = "School"
	CategoryGifts     Category = "Gifts"
	CategoryDebts     Category = "Debts"
	CategoryMisc      Category = "Misc"
)

// Categories is the fixed set of spending categories in display order.
var Categories = []Category{
	CategoryTransport, CategoryFood, CategoryAirtime, CategoryData,
	CategorySchool, CategoryGifts, CategoryDebts, CategoryMisc,
}

// AllCategories is the filter wildcard.
const AllCategories = "all"

func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", ErrInvalidCategory
}

// Transaction is one ledger entry. Entries are immutable once recorded.
type Transaction struct {
	ID          int64
	Amount      Money
	Category    Category
	Note        string
	Date        Date
	Recurring   bool
	IsRepayment bool
}

// TransactionDraft is the unvalidated form submission.
type TransactionDraft struct {
	Amount      string
	Category    string
	Note        string
	Recurring   bool
	IsRepayment bool
}

// Validate turns a draft into a Transaction without id or date.
func (d TransactionDraft) Validate() (Transaction, error) {
	if strings.TrimSpace(d.Amount) == "" || strings.TrimSpace(d.Category) == "" {
		return Transaction{}, NewValidationError("Please fill in amount and category", ErrMissingField)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, NewValidationError("Please enter a valid amount", err)
	}
	category, err := ParseCategory(d.Category)
	if err != nil {
		return Transaction{}, NewValidationError("Please choose a valid category", err)
	}
	note := strings.TrimSpace(d.Note)
	if utf8.RuneCountInString(note) > MaxTextLength {
		return Transaction{}, NewValidationError("Note is too long (max 200 characters)", ErrTextTooLong)
	}
	return Transaction{
		Amount:      amount,
		Category:    category,
		Note:        note,
		Recurring:   d.Recurring,
		IsRepayment: d.IsRepayment,
	}, nil
}

// AddTransaction validates draft and prepends the resulting entry, stamped
// with id and today, to list. On a validation error list is returned as is.
func AddTransaction(list []Transaction, draft TransactionDraft, id int64, today Date) ([]Transaction, Transaction, error) {
	tx, err := draft.Validate()
	if err != nil {
		return list, Transaction{}, err
	}
	tx.ID = id
	tx.Date = today
	out := make([]Transaction, 0, len(list)+1)
	out = append(out, tx)
	out = append(out, list...)
	return out, tx, nil
}

// FilterTransactions keeps the entries whose note or category contains
// search (case-insensitive) and whose category equals category. An empty
// category or "all" matches every category. Order is preserved.
func FilterTransactions(list []Transaction, search, category string) []Transaction {
	term := strings.ToLower(strings.TrimSpace(search))
	category = strings.TrimSpace(category)
	out := make([]Transaction, 0, len(list))
	for _, tx := range list {
		matchesSearch := strings.Contains(strings.ToLower(tx.Note), term) ||
			strings.Contains(strings.ToLower(string(tx.Category)), term)
		matchesCategory := category == "" || category == AllCategories || string(tx.Category) == category
		if matchesSearch && matchesCategory {
			out = append(out, tx)
		}
	}
	return out
}

// ClearTransactions empties the ledger. It is the only way entries leave it.
func ClearTransactions([]Transaction) []Transaction {
	return []Transaction{}
}

// LedgerTotal sums every amount in list.
func LedgerTotal(list []Transaction) Money {
	var total Money
	for _, tx := range list {
		total = total.Add(tx.Amount)
	}
	return total
}

// SpendBetween sums entries dated in [from, to).
func SpendBetween(list []Transaction, from, to Date) Money {
	var total Money
	for _, tx := range list {
		if !tx.Date.Before(from.Time) && tx.Date.Before(to.Time) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SpendOn sums entries dated on day.
func SpendOn(list []Transaction, day Date) Money {
	return SpendBetween(list, day, day.AddDays(1))
}
