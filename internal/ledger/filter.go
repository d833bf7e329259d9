package ledger

import (
	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// FilterEntries applies an advanced filter to an in-memory entry slice.
// greater/less are plain predicates; max/min keep every entry sharing the
// extremum amount, not just the first.
func FilterEntries(entries []models.Entry, filter nlp.AdvancedFilter) []models.Entry {
	if !filter.IsValid {
		return entries
	}

	switch filter.Operator {
	case "greater":
		return filterAmount(entries, func(amount int64) bool { return amount > filter.Amount })
	case "less":
		return filterAmount(entries, func(amount int64) bool { return amount < filter.Amount })
	case "max":
		if extremum, ok := extremumAmount(entries, true); ok {
			return filterAmount(entries, func(amount int64) bool { return amount == extremum })
		}
	case "min":
		if extremum, ok := extremumAmount(entries, false); ok {
			return filterAmount(entries, func(amount int64) bool { return amount == extremum })
		}
	}
	return nil
}

func filterAmount(entries []models.Entry, keep func(int64) bool) []models.Entry {
	var filtered []models.Entry
	for _, entry := range entries {
		if keep(entry.Amount) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func extremumAmount(entries []models.Entry, max bool) (int64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	extremum := entries[0].Amount
	for _, entry := range entries[1:] {
		if (max && entry.Amount > extremum) || (!max && entry.Amount < extremum) {
			extremum = entry.Amount
		}
	}
	return extremum, true
}

// FilterLoans is the loan-slice counterpart of FilterEntries, filtering
// on the principal amount with the same tie-keeping extremum rule.
func FilterLoans(loans []models.Loan, filter nlp.AdvancedFilter) []models.Loan {
	if !filter.IsValid {
		return loans
	}

	keep := func(int64) bool { return true }
	switch filter.Operator {
	case "greater":
		keep = func(amount int64) bool { return amount > filter.Amount }
	case "less":
		keep = func(amount int64) bool { return amount < filter.Amount }
	case "max", "min":
		if len(loans) == 0 {
			return nil
		}
		extremum := loans[0].Amount
		for _, loan := range loans[1:] {
			if (filter.Operator == "max" && loan.Amount > extremum) ||
				(filter.Operator == "min" && loan.Amount < extremum) {
				extremum = loan.Amount
			}
		}
		keep = func(amount int64) bool { return amount == extremum }
	}

	var filtered []models.Loan
	for _, loan := range loans {
		if keep(loan.Amount) {
			filtered = append(filtered, loan)
		}
	}
	return filtered
}
