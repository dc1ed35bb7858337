package ledger

import (
	"fmt"
	"sort"
	"time"
)

// SplitDetail is a split together with the transaction fields needed to
// render an account statement.
type SplitDetail struct {
	Split
	Description string
	ValidOn     time.Time
	PostedAt    time.Time
}

// SplitPair lines up one credit split with one debit split for statement
// rendering. Either side may be nil when the counts differ.
type SplitPair struct {
	Credit *SplitDetail
	Debit  *SplitDetail
}

// AccountSplits returns all splits of an account with their transaction
// context, newest first by posting time.
func (s *Store) AccountSplits(accountID int64) ([]SplitDetail, error) {
	rows, err := s.conn.Query(`
		SELECT s.id, s.transaction_id, s.account_id, s.amount_cents,
		       t.description, t.valid_on, t.posted_at
		FROM splits s
		JOIN transactions t ON t.id = s.transaction_id
		WHERE s.account_id = ?
		ORDER BY t.posted_at DESC, s.id DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query account splits: %w", err)
	}
	defer rows.Close()

	var details []SplitDetail
	for rows.Next() {
		var d SplitDetail
		var cents int64
		var validOn string
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.AccountID, &cents,
			&d.Description, &validOn, &d.PostedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account split: %w", err)
		}
		if d.ValidOn, err = time.Parse(dateFormat, validOn); err != nil {
			return nil, fmt.Errorf("failed to parse valid_on: %w", err)
		}
		d.Amount = decimalFromCents(cents)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read account splits: %w", err)
	}
	return details, nil
}

// PairedSplits zips the credit splits of an account with its debit splits,
// newest posting first, for two-column statement views.
func PairedSplits(splits []SplitDetail) []SplitPair {
	sorted := make([]SplitDetail, len(splits))
	copy(sorted, splits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PostedAt.After(sorted[j].PostedAt)
	})

	var credits, debits []*SplitDetail
	for i := range sorted {
		if sorted[i].Amount.Sign() >= 0 {
			credits = append(credits, &sorted[i])
		} else {
			debits = append(debits, &sorted[i])
		}
	}

	n := len(credits)
	if len(debits) > n {
		n = len(debits)
	}
	pairs := make([]SplitPair, n)
	for i := 0; i < n; i++ {
		if i < len(credits) {
			pairs[i].Credit = credits[i]
		}
		if i < len(debits) {
			pairs[i].Debit = debits[i]
		}
	}
	return pairs
}

// TransactionType classifies a transaction by the account types it credits
// and debits. It reports ok=false when either side is empty or mixes
// account types.
func (s *Store) TransactionType(transactionID int64) (credited, debited AccountType, ok bool, err error) {
	rows, err := s.conn.Query(`
		SELECT s.amount_cents, a.type
		FROM splits s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.transaction_id = ?`,
		transactionID,
	)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to query transaction splits: %w", err)
	}
	defer rows.Close()

	var creditTypes, debitTypes []AccountType
	for rows.Next() {
		var cents int64
		var accountType string
		if err := rows.Scan(&cents, &accountType); err != nil {
			return "", "", false, fmt.Errorf("failed to scan transaction split: %w", err)
		}
		if cents > 0 {
			creditTypes = append(creditTypes, AccountType(accountType))
		} else if cents < 0 {
			debitTypes = append(debitTypes, AccountType(accountType))
		}
	}
	if err := rows.Err(); err != nil {
		return "", "", false, fmt.Errorf("failed to read transaction splits: %w", err)
	}

	if !homogeneous(creditTypes) || !homogeneous(debitTypes) {
		return "", "", false, nil
	}
	return creditTypes[0], debitTypes[0], true, nil
}

func homogeneous(types []AccountType) bool {
	if len(types) == 0 {
		return false
	}
	for _, t := range types {
		if t != types[0] {
			return false
		}
	}
	return true
}
