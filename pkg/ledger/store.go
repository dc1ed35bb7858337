package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/memberfin/memberfin/pkg/db"
	"github.com/memberfin/memberfin/pkg/interval"
)

const dateFormat = "2006-01-02"

// Store owns account, transaction and split identity and lifecycle. All
// other components request postings through it.
type Store struct {
	conn *db.Connection
}

// NewStore creates a ledger store on top of an open database connection.
func NewStore(conn *db.Connection) *Store {
	return &Store{conn: conn}
}

// Entry is one requested split of a complex posting.
type Entry struct {
	AccountID int64
	Amount    decimal.Decimal
}

// CreateAccount creates a new ledger account.
func (s *Store) CreateAccount(name string, accountType AccountType) (*Account, error) {
	res, err := s.conn.Exec(
		`INSERT INTO accounts (name, type) VALUES (?, ?)`,
		name, string(accountType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account id: %w", err)
	}
	return &Account{ID: id, Name: name, Type: accountType}, nil
}

// GetAccount retrieves an account by id. It returns nil when no account
// exists.
func (s *Store) GetAccount(id int64) (*Account, error) {
	return s.scanAccount(s.conn.QueryRow(
		`SELECT id, name, type FROM accounts WHERE id = ?`, id))
}

// AccountByName retrieves an account by its unique name. It returns nil when
// no account exists.
func (s *Store) AccountByName(name string) (*Account, error) {
	return s.scanAccount(s.conn.QueryRow(
		`SELECT id, name, type FROM accounts WHERE name = ?`, name))
}

// EnsureAccount retrieves the named account, creating it when missing.
func (s *Store) EnsureAccount(name string, accountType AccountType) (*Account, error) {
	account, err := s.AccountByName(name)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	return s.CreateAccount(name, accountType)
}

// Accounts returns every ledger account, ordered by name.
func (s *Store) Accounts() ([]Account, error) {
	rows, err := s.conn.Query(`SELECT id, name, type FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var a Account
		var accountType string
		if err := rows.Scan(&a.ID, &a.Name, &accountType); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Type = AccountType(accountType)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) scanAccount(row *sql.Row) (*Account, error) {
	var account Account
	var accountType string
	err := row.Scan(&account.ID, &account.Name, &accountType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	account.Type = AccountType(accountType)
	return &account, nil
}

// AccountBalance derives the balance of an account as the signed sum of its
// splits. A positive balance on a member account means the member owes
// money.
func (s *Store) AccountBalance(accountID int64) (decimal.Decimal, error) {
	var cents sql.NullInt64
	err := s.conn.QueryRow(
		`SELECT SUM(amount_cents) FROM splits WHERE account_id = ?`,
		accountID,
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}
	return decimalFromCents(cents.Int64), nil
}

// MemberHasPaid reports whether a member account carries no outstanding
// debt, i.e. its balance is zero or negative.
func (s *Store) MemberHasPaid(memberAccountID int64) (bool, error) {
	balance, err := s.AccountBalance(memberAccountID)
	if err != nil {
		return false, err
	}
	return balance.Sign() <= 0, nil
}

// PostSimple creates one transaction with exactly two splits: -amount on the
// debit account and +amount on the credit account. By construction it cannot
// produce an imbalance; it fails with ImbalanceError only when amount is not
// representable in whole minor units. A zero validOn means today.
func (s *Store) PostSimple(description string, debitAccountID, creditAccountID int64, amount decimal.Decimal, author string, validOn time.Time) (*Transaction, error) {
	cents, err := centsFromDecimal(description, amount)
	if err != nil {
		return nil, err
	}
	return s.insertTransaction(description, author, validOn, []splitRow{
		{accountID: debitAccountID, cents: -cents},
		{accountID: creditAccountID, cents: cents},
	})
}

// PostComplex creates one transaction with one split per entry. It fails
// with ImbalanceError when the signed amounts do not sum to zero. A zero
// validOn means today.
func (s *Store) PostComplex(description, author string, entries []Entry, validOn time.Time) (*Transaction, error) {
	rows := make([]splitRow, 0, len(entries))
	sum := int64(0)
	for _, entry := range entries {
		cents, err := centsFromDecimal(description, entry.Amount)
		if err != nil {
			return nil, err
		}
		rows = append(rows, splitRow{accountID: entry.AccountID, cents: cents})
		sum += cents
	}
	if sum != 0 {
		return nil, &ImbalanceError{Description: description, Residual: decimalFromCents(sum)}
	}
	return s.insertTransaction(description, author, validOn, rows)
}

type splitRow struct {
	accountID int64
	cents     int64
}

func (s *Store) insertTransaction(description, author string, validOn time.Time, rows []splitRow) (*Transaction, error) {
	if validOn.IsZero() {
		now := time.Now().UTC()
		validOn = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	transaction := &Transaction{
		Description: description,
		Author:      author,
		ValidOn:     validOn,
		PostedAt:    time.Now().UTC(),
	}
	err := s.conn.Transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(
			`INSERT INTO transactions (description, author, valid_on, posted_at) VALUES (?, ?, ?, ?)`,
			description, author, validOn.Format(dateFormat), transaction.PostedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get transaction id: %w", err)
		}
		transaction.ID = id
		for _, row := range rows {
			res, err := tx.Exec(
				`INSERT INTO splits (transaction_id, account_id, amount_cents) VALUES (?, ?, ?)`,
				id, row.accountID, row.cents,
			)
			if err != nil {
				return fmt.Errorf("failed to insert split: %w", err)
			}
			splitID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get split id: %w", err)
			}
			transaction.Splits = append(transaction.Splits, Split{
				ID:            splitID,
				TransactionID: id,
				AccountID:     row.accountID,
				Amount:        decimalFromCents(row.cents),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetTransaction loads a transaction and its splits. It returns nil when no
// transaction exists.
func (s *Store) GetTransaction(id int64) (*Transaction, error) {
	var t Transaction
	var validOn string
	err := s.conn.QueryRow(
		`SELECT id, description, author, valid_on, posted_at FROM transactions WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Description, &t.Author, &validOn, &t.PostedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	t.ValidOn, err = time.Parse(dateFormat, validOn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse valid_on: %w", err)
	}

	rows, err := s.conn.Query(
		`SELECT id, transaction_id, account_id, amount_cents FROM splits WHERE transaction_id = ? ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load splits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var split Split
		var cents int64
		if err := rows.Scan(&split.ID, &split.TransactionID, &split.AccountID, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.Amount = decimalFromCents(cents)
		t.Splits = append(t.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read splits: %w", err)
	}
	return &t, nil
}

// TransferredAmount computes the net flow from one account to another,
// restricted to the given validity interval. Every split of the from-account
// is paired with every opposite-signed split of the to-account on the same
// transaction; each pair contributes sign(to) * min(|from|, |to|), which
// handles transactions that partially offset multiple counter-parties on one
// side. A negative result means more flowed the other way round.
func (s *Store) TransferredAmount(fromAccountID, toAccountID int64, when interval.Interval) (decimal.Decimal, error) {
	query := `
		SELECT s1.amount_cents, s2.amount_cents
		FROM splits s1
		JOIN splits s2 ON s1.transaction_id = s2.transaction_id
		JOIN transactions t ON t.id = s1.transaction_id
		WHERE s1.account_id = ? AND s2.account_id = ?
	`
	args := []interface{}{fromAccountID, toAccountID}
	query, args = appendValidOnFilter(query, args, when)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	total := int64(0)
	for rows.Next() {
		var fromCents, toCents int64
		if err := rows.Scan(&fromCents, &toCents); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan transfer pair: %w", err)
		}
		if sign(fromCents) == sign(toCents) {
			continue
		}
		contribution := min64(abs64(fromCents), abs64(toCents))
		if toCents < 0 {
			contribution = -contribution
		}
		total += contribution
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to read transfer pairs: %w", err)
	}
	return decimalFromCents(total), nil
}

// FeePostings returns every posted transaction between a member account and
// a fee account as (description, valid_on, amount) seen from the member
// side, ascending by valid_on.
func (s *Store) FeePostings(memberAccountID, feeAccountID int64) ([]Posting, error) {
	rows, err := s.conn.Query(`
		SELECT t.description, t.valid_on, s1.amount_cents
		FROM transactions t
		JOIN splits s1 ON s1.transaction_id = t.id
		JOIN splits s2 ON s2.transaction_id = t.id
		WHERE s1.account_id = ? AND s2.account_id = ?
		ORDER BY t.valid_on, t.id`,
		memberAccountID, feeAccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query fee postings: %w", err)
	}
	defer rows.Close()

	var postings []Posting
	for rows.Next() {
		var p Posting
		var validOn string
		var cents int64
		if err := rows.Scan(&p.Description, &validOn, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan fee posting: %w", err)
		}
		if p.ValidOn, err = time.Parse(dateFormat, validOn); err != nil {
			return nil, fmt.Errorf("failed to parse valid_on: %w", err)
		}
		p.Amount = decimalFromCents(cents)
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fee postings: %w", err)
	}
	return postings, nil
}

// NonFeePostings returns, per transaction touching the member account, the
// summed counter-amount of all splits that belong neither to the member
// account nor to the excluded fee account, negated so that a positive value
// increases the member's debt. Ascending by valid_on.
func (s *Store) NonFeePostings(memberAccountID, excludedAccountID int64) ([]DatedAmount, error) {
	rows, err := s.conn.Query(`
		SELECT t.id, t.valid_on, s2.amount_cents
		FROM transactions t
		JOIN splits s1 ON s1.transaction_id = t.id
		JOIN splits s2 ON s2.transaction_id = t.id
		WHERE s1.account_id = ?
		  AND s2.account_id != ?
		  AND s2.account_id != ?
		ORDER BY t.valid_on, t.id`,
		memberAccountID, memberAccountID, excludedAccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query member postings: %w", err)
	}
	defer rows.Close()

	var result []DatedAmount
	lastID := int64(0)
	for rows.Next() {
		var txID, cents int64
		var validOnRaw string
		if err := rows.Scan(&txID, &validOnRaw, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan member posting: %w", err)
		}
		if txID != lastID {
			validOn, err := time.Parse(dateFormat, validOnRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse valid_on: %w", err)
			}
			result = append(result, DatedAmount{ValidOn: validOn, Amount: decimal.Zero})
			lastID = txID
		}
		last := &result[len(result)-1]
		last.Amount = last.Amount.Sub(decimalFromCents(cents))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read member postings: %w", err)
	}
	return result, nil
}

// appendValidOnFilter narrows a transaction query to the given validity
// interval. Endpoint closedness is honoured.
func appendValidOnFilter(query string, args []interface{}, when interval.Interval) (string, []interface{}) {
	if lower := when.Lower; lower.IsBounded() {
		if lower.IsClosed() {
			query += ` AND t.valid_on >= ?`
		} else {
			query += ` AND t.valid_on > ?`
		}
		args = append(args, lower.Value().Format(dateFormat))
	}
	if upper := when.Upper; upper.IsBounded() {
		if upper.IsClosed() {
			query += ` AND t.valid_on <= ?`
		} else {
			query += ` AND t.valid_on < ?`
		}
		args = append(args, upper.Value().Format(dateFormat))
	}
	return query, args
}

func sign(v int64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
