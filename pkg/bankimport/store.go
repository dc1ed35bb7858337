package bankimport

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/memberfin/memberfin/pkg/db"
)

// BankAccount is an external account the importer accepts statements for.
type BankAccount struct {
	ID            int64
	Name          string
	AccountNumber string
	RoutingNumber string
	// AccountID is the ledger account the bank account maps to.
	AccountID int64
}

// Batch records one import run.
type Batch struct {
	ID            string
	FileName      string
	RowCount      int
	InsertedCount int
	ImportedAt    time.Time
}

// Store manages bank accounts and their observed activities.
type Store struct {
	conn *db.Connection
}

// NewStore creates a bank import store on top of an open database connection.
func NewStore(conn *db.Connection) *Store {
	return &Store{conn: conn}
}

// CreateBankAccount registers an external bank account.
func (s *Store) CreateBankAccount(name, accountNumber, routingNumber string, ledgerAccountID int64) (*BankAccount, error) {
	res, err := s.conn.Exec(
		`INSERT INTO bank_accounts (name, account_number, routing_number, account_id) VALUES (?, ?, ?, ?)`,
		name, accountNumber, routingNumber, ledgerAccountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank account %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get bank account id: %w", err)
	}
	return &BankAccount{
		ID: id, Name: name, AccountNumber: accountNumber,
		RoutingNumber: routingNumber, AccountID: ledgerAccountID,
	}, nil
}

// BankAccountByNumber resolves a bank account by its external account
// number. It returns nil when no such account is known.
func (s *Store) BankAccountByNumber(accountNumber string) (*BankAccount, error) {
	var b BankAccount
	err := s.conn.QueryRow(
		`SELECT id, name, account_number, routing_number, account_id FROM bank_accounts WHERE account_number = ?`,
		accountNumber,
	).Scan(&b.ID, &b.Name, &b.AccountNumber, &b.RoutingNumber, &b.AccountID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}
	return &b, nil
}

// BalanceBefore sums the amounts of all stored activities valid strictly
// before the given date.
func (s *Store) BalanceBefore(validOn time.Time) (decimal.Decimal, error) {
	var cents sql.NullInt64
	err := s.conn.QueryRow(
		`SELECT SUM(amount_cents) FROM bank_account_activities WHERE valid_on < ?`,
		validOn.Format(dateFormat),
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute balance: %w", err)
	}
	return decimal.New(cents.Int64, -2), nil
}

// ActivitiesSince returns the stored activities valid on or after the given
// date, ascending by valid_on.
func (s *Store) ActivitiesSince(validOn time.Time) ([]Activity, error) {
	rows, err := s.conn.Query(`
		SELECT id, bank_account_id, amount_cents, reference, original_reference,
		       other_name, other_account_number, other_routing_number,
		       posted_on, valid_on, imported_at, import_batch_id
		FROM bank_account_activities
		WHERE valid_on >= ?
		ORDER BY valid_on, id`,
		validOn.Format(dateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var activities []Activity
	for rows.Next() {
		var a Activity
		var cents int64
		var postedOn, validOnRaw string
		if err := rows.Scan(&a.ID, &a.BankAccountID, &cents, &a.Reference, &a.OriginalReference,
			&a.OtherName, &a.OtherAccountNumber, &a.OtherRoutingNumber,
			&postedOn, &validOnRaw, &a.ImportedAt, &a.BatchID); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Amount = decimal.New(cents, -2)
		if a.PostedOn, err = time.Parse(dateFormat, postedOn); err != nil {
			return nil, fmt.Errorf("failed to parse posted_on: %w", err)
		}
		if a.ValidOn, err = time.Parse(dateFormat, validOnRaw); err != nil {
			return nil, fmt.Errorf("failed to parse valid_on: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}
	return activities, nil
}

// CommitBatch persists a batch row and its new activities as one unit.
func (s *Store) CommitBatch(batch Batch, activities []Activity) error {
	return s.conn.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(
			`INSERT INTO import_batches (id, file_name, row_count, inserted_count, imported_at) VALUES (?, ?, ?, ?, ?)`,
			batch.ID, batch.FileName, batch.RowCount, batch.InsertedCount, batch.ImportedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert import batch: %w", err)
		}
		for _, a := range activities {
			cents := a.Amount.Shift(2)
			if !cents.IsInteger() {
				return fmt.Errorf("activity amount %s has fractional cents", a.Amount.String())
			}
			_, err := tx.Exec(`
				INSERT INTO bank_account_activities (
					bank_account_id, amount_cents, reference, original_reference,
					other_name, other_account_number, other_routing_number,
					posted_on, valid_on, imported_at, import_batch_id
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.BankAccountID, cents.IntPart(), a.Reference, a.OriginalReference,
				a.OtherName, a.OtherAccountNumber, a.OtherRoutingNumber,
				a.PostedOn.Format(dateFormat), a.ValidOn.Format(dateFormat),
				batch.ImportedAt, batch.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert activity: %w", err)
			}
		}
		return nil
	})
}
