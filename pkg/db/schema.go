// Package db provides SQLite database management for the association ledger.
package db

// Schema defines the SQL statements to create database tables.
//
// All monetary amounts are stored as integer cents; all dates are stored as
// YYYY-MM-DD strings.
const Schema = `
-- Ledger accounts
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL CHECK (type IN ('ASSET', 'LIABILITY', 'EQUITY', 'REVENUE', 'EXPENSE'))
);

-- Ledger transactions; immutable after creation, corrections are new rows
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT NOT NULL,
    author TEXT NOT NULL,
    valid_on TEXT NOT NULL,            -- business date, YYYY-MM-DD
    posted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_transactions_valid_on
    ON transactions(valid_on);

-- Signed legs of a transaction; the amounts of one transaction sum to zero
CREATE TABLE IF NOT EXISTS splits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transaction_id INTEGER NOT NULL REFERENCES transactions(id),
    account_id INTEGER NOT NULL REFERENCES accounts(id),
    amount_cents INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_splits_transaction
    ON splits(transaction_id);

CREATE INDEX IF NOT EXISTS idx_splits_account
    ON splits(account_id);

-- Association members
CREATE TABLE IF NOT EXISTS members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    login TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    registered_at TEXT NOT NULL,       -- YYYY-MM-DD
    account_id INTEGER NOT NULL REFERENCES accounts(id)
);

-- Time ranges during which a named boolean member property holds
CREATE TABLE IF NOT EXISTS member_properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id INTEGER NOT NULL REFERENCES members(id),
    property TEXT NOT NULL,
    begins_on TEXT NOT NULL,           -- YYYY-MM-DD
    ends_on TEXT                       -- YYYY-MM-DD, NULL = open-ended
);

CREATE INDEX IF NOT EXISTS idx_member_properties
    ON member_properties(member_id, property);

-- External bank accounts known to the importer
CREATE TABLE IF NOT EXISTS bank_accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    account_number TEXT NOT NULL UNIQUE,
    routing_number TEXT NOT NULL,
    account_id INTEGER NOT NULL REFERENCES accounts(id)
);

-- One row per import run
CREATE TABLE IF NOT EXISTS import_batches (
    id TEXT PRIMARY KEY,               -- UUID
    file_name TEXT NOT NULL,
    row_count INTEGER NOT NULL,
    inserted_count INTEGER NOT NULL,
    imported_at TIMESTAMP NOT NULL
);

-- Observed bank postings; created only by the importer, never edited
CREATE TABLE IF NOT EXISTS bank_account_activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bank_account_id INTEGER NOT NULL REFERENCES bank_accounts(id),
    amount_cents INTEGER NOT NULL,
    reference TEXT NOT NULL,
    original_reference TEXT NOT NULL,
    other_name TEXT NOT NULL,
    other_account_number TEXT NOT NULL,
    other_routing_number TEXT NOT NULL,
    posted_on TEXT NOT NULL,           -- YYYY-MM-DD
    valid_on TEXT NOT NULL,            -- YYYY-MM-DD
    imported_at TIMESTAMP NOT NULL,
    import_batch_id TEXT NOT NULL REFERENCES import_batches(id)
);

CREATE INDEX IF NOT EXISTS idx_activities_valid_on
    ON bank_account_activities(valid_on);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.Exec(Schema); err != nil {
		return err
	}
	return nil
}
