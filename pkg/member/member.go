// Package member provides the member collaborator consumed by the fee
// engine: registration data and the time ranges during which named boolean
// properties hold.
package member

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/memberfin/memberfin/pkg/db"
	"github.com/memberfin/memberfin/pkg/interval"
)

const dateFormat = "2006-01-02"

// Member is an association member with a dedicated ledger account.
type Member struct {
	ID           int64
	Login        string
	Name         string
	RegisteredAt time.Time
	AccountID    int64
}

// Store manages members and their property history.
type Store struct {
	conn *db.Connection
}

// NewStore creates a member store on top of an open database connection.
func NewStore(conn *db.Connection) *Store {
	return &Store{conn: conn}
}

// Create inserts a new member.
func (s *Store) Create(login, name string, registeredAt time.Time, accountID int64) (*Member, error) {
	res, err := s.conn.Exec(
		`INSERT INTO members (login, name, registered_at, account_id) VALUES (?, ?, ?, ?)`,
		login, name, registeredAt.Format(dateFormat), accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create member %q: %w", login, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get member id: %w", err)
	}
	return &Member{ID: id, Login: login, Name: name, RegisteredAt: registeredAt, AccountID: accountID}, nil
}

// ByLogin retrieves a member by login. It returns nil when no member exists.
func (s *Store) ByLogin(login string) (*Member, error) {
	return s.scanMember(s.conn.QueryRow(
		`SELECT id, login, name, registered_at, account_id FROM members WHERE login = ?`,
		login))
}

// All returns every member, ordered by login.
func (s *Store) All() ([]*Member, error) {
	rows, err := s.conn.Query(
		`SELECT id, login, name, registered_at, account_id FROM members ORDER BY login`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		var m Member
		var registeredAt string
		if err := rows.Scan(&m.ID, &m.Login, &m.Name, &registeredAt, &m.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if m.RegisteredAt, err = time.Parse(dateFormat, registeredAt); err != nil {
			return nil, fmt.Errorf("failed to parse registered_at: %w", err)
		}
		members = append(members, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}
	return members, nil
}

func (s *Store) scanMember(row *sql.Row) (*Member, error) {
	var m Member
	var registeredAt string
	err := row.Scan(&m.ID, &m.Login, &m.Name, &registeredAt, &m.AccountID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load member: %w", err)
	}
	if m.RegisteredAt, err = time.Parse(dateFormat, registeredAt); err != nil {
		return nil, fmt.Errorf("failed to parse registered_at: %w", err)
	}
	return &m, nil
}

// GrantProperty records that a named property holds for the member from
// beginsOn until endsOn inclusive. A nil endsOn means open-ended.
func (s *Store) GrantProperty(memberID int64, property string, beginsOn time.Time, endsOn *time.Time) error {
	var ends interface{}
	if endsOn != nil {
		ends = endsOn.Format(dateFormat)
	}
	_, err := s.conn.Exec(
		`INSERT INTO member_properties (member_id, property, begins_on, ends_on) VALUES (?, ?, ?, ?)`,
		memberID, property, beginsOn.Format(dateFormat), ends,
	)
	if err != nil {
		return fmt.Errorf("failed to grant property %q: %w", property, err)
	}
	return nil
}

// PropertyIntervals returns the normalized set of date ranges during which
// the named property holds for the member.
func (s *Store) PropertyIntervals(memberID int64, property string) (interval.Set, error) {
	rows, err := s.conn.Query(
		`SELECT begins_on, ends_on FROM member_properties WHERE member_id = ? AND property = ?`,
		memberID, property,
	)
	if err != nil {
		return interval.Set{}, fmt.Errorf("failed to query property intervals: %w", err)
	}
	defer rows.Close()

	var intervals []interval.Interval
	for rows.Next() {
		var beginsRaw string
		var endsRaw sql.NullString
		if err := rows.Scan(&beginsRaw, &endsRaw); err != nil {
			return interval.Set{}, fmt.Errorf("failed to scan property interval: %w", err)
		}
		begins, err := time.Parse(dateFormat, beginsRaw)
		if err != nil {
			return interval.Set{}, fmt.Errorf("failed to parse begins_on: %w", err)
		}
		upper := interval.Unbounded()
		if endsRaw.Valid {
			ends, err := time.Parse(dateFormat, endsRaw.String)
			if err != nil {
				return interval.Set{}, fmt.Errorf("failed to parse ends_on: %w", err)
			}
			upper = interval.Closed(ends)
		}
		intervals = append(intervals, interval.New(interval.Closed(begins), upper))
	}
	if err := rows.Err(); err != nil {
		return interval.Set{}, fmt.Errorf("failed to read property intervals: %w", err)
	}
	return interval.NewSet(intervals...), nil
}

// HasProperty reports whether the named property holds for the member at the
// given instant.
func (s *Store) HasProperty(memberID int64, property string, at time.Time) (bool, error) {
	intervals, err := s.PropertyIntervals(memberID, property)
	if err != nil {
		return false, err
	}
	return intervals.Contains(at), nil
}

// View binds a member to the store so that the fee engine can query property
// history through a single value.
type View struct {
	member *Member
	store  *Store
}

// View returns the fee-engine view of a member.
func (s *Store) View(m *Member) *View {
	return &View{member: m, store: s}
}

// AccountID returns the id of the member's ledger account.
func (v *View) AccountID() int64 { return v.member.AccountID }

// RegisteredAt returns the member's registration date.
func (v *View) RegisteredAt() time.Time { return v.member.RegisteredAt }

// HasProperty reports whether the named property holds at the given instant.
func (v *View) HasProperty(name string, at time.Time) (bool, error) {
	return v.store.HasProperty(v.member.ID, name, at)
}

// PropertyIntervals returns the ranges during which the named property holds.
func (v *View) PropertyIntervals(name string) (interval.Set, error) {
	return v.store.PropertyIntervals(v.member.ID, name)
}
