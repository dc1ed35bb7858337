package ledger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memberfin/memberfin/pkg/db"
	"github.com/memberfin/memberfin/pkg/interval"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewStore(conn)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPostSimpleBalances(t *testing.T) {
	store := newTestStore(t)
	fees, err := store.CreateAccount("Fees", AccountTypeRevenue)
	require.NoError(t, err)
	memberAccount, err := store.CreateAccount("Member", AccountTypeAsset)
	require.NoError(t, err)

	tx, err := store.PostSimple("Semester fee", fees.ID, memberAccount.ID, amount("20.00"), "tester", date(2024, 4, 1))
	require.NoError(t, err)
	require.Len(t, tx.Splits, 2)

	// The debit split carries the negated amount, the credit split the
	// amount; the sum is exactly zero.
	sum := decimal.Zero
	for _, split := range tx.Splits {
		sum = sum.Add(split.Amount)
	}
	assert.True(t, sum.IsZero(), "splits sum to %s", sum)
	assert.True(t, tx.Splits[0].Amount.Equal(amount("-20.00")))
	assert.Equal(t, fees.ID, tx.Splits[0].AccountID)
	assert.True(t, tx.Splits[1].Amount.Equal(amount("20.00")))
	assert.Equal(t, memberAccount.ID, tx.Splits[1].AccountID)

	balance, err := store.AccountBalance(memberAccount.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(amount("20.00")))
}

func TestMemberHasPaid(t *testing.T) {
	store := newTestStore(t)
	fees, err := store.CreateAccount("Fees", AccountTypeRevenue)
	require.NoError(t, err)
	memberAccount, err := store.CreateAccount("Member", AccountTypeAsset)
	require.NoError(t, err)
	bank, err := store.CreateAccount("Bank", AccountTypeAsset)
	require.NoError(t, err)

	paid, err := store.MemberHasPaid(memberAccount.ID)
	require.NoError(t, err)
	assert.True(t, paid)

	_, err = store.PostSimple("fee", fees.ID, memberAccount.ID, amount("20.00"), "tester", date(2024, 1, 1))
	require.NoError(t, err)
	paid, err = store.MemberHasPaid(memberAccount.ID)
	require.NoError(t, err)
	assert.False(t, paid)

	_, err = store.PostSimple("payment", memberAccount.ID, bank.ID, amount("20.00"), "tester", date(2024, 2, 1))
	require.NoError(t, err)
	paid, err = store.MemberHasPaid(memberAccount.ID)
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestPostSimpleRejectsFractionalCents(t *testing.T) {
	store := newTestStore(t)
	a, err := store.CreateAccount("A", AccountTypeAsset)
	require.NoError(t, err)
	b, err := store.CreateAccount("B", AccountTypeRevenue)
	require.NoError(t, err)

	_, err = store.PostSimple("bad", a.ID, b.ID, amount("1.005"), "tester", date(2024, 1, 1))
	var imbalance *ImbalanceError
	require.ErrorAs(t, err, &imbalance)
}

func TestPostComplexRequiresZeroSum(t *testing.T) {
	store := newTestStore(t)
	a, err := store.CreateAccount("A", AccountTypeAsset)
	require.NoError(t, err)
	b, err := store.CreateAccount("B", AccountTypeRevenue)
	require.NoError(t, err)
	c, err := store.CreateAccount("C", AccountTypeRevenue)
	require.NoError(t, err)

	_, err = store.PostComplex("imbalanced", "tester", []Entry{
		{AccountID: a.ID, Amount: amount("10.00")},
		{AccountID: b.ID, Amount: amount("-9.00")},
	}, date(2024, 1, 1))
	var imbalance *ImbalanceError
	require.ErrorAs(t, err, &imbalance)
	assert.True(t, imbalance.Residual.Equal(amount("1.00")))

	// Nothing was persisted for the failed posting.
	balance, err := store.AccountBalance(a.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	tx, err := store.PostComplex("split payment", "tester", []Entry{
		{AccountID: a.ID, Amount: amount("-10.00")},
		{AccountID: b.ID, Amount: amount("4.00")},
		{AccountID: c.ID, Amount: amount("6.00")},
	}, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Len(t, tx.Splits, 3)
}

func TestTransferredAmount(t *testing.T) {
	store := newTestStore(t)
	fees, err := store.CreateAccount("Fees", AccountTypeRevenue)
	require.NoError(t, err)
	memberAccount, err := store.CreateAccount("Member", AccountTypeAsset)
	require.NoError(t, err)
	other, err := store.CreateAccount("Other", AccountTypeAsset)
	require.NoError(t, err)

	_, err = store.PostSimple("fee 1", fees.ID, memberAccount.ID, amount("20.00"), "tester", date(2024, 1, 10))
	require.NoError(t, err)
	_, err = store.PostSimple("fee 2", fees.ID, memberAccount.ID, amount("5.00"), "tester", date(2024, 2, 10))
	require.NoError(t, err)
	// A transfer not involving the fee account must not contribute.
	_, err = store.PostSimple("unrelated", other.ID, memberAccount.ID, amount("7.00"), "tester", date(2024, 1, 20))
	require.NoError(t, err)

	total, err := store.TransferredAmount(fees.ID, memberAccount.ID, interval.All())
	require.NoError(t, err)
	assert.True(t, total.Equal(amount("25.00")), "got %s", total)

	// Restricting the interval drops the February fee.
	january := interval.ClosedInterval(date(2024, 1, 1), date(2024, 1, 31))
	total, err = store.TransferredAmount(fees.ID, memberAccount.ID, january)
	require.NoError(t, err)
	assert.True(t, total.Equal(amount("20.00")), "got %s", total)

	// The reverse direction is negative.
	total, err = store.TransferredAmount(memberAccount.ID, fees.ID, interval.All())
	require.NoError(t, err)
	assert.True(t, total.Equal(amount("-25.00")), "got %s", total)
}

func TestTransferredAmountPartialOffset(t *testing.T) {
	store := newTestStore(t)
	bank, err := store.CreateAccount("Bank", AccountTypeAsset)
	require.NoError(t, err)
	memberA, err := store.CreateAccount("Member A", AccountTypeAsset)
	require.NoError(t, err)
	memberB, err := store.CreateAccount("Member B", AccountTypeAsset)
	require.NoError(t, err)

	// One bank credit settles two member debts at once. The flow from the
	// bank to each member is capped by the smaller split.
	_, err = store.PostComplex("combined payment", "tester", []Entry{
		{AccountID: bank.ID, Amount: amount("-30.00")},
		{AccountID: memberA.ID, Amount: amount("20.00")},
		{AccountID: memberB.ID, Amount: amount("10.00")},
	}, date(2024, 3, 1))
	require.NoError(t, err)

	toA, err := store.TransferredAmount(bank.ID, memberA.ID, interval.All())
	require.NoError(t, err)
	assert.True(t, toA.Equal(amount("20.00")), "got %s", toA)

	toB, err := store.TransferredAmount(bank.ID, memberB.ID, interval.All())
	require.NoError(t, err)
	assert.True(t, toB.Equal(amount("10.00")), "got %s", toB)
}

func TestFeePostingsOrdered(t *testing.T) {
	store := newTestStore(t)
	fees, err := store.CreateAccount("Fees", AccountTypeRevenue)
	require.NoError(t, err)
	memberAccount, err := store.CreateAccount("Member", AccountTypeAsset)
	require.NoError(t, err)
	other, err := store.CreateAccount("Other", AccountTypeRevenue)
	require.NoError(t, err)

	_, err = store.PostSimple("second", fees.ID, memberAccount.ID, amount("5.00"), "tester", date(2024, 4, 1))
	require.NoError(t, err)
	_, err = store.PostSimple("first", fees.ID, memberAccount.ID, amount("20.00"), "tester", date(2024, 1, 1))
	require.NoError(t, err)
	_, err = store.PostSimple("other fee", other.ID, memberAccount.ID, amount("9.00"), "tester", date(2024, 2, 1))
	require.NoError(t, err)

	postings, err := store.FeePostings(memberAccount.ID, fees.ID)
	require.NoError(t, err)
	require.Len(t, postings, 2)
	assert.Equal(t, "first", postings[0].Description)
	assert.Equal(t, date(2024, 1, 1), postings[0].ValidOn)
	assert.Equal(t, "second", postings[1].Description)
	assert.True(t, postings[1].Amount.Equal(amount("5.00")))
}

func TestNonFeePostings(t *testing.T) {
	store := newTestStore(t)
	lateFees, err := store.CreateAccount("Late fees", AccountTypeRevenue)
	require.NoError(t, err)
	semesterFees, err := store.CreateAccount("Semester fees", AccountTypeRevenue)
	require.NoError(t, err)
	bank, err := store.CreateAccount("Bank", AccountTypeAsset)
	require.NoError(t, err)
	memberAccount, err := store.CreateAccount("Member", AccountTypeAsset)
	require.NoError(t, err)

	// A charge raises the member's debt.
	_, err = store.PostSimple("semester fee", semesterFees.ID, memberAccount.ID, amount("20.00"), "tester", date(2024, 1, 1))
	require.NoError(t, err)
	// A payment lowers it.
	_, err = store.PostSimple("payment", memberAccount.ID, bank.ID, amount("20.00"), "tester", date(2024, 2, 1))
	require.NoError(t, err)
	// Transfers against the excluded account are skipped.
	_, err = store.PostSimple("late fee", lateFees.ID, memberAccount.ID, amount("2.50"), "tester", date(2024, 3, 1))
	require.NoError(t, err)

	entries, err := store.NonFeePostings(memberAccount.ID, lateFees.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, date(2024, 1, 1), entries[0].ValidOn)
	assert.True(t, entries[0].Amount.Equal(amount("20.00")), "got %s", entries[0].Amount)
	assert.Equal(t, date(2024, 2, 1), entries[1].ValidOn)
	assert.True(t, entries[1].Amount.Equal(amount("-20.00")), "got %s", entries[1].Amount)
}

func TestGetTransactionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	a, err := store.CreateAccount("A", AccountTypeAsset)
	require.NoError(t, err)
	b, err := store.CreateAccount("B", AccountTypeRevenue)
	require.NoError(t, err)

	posted, err := store.PostSimple("round trip", a.ID, b.ID, amount("12.34"), "tester", date(2024, 5, 6))
	require.NoError(t, err)

	loaded, err := store.GetTransaction(posted.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "round trip", loaded.Description)
	assert.Equal(t, "tester", loaded.Author)
	assert.Equal(t, date(2024, 5, 6), loaded.ValidOn)
	require.Len(t, loaded.Splits, 2)
	assert.True(t, loaded.Splits[0].Amount.Equal(amount("-12.34")))

	missing, err := store.GetTransaction(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
