package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/memberfin/memberfin/pkg/config"
	"github.com/memberfin/memberfin/pkg/db"
	"github.com/memberfin/memberfin/pkg/ledger"
	"github.com/memberfin/memberfin/pkg/member"
)

var balanceMember string

// balanceCmd represents the balance command.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Display account balances",
	Long: `Display the derived balance of every ledger account, or the payment
state and recent activity of a single member.

Example:
  memberfin balance
  memberfin balance --member mnencia`,
	Run: runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&balanceMember, "member", "", "show one member's account instead")
}

func runBalance(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")

	slog.Debug("Opening database", "path", cfg.DBPath)
	conn, err := db.Open(cfg.DBPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	ledgerStore := ledger.NewStore(conn)

	if balanceMember != "" {
		showMemberBalance(conn, ledgerStore, balanceMember)
		return
	}

	accounts, err := ledgerStore.Accounts()
	exitOnError(err, "failed to load accounts")

	fmt.Println("\n=== Account Balances ===")
	for _, account := range accounts {
		balance, err := ledgerStore.AccountBalance(account.ID)
		exitOnError(err, "failed to compute balance")
		fmt.Printf("%-40s %-10s %12s\n", account.Name, account.Type, balance.StringFixed(2))
	}
	fmt.Println()
}

func showMemberBalance(conn *db.Connection, ledgerStore *ledger.Store, login string) {
	memberStore := member.NewStore(conn)
	m, err := memberStore.ByLogin(login)
	exitOnError(err, "failed to load member")
	if m == nil {
		exitOnError(fmt.Errorf("no member with login %q", login), "unknown member")
	}

	balance, err := ledgerStore.AccountBalance(m.AccountID)
	exitOnError(err, "failed to compute balance")

	paid, err := ledgerStore.MemberHasPaid(m.AccountID)
	exitOnError(err, "failed to compute payment state")

	fmt.Printf("\n=== %s (%s) ===\n", m.Name, m.Login)
	fmt.Printf("Balance: %s\n", balance.StringFixed(2))
	if paid {
		fmt.Println("Status:  paid")
	} else {
		fmt.Println("Status:  owes money")
	}

	splits, err := ledgerStore.AccountSplits(m.AccountID)
	exitOnError(err, "failed to load account activity")

	fmt.Println("\nCharges                                      | Payments")
	for _, pair := range ledger.PairedSplits(splits) {
		fmt.Printf("%-44s | %s\n", pairSide(pair.Credit), pairSide(pair.Debit))
	}
	fmt.Println()
}

func pairSide(d *ledger.SplitDetail) string {
	if d == nil {
		return ""
	}
	return fmt.Sprintf("%s %9s %s",
		d.ValidOn.Format("2006-01-02"), d.Amount.StringFixed(2), d.Description)
}
