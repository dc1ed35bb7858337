package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/memberfin/memberfin/pkg/config"
	"github.com/memberfin/memberfin/pkg/db"
	"github.com/memberfin/memberfin/pkg/fee"
	"github.com/memberfin/memberfin/pkg/ledger"
	"github.com/memberfin/memberfin/pkg/member"
	"github.com/memberfin/memberfin/pkg/semester"
)

var lateFeesUntil string

// postFeesCmd represents the post-fees command.
var postFeesCmd = &cobra.Command{
	Use:   "post-fees",
	Short: "Recompute all membership fees and post what is missing",
	Long: `Recompute registration, semester and late fees for every member from
first principles and reconcile them against the ledger.

Debts that are missing from the ledger are posted; posted debts that are no
longer justified are reversed by adjustment transactions (the ledger is
append-only). Fee computation is idempotent: running this twice in a row
posts nothing the second time.

Example:
  memberfin post-fees --until 2024-06-30`,
	Run: runPostFees,
}

func init() {
	postFeesCmd.Flags().StringVar(&lateFeesUntil, "until", "",
		"date up to which late fees are evaluated (YYYY-MM-DD), usually the last bank import (default today)")
}

func runPostFees(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")

	today := todayUTC()
	calculateUntil := today
	if lateFeesUntil != "" {
		calculateUntil, err = time.Parse("2006-01-02", lateFeesUntil)
		exitOnError(err, "invalid --until date")
	}

	slog.Info("Starting fee run", "until", calculateUntil.Format("2006-01-02"))

	terms, err := semester.LoadFile(cfg.SemestersFile)
	exitOnError(err, "failed to load semester table")

	slog.Debug("Opening database", "path", cfg.DBPath)
	conn, err := db.Open(cfg.DBPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	ledgerStore := ledger.NewStore(conn)
	memberStore := member.NewStore(conn)

	registrationAccount, err := ledgerStore.EnsureAccount(cfg.FeeAccounts.Registration, ledger.AccountTypeRevenue)
	exitOnError(err, "failed to resolve registration fee account")
	semesterAccount, err := ledgerStore.EnsureAccount(cfg.FeeAccounts.Semester, ledger.AccountTypeRevenue)
	exitOnError(err, "failed to resolve semester fee account")
	lateAccount, err := ledgerStore.EnsureAccount(cfg.FeeAccounts.Late, ledger.AccountTypeRevenue)
	exitOnError(err, "failed to resolve late fee account")

	fees := []fee.Fee{
		fee.NewRegistrationFee(ledgerStore, registrationAccount, terms),
		fee.NewSemesterFee(ledgerStore, semesterAccount, terms),
		fee.NewLateFee(ledgerStore, lateAccount, terms, calculateUntil),
	}

	members, err := memberStore.All()
	exitOnError(err, "failed to load members")
	slog.Info("Loaded members", "count", len(members))

	views := make([]fee.Member, len(members))
	for i, m := range members {
		views[i] = memberStore.View(m)
	}

	err = fee.PostMissingFees(ledgerStore, views, fees, cfg.Processor, today)
	exitOnError(err, "fee run failed")

	slog.Info("Fee run complete")
}

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
