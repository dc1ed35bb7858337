package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/memberfin/memberfin/pkg/bankimport"
	"github.com/memberfin/memberfin/pkg/config"
	"github.com/memberfin/memberfin/pkg/db"
)

var (
	importFile      string
	expectedBalance string
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a bank statement file",
	Long: `Import a bank statement file into the activity store.

The file is parsed, reference fields are normalized, and the rows are merged
with the already-stored activities: new rows are inserted, known rows are
suppressed, conflicting rows abort the import. The resulting balance must
equal the expected balance stated on the statement, otherwise nothing is
persisted.

Example:
  memberfin import --file statement.csv --expected-balance 1050.00`,
	Run: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "statement file to import (required)")
	importCmd.Flags().StringVar(&expectedBalance, "expected-balance", "",
		"balance after the import as stated by the bank (required)")

	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("expected-balance")
}

func runImport(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	exitOnError(cfg.Validate(), "invalid configuration")

	expected, err := decimal.NewFromString(expectedBalance)
	exitOnError(err, "invalid --expected-balance amount")

	slog.Info("Starting import", "file", importFile, "expected_balance", expected.String())

	slog.Debug("Opening database", "path", cfg.DBPath)
	conn, err := db.Open(cfg.DBPath)
	exitOnError(err, "failed to open database")
	defer conn.Close()

	f, err := os.Open(importFile)
	exitOnError(err, "failed to open statement file")
	defer f.Close()

	importer := bankimport.NewImporter(bankimport.NewStore(conn), cfg.Currency)
	result, err := importer.Import(f, filepath.Base(importFile), expected, time.Now().UTC())
	exitOnError(err, "import failed")

	slog.Info("Import complete",
		"batch", result.BatchID,
		"rows", result.Rows,
		"inserted", result.Inserted,
		"already_known", result.Known)
}
