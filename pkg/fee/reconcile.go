package fee

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/memberfin/memberfin/pkg/diff"
	"github.com/memberfin/memberfin/pkg/ledger"
)

// adjustmentDescription is the description of a reversing adjustment for an
// erroneous debt. Future recomputations diff against it, so it must be
// stable.
func adjustmentDescription(p ledger.Posting) string {
	return fmt.Sprintf("Correction of %q from %s", p.Description, p.ValidOn.Format("2006-01-02"))
}

// reconcile aligns the already-posted sequence with the freshly computed one
// and returns the postings missing from the ledger as well as the posted
// entries that are no longer justified. Replace ranges count as both.
func reconcile(posted, computed []ledger.Posting) (missing, erroneous []ledger.Posting) {
	ops := diff.Align(posted, computed, ledger.Posting.Equal)
	for _, op := range ops {
		switch op.Tag {
		case diff.Insert:
			missing = append(missing, computed[op.J1:op.J2]...)
		case diff.Delete:
			erroneous = append(erroneous, posted[op.I1:op.I2]...)
		case diff.Replace:
			erroneous = append(erroneous, posted[op.I1:op.I2]...)
			missing = append(missing, computed[op.J1:op.J2]...)
		}
	}
	return missing, erroneous
}

// PostMissingFees computes the given fees for all given members from scratch
// and posts the debts that have not been posted yet. Erroneous postings are
// never removed; instead a reversing adjustment referencing the original
// entry is posted, keeping the ledger append-only. Debts dated after today
// are deferred to a later run.
//
// Because Compute is idempotent, running this twice against unchanged state
// posts nothing the second time.
func PostMissingFees(store *ledger.Store, members []Member, fees []Fee, processor string, today time.Time) error {
	for _, m := range members {
		for _, f := range fees {
			if err := postMissingFee(store, m, f, processor, today); err != nil {
				return fmt.Errorf("failed to post %q fees: %w", f.Account().Name, err)
			}
		}
	}
	return nil
}

func postMissingFee(store *ledger.Store, m Member, f Fee, processor string, today time.Time) error {
	computed, err := f.Compute(m)
	if err != nil {
		return err
	}
	posted, err := f.PostedTransactions(m)
	if err != nil {
		return err
	}

	var credits, corrections []ledger.Posting
	for _, p := range posted {
		switch {
		case p.Amount.IsPositive():
			credits = append(credits, p)
		case p.Amount.IsNegative():
			corrections = append(corrections, p)
		}
	}

	missingDebts, erroneousDebts := reconcile(credits, computed)

	// An erroneous debt is reversed by an adjustment of the negated amount;
	// the adjustments themselves are reconciled against the corrections
	// already posted.
	computedAdjustments := make([]ledger.Posting, 0, len(erroneousDebts))
	for _, p := range erroneousDebts {
		computedAdjustments = append(computedAdjustments, ledger.Posting{
			Description: adjustmentDescription(p),
			ValidOn:     p.ValidOn,
			Amount:      p.Amount.Neg(),
		})
	}
	missingAdjustments, _ := reconcile(corrections, computedAdjustments)

	pending := append(missingDebts, missingAdjustments...)
	postedCount := 0
	for _, p := range pending {
		if p.ValidOn.After(today) {
			// Future-dated debts are deferred, not posted early.
			continue
		}
		if _, err := store.PostSimple(p.Description, f.Account().ID, m.AccountID(), p.Amount, processor, p.ValidOn); err != nil {
			return err
		}
		postedCount++
	}
	if postedCount > 0 {
		slog.Debug("posted fee transactions",
			"fee_account", f.Account().Name,
			"member_account", m.AccountID(),
			"count", postedCount)
	}
	return nil
}
