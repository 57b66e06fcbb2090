package engine

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
	"github.com/MrJamesThe3rd/daftar/internal/ledger"
)

// ComposeMessage renders the plain text of an outgoing message from the
// current ledger position of p.
func ComposeMessage(snap *entity.Snapshot, p entity.Person, kind action.MessageType) string {
	var b strings.Builder

	switch kind {
	case action.MessageThanks:
		fmt.Fprintf(&b, "Dear %s, thank you for your business.", p.Name)
	case action.MessageDebtReminder:
		fmt.Fprintf(&b, "Dear %s, a friendly reminder of your outstanding balance:", p.Name)

		owed := false

		for _, amt := range ledger.Balances(snap, p.Type, p.ID) {
			if amt.Value.IsPositive() {
				fmt.Fprintf(&b, "\n%s %s", amt.Value.StringFixed(2), amt.Currency)
				owed = true
			}
		}

		if !owed {
			b.WriteString("\nNothing is outstanding.")
		}
	default:
		fmt.Fprintf(&b, "Account statement for %s", p.Name)

		for _, cur := range entity.Currencies {
			rows := ledger.Statement(snap, p.Type, p.ID, cur)
			if len(rows) == 0 {
				continue
			}

			fmt.Fprintf(&b, "\n\n%s (balance %s)", cur, rows[0].Balance.StringFixed(2))

			for _, r := range rows {
				fmt.Fprintf(&b, "\n%s  %-8s  +%s  -%s  = %s",
					r.Date.Format("2006-01-02"), r.Kind,
					r.Debit.StringFixed(2), r.Credit.StringFixed(2), r.Balance.StringFixed(2))
			}
		}
	}

	return b.String()
}
