// Package service holds the business flows: developer fee reconciliation,
// project and invoice status transitions, and ad-spend ledger posting.
package service

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var (
	// ErrForbidden is returned when the acting user's role does not allow
	// the operation. Transitions enforce this themselves instead of
	// trusting the router alone.
	ErrForbidden = errors.New("akses ditolak")
)

// Warning carries a secondary-effect failure that must reach the caller
// without failing the primary operation.
type Warning struct {
	Message string
}

var ledgerPostings = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ledger_postings_total",
	Help: "Automatic finance ledger postings by source flow.",
}, []string{"source"})

// GenerateNumber builds a document number in the PREFIX-YYYYMMDD-RAND4
// format, e.g. INV-20251020-4567. Uniqueness is enforced by the database;
// callers retry on collision.
func GenerateNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102"), rand.IntN(9000)+1000)
}

// FormatRupiah renders an amount the way the notification templates expect:
// "Rp 5.000.000". Fractions are dropped; negative amounts keep their sign.
func FormatRupiah(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	digits := amount.Abs().Round(0).String()

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "Rp " + strings.Join(groups, ".")
	if neg {
		out = "-" + out
	}
	return out
}
