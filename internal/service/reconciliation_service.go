package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/server/authctx"
	"github.com/shopspring/decimal"
)

type DeveloperDirectory interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.UserRole) ([]domain.User, error)
}

type ProjectReader interface {
	ListByDeveloper(ctx context.Context, developerID int64) ([]domain.Project, error)
}

type TrackingReader interface {
	ListByDeveloper(ctx context.Context, developerID int64) ([]domain.DeveloperPayment, error)
}

type LedgerStore interface {
	ListByCategory(ctx context.Context, kategori domain.FinanceCategory) ([]domain.FinanceEntry, error)
	Create(ctx context.Context, in repository.CreateFinanceInput) (*domain.FinanceEntry, error)
}

// ReconciliationService derives each developer's payout position from three
// independently written collections: projects (pending), the tracking table
// (earned) and gaji ledger rows (paid). Nothing here is persisted; every
// read recomputes from scratch.
type ReconciliationService struct {
	Users    DeveloperDirectory
	Projects ProjectReader
	Tracking TrackingReader
	Ledger   LedgerStore
	Logger   *slog.Logger
}

// Totals aggregates across developers. Unpaid clamps negative balances to
// zero per developer so an overpaid developer never shrinks the outstanding
// figure.
type Totals struct {
	Pending decimal.Decimal
	Unpaid  decimal.Decimal
	Paid    decimal.Decimal
}

// PayoutResult reports what the payable action did. A zero or negative
// balance is a no-op with Paid=false, not an error.
type PayoutResult struct {
	Paid    bool
	Amount  decimal.Decimal
	Entry   *domain.FinanceEntry
	Message string
}

// StatsFor computes the payout position for one developer. Developers may
// read their own stats; admin and finance may read anyone's.
func (s ReconciliationService) StatsFor(ctx context.Context, actor authctx.CurrentUser, developerID int64) (*domain.DeveloperStat, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) && actor.ID != developerID {
		return nil, ErrForbidden
	}

	dev, err := s.Users.GetByID(ctx, developerID)
	if err != nil {
		return nil, fmt.Errorf("load developer: %w", err)
	}
	gaji, err := s.Ledger.ListByCategory(ctx, domain.KategoriGaji)
	if err != nil {
		return nil, fmt.Errorf("load gaji ledger: %w", err)
	}
	return s.statsFor(ctx, *dev, gaji)
}

// StatsAll computes stats for every developer, sorted by unpaid balance
// descending, plus the aggregate totals. Admin and finance only.
func (s ReconciliationService) StatsAll(ctx context.Context, actor authctx.CurrentUser) ([]domain.DeveloperStat, Totals, error) {
	var totals Totals
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return nil, totals, ErrForbidden
	}

	devs, err := s.Users.ListByRole(ctx, domain.RoleDeveloper)
	if err != nil {
		return nil, totals, fmt.Errorf("list developers: %w", err)
	}
	// One gaji fetch shared across developers; the per-developer filter is
	// the exact keterangan match.
	gaji, err := s.Ledger.ListByCategory(ctx, domain.KategoriGaji)
	if err != nil {
		return nil, totals, fmt.Errorf("load gaji ledger: %w", err)
	}

	stats := make([]domain.DeveloperStat, 0, len(devs))
	for _, dev := range devs {
		st, err := s.statsFor(ctx, dev, gaji)
		if err != nil {
			return nil, totals, err
		}
		totals.Pending = totals.Pending.Add(st.PendingFee)
		totals.Paid = totals.Paid.Add(st.TotalPaid)
		if st.UnpaidBalance.IsPositive() {
			totals.Unpaid = totals.Unpaid.Add(st.UnpaidBalance)
		}
		stats = append(stats, *st)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].UnpaidBalance.GreaterThan(stats[j].UnpaidBalance)
	})
	return stats, totals, nil
}

func (s ReconciliationService) statsFor(ctx context.Context, dev domain.User, gaji []domain.FinanceEntry) (*domain.DeveloperStat, error) {
	projects, err := s.Projects.ListByDeveloper(ctx, dev.ID)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	payments, err := s.Tracking.ListByDeveloper(ctx, dev.ID)
	if err != nil {
		return nil, fmt.Errorf("load tracking: %w", err)
	}

	st := domain.DeveloperStat{
		DeveloperID:    dev.ID,
		FullName:       dev.FullName,
		Phone:          dev.Phone,
		PaymentRecords: payments,
	}

	for _, p := range projects {
		if p.Status != domain.ProjectSelesai {
			st.ActiveProjects++
			st.PendingFee = st.PendingFee.Add(p.FeeDeveloper)
		}
	}
	st.CompletedProjects = len(payments)
	for _, p := range payments {
		st.TotalEarned = st.TotalEarned.Add(p.AmountPaid)
	}

	key := domain.PaymentKeterangan(dev.FullName)
	for _, fe := range gaji {
		if fe.Keterangan == key {
			st.TotalPaid = st.TotalPaid.Add(fe.Nominal)
		}
	}
	st.UnpaidBalance = st.TotalEarned.Sub(st.TotalPaid)
	return &st, nil
}

// PayOutstanding records one gaji expense equal to the developer's current
// outstanding balance. The balance is recomputed here rather than trusted
// from the caller, so a stale UI amount cannot overpay.
func (s ReconciliationService) PayOutstanding(ctx context.Context, actor authctx.CurrentUser, developerID int64) (*PayoutResult, error) {
	if !actor.HasAnyRole(domain.RoleAdmin, domain.RoleFinance) {
		return nil, ErrForbidden
	}

	dev, err := s.Users.GetByID(ctx, developerID)
	if err != nil {
		return nil, fmt.Errorf("load developer: %w", err)
	}
	gaji, err := s.Ledger.ListByCategory(ctx, domain.KategoriGaji)
	if err != nil {
		return nil, fmt.Errorf("load gaji ledger: %w", err)
	}
	st, err := s.statsFor(ctx, *dev, gaji)
	if err != nil {
		return nil, err
	}

	if !st.UnpaidBalance.IsPositive() {
		// Overpayment (negative) and zero both mean nothing to pay.
		return &PayoutResult{
			Paid:    false,
			Amount:  st.UnpaidBalance,
			Message: fmt.Sprintf("tidak ada saldo terutang untuk %s", dev.FullName),
		}, nil
	}

	entry, err := s.Ledger.Create(ctx, repository.CreateFinanceInput{
		Tipe:       domain.FinanceExpense,
		Kategori:   domain.KategoriGaji,
		Nominal:    st.UnpaidBalance,
		Keterangan: domain.PaymentKeterangan(dev.FullName),
		Tanggal:    time.Now(),
		CreatedBy:  &actor.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("record fee expense: %w", err)
	}
	ledgerPostings.WithLabelValues("fee_payout").Inc()
	s.Logger.Info("developer fee paid out",
		"developer_id", dev.ID, "developer", dev.FullName, "amount", st.UnpaidBalance.String(), "by", actor.ID)

	return &PayoutResult{
		Paid:    true,
		Amount:  st.UnpaidBalance,
		Entry:   entry,
		Message: fmt.Sprintf("expense fee %s (%s) tercatat", dev.FullName, FormatRupiah(st.UnpaidBalance)),
	}, nil
}
