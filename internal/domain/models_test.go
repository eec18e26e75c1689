package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestInArchive(t *testing.T) {
	now := time.Date(2025, 10, 20, 12, 0, 0, 0, time.UTC)
	days := func(n int) *time.Time {
		d := now.AddDate(0, 0, -n)
		return &d
	}

	cases := []struct {
		name string
		p    Project
		want bool
	}{
		{"manual archive wins", Project{IsArchived: true, Status: ProjectBriefing}, true},
		{"active project", Project{Status: ProjectDevelopment}, false},
		{"selesai without date", Project{Status: ProjectSelesai}, false},
		{"selesai 5 days ago", Project{Status: ProjectSelesai, TanggalSelesai: days(5)}, false},
		{"selesai exactly 30 days ago", Project{Status: ProjectSelesai, TanggalSelesai: days(30)}, false},
		{"selesai 31 days ago", Project{Status: ProjectSelesai, TanggalSelesai: days(31)}, true},
		{"old but not selesai", Project{Status: ProjectRevisi, TanggalSelesai: days(60)}, false},
	}
	for _, tc := range cases {
		if got := tc.p.InArchive(now, 30); got != tc.want {
			t.Errorf("%s: InArchive = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestChecklistProgress(t *testing.T) {
	mk := func(done ...bool) []ProjectChecklist {
		items := make([]ProjectChecklist, len(done))
		for i, d := range done {
			items[i] = ProjectChecklist{IsDone: d}
		}
		return items
	}
	cases := []struct {
		items []ProjectChecklist
		want  int
	}{
		{nil, 0},
		{mk(false), 0},
		{mk(true), 100},
		{mk(true, false), 50},
		{mk(true, false, false), 33},
		{mk(true, true, false), 67},
	}
	for _, tc := range cases {
		if got := ChecklistProgress(tc.items); got != tc.want {
			t.Errorf("ChecklistProgress(%d items) = %d, want %d", len(tc.items), got, tc.want)
		}
	}
}

func TestAdsMetrics(t *testing.T) {
	d := decimal.NewFromInt
	r := AdsReport{
		Revenue:       d(10000000),
		NetRevenue:    d(9000000),
		AdsSpend:      d(2000000),
		Leads:         40,
		TotalPurchase: 8,
	}
	m := r.Metrics()

	if !m.Tax11.Equal(d(1100000)) {
		t.Errorf("tax11 = %s, want 1100000", m.Tax11)
	}
	// 9000000 - 2000000 - 1100000
	if !m.ProfitLoss.Equal(d(5900000)) {
		t.Errorf("profitLoss = %s, want 5900000", m.ProfitLoss)
	}
	if !m.ROAS.Equal(d(5)) {
		t.Errorf("roas = %s, want 5", m.ROAS)
	}
	if !m.ConvPercent.Equal(d(20)) {
		t.Errorf("convPercent = %s, want 20", m.ConvPercent)
	}
	if !m.CostPerLead.Equal(d(50000)) {
		t.Errorf("costPerLead = %s, want 50000", m.CostPerLead)
	}
	if !m.CostPerPurchase.Equal(d(250000)) {
		t.Errorf("costPerPurchase = %s, want 250000", m.CostPerPurchase)
	}
}

func TestAdsMetricsZeroDenominators(t *testing.T) {
	m := AdsReport{Revenue: decimal.NewFromInt(100)}.Metrics()
	if !m.ROAS.IsZero() || !m.ConvPercent.IsZero() || !m.CostPerLead.IsZero() || !m.CostPerPurchase.IsZero() {
		t.Errorf("zero denominators should yield zero ratios: %+v", m)
	}
}

func TestPaymentKeterangan(t *testing.T) {
	if got := PaymentKeterangan("Budi Santoso"); got != "Bayar fee Budi Santoso" {
		t.Errorf("PaymentKeterangan = %q", got)
	}
}
