package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations
const (
	RoleAdmin     UserRole = "admin"
	RoleCS        UserRole = "cs"
	RoleDeveloper UserRole = "developer"
	RoleFinance   UserRole = "finance"

	ClientProspek   ClientStatus = "prospek"
	ClientNegosiasi ClientStatus = "negosiasi"
	ClientDeal      ClientStatus = "deal"
	ClientAktif     ClientStatus = "aktif"
	ClientSelesai   ClientStatus = "selesai"

	LeadBaru      LeadStatus = "baru"
	LeadFollowUp  LeadStatus = "follow_up"
	LeadNegosiasi LeadStatus = "negosiasi"
	LeadDeal      LeadStatus = "deal"
	LeadGagal     LeadStatus = "gagal"

	SourceWebsite  LeadSource = "website"
	SourceReferral LeadSource = "referral"
	SourceIklan    LeadSource = "iklan"
	SourceSosmed   LeadSource = "sosmed"
	SourceLainnya  LeadSource = "lainnya"

	ProjectBriefing    ProjectStatus = "briefing"
	ProjectDesain      ProjectStatus = "desain"
	ProjectDevelopment ProjectStatus = "development"
	ProjectRevisi      ProjectStatus = "revisi"
	ProjectLaunch      ProjectStatus = "launch"
	ProjectSelesai     ProjectStatus = "selesai"

	InvoiceDraft             InvoiceStatus = "draft"
	InvoiceMenungguDP        InvoiceStatus = "menunggu_dp"
	InvoiceLunasDP           InvoiceStatus = "lunas_dp"
	InvoiceMenungguPelunasan InvoiceStatus = "menunggu_pelunasan"
	InvoiceLunas             InvoiceStatus = "lunas"
	InvoiceOverdue           InvoiceStatus = "overdue"
	InvoiceBatal             InvoiceStatus = "batal"

	FinanceIncome  FinanceType = "income"
	FinanceExpense FinanceType = "expense"

	KategoriPendapatan  FinanceCategory = "pendapatan"
	KategoriOperasional FinanceCategory = "operasional"
	KategoriGaji        FinanceCategory = "gaji"
	KategoriPajak       FinanceCategory = "pajak"
	KategoriHosting     FinanceCategory = "hosting"
	KategoriIklan       FinanceCategory = "iklan"
	KategoriLainnya     FinanceCategory = "lainnya"
)

type UserRole string
type ClientStatus string
type LeadStatus string
type LeadSource string
type ProjectStatus string
type InvoiceStatus string
type FinanceType string
type FinanceCategory string

// ValidProjectStatus reports whether s is one of the known project states.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectBriefing, ProjectDesain, ProjectDevelopment, ProjectRevisi, ProjectLaunch, ProjectSelesai:
		return true
	}
	return false
}

// ValidInvoiceStatus reports whether s is one of the known invoice states.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceDraft, InvoiceMenungguDP, InvoiceLunasDP, InvoiceMenungguPelunasan, InvoiceLunas, InvoiceOverdue, InvoiceBatal:
		return true
	}
	return false
}

type User struct {
	ID           int64
	FullName     string
	Email        string
	Phone        string
	AvatarURL    string
	Role         UserRole
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

type Client struct {
	ID          int64
	Nama        string
	Bisnis      string
	Email       string
	Phone       string
	Whatsapp    string
	Alamat      string
	Status      ClientStatus
	RenewalDate *time.Time
	Catatan     string
	CreatedBy   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

type Lead struct {
	ID          int64
	Nama        string
	Kontak      string
	Sumber      LeadSource
	Status      LeadStatus
	Catatan     string
	ClientID    *int64
	ConvertedAt *time.Time
	CreatedBy   *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Package struct {
	ID           int64
	Nama         string
	Deskripsi    string
	Harga        decimal.Decimal
	EstimasiHari *int
	Fitur        []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	ID             int64
	ClientID       int64
	ClientNama     string
	DeveloperID    *int64
	PackageID      *int64
	NamaProyek     string
	RuangLingkup   string
	Harga          decimal.Decimal
	FeeDeveloper   decimal.Decimal
	Status         ProjectStatus
	IsArchived     bool
	Progress       int
	ProgressNotes  string
	TanggalMulai   *time.Time
	TanggalSelesai *time.Time
	EstimasiHari   *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InArchive reports whether p belongs under the archive tab: manually
// archived, or completed more than thresholdDays ago. This is a read-time
// filter; only IsArchived is ever stored.
func (p Project) InArchive(now time.Time, thresholdDays int) bool {
	if p.IsArchived {
		return true
	}
	if p.Status != ProjectSelesai || p.TanggalSelesai == nil {
		return false
	}
	return now.Sub(*p.TanggalSelesai) > time.Duration(thresholdDays)*24*time.Hour
}

type ProjectChecklist struct {
	ID        int64
	ProjectID int64
	Title     string
	IsDone    bool
	UpdatedBy *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChecklistProgress derives the project progress percentage from checklist
// completion. An empty checklist yields zero.
func ChecklistProgress(items []ProjectChecklist) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, it := range items {
		if it.IsDone {
			done++
		}
	}
	return int(float64(done)/float64(len(items))*100 + 0.5)
}

// DeveloperPayment is one immutable "fee earned" record, written when a
// project with an assigned developer and a positive fee reaches selesai.
type DeveloperPayment struct {
	ID          int64
	ProjectID   int64
	DeveloperID int64
	AmountPaid  decimal.Decimal
	PaidAt      time.Time
	Notes       string
}

type FinanceEntry struct {
	ID         int64
	Tipe       FinanceType
	Kategori   FinanceCategory
	Nominal    decimal.Decimal
	Keterangan string
	Tanggal    time.Time
	InvoiceID  *int64
	CreatedBy  *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Invoice struct {
	ID            int64
	ProjectID     int64
	InvoiceNumber string
	Amount        decimal.Decimal
	Status        InvoiceStatus
	TanggalTerbit time.Time
	JatuhTempo    time.Time
	PaidAt        *time.Time
	PDFURL        string
	CreatedBy     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SPK is a work order (Surat Perintah Kerja) issued for a project.
type SPK struct {
	ID              int64
	ProjectID       int64
	SPKNumber       string
	PaymentTerms    string
	TermsConditions string
	PDFURL          string
	CreatedBy       *int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AdsReport struct {
	ID            int64
	ReportDate    time.Time
	Revenue       decimal.Decimal
	FeePayment    decimal.Decimal
	NetRevenue    decimal.Decimal
	AdsSpend      decimal.Decimal
	Leads         int
	TotalPurchase int
	Week          *int
	Month         string
	CreatedBy     *int64
	CreatedAt     time.Time
}

// AdsMetrics carries the figures derived from a report at read time.
// They are never stored.
type AdsMetrics struct {
	Tax11           decimal.Decimal
	ProfitLoss      decimal.Decimal
	ROAS            decimal.Decimal
	ConvPercent     decimal.Decimal
	CostPerLead     decimal.Decimal
	CostPerPurchase decimal.Decimal
}

// Metrics computes the derived ad-performance figures for r.
func (r AdsReport) Metrics() AdsMetrics {
	var m AdsMetrics
	m.Tax11 = r.Revenue.Mul(decimal.NewFromFloat(0.11))
	m.ProfitLoss = r.NetRevenue.Sub(r.AdsSpend).Sub(m.Tax11)
	if !r.AdsSpend.IsZero() {
		m.ROAS = r.Revenue.DivRound(r.AdsSpend, 2)
	}
	if r.Leads > 0 {
		m.ConvPercent = decimal.NewFromInt(int64(r.TotalPurchase)).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(int64(r.Leads)), 2)
		m.CostPerLead = r.AdsSpend.DivRound(decimal.NewFromInt(int64(r.Leads)), 2)
	}
	if r.TotalPurchase > 0 {
		m.CostPerPurchase = r.AdsSpend.DivRound(decimal.NewFromInt(int64(r.TotalPurchase)), 2)
	}
	return m
}

type ActivityLog struct {
	ID         int64
	UserID     *int64
	Action     string
	EntityType string
	EntityID   *int64
	Metadata   map[string]any
	CreatedAt  time.Time
}

// DeveloperStat is the derived payout position of one developer. It is
// recomputed on every read and never persisted.
type DeveloperStat struct {
	DeveloperID       int64
	FullName          string
	Phone             string
	ActiveProjects    int
	CompletedProjects int
	PendingFee        decimal.Decimal
	TotalEarned       decimal.Decimal
	TotalPaid         decimal.Decimal
	UnpaidBalance     decimal.Decimal
	PaymentRecords    []DeveloperPayment
}

// PaymentKeterangan builds the ledger description that ties a gaji expense to
// a developer. Reconciliation matches this string exactly, so the format must
// stay in lockstep with what the payout writes.
func PaymentKeterangan(fullName string) string {
	return "Bayar fee " + fullName
}
