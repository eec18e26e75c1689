package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/danielranggabani/erp.maswebsite/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type AdsReportHandler struct {
	Service service.AdsReportService
}

func (h AdsReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ads-reports", h.list)
	r.Get("/ads-reports/export", h.export)
	r.Post("/ads-reports", h.create)
	r.Put("/ads-reports/{id}", h.update)
	r.Delete("/ads-reports/{id}", h.delete)
}

type adsReportRequest struct {
	ReportDate    string          `json:"reportDate"`
	Revenue       decimal.Decimal `json:"revenue"`
	FeePayment    decimal.Decimal `json:"feePayment"`
	NetRevenue    decimal.Decimal `json:"netRevenue"`
	AdsSpend      decimal.Decimal `json:"adsSpend"`
	Leads         int             `json:"leads"`
	TotalPurchase int             `json:"totalPurchase"`
}

func (req adsReportRequest) toInput() (repository.AdsReportInput, error) {
	in := repository.AdsReportInput{
		ReportDate:    time.Now(),
		Revenue:       req.Revenue,
		FeePayment:    req.FeePayment,
		NetRevenue:    req.NetRevenue,
		AdsSpend:      req.AdsSpend,
		Leads:         req.Leads,
		TotalPurchase: req.TotalPurchase,
	}
	if req.ReportDate != "" {
		t, err := time.Parse(dateLayout, req.ReportDate)
		if err != nil {
			return in, err
		}
		in.ReportDate = t
	}
	return in, nil
}

func (h AdsReportHandler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	start, end, rangeOK := parseDateRange(r)
	if !rangeOK {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	items, err := h.Service.List(r.Context(), actor, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, rep := range items {
		resp = append(resp, adsReportPayload(rep))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h AdsReportHandler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req adsReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reportDate")
		return
	}
	rep, warning, err := h.Service.Create(r.Context(), actor, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSONWarning(w, http.StatusCreated, adsReportPayload(*rep), warning)
}

func (h AdsReportHandler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req adsReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reportDate")
		return
	}
	rep, err := h.Service.Update(r.Context(), actor, id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adsReportPayload(*rep))
}

func (h AdsReportHandler) delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h AdsReportHandler) export(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	start, end, rangeOK := parseDateRange(r)
	if !rangeOK {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	items, err := h.Service.List(r.Context(), actor, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := exportAdsReportsXLSX(items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"laporan_iklan_%s.xlsx\"", time.Now().Format("20060102")))
	_, _ = w.Write(data)
}

func exportAdsReportsXLSX(items []domain.AdsReport) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Laporan Iklan"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"Tanggal", "Revenue", "Fee Payment", "Net Revenue", "Ads Spend", "Leads", "Purchase", "Pajak 11%", "Profit/Loss", "ROAS", "Conv %", "Cost/Lead", "Cost/Purchase"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for rIdx, rep := range items {
		row := rIdx + 2
		m := rep.Metrics()
		values := []any{
			rep.ReportDate.Format(dateLayout),
			decimalCell(rep.Revenue),
			decimalCell(rep.FeePayment),
			decimalCell(rep.NetRevenue),
			decimalCell(rep.AdsSpend),
			rep.Leads,
			rep.TotalPurchase,
			decimalCell(m.Tax11),
			decimalCell(m.ProfitLoss),
			decimalCell(m.ROAS),
			decimalCell(m.ConvPercent),
			decimalCell(m.CostPerLead),
			decimalCell(m.CostPerPurchase),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "E", 14)
	_ = f.SetColWidth(sheet, "F", "G", 10)
	_ = f.SetColWidth(sheet, "H", "M", 14)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "M1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decimalCell(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func adsReportPayload(rep domain.AdsReport) map[string]any {
	m := rep.Metrics()
	out := map[string]any{
		"id":            rep.ID,
		"reportDate":    rep.ReportDate.Format(dateLayout),
		"revenue":       rep.Revenue,
		"feePayment":    rep.FeePayment,
		"netRevenue":    rep.NetRevenue,
		"adsSpend":      rep.AdsSpend,
		"leads":         rep.Leads,
		"totalPurchase": rep.TotalPurchase,
		"month":         rep.Month,
		"metrics": map[string]any{
			"tax11":           m.Tax11,
			"profitLoss":      m.ProfitLoss,
			"roas":            m.ROAS,
			"convPercent":     m.ConvPercent,
			"costPerLead":     m.CostPerLead,
			"costPerPurchase": m.CostPerPurchase,
		},
	}
	if rep.Week != nil {
		out["week"] = *rep.Week
	}
	return out
}
