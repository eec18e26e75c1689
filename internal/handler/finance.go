package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielranggabani/erp.maswebsite/internal/domain"
	"github.com/danielranggabani/erp.maswebsite/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type FinanceHandler struct {
	Repo repository.FinanceRepository
}

func (h FinanceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/finances", h.list)
	r.Get("/finances/summary", h.summary)
	r.Get("/finances/export", h.export)
	r.Post("/finances", h.create)
	r.Put("/finances/{id}", h.update)
	r.Delete("/finances/{id}", h.delete)
}

type financeRequest struct {
	Tipe       string          `json:"tipe"`
	Kategori   string          `json:"kategori"`
	Nominal    decimal.Decimal `json:"nominal"`
	Keterangan string          `json:"keterangan"`
	Tanggal    string          `json:"tanggal"`
}

func (req financeRequest) toInput(createdBy *int64) (repository.CreateFinanceInput, error) {
	in := repository.CreateFinanceInput{
		Tipe:       domain.FinanceType(req.Tipe),
		Kategori:   domain.FinanceCategory(req.Kategori),
		Nominal:    req.Nominal,
		Keterangan: req.Keterangan,
		Tanggal:    time.Now(),
		CreatedBy:  createdBy,
	}
	if req.Tanggal != "" {
		t, err := time.Parse(dateLayout, req.Tanggal)
		if err != nil {
			return in, err
		}
		in.Tanggal = t
	}
	return in, nil
}

func (h FinanceHandler) list(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	var items []domain.FinanceEntry
	var err error
	if start != nil || end != nil {
		items, err = h.Repo.ListFiltered(r.Context(), start, end)
	} else {
		items, err = h.Repo.List(r.Context(), 200)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, fe := range items {
		resp = append(resp, financePayload(fe))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h FinanceHandler) summary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := parseDateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}
	income, expense, err := h.Repo.Summary(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalIncome":  income,
		"totalExpense": expense,
		"balance":      income.Sub(expense),
	})
}

func (h FinanceHandler) create(w http.ResponseWriter, r *http.Request) {
	var req financeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Tipe != string(domain.FinanceIncome) && req.Tipe != string(domain.FinanceExpense) {
		writeError(w, http.StatusBadRequest, "tipe must be income or expense")
		return
	}
	in, err := req.toInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tanggal")
		return
	}
	fe, err := h.Repo.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, financePayload(*fe))
}

func (h FinanceHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req financeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in, err := req.toInput(nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tanggal")
		return
	}
	fe, err := h.Repo.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, financePayload(*fe))
}

func (h FinanceHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h FinanceHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	start, end, ok := parseDateRange(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid date range")
		return
	}

	var items []domain.FinanceEntry
	var err error
	if start != nil || end != nil {
		items, err = h.Repo.ListFiltered(r.Context(), start, end)
	} else {
		items, err = h.Repo.List(r.Context(), 2000)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	suffix := time.Now().Format("20060102_150405")
	if start != nil && end != nil {
		suffix = fmt.Sprintf("%s_%s", start.Format("20060102"), end.Format("20060102"))
	}

	switch format {
	case "csv":
		data, err := exportFinanceCSV(items)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"keuangan_%s.csv\"", suffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := exportFinanceXLSX(items)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"keuangan_%s.xlsx\"", suffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func exportFinanceCSV(items []domain.FinanceEntry) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "tipe", "kategori", "nominal", "keterangan", "tanggal", "invoice_id"})
	for _, fe := range items {
		invoiceID := ""
		if fe.InvoiceID != nil {
			invoiceID = strconv.FormatInt(*fe.InvoiceID, 10)
		}
		_ = w.Write([]string{
			strconv.FormatInt(fe.ID, 10),
			string(fe.Tipe),
			string(fe.Kategori),
			fe.Nominal.String(),
			fe.Keterangan,
			fe.Tanggal.Format(dateLayout),
			invoiceID,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportFinanceXLSX(items []domain.FinanceEntry) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Keuangan"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Tipe", "Kategori", "Nominal", "Keterangan", "Tanggal", "Invoice ID"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for rIdx, fe := range items {
		row := rIdx + 2
		invoiceID := any("")
		if fe.InvoiceID != nil {
			invoiceID = *fe.InvoiceID
		}
		nominal, _ := fe.Nominal.Float64()
		values := []any{
			fe.ID,
			string(fe.Tipe),
			string(fe.Kategori),
			nominal,
			fe.Keterangan,
			fe.Tanggal.Format(dateLayout),
			invoiceID,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "C", 14)
	_ = f.SetColWidth(sheet, "D", "D", 16)
	_ = f.SetColWidth(sheet, "E", "E", 40)
	_ = f.SetColWidth(sheet, "F", "G", 12)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "G1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func financePayload(fe domain.FinanceEntry) map[string]any {
	out := map[string]any{
		"id":         fe.ID,
		"tipe":       string(fe.Tipe),
		"kategori":   string(fe.Kategori),
		"nominal":    fe.Nominal,
		"keterangan": fe.Keterangan,
		"tanggal":    fe.Tanggal.Format(dateLayout),
	}
	if fe.InvoiceID != nil {
		out["invoiceId"] = *fe.InvoiceID
	}
	return out
}
