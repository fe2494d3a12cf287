package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/vitalmed/loan-ledger/internal/domain"
	"github.com/vitalmed/loan-ledger/pkg/response"
	"github.com/vitalmed/loan-ledger/pkg/utils"
)

var exportHeader = []string{
	"Processo", "CNPJ", "Cliente", "Referência", "Data Empréstimo",
	"Valor Empréstimo", "Total Devolvido", "Saldo", "Status", "Vencido",
}

// ExportHandler renders loan summaries as CSV or XLSX reports.
type ExportHandler struct {
	service Ledger
	maxRows int
}

func NewExportHandler(service Ledger, maxRows int) *ExportHandler {
	return &ExportHandler{service: service, maxRows: maxRows}
}

// Export handles GET /loans/export?format=csv|xlsx&status=
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}

	summaries, err := h.service.ListByStatus(r.Context(), status)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	if len(summaries) > h.maxRows {
		summaries = summaries[:h.maxRows]
	}

	filename := fmt.Sprintf("emprestimos-%s", time.Now().Format("2006-01-02"))

	switch format {
	case "csv":
		h.exportCSV(w, filename, summaries)
	case "xlsx":
		h.exportXLSX(w, filename, summaries)
	default:
		response.BadRequest(w, "Unsupported export format: "+format, nil)
	}
}

func exportRow(summary *domain.LoanSummary) []string {
	loan := summary.Loan

	overdue := "Não"
	if summary.Overdue {
		overdue = "Sim"
	}

	return []string{
		loan.ProcessNumber,
		utils.FormatCNPJ(loan.BorrowerTaxID),
		loan.BorrowerName,
		loan.ItemReference,
		loan.LoanDate.Format(utils.DateLayout),
		utils.FormatUSD(loan.LoanValue),
		utils.FormatUSD(summary.TotalReturned),
		utils.FormatUSD(summary.Balance),
		summary.Status,
		overdue,
	}
}

func (h *ExportHandler) exportCSV(w http.ResponseWriter, filename string, summaries []*domain.LoanSummary) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))

	// csv.Writer quotes fields containing separators, quotes or newlines,
	// so free-text notes cannot break the row structure.
	writer := csv.NewWriter(w)
	writer.Write(exportHeader)
	for _, summary := range summaries {
		writer.Write(exportRow(summary))
	}
	writer.Flush()
}

func (h *ExportHandler) exportXLSX(w http.ResponseWriter, filename string, summaries []*domain.LoanSummary) {
	file := excelize.NewFile()
	defer file.Close()

	sheet := "Empréstimos"
	file.SetSheetName("Sheet1", sheet)

	header := make([]interface{}, len(exportHeader))
	for i, col := range exportHeader {
		header[i] = col
	}
	file.SetSheetRow(sheet, "A1", &header)

	for i, summary := range summaries {
		cells := exportRow(summary)
		row := make([]interface{}, len(cells))
		for j, cell := range cells {
			row[j] = cell
		}
		file.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".xlsx"))

	if _, err := file.WriteTo(w); err != nil {
		response.InternalServerError(w, "Failed to write spreadsheet", err)
	}
}
