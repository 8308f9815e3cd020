package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Bateyjosue/xenfi-systems/internal/apperr"
	"github.com/Bateyjosue/xenfi-systems/internal/middleware"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Expenses"

var exportHeader = []string{"Date", "Category", "Amount", "Payment method", "Description", "Attachment"}

// ExportHandler downloads the caller's expenses, honoring the list filters.
type ExportHandler struct {
	Expenses *service.ExpenseService
	now      func() time.Time
}

func NewExportHandler(expenses *service.ExpenseService) *ExportHandler {
	return &ExportHandler{Expenses: expenses, now: time.Now}
}

func exportRow(e service.ExpenseView) []string {
	return []string{
		e.Date.UTC().Format(util.DateLayout),
		categoryName(e),
		strconv.FormatFloat(e.Amount, 'f', 2, 64),
		string(e.PaymentMethod),
		deref(e.Description),
		deref(e.AttachmentURL),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *ExportHandler) records(c *gin.Context) ([]service.ExpenseView, bool) {
	rows, err := h.Expenses.Records(c.Request.Context(), middleware.CurrentIdentity(c), expenseQuery(c))
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	return rows, true
}

func (h *ExportHandler) attachment(c *gin.Context, ext string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"expenses_%s.%s\"",
		h.now().Format("20060102"), ext))
}

// ExportCSV writes a UTF-8 CSV with a BOM so spreadsheet apps detect the encoding.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.records(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)
	_ = w.Write(exportHeader)
	for _, e := range rows {
		_ = w.Write(exportRow(e))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		util.Fail(c, apperr.Unexpected(fmt.Errorf("write csv: %w", err)))
		return
	}

	h.attachment(c, "csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	rows, ok := h.records(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		util.Fail(c, apperr.Unexpected(fmt.Errorf("rename sheet: %w", err)))
		return
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &exportHeader); err != nil {
		util.Fail(c, apperr.Unexpected(fmt.Errorf("write header: %w", err)))
		return
	}
	for i, e := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			util.Fail(c, apperr.Unexpected(err))
			return
		}
		values := []any{
			e.Date.UTC().Format(util.DateLayout),
			categoryName(e),
			e.Amount,
			string(e.PaymentMethod),
			deref(e.Description),
			deref(e.AttachmentURL),
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			util.Fail(c, apperr.Unexpected(fmt.Errorf("write row %d: %w", i+2, err)))
			return
		}
	}

	_ = f.SetColWidth(xlsxSheet, "A", "A", 12)
	_ = f.SetColWidth(xlsxSheet, "B", "B", 18)
	_ = f.SetColWidth(xlsxSheet, "C", "C", 12)
	_ = f.SetColWidth(xlsxSheet, "D", "D", 16)
	_ = f.SetColWidth(xlsxSheet, "E", "E", 40)
	_ = f.SetColWidth(xlsxSheet, "F", "F", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		util.Fail(c, apperr.Unexpected(fmt.Errorf("encode xlsx: %w", err)))
		return
	}
	h.attachment(c, "xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func categoryName(e service.ExpenseView) string {
	if e.Category == nil {
		return ""
	}
	return e.Category.Name
}
