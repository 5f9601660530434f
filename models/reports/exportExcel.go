package reports

import (
	"fmt"
	"io"

	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/xuri/excelize/v2"
)

const (
	HeadersSheet     = "Headers"
	XLSXContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	receivedAtFormat = "yyyy-mm-dd hh:mm:ss"
)

var headerColumns = []string{
	"ID", "File ID", "Requisition ID", "Received At", "Status", "Requested By",
	"Currency", "Total", "Items", "Approvals", "JSON File", "XML File", "CSV File",
}

// NewHeadersWorkbook lays out the header listing on a single sheet, one row per header.
func NewHeadersWorkbook(summaries []*models.HeaderSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", HeadersSheet); err != nil {
		f.Close()
		return nil, err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(receivedAtFormat)})
	if err != nil {
		f.Close()
		return nil, err
	}

	for i, heading := range headerColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(HeadersSheet, cell, heading); err != nil {
			f.Close()
			return nil, err
		}
	}
	lastHeading, _ := excelize.CoordinatesToCellName(len(headerColumns), 1)
	if err := f.SetCellStyle(HeadersSheet, "A1", lastHeading, boldStyle); err != nil {
		f.Close()
		return nil, err
	}

	for i, s := range summaries {
		row := i + 2
		total := ""
		if s.Total.Valid {
			total = s.Total.Decimal.String()
		}
		values := []interface{}{
			s.ID,
			s.FileId,
			utils.DereferencePtr(s.RequisitionId),
			s.ReceivedAt,
			utils.DereferencePtr(s.Status),
			utils.DereferencePtr(s.RequestedByLogin),
			utils.DereferencePtr(s.CurrencyCode),
			total,
			s.ItemCount,
			s.ApprovalCount,
			s.JsonFilename,
			s.XmlFilename,
			s.CsvFilename,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(HeadersSheet, cell, &values); err != nil {
			f.Close()
			return nil, err
		}
		dateCell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetCellStyle(HeadersSheet, dateCell, dateCell, dateStyle); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteHeadersWorkbook streams the listing as XLSX to w.
func WriteHeadersWorkbook(w io.Writer, summaries []*models.HeaderSummary) error {
	f, err := NewHeadersWorkbook(summaries)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveHeadersWorkbook writes the listing to a file on disk.
func SaveHeadersWorkbook(path string, summaries []*models.HeaderSummary) error {
	f, err := NewHeadersWorkbook(summaries)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func ptr[T any](v T) *T {
	return &v
}
