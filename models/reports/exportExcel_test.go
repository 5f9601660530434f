package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/mmdatafocus/requisition_inbound/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestWriteHeadersWorkbook(t *testing.T) {
	status := "approved"
	summaries := []*models.HeaderSummary{
		{
			Header: models.Header{
				ID:           7,
				FileId:       "inbound_2024-01-15_10-30-00_abc",
				ReceivedAt:   time.Date(2024, 1, 15, 3, 30, 0, 0, time.UTC),
				Status:       &status,
				Total:        decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
				JsonFilename: "inbound_2024-01-15_10-30-00_abc.json",
			},
			ItemCount:     2,
			ApprovalCount: 1,
		},
	}

	var buf bytes.Buffer
	if err := WriteHeadersWorkbook(&buf, summaries); err != nil {
		t.Fatalf("WriteHeadersWorkbook: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(HeadersSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][8] != "Items" {
		t.Fatalf("heading row = %v", rows[0])
	}
	want := map[int]string{0: "7", 1: "inbound_2024-01-15_10-30-00_abc", 4: "approved", 7: "12.5", 8: "2", 9: "1"}
	for col, v := range want {
		if rows[1][col] != v {
			t.Fatalf("row[1][%d] = %q, want %q", col, rows[1][col], v)
		}
	}
}
