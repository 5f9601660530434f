package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/payload"
	"github.com/mmdatafocus/requisition_inbound/testutil"
	"gorm.io/gorm"
)

const requisitionFixture = `{
  "id": 12345,
  "created-at": "2024-01-15T10:30:00+07:00",
  "updated-at": "2024-01-15T11:00:00Z",
  "status": "pending_approval",
  "submitted-at": "2024-01-15T10:35:00+07:00",
  "ship-to-attention": "Procurement desk",
  "exported": false,
  "rejected": 0,
  "total": "1500000.50",
  "total-with-estimated-tax": 1665000.55,
  "estimated-tax-amount": null,
  "currency": {"code": "IDR"},
  "requested-by": {"id": 77, "login": "jdoe"},
  "ship-to-address": {"id": 5, "name": "HQ", "city": "Jakarta", "street1": "Jl. Sudirman 1"},
  "buyer-note": "Deliver before noon",
  "justification": "Quarterly restock",
  "requisition-lines": [
    {
      "id": 901, "line-num": 2, "description": "Paper", "quantity": "10", "total": 500000,
      "source-part-num": "SP-9", "status": "open",
      "item": {"id": 1, "item-number": "P-1", "name": "Paper A4"},
      "supplier": {"id": 3, "name": "ACME", "number": "S-3"},
      "uom": {"code": "BOX"},
      "account": {"id": 8, "name": "Office", "code": "6100"},
      "created-at": "2024-01-15T10:30:00Z"
    },
    {"id": 900, "line-num": 1, "description": "Toner", "quantity": 2, "total": "1000000.50"}
  ],
  "approvals": [
    {
      "id": 55, "position": 1, "approval-chain-id": 4, "status": "approved",
      "approval-date": "2024-01-16T08:00:00Z", "note": "ok", "type": "UserApprover",
      "approvable-type": "RequisitionHeader", "approvable-id": 12345,
      "approved-by": {"id": 9, "login": "boss", "email": "boss@example.com"}
    }
  ]
}`

func openModelsDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.OpenTestDB(t)
	if err := MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	return db
}

func parseFixture(t *testing.T, body string) payload.Value {
	t.Helper()
	v, err := payload.ParseObject([]byte(body))
	if err != nil {
		t.Fatalf("ParseObject: %v", err)
	}
	return v
}

func testFiles(suffix string) artifacts.Files {
	base := "inbound_2024-01-15_10-30-00_" + suffix
	return artifacts.Files{JSON: base + ".json", XML: base + ".xml", CSV: base + ".csv"}
}

func testMeta(received time.Time) payload.Metadata {
	return payload.Metadata{
		ReceivedAt:  received.Format("2006-01-02 15:04:05"),
		RemoteIp:    "10.0.0.1",
		UserAgent:   "go-test",
		ContentType: "application/json",
		Received:    received,
	}
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

// failNthCreate makes the nth insert into table fail.
func failNthCreate(t *testing.T, db *gorm.DB, table string, n int) {
	t.Helper()
	seen := 0
	name := fmt.Sprintf("test:fail_%s_%d", table, n)
	err := db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		seen++
		if seen == n {
			tx.AddError(fmt.Errorf("injected failure on %s #%d", table, n))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}
