package models

import (
	"testing"
	"time"

	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/shopspring/decimal"
)

func TestHeaderFromPayload(t *testing.T) {
	received := time.Date(2024, 1, 15, 3, 30, 0, 0, time.UTC)
	h := HeaderFromPayload(testMeta(received), parseFixture(t, requisitionFixture), testFiles("abc"))

	if h.FileId != "inbound_2024-01-15_10-30-00_abc" {
		t.Fatalf("FileId = %s", h.FileId)
	}
	if !h.ReceivedAt.Equal(received) || h.RemoteIp != "10.0.0.1" || h.UserAgent != "go-test" {
		t.Fatalf("metadata not copied: %+v", h)
	}
	if utils.DereferencePtr(h.RequisitionId) != "12345" {
		t.Fatalf("RequisitionId = %v", h.RequisitionId)
	}
	if got := utils.DereferencePtr(utils.FormatTimestamp(h.SourceCreatedAt)); got != "2024-01-15 03:30:00" {
		t.Fatalf("created_at = %s", got)
	}
	if got := utils.DereferencePtr(utils.FormatTimestamp(h.SubmittedAt)); got != "2024-01-15 03:35:00" {
		t.Fatalf("submitted_at = %s", got)
	}
	if utils.DereferencePtr(h.CurrencyCode) != "IDR" || utils.DereferencePtr(h.RequestedByLogin) != "jdoe" {
		t.Fatalf("nested fields: currency=%v login=%v", h.CurrencyCode, h.RequestedByLogin)
	}
	if utils.DereferencePtr(h.ShipToAddressStreet1) != "Jl. Sudirman 1" {
		t.Fatalf("street1 = %v", h.ShipToAddressStreet1)
	}
	if h.Exported || h.Rejected {
		t.Fatalf("exported/rejected should be false: %v/%v", h.Exported, h.Rejected)
	}
	if !h.Total.Valid || !h.Total.Decimal.Equal(decimal.RequireFromString("1500000.5")) {
		t.Fatalf("total = %+v", h.Total)
	}
	if !h.TotalWithEstimatedTax.Valid || h.EstimatedTaxAmount.Valid {
		t.Fatalf("tax amounts = %+v / %+v", h.TotalWithEstimatedTax, h.EstimatedTaxAmount)
	}
	if utils.DereferencePtr(h.TotalRaw) != "1500000.50" || utils.DereferencePtr(h.TotalWithEstimatedTaxRaw) != "1665000.55" || h.EstimatedTaxAmountRaw != nil {
		t.Fatalf("raw amounts = %v / %v / %v", h.TotalRaw, h.TotalWithEstimatedTaxRaw, h.EstimatedTaxAmountRaw)
	}
	if h.JsonFilename != "inbound_2024-01-15_10-30-00_abc.json" || h.CsvFilename != "inbound_2024-01-15_10-30-00_abc.csv" {
		t.Fatalf("filenames = %s %s", h.JsonFilename, h.CsvFilename)
	}
}

func TestHeaderFromPayloadAbsentFields(t *testing.T) {
	h := HeaderFromPayload(testMeta(time.Now()), parseFixture(t, `{"currency":"IDR","exported":"yes","created-at":"not a date"}`), testFiles("x"))
	if h.RequisitionId != nil || h.Status != nil || h.CurrencyCode != nil || h.SourceCreatedAt != nil {
		t.Fatalf("absent fields should be nil: %+v", h)
	}
	if !h.Exported {
		t.Fatalf("non-empty string should be truthy")
	}
}

func TestItemsFromPayload(t *testing.T) {
	items := ItemsFromPayload(parseFixture(t, requisitionFixture))
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	first := items[0]
	if utils.DereferencePtr(first.LineId) != "901" || utils.DereferencePtr(first.LineNum) != 2 {
		t.Fatalf("first line = %+v", first)
	}
	if utils.DereferencePtr(first.ItemNumber) != "P-1" || utils.DereferencePtr(first.UomCode) != "BOX" || utils.DereferencePtr(first.AccountCode) != "6100" {
		t.Fatalf("nested line fields = %+v", first)
	}
	if !first.Quantity.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("quantity = %+v", first.Quantity)
	}
	if utils.DereferencePtr(first.QuantityRaw) != "10" || utils.DereferencePtr(first.TotalRaw) != "500000" {
		t.Fatalf("raw line amounts = %v / %v", first.QuantityRaw, first.TotalRaw)
	}
	if items[1].SupplierName != nil || items[1].SourceCreatedAt != nil {
		t.Fatalf("absent nested fields should be nil: %+v", items[1])
	}
}

func TestRowsFromMissingOrInvalidArrays(t *testing.T) {
	cases := []string{
		`{}`,
		`{"requisition-lines":"nope","approvals":{"id":1}}`,
		`{"requisition-lines":null,"approvals":null}`,
		`{"requisition-lines":[],"approvals":[]}`,
	}
	for _, body := range cases {
		data := parseFixture(t, body)
		if n := len(ItemsFromPayload(data)); n != 0 {
			t.Fatalf("%s: items = %d", body, n)
		}
		if n := len(ApprovalsFromPayload(data)); n != 0 {
			t.Fatalf("%s: approvals = %d", body, n)
		}
	}
}

func TestApprovalsFromPayload(t *testing.T) {
	approvals := ApprovalsFromPayload(parseFixture(t, requisitionFixture))
	if len(approvals) != 1 {
		t.Fatalf("approvals = %d", len(approvals))
	}
	a := approvals[0]
	if utils.DereferencePtr(a.Position) != 1 || utils.DereferencePtr(a.ApprovedByEmail) != "boss@example.com" {
		t.Fatalf("approval = %+v", a)
	}
	if got := utils.DereferencePtr(utils.FormatTimestamp(a.ApprovalDate)); got != "2024-01-16 08:00:00" {
		t.Fatalf("approval_date = %s", got)
	}
}

func TestOptInt(t *testing.T) {
	data := parseFixture(t, `{"a":3,"b":"4","c":5.0,"d":5.5,"e":true,"f":"x"}`)
	want := map[string]*int{"a": ptr(3), "b": ptr(4), "c": ptr(5), "d": nil, "e": nil, "f": nil, "missing": nil}
	for key, w := range want {
		got := optInt(data, key)
		if (got == nil) != (w == nil) || (got != nil && *got != *w) {
			t.Fatalf("optInt(%s) = %v, want %v", key, got, w)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestNonNumericAmountKeepsText(t *testing.T) {
	data := parseFixture(t, `{"total":"12.50 USD","requisition-lines":[{"quantity":"two","total":"12.50"}]}`)

	h := HeaderFromPayload(testMeta(time.Now()), data, testFiles("amt"))
	if h.Total.Valid || utils.DereferencePtr(h.TotalRaw) != "12.50 USD" {
		t.Fatalf("total = %+v raw = %v", h.Total, h.TotalRaw)
	}
	line := ItemsFromPayload(data)[0]
	if line.Quantity.Valid || utils.DereferencePtr(line.QuantityRaw) != "two" {
		t.Fatalf("quantity = %+v raw = %v", line.Quantity, line.QuantityRaw)
	}
	if !line.Total.Valid || utils.DereferencePtr(line.TotalRaw) != "12.50" {
		t.Fatalf("line total = %+v raw = %v", line.Total, line.TotalRaw)
	}
}
