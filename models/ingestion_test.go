package models

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/requisition_inbound/utils"
)

type stubRFC struct {
	calls    int
	module   string
	request  RFCRequest
	response RFCOutcome
}

func (s *stubRFC) Call(_ context.Context, functionModule string, request RFCRequest) RFCOutcome {
	s.calls++
	s.module = functionModule
	s.request = request
	return s.response
}

func TestSaveStoresHeaderItemsAndApprovals(t *testing.T) {
	db := openModelsDB(t)
	ctx := context.Background()
	in := NewIngestor(db, nil, "")

	id, err := in.Save(ctx, testMeta(time.Now()), parseFixture(t, requisitionFixture), testFiles("a1"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id <= 0 {
		t.Fatalf("header id = %d", id)
	}

	header, err := GetHeader(ctx, db, id)
	if err != nil {
		t.Fatalf("GetHeader: %v", err)
	}
	if header.FileId != "inbound_2024-01-15_10-30-00_a1" {
		t.Fatalf("file_id = %s", header.FileId)
	}
	if utils.DereferencePtr(header.TotalRaw) != "1500000.50" {
		t.Fatalf("total_raw = %v", header.TotalRaw)
	}

	items, err := ListItems(ctx, db, id)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	// ordered by line number, not by payload order
	if utils.DereferencePtr(items[0].LineId) != "900" || utils.DereferencePtr(items[1].LineId) != "901" {
		t.Fatalf("item order = %v, %v", *items[0].LineId, *items[1].LineId)
	}

	approvals, err := ListApprovals(ctx, db, id)
	if err != nil {
		t.Fatalf("ListApprovals: %v", err)
	}
	if len(approvals) != 1 || approvals[0].HeaderId != id {
		t.Fatalf("approvals = %+v", approvals)
	}

	history, err := ListAuditHistory(ctx, db, id)
	if err != nil {
		t.Fatalf("ListAuditHistory: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("audit rows = %d", len(history))
	}
	h := history[0]
	if h.FunctionModule != DefaultRFCFunctionModule || h.Success || h.ExecutionTimeMs != 0 {
		t.Fatalf("audit row = %+v", h)
	}
	wantRequest := `{"T_DATA":[{"REQUESTED_BY_ID":"77","LINE_ID":"901"},{"REQUESTED_BY_ID":"77","LINE_ID":"900"}]}`
	if h.RequestData != wantRequest {
		t.Fatalf("request_data = %s", h.RequestData)
	}
	if h.ResponseData != `{"message":"RFC not available - logged for reference"}` {
		t.Fatalf("response_data = %s", h.ResponseData)
	}
	if utils.DereferencePtr(h.ErrorMessage) != rfcUnavailableError {
		t.Fatalf("error_message = %v", h.ErrorMessage)
	}
}

func TestSaveWithoutLinesSkipsAudit(t *testing.T) {
	db := openModelsDB(t)
	rfc := &stubRFC{}
	in := NewIngestor(db, rfc, "")

	id, err := in.Save(context.Background(), testMeta(time.Now()), parseFixture(t, `{"id":1,"approvals":[{"id":2,"position":1}]}`), testFiles("b1"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if n := countRows(t, db, &Item{}); n != 0 {
		t.Fatalf("items = %d", n)
	}
	if n := countRows(t, db, &Approval{}); n != 1 {
		t.Fatalf("approvals = %d", n)
	}
	if n := countRows(t, db, &AuditHistory{}); n != 0 {
		t.Fatalf("audit rows = %d", n)
	}
	if rfc.calls != 0 {
		t.Fatalf("downstream called %d times", rfc.calls)
	}
	if _, err := GetHeader(context.Background(), db, id); err != nil {
		t.Fatalf("header missing: %v", err)
	}
}

func TestSaveRecordsDownstreamOutcome(t *testing.T) {
	db := openModelsDB(t)
	rfc := &stubRFC{response: RFCOutcome{
		Response: map[string]string{"message_id": "m-1"},
		Success:  true,
		Duration: 42 * time.Millisecond,
	}}
	in := NewIngestor(db, rfc, "ZKPN_CUSTOM")

	id, err := in.Save(context.Background(), testMeta(time.Now()), parseFixture(t, requisitionFixture), testFiles("c1"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rfc.calls != 1 || rfc.module != "ZKPN_CUSTOM" || len(rfc.request.TData) != 2 {
		t.Fatalf("downstream call = %+v", rfc)
	}
	history, err := ListAuditHistory(context.Background(), db, id)
	if err != nil {
		t.Fatalf("ListAuditHistory: %v", err)
	}
	if len(history) != 1 || !history[0].Success || history[0].ExecutionTimeMs != 42 || history[0].ErrorMessage != nil {
		t.Fatalf("audit row = %+v", history[0])
	}
}

func TestSaveRollsBackWhenAnItemFails(t *testing.T) {
	db := openModelsDB(t)
	failNthCreate(t, db, "items", 2)
	in := NewIngestor(db, nil, "")

	_, err := in.Save(context.Background(), testMeta(time.Now()), parseFixture(t, requisitionFixture), testFiles("d1"))
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("err = %v, want ErrTransactionFailed", err)
	}
	for _, model := range []any{&Header{}, &Item{}, &Approval{}, &AuditHistory{}} {
		if n := countRows(t, db, model); n != 0 {
			t.Fatalf("%T rows = %d after rollback", model, n)
		}
	}
}

func TestSaveRollsBackWhenAnApprovalFails(t *testing.T) {
	db := openModelsDB(t)
	failNthCreate(t, db, "approvals", 1)
	in := NewIngestor(db, nil, "")

	_, err := in.Save(context.Background(), testMeta(time.Now()), parseFixture(t, requisitionFixture), testFiles("e1"))
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("err = %v, want ErrTransactionFailed", err)
	}
	if n := countRows(t, db, &Header{}); n != 0 {
		t.Fatalf("headers = %d after rollback", n)
	}
	if n := countRows(t, db, &Item{}); n != 0 {
		t.Fatalf("items = %d after rollback", n)
	}
}

func TestSaveDuplicateFileIdFails(t *testing.T) {
	db := openModelsDB(t)
	in := NewIngestor(db, nil, "")
	data := parseFixture(t, requisitionFixture)

	if _, err := in.Save(context.Background(), testMeta(time.Now()), data, testFiles("f1")); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := in.Save(context.Background(), testMeta(time.Now()), data, testFiles("f1")); !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("second Save err = %v", err)
	}
	if n := countRows(t, db, &Item{}); n != 2 {
		t.Fatalf("items = %d, the failed save must not add rows", n)
	}
}

func TestSaveSurvivesAuditFailure(t *testing.T) {
	db := openModelsDB(t)
	failNthCreate(t, db, "audit_history", 1)
	in := NewIngestor(db, nil, "")

	id, err := in.Save(context.Background(), testMeta(time.Now()), parseFixture(t, requisitionFixture), testFiles("g1"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id <= 0 {
		t.Fatalf("header id = %d", id)
	}
	if n := countRows(t, db, &Item{}); n != 2 {
		t.Fatalf("items = %d", n)
	}
	if n := countRows(t, db, &AuditHistory{}); n != 0 {
		t.Fatalf("audit rows = %d", n)
	}
}
