package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/payload"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/shopspring/decimal"
)

// Payload field names as sent by the procurement system.
const (
	fieldRequisitionLines = "requisition-lines"
	fieldApprovals        = "approvals"
)

// HeaderFromPayload maps the top-level requisition fields onto a header row.
// Absent fields stay nil; exported and rejected follow the payload's truthiness.
func HeaderFromPayload(meta payload.Metadata, data payload.Value, files artifacts.Files) *Header {
	received := meta.Received
	if received.IsZero() {
		received = time.Now()
	}
	return &Header{
		FileId:      files.FileId(),
		ReceivedAt:  received.UTC().Truncate(time.Second),
		RemoteIp:    meta.RemoteIp,
		UserAgent:   meta.UserAgent,
		ContentType: meta.ContentType,

		RequisitionId:         optString(data, "id"),
		SourceCreatedAt:       optTimestamp(data, "created-at"),
		SourceUpdatedAt:       optTimestamp(data, "updated-at"),
		Status:                optString(data, "status"),
		SubmittedAt:           optTimestamp(data, "submitted-at"),
		ShipToAttention:       optString(data, "ship-to-attention"),
		Exported:              optTruthy(data, "exported"),
		Total:                 optDecimal(data, "total"),
		TotalWithEstimatedTax: optDecimal(data, "total-with-estimated-tax"),
		EstimatedTaxAmount:    optDecimal(data, "estimated-tax-amount"),
		Rejected:              optTruthy(data, "rejected"),
		CurrencyCode:          optString(data, "currency", "code"),
		RequestedById:         optString(data, "requested-by", "id"),
		RequestedByLogin:      optString(data, "requested-by", "login"),
		ShipToAddressId:       optString(data, "ship-to-address", "id"),
		ShipToAddressName:     optString(data, "ship-to-address", "name"),
		ShipToAddressCity:     optString(data, "ship-to-address", "city"),
		ShipToAddressStreet1:  optString(data, "ship-to-address", "street1"),
		BuyerNote:             optString(data, "buyer-note"),
		Justification:         optString(data, "justification"),

		TotalRaw:                 optString(data, "total"),
		TotalWithEstimatedTaxRaw: optString(data, "total-with-estimated-tax"),
		EstimatedTaxAmountRaw:    optString(data, "estimated-tax-amount"),

		JsonFilename: files.JSON,
		XmlFilename:  files.XML,
		CsvFilename:  files.CSV,
	}
}

// ItemsFromPayload maps requisition-lines; a missing or non-array field yields no items.
func ItemsFromPayload(data payload.Value) []*Item {
	lines := arrayField(data, fieldRequisitionLines)
	items := make([]*Item, 0, len(lines))
	for _, line := range lines {
		items = append(items, &Item{
			LineId:          optString(line, "id"),
			LineNum:         optInt(line, "line-num"),
			Description:     optString(line, "description"),
			Quantity:        optDecimal(line, "quantity"),
			Total:           optDecimal(line, "total"),
			QuantityRaw:     optString(line, "quantity"),
			TotalRaw:        optString(line, "total"),
			SourcePartNum:   optString(line, "source-part-num"),
			Status:          optString(line, "status"),
			ItemId:          optString(line, "item", "id"),
			ItemNumber:      optString(line, "item", "item-number"),
			ItemName:        optString(line, "item", "name"),
			SupplierId:      optString(line, "supplier", "id"),
			SupplierName:    optString(line, "supplier", "name"),
			SupplierNumber:  optString(line, "supplier", "number"),
			UomCode:         optString(line, "uom", "code"),
			AccountId:       optString(line, "account", "id"),
			AccountName:     optString(line, "account", "name"),
			AccountCode:     optString(line, "account", "code"),
			SourceCreatedAt: optTimestamp(line, "created-at"),
		})
	}
	return items
}

// ApprovalsFromPayload maps approvals; a missing or non-array field yields no approvals.
func ApprovalsFromPayload(data payload.Value) []*Approval {
	entries := arrayField(data, fieldApprovals)
	approvals := make([]*Approval, 0, len(entries))
	for _, a := range entries {
		approvals = append(approvals, &Approval{
			ApprovalId:        optString(a, "id"),
			Position:          optInt(a, "position"),
			ApprovalChainId:   optString(a, "approval-chain-id"),
			Status:            optString(a, "status"),
			ApprovalDate:      optTimestamp(a, "approval-date"),
			Note:              optString(a, "note"),
			Type:              optString(a, "type"),
			ApprovableType:    optString(a, "approvable-type"),
			ApprovableId:      optString(a, "approvable-id"),
			ParallelGroupName: optString(a, "parallel-group-name"),
			DelegateId:        optString(a, "delegate-id"),
			ApprovedById:      optString(a, "approved-by", "id"),
			ApprovedByLogin:   optString(a, "approved-by", "login"),
			ApprovedByEmail:   optString(a, "approved-by", "email"),
			SourceCreatedAt:   optTimestamp(a, "created-at"),
			SourceUpdatedAt:   optTimestamp(a, "updated-at"),
		})
	}
	return approvals
}

func arrayField(data payload.Value, key string) []payload.Value {
	v, ok := data.Lookup(key)
	if !ok || v.Kind() != payload.Array {
		return nil
	}
	return v.Elements()
}

func scalarAt(v payload.Value, path ...string) (payload.Value, bool) {
	got, ok := v.Get(path...)
	if !ok {
		return payload.Value{}, false
	}
	switch got.Kind() {
	case payload.String, payload.Number, payload.Bool:
		return got, true
	}
	return payload.Value{}, false
}

func optString(v payload.Value, path ...string) *string {
	got, ok := scalarAt(v, path...)
	if !ok {
		return nil
	}
	s := got.Text()
	return &s
}

func optInt(v payload.Value, path ...string) *int {
	got, ok := scalarAt(v, path...)
	if !ok || got.Kind() == payload.Bool {
		return nil
	}
	text := strings.TrimSpace(got.Text())
	if n, err := strconv.Atoi(text); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

func optDecimal(v payload.Value, path ...string) decimal.NullDecimal {
	got, ok := scalarAt(v, path...)
	if !ok || got.Kind() == payload.Bool {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(got.Text()))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// optTimestamp accepts ISO-8601 strings and millisecond epochs.
func optTimestamp(v payload.Value, path ...string) *time.Time {
	got, ok := scalarAt(v, path...)
	if !ok {
		return nil
	}
	switch got.Kind() {
	case payload.String:
		return utils.ParseTimestamp(got.Text())
	case payload.Number:
		ms, err := strconv.ParseFloat(got.Text(), 64)
		if err != nil {
			return nil
		}
		return utils.ParseEpochMillis(int64(ms))
	}
	return nil
}

func optTruthy(v payload.Value, path ...string) bool {
	got, ok := v.Get(path...)
	return ok && got.Truthy()
}
