package models

import (
	"context"
	"time"
)

const (
	rfcUnavailableMessage = "RFC not available - logged for reference"
	rfcUnavailableError   = "SAP NWRFC not available in this environment"
)

// RFCLine is one T_DATA row sent to the downstream function module.
type RFCLine struct {
	RequestedById string `json:"REQUESTED_BY_ID"`
	LineId        string `json:"LINE_ID"`
}

type RFCRequest struct {
	TData []RFCLine `json:"T_DATA"`
}

// RFCOutcome is what gets recorded in audit_history for a call.
type RFCOutcome struct {
	Response     any
	Success      bool
	ErrorMessage string
	Duration     time.Duration
}

// RFCCaller hands a committed requisition to the downstream system.
// Implementations report failures through the outcome, never by panicking.
type RFCCaller interface {
	Call(ctx context.Context, functionModule string, request RFCRequest) RFCOutcome
}

// UnavailableRFC is used when no downstream transport is configured.
// The call is not attempted; the audit row keeps the request for later replay.
type UnavailableRFC struct{}

func (UnavailableRFC) Call(_ context.Context, _ string, _ RFCRequest) RFCOutcome {
	return RFCOutcome{
		Response:     map[string]string{"message": rfcUnavailableMessage},
		Success:      false,
		ErrorMessage: rfcUnavailableError,
	}
}

// BuildRFCRequest pairs the requester with each stored line id.
func BuildRFCRequest(header *Header, items []*Item) RFCRequest {
	req := RFCRequest{TData: make([]RFCLine, 0, len(items))}
	requestedBy := ""
	if header.RequestedById != nil {
		requestedBy = *header.RequestedById
	}
	for _, item := range items {
		lineId := ""
		if item.LineId != nil {
			lineId = *item.LineId
		}
		req.TData = append(req.TData, RFCLine{RequestedById: requestedBy, LineId: lineId})
	}
	return req
}
