package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/requisition_inbound/artifacts"
	"github.com/mmdatafocus/requisition_inbound/config"
	"github.com/mmdatafocus/requisition_inbound/metrics"
	"github.com/mmdatafocus/requisition_inbound/payload"
	"github.com/mmdatafocus/requisition_inbound/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

var ErrTransactionFailed = errors.New("inbound transaction failed")

var tracer = otel.Tracer("requisition-inbound/models")

const DefaultRFCFunctionModule = "ZKPN_TEST"

// Ingestor stores parsed payloads. One Ingestor is shared by all requests.
type Ingestor struct {
	db             *gorm.DB
	rfc            RFCCaller
	functionModule string
}

func NewIngestor(db *gorm.DB, rfc RFCCaller, functionModule string) *Ingestor {
	if rfc == nil {
		rfc = UnavailableRFC{}
	}
	if functionModule == "" {
		functionModule = DefaultRFCFunctionModule
	}
	return &Ingestor{db: db, rfc: rfc, functionModule: functionModule}
}

// Save writes the header, its items and its approvals in one transaction and
// returns the new header id. Nothing is persisted if any insert fails.
//
// After commit, when the payload carried at least one line, the downstream
// call is made and recorded in audit_history. That step never fails Save.
func (in *Ingestor) Save(ctx context.Context, meta payload.Metadata, data payload.Value, files artifacts.Files) (int, error) {
	ctx, span := tracer.Start(ctx, "Ingestor.Save")
	defer span.End()

	header := HeaderFromPayload(meta, data, files)
	items := ItemsFromPayload(data)
	approvals := ApprovalsFromPayload(data)
	span.SetAttributes(
		attribute.String("inbound.file_id", header.FileId),
		attribute.Int("inbound.items", len(items)),
		attribute.Int("inbound.approvals", len(approvals)),
	)

	started := time.Now()
	if err := in.insertAll(ctx, header, items, approvals); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
		return 0, err
	}
	metrics.IngestDuration.Observe(time.Since(started).Seconds())

	if len(items) > 0 {
		if err := in.recordRFCCall(ctx, header, items); err != nil {
			metrics.AuditFailuresTotal.Inc()
			config.LogError(config.GetLogger(), "ingestion.go", "Save", "record rfc call", header.ID, err)
		}
	}
	return header.ID, nil
}

func (in *Ingestor) insertAll(ctx context.Context, header *Header, items []*Item, approvals []*Approval) error {
	tx := in.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: begin: %w", ErrTransactionFailed, tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := tx.Create(header).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: insert header: %w", ErrTransactionFailed, err)
	}
	for i, item := range items {
		item.HeaderId = header.ID
		if err := tx.Create(item).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: insert item %d: %w", ErrTransactionFailed, i, err)
		}
	}
	for i, approval := range approvals {
		approval.HeaderId = header.ID
		if err := tx.Create(approval).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: insert approval %d: %w", ErrTransactionFailed, i, err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: commit: %w", ErrTransactionFailed, err)
	}
	return nil
}

func (in *Ingestor) recordRFCCall(ctx context.Context, header *Header, items []*Item) error {
	request := BuildRFCRequest(header, items)
	outcome := in.rfc.Call(ctx, in.functionModule, request)

	requestData, err := utils.MarshalToJSON(request)
	if err != nil {
		return err
	}
	responseData, err := utils.MarshalToJSON(outcome.Response)
	if err != nil {
		return err
	}
	record := AuditHistory{
		HeaderId:        header.ID,
		FunctionModule:  in.functionModule,
		RequestData:     requestData,
		ResponseData:    responseData,
		Success:         outcome.Success,
		ErrorMessage:    utils.NilIfEmpty(outcome.ErrorMessage),
		ExecutionTimeMs: outcome.Duration.Milliseconds(),
	}
	if err := in.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}

	config.GetLogger().WithFields(logrus.Fields{
		"field":           "recordRFCCall",
		"header_id":       header.ID,
		"function_module": in.functionModule,
		"success":         outcome.Success,
		"lines":           len(request.TData),
	}).Info("rfc call recorded")
	return nil
}
