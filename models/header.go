package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Header is one inbound requisition. Rows are written once by the ingestion
// transaction and never updated.
type Header struct {
	ID          int       `gorm:"primary_key" json:"id"`
	FileId      string    `gorm:"size:100;uniqueIndex;not null" json:"file_id"`
	ReceivedAt  time.Time `gorm:"index;not null" json:"received_at"`
	RemoteIp    string    `gorm:"size:255" json:"remote_ip"`
	UserAgent   string    `gorm:"type:text" json:"user_agent"`
	ContentType string    `gorm:"size:255" json:"content_type"`

	RequisitionId         *string             `gorm:"size:64;index;default:null" json:"requisition_id"`
	SourceCreatedAt       *time.Time          `gorm:"column:created_at;default:null" json:"created_at"`
	SourceUpdatedAt       *time.Time          `gorm:"column:updated_at;default:null" json:"updated_at"`
	Status                *string             `gorm:"size:64;default:null" json:"status"`
	SubmittedAt           *time.Time          `gorm:"default:null" json:"submitted_at"`
	ShipToAttention       *string             `gorm:"size:255;default:null" json:"ship_to_attention"`
	Exported              bool                `gorm:"not null;default:false" json:"exported"`
	Total                 decimal.NullDecimal `gorm:"type:decimal(20,4);default:null" json:"total"`
	TotalWithEstimatedTax decimal.NullDecimal `gorm:"type:decimal(20,4);default:null" json:"total_with_estimated_tax"`
	EstimatedTaxAmount    decimal.NullDecimal `gorm:"type:decimal(20,4);default:null" json:"estimated_tax_amount"`
	Rejected              bool                `gorm:"not null;default:false" json:"rejected"`
	CurrencyCode          *string             `gorm:"size:16;default:null" json:"currency_code"`
	RequestedById         *string             `gorm:"size:64;default:null" json:"requested_by_id"`
	RequestedByLogin      *string             `gorm:"size:255;default:null" json:"requested_by_login"`
	ShipToAddressId       *string             `gorm:"size:64;default:null" json:"ship_to_address_id"`
	ShipToAddressName     *string             `gorm:"size:255;default:null" json:"ship_to_address_name"`
	ShipToAddressCity     *string             `gorm:"size:255;default:null" json:"ship_to_address_city"`
	ShipToAddressStreet1  *string             `gorm:"size:255;default:null" json:"ship_to_address_street1"`
	BuyerNote             *string             `gorm:"type:text;default:null" json:"buyer_note"`
	Justification         *string             `gorm:"type:text;default:null" json:"justification"`

	// Amounts exactly as sent. The Total* decimal columns are NULL when the text is not numeric.
	TotalRaw                 *string `gorm:"type:text;default:null" json:"total_raw"`
	TotalWithEstimatedTaxRaw *string `gorm:"type:text;default:null" json:"total_with_estimated_tax_raw"`
	EstimatedTaxAmountRaw    *string `gorm:"type:text;default:null" json:"estimated_tax_amount_raw"`

	JsonFilename string `gorm:"size:255;not null" json:"json_filename"`
	XmlFilename  string `gorm:"size:255;not null" json:"xml_filename"`
	CsvFilename  string `gorm:"size:255;not null" json:"csv_filename"`

	InsertedAt time.Time `gorm:"autoCreateTime" json:"inserted_at"`
}

// HeaderSummary is a header annotated with the size of its line and approval sets.
type HeaderSummary struct {
	Header
	ItemCount     int64 `json:"item_count"`
	ApprovalCount int64 `json:"approval_count"`
}

// HeaderDetail bundles a header with every row that belongs to it.
type HeaderDetail struct {
	Header     *Header         `json:"header"`
	Items      []*Item         `json:"items"`
	Approvals  []*Approval     `json:"approvals"`
	RFCHistory []*AuditHistory `json:"rfc_history"`
}
