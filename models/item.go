package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is one requisition line.
type Item struct {
	ID              int                 `gorm:"primary_key" json:"id"`
	HeaderId        int                 `gorm:"index;not null" json:"header_id"`
	Header          *Header             `gorm:"foreignKey:HeaderId;constraint:OnDelete:CASCADE" json:"-"`
	LineId          *string             `gorm:"size:64;default:null" json:"line_id"`
	LineNum         *int                `gorm:"default:null" json:"line_num"`
	Description     *string             `gorm:"type:text;default:null" json:"description"`
	Quantity        decimal.NullDecimal `gorm:"type:decimal(20,4);default:null" json:"quantity"`
	Total           decimal.NullDecimal `gorm:"type:decimal(20,4);default:null" json:"total"`
	QuantityRaw     *string             `gorm:"type:text;default:null" json:"quantity_raw"`
	TotalRaw        *string             `gorm:"type:text;default:null" json:"total_raw"`
	SourcePartNum   *string             `gorm:"size:255;default:null" json:"source_part_num"`
	Status          *string             `gorm:"size:64;default:null" json:"status"`
	ItemId          *string             `gorm:"size:64;default:null" json:"item_id"`
	ItemNumber      *string             `gorm:"size:255;default:null" json:"item_number"`
	ItemName        *string             `gorm:"size:255;default:null" json:"item_name"`
	SupplierId      *string             `gorm:"size:64;default:null" json:"supplier_id"`
	SupplierName    *string             `gorm:"size:255;default:null" json:"supplier_name"`
	SupplierNumber  *string             `gorm:"size:255;default:null" json:"supplier_number"`
	UomCode         *string             `gorm:"size:64;default:null" json:"uom_code"`
	AccountId       *string             `gorm:"size:64;default:null" json:"account_id"`
	AccountName     *string             `gorm:"size:255;default:null" json:"account_name"`
	AccountCode     *string             `gorm:"size:255;default:null" json:"account_code"`
	SourceCreatedAt *time.Time          `gorm:"column:created_at;default:null" json:"created_at"`
}
