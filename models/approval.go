package models

import "time"

// Approval is one step of a requisition's approval chain.
type Approval struct {
	ID                int        `gorm:"primary_key" json:"id"`
	HeaderId          int        `gorm:"index;not null" json:"header_id"`
	Header            *Header    `gorm:"foreignKey:HeaderId;constraint:OnDelete:CASCADE" json:"-"`
	ApprovalId        *string    `gorm:"size:64;default:null" json:"approval_id"`
	Position          *int       `gorm:"default:null" json:"position"`
	ApprovalChainId   *string    `gorm:"size:64;default:null" json:"approval_chain_id"`
	Status            *string    `gorm:"size:64;default:null" json:"status"`
	ApprovalDate      *time.Time `gorm:"default:null" json:"approval_date"`
	Note              *string    `gorm:"type:text;default:null" json:"note"`
	Type              *string    `gorm:"size:128;default:null" json:"type"`
	ApprovableType    *string    `gorm:"size:128;default:null" json:"approvable_type"`
	ApprovableId      *string    `gorm:"size:64;default:null" json:"approvable_id"`
	ParallelGroupName *string    `gorm:"size:255;default:null" json:"parallel_group_name"`
	DelegateId        *string    `gorm:"size:64;default:null" json:"delegate_id"`
	ApprovedById      *string    `gorm:"size:64;default:null" json:"approved_by_id"`
	ApprovedByLogin   *string    `gorm:"size:255;default:null" json:"approved_by_login"`
	ApprovedByEmail   *string    `gorm:"size:255;default:null" json:"approved_by_email"`
	SourceCreatedAt   *time.Time `gorm:"column:created_at;default:null" json:"created_at"`
	SourceUpdatedAt   *time.Time `gorm:"column:updated_at;default:null" json:"updated_at"`
}
