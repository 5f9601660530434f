package models

import "time"

// AuditHistory records one downstream (RFC) call made for a committed header.
type AuditHistory struct {
	ID              int       `gorm:"primary_key" json:"id"`
	HeaderId        int       `gorm:"index;not null" json:"header_id"`
	FunctionModule  string    `gorm:"size:100;not null" json:"function_module"`
	RequestData     string    `gorm:"type:text" json:"request_data"`
	ResponseData    string    `gorm:"type:text" json:"response_data"`
	Success         bool      `gorm:"not null;default:false" json:"success"`
	ErrorMessage    *string   `gorm:"type:text;default:null" json:"error_message"`
	ExecutionTimeMs int64     `gorm:"not null;default:0" json:"execution_time_ms"`
	CallTimestamp   time.Time `gorm:"autoCreateTime" json:"call_timestamp"`
}

func (AuditHistory) TableName() string {
	return "audit_history"
}
