package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// AuditLog records operator actions and generation outcomes.
type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Actor     string    `gorm:"type:varchar(140);not null;index" json:"actor"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Title     string    `gorm:"type:varchar(140)" json:"title,omitempty"`
	Metadata  JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON type for GORM JSONB support
type JSON map[string]interface{}

// Value returns json value, implement driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan scan value into Jsonb, implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := map[string]interface{}{}
	err := json.Unmarshal(bytes, &result)
	*j = JSON(result)
	return err
}

// Audit actions
const (
	AuditActionGenerate           = "schedule.generate"
	AuditActionGenerateDoctorErr  = "schedule.generate.doctor_error"
	AuditActionGenerateFailed     = "schedule.generate.failed"
	AuditActionSlotDelete         = "schedule.slot.delete"
	AuditActionConsultCreate      = "consultation.create"
	AuditActionDoctorCreate       = "doctor.create"
	AuditActionAvailabilityUpdate = "doctor.availability.update"
)

// Actors used when no operator is involved.
const (
	ActorSystemCron = "system:cron"
	ActorCLI        = "system:cli"
)

// AuditLogFilter narrows audit log listings.
type AuditLogFilter struct {
	Action string
	Limit  int
}

// Limits for messages persisted in audit logs.
const (
	MaxErrorTitleLength   = 140
	MaxErrorMessageLength = 140
	MaxTracebackLength    = 5000
)

// Truncate cuts s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
