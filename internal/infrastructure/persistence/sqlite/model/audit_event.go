package model

type AuditEvent struct {
	EventID   uint64  `gorm:"column:event_id;primaryKey;autoIncrement"`
	EventType string  `gorm:"column:event_type;type:text;not null;index"`
	ServerID  *string `gorm:"column:server_id;type:text;index"`
	Actor     string  `gorm:"column:actor;type:text;not null"`
	Details   string  `gorm:"column:details;type:text;not null"`
	CreatedAt string  `gorm:"column:created_at;type:text;not null"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
