package model

type Approval struct {
	ID         string  `gorm:"column:id;type:text;primaryKey"`
	ServerID   string  `gorm:"column:server_id;type:text;not null;index"`
	Action     string  `gorm:"column:action;type:text;not null"`
	ApprovedBy string  `gorm:"column:approved_by;type:text;not null"`
	Reason     *string `gorm:"column:reason;type:text"`
	CreatedAt  string  `gorm:"column:created_at;type:text;not null"`
}

func (Approval) TableName() string {
	return "approvals"
}
