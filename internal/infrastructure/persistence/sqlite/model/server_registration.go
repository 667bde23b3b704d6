package model

type ServerRegistration struct {
	ID            string  `gorm:"column:id;type:text;primaryKey"`
	CanonicalID   string  `gorm:"column:canonical_id;type:text;not null;uniqueIndex"`
	Name          string  `gorm:"column:name;type:text;not null"`
	OwnerTeam     string  `gorm:"column:owner_team;type:text;not null"`
	SourceType    string  `gorm:"column:source_type;type:text;not null"`
	Status        string  `gorm:"column:status;type:text;not null;index"`
	DeclaredTools string  `gorm:"column:declared_tools;type:text;not null"`
	MCPConfig     *string `gorm:"column:mcp_config;type:text"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt     string  `gorm:"column:updated_at;type:text;not null"`
}

func (ServerRegistration) TableName() string {
	return "server_registrations"
}
