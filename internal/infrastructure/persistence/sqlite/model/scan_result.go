package model

type ScanResult struct {
	ID              string  `gorm:"column:id;type:text;primaryKey"`
	ServerID        string  `gorm:"column:server_id;type:text;not null;index"`
	ScannerVersion  string  `gorm:"column:scanner_version;type:text;not null"`
	RiskScore       float64 `gorm:"column:risk_score;not null"`
	Issues          string  `gorm:"column:issues;type:text;not null"`
	DiscoveredTools string  `gorm:"column:discovered_tools;type:text;not null"`
	RawOutput       string  `gorm:"column:raw_output;type:text;not null"`
	ScannedAt       string  `gorm:"column:scanned_at;type:text;not null;index"`
	CreatedAt       string  `gorm:"column:created_at;type:text;not null"`
}

func (ScanResult) TableName() string {
	return "scan_results"
}
