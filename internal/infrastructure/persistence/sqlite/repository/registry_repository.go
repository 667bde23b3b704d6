package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"mcpgate/internal/errs"
	"mcpgate/internal/infrastructure/persistence/sqlite/model"
	"mcpgate/internal/ports"
)

type RegistryRepository struct {
	db *gorm.DB
}

func NewRegistryRepository(db *gorm.DB) *RegistryRepository {
	return &RegistryRepository{db: db}
}

func (r *RegistryRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *RegistryRepository) ListServers(ctx context.Context, filter ports.ServerFilter) ([]ports.ServerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ServerRegistration{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if owner := strings.TrimSpace(filter.OwnerTeam); owner != "" {
		query = query.Where("owner_team = ?", owner)
	}

	var rows []model.ServerRegistration
	if err := query.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query servers")
	}

	items := make([]ports.ServerRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapServer(row))
	}
	return items, nil
}

func (r *RegistryRepository) GetServer(ctx context.Context, serverID string) (ports.ServerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ServerRecord{}, err
	}
	return getServerWhere(db, "id = ?", serverID)
}

func (r *RegistryRepository) GetServerByCanonicalID(ctx context.Context, canonicalID string) (ports.ServerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ServerRecord{}, err
	}
	return getServerWhere(db, "canonical_id = ?", canonicalID)
}

func (r *RegistryRepository) FindServerByRef(ctx context.Context, ref string) (ports.ServerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ServerRecord{}, err
	}
	return getServerWhere(db, "id = ? OR canonical_id = ?", ref, ref)
}

func (r *RegistryRepository) FindServerByGateIdentifier(ctx context.Context, identifier string) (ports.ServerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ServerRecord{}, err
	}
	return getServerWhere(db, "canonical_id = ? OR json_extract(mcp_config, '$.url') = ?", identifier, identifier)
}

func (r *RegistryRepository) ListServersByStatus(ctx context.Context, status string) ([]ports.ServerRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ServerRegistration
	if err := db.
		Where("status = ?", status).
		Order("name asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query servers by status")
	}

	items := make([]ports.ServerRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapServer(row))
	}
	return items, nil
}

func (r *RegistryRepository) ListScans(ctx context.Context, serverID string) ([]ports.ScanRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ScanResult
	if err := db.
		Where("server_id = ?", serverID).
		Order("scanned_at desc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query scan results")
	}

	items := make([]ports.ScanRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ScanRecord{
			ID:              row.ID,
			ServerID:        row.ServerID,
			ScannerVersion:  row.ScannerVersion,
			RiskScore:       row.RiskScore,
			IssuesJSON:      row.Issues,
			DiscoveredTools: unmarshalTools(row.DiscoveredTools),
			RawOutput:       row.RawOutput,
			ScannedAt:       row.ScannedAt,
			CreatedAt:       row.CreatedAt,
		})
	}
	return items, nil
}

func (r *RegistryRepository) ListAuditEvents(ctx context.Context, filter ports.AuditEventFilter) ([]ports.AuditEventRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.AuditEvent{})
	if eventType := strings.TrimSpace(filter.EventType); eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}
	if serverID := strings.TrimSpace(filter.ServerID); serverID != "" {
		query = query.Where("server_id = ?", serverID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.AuditEvent
	if err := query.Order("event_id desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query audit events")
	}

	items := make([]ports.AuditEventRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AuditEventRecord{
			EventID:     row.EventID,
			EventType:   row.EventType,
			ServerID:    row.ServerID,
			Actor:       row.Actor,
			DetailsJSON: row.Details,
			CreatedAt:   row.CreatedAt,
		})
	}
	return items, nil
}

func (r *RegistryRepository) CreateServer(ctx context.Context, server ports.ServerRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.ServerRegistration{
		ID:            server.ID,
		CanonicalID:   server.CanonicalID,
		Name:          server.Name,
		OwnerTeam:     server.OwnerTeam,
		SourceType:    server.SourceType,
		Status:        server.Status,
		DeclaredTools: marshalTools(server.DeclaredTools),
		MCPConfig:     server.MCPConfig,
		CreatedAt:     server.CreatedAt,
		UpdatedAt:     server.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		if isDuplicateKey(err) {
			return ports.ErrDuplicateCanonicalID
		}
		return errs.Wrap(err, "insert server registration")
	}
	return nil
}

func (r *RegistryRepository) UpdateServerStatus(ctx context.Context, serverID string, status string, updatedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.ServerRegistration{}).
		Where("id = ?", serverID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": updatedAt,
		}).Error; err != nil {
		return errs.Wrap(err, "update server status")
	}
	return nil
}

func (r *RegistryRepository) CreateScan(ctx context.Context, scan ports.ScanRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.ScanResult{
		ID:              scan.ID,
		ServerID:        scan.ServerID,
		ScannerVersion:  scan.ScannerVersion,
		RiskScore:       scan.RiskScore,
		Issues:          scan.IssuesJSON,
		DiscoveredTools: marshalTools(scan.DiscoveredTools),
		RawOutput:       scan.RawOutput,
		ScannedAt:       scan.ScannedAt,
		CreatedAt:       scan.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert scan result")
	}
	return nil
}

func (r *RegistryRepository) CreateApproval(ctx context.Context, approval ports.ApprovalRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Approval{
		ID:         approval.ID,
		ServerID:   approval.ServerID,
		Action:     approval.Action,
		ApprovedBy: approval.ApprovedBy,
		Reason:     approval.Reason,
		CreatedAt:  approval.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert approval")
	}
	return nil
}

func (r *RegistryRepository) AppendAuditEvent(ctx context.Context, input ports.AuditEventCreate) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.AuditEvent{
		EventType: input.EventType,
		ServerID:  input.ServerID,
		Actor:     input.Actor,
		Details:   input.DetailsJSON,
		CreatedAt: input.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert audit event")
	}
	return nil
}

func getServerWhere(db *gorm.DB, condition string, args ...any) (ports.ServerRecord, error) {
	var row model.ServerRegistration
	if err := db.Where(condition, args...).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ServerRecord{}, ports.ErrServerNotFound
		}
		return ports.ServerRecord{}, errs.Wrap(err, "query server registration")
	}
	return mapServer(row), nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func mapServer(row model.ServerRegistration) ports.ServerRecord {
	return ports.ServerRecord{
		ID:            row.ID,
		CanonicalID:   row.CanonicalID,
		Name:          row.Name,
		OwnerTeam:     row.OwnerTeam,
		SourceType:    row.SourceType,
		Status:        row.Status,
		DeclaredTools: unmarshalTools(row.DeclaredTools),
		MCPConfig:     row.MCPConfig,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func marshalTools(tools []string) string {
	if len(tools) == 0 {
		return "[]"
	}

	encoded, err := json.Marshal(tools)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func unmarshalTools(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var tools []string
	if err := json.Unmarshal([]byte(raw), &tools); err != nil {
		return nil
	}
	return tools
}
