package registry

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	domainregistry "mcpgate/internal/domain/registry"
	"mcpgate/internal/errs"
	"mcpgate/internal/ports"
)

type scanUploadedDetails struct {
	RiskScore float64 `json:"riskScore"`
	ToolCount int     `json:"toolCount"`
	NewStatus string  `json:"newStatus"`
}

// UploadScan stores a scanner report, moves the server to the status the risk policy
// decides, and appends the scan audit event. The three writes share one transaction.
func (s *Service) UploadScan(ctx context.Context, input UploadScanInput) (UploadScanResult, error) {
	if ctx == nil {
		return UploadScanResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return UploadScanResult{}, errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return UploadScanResult{}, errors.New("registry repository is required")
	}
	if s.uow == nil {
		return UploadScanResult{}, errors.New("registry unit of work is required")
	}

	serverID := strings.TrimSpace(input.ServerID)
	if serverID == "" {
		return UploadScanResult{}, errServerIDRequired
	}
	if strings.TrimSpace(input.ScanOutput) == "" {
		return UploadScanResult{}, errScanOutputRequired
	}

	report, err := domainregistry.ParseScanReport(input.ScanOutput)
	if err != nil {
		return UploadScanResult{}, err
	}
	newStatus := s.thresholds.Evaluate(report.RiskScore)

	scanVersion := strings.TrimSpace(input.ScanVersion)
	if scanVersion == "" {
		scanVersion = "unknown"
	}

	now := nowUTCString()
	scanID := uuid.New().String()
	issuesJSON, err := marshalIssues(report.Issues)
	if err != nil {
		return UploadScanResult{}, err
	}
	details, err := json.Marshal(scanUploadedDetails{
		RiskScore: report.RiskScore,
		ToolCount: len(report.Tools),
		NewStatus: string(newStatus),
	})
	if err != nil {
		return UploadScanResult{}, errs.Wrap(err, "marshal audit details")
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetServer(txCtx, serverID); err != nil {
			return err
		}
		if err := s.repo.CreateScan(txCtx, ports.ScanRecord{
			ID:              scanID,
			ServerID:        serverID,
			ScannerVersion:  scanVersion,
			RiskScore:       report.RiskScore,
			IssuesJSON:      issuesJSON,
			DiscoveredTools: report.Tools,
			RawOutput:       input.ScanOutput,
			ScannedAt:       parseScannedAt(input.ScannedAt, now),
			CreatedAt:       now,
		}); err != nil {
			return err
		}
		if err := s.repo.UpdateServerStatus(txCtx, serverID, string(newStatus), now); err != nil {
			return err
		}
		return s.repo.AppendAuditEvent(txCtx, ports.AuditEventCreate{
			EventType:   domainregistry.EventScanUploaded.String(),
			ServerID:    &serverID,
			Actor:       actorGateway,
			DetailsJSON: string(details),
			CreatedAt:   now,
		})
	}); err != nil {
		return UploadScanResult{}, err
	}

	s.publishAuditBestEffort(ctx, domainregistry.EventScanUploaded, &serverID, actorGateway, details, now)

	return UploadScanResult{
		ID:          scanID,
		ServerID:    serverID,
		RiskScore:   report.RiskScore,
		Status:      string(newStatus),
		ToolsFound:  len(report.Tools),
		IssuesFound: len(report.Issues),
		Message:     "Scan uploaded. Server status: " + string(newStatus),
	}, nil
}
