package registry

// Thresholds are the risk policy applied to uploaded scan results.
//
// A score at or below AutoApproveBelow approves the server without manual
// review. A score above AutoApproveBelow but at or below MaxRiskScore
// passes the scan and waits for an admin decision. Anything above
// MaxRiskScore fails the scan.
type Thresholds struct {
	AutoApproveBelow float64
	MaxRiskScore     float64
}

func (t Thresholds) Evaluate(riskScore float64) ServerStatus {
	switch {
	case riskScore <= t.AutoApproveBelow:
		return StatusApproved
	case riskScore <= t.MaxRiskScore:
		return StatusScannedPass
	default:
		return StatusScannedFail
	}
}
