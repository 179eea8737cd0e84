package quality

type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// MissingStatus grades the share of rows missing a field.
func MissingStatus(percent float64) Status {
	switch {
	case percent > 50:
		return StatusCritical
	case percent > 10:
		return StatusWarning
	default:
		return StatusOK
	}
}

// IntegrityStatus fails on any orphaned row.
func IntegrityStatus(orphans int64) Status {
	if orphans > 0 {
		return StatusCritical
	}
	return StatusOK
}
