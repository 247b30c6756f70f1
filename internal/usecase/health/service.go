package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db     DBPinger
	vision VisionChecker
}

// New creates a Service. vision can be nil when no provider is configured.
func New(db DBPinger, vision VisionChecker) *Service {
	return &Service{db: db, vision: vision}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
	} else {
		checks["database"] = CheckOK
	}

	if s.vision != nil {
		if err := s.vision.HealthCheck(ctx); err != nil {
			checks["vision"] = CheckError
		} else {
			checks["vision"] = CheckOK
		}
	}

	// Without the store nothing works; a failing vision provider only
	// degrades uploads to the generic description.
	status := Healthy
	switch {
	case checks["database"] == CheckError:
		status = Unhealthy
	case checks["vision"] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
