package health

import "context"

// DBPinger checks record store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// VisionChecker checks vision provider availability.
type VisionChecker interface {
	HealthCheck(ctx context.Context) error
}
