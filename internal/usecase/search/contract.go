package search

import (
	"context"

	domshot "github.com/kailas-cloud/shotsearch/internal/domain/screenshot"
	domlog "github.com/kailas-cloud/shotsearch/internal/domain/searchlog"
)

// RecordSource lists every stored screenshot, newest first.
type RecordSource interface {
	List(ctx context.Context) ([]domshot.Screenshot, error)
}

// LogSink records completed searches.
type LogSink interface {
	Log(ctx context.Context, e domlog.Entry) error
}
