package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs the duration and outcome of an operation when the returned
// function is deferred with a pointer to the named error result.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		ev := log.Debug()
		if errp != nil && *errp != nil {
			ev = log.Warn().Err(*errp)
		}
		ev.Str("req_id", reqID).Str("op", name).Int64("dur_ms", dur.Milliseconds()).Send()
	}
}
