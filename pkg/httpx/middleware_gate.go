package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/flagtree/pkg/slogx"
)

// FlagChecker reports whether a feature is effectively enabled.
type FlagChecker interface {
	IsEnabled(ctx context.Context, name string) bool
}

// UsageRecorder receives one event per successful use of a gated feature.
// Implementations must not block.
type UsageRecorder interface {
	Record(ctx context.Context, featureName, subjectID string, at time.Time)
}

// RequireFlag gates a handler behind the named feature flag. When the flag is
// not effectively enabled the request is rejected with 403 feature_disabled.
// When the handler completes with a status below 400 and usage is non-nil, a
// usage event is recorded for the caller (subject, or client IP when anonymous).
func RequireFlag(checker FlagChecker, name string, usage UsageRecorder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if !checker.IsEnabled(ctx, name) {
				slogx.FromContext(ctx).Debug("feature gate closed", "feature", name)
				WriteError(w, http.StatusForbidden, "feature_disabled",
					"feature "+name+" is not enabled")
				return
			}

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if usage == nil || sw.status >= http.StatusBadRequest {
				return
			}
			subject := SubjectFromContext(ctx)
			if subject == "" {
				subject = IPKeyExtractor(r)
			}
			usage.Record(ctx, name, subject, time.Now().UTC())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter

	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}
