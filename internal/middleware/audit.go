package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"ferretcontrol/internal/audit"
	"ferretcontrol/internal/models"
	"ferretcontrol/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// Audit records one row per request under a sensitive resource root, after
// the response has been produced. Persistence failures never reach the caller.
func Audit(rec audit.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		x := audit.Exchange{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.RemoteIP(),
			UserAgent: c.Request.UserAgent(),
			Status:    c.Writer.Status(),
		}
		if u, ok := CurrentUser(c); ok {
			id := u.ID
			x.ActorID = &id
		}

		entry, ok := audit.Build(x)
		if !ok {
			return
		}
		if err := recordSafely(c.Request.Context(), rec, entry); err != nil {
			telemetry.AuditWriteFailures.Inc()
			slog.Warn("audit write failed",
				"path", entry.Path,
				"method", entry.Method,
				"request_id", c.GetString(ctxRequestIDKey),
				"error", err,
			)
		}
	}
}

func recordSafely(ctx context.Context, rec audit.Recorder, entry *models.AuditLog) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("audit recorder panic: %v", r)
		}
	}()
	// the client may already be gone; the row is still wanted
	return rec.Record(context.WithoutCancel(ctx), entry)
}
