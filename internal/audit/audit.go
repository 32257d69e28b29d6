// Package audit decides which HTTP exchanges are recorded in the audit trail
// and builds the record for them. Persisting the record is the caller's job.
package audit

import (
	"context"
	"net/http"
	"strings"

	"ferretcontrol/internal/models"

	"gorm.io/datatypes"
)

const (
	maxIPLen        = 80
	maxUserAgentLen = 300
	maxPathLen      = 300
	maxEntityIDLen  = 50
)

// resource roots whose traffic is recorded, matched on path prefix
var sensitiveRoots = []struct {
	root   string
	entity string
}{
	{"/api/assets", "InformationAsset"},
	{"/api/risks", "Risk"},
	{"/api/controls", "Control"},
}

// Recorder persists one audit record.
type Recorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// Exchange is the part of a finished request/response pair the audit trail needs.
type Exchange struct {
	Method    string
	Path      string
	IP        string
	UserAgent string
	Status    int
	ActorID   *uint // nil for anonymous callers
}

// ActionFor maps an HTTP method onto an audit action.
func ActionFor(method string) models.AuditAction {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return models.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.ActionUpdate
	case http.MethodDelete:
		return models.ActionDelete
	default:
		return models.ActionView
	}
}

// EntityFor returns the entity label for a sensitive path together with the
// record id taken from the first segment after the resource root, if any.
func EntityFor(path string) (entity, id string, ok bool) {
	for _, r := range sensitiveRoots {
		rest, matched := strings.CutPrefix(path, r.root)
		if !matched || (rest != "" && rest[0] != '/') {
			continue
		}
		rest = strings.TrimPrefix(rest, "/")
		if seg, _, _ := strings.Cut(rest, "/"); seg != "" {
			id = truncate(seg, maxEntityIDLen)
		}
		return r.entity, id, true
	}
	return "", "", false
}

// Build returns the record for x, or false when the path is not sensitive.
func Build(x Exchange) (*models.AuditLog, bool) {
	entity, id, ok := EntityFor(x.Path)
	if !ok {
		return nil, false
	}
	method := strings.ToUpper(x.Method)
	return &models.AuditLog{
		UserID:    x.ActorID,
		Action:    ActionFor(method),
		Entity:    entity,
		EntityID:  id,
		Path:      truncate(x.Path, maxPathLen),
		Method:    method,
		IP:        truncate(x.IP, maxIPLen),
		UserAgent: truncate(x.UserAgent, maxUserAgentLen),
		Success:   x.Status >= 200 && x.Status < 400,
		Meta:      datatypes.JSONMap{"status_code": x.Status},
	}, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// cut on a rune boundary
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
