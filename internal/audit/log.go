package audit

import (
	"strings"
	"time"

	"crewbase.org/internal/obs"
	"crewbase.org/internal/uc"
)

// Record writes one audit log entry for a completed mutation, enriched with
// the operation context. Failures are confined to the log layer; callers
// treat audit as fire-and-forget.
func Record(op uc.Operation, action string, fields map[string]any) {
	action = strings.TrimSpace(action)
	if action == "" {
		return
	}
	entry := map[string]any{
		"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		"type":   "audit",
		"action": action,
	}
	if op.RequestID != "" {
		entry["request_id"] = op.RequestID
	}
	if op.ActorID != "" {
		entry["actor_id"] = op.ActorID
	}
	if op.OrganizationID != "" {
		entry["organization_id"] = op.OrganizationID
	}
	if op.Metadata.Source != "" {
		entry["source"] = op.Metadata.Source
	}
	if op.Metadata.IPAddress != "" {
		entry["ip_address"] = op.Metadata.IPAddress
	}
	if len(fields) > 0 {
		copyFields := make(map[string]any, len(fields))
		for k, v := range fields {
			copyFields[k] = v
		}
		entry["fields"] = copyFields
	} else {
		entry["fields"] = map[string]any{}
	}
	obs.LogJSON(entry)
}

// HookLogger implements uc.HookLog by emitting one JSON line per hook
// invocation. Dropped lines never surface to the pipeline.
type HookLogger struct{}

func (HookLogger) LogHookExecution(payload uc.HookExecution) {
	entry := map[string]any{
		"ts":           time.Now().UTC().Format(time.RFC3339Nano),
		"type":         "hook",
		"use_case":     payload.UseCase,
		"hook":         payload.Hook,
		"execution_id": payload.ExecutionID,
		"duration_ms":  payload.Duration.Milliseconds(),
	}
	if payload.RequestID != "" {
		entry["request_id"] = payload.RequestID
	}
	if payload.Err != nil {
		entry["error"] = payload.Err.Error()
	}
	obs.LogJSON(entry)
}
