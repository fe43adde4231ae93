package uc

// Metadata carries transport-level details about the caller of an operation.
type Metadata struct {
	Source     string
	IPAddress  string
	UserAgent  string
	DeviceInfo string
	Extra      map[string]string
}

// Operation is the per-invocation audit envelope. The HTTP layer builds one
// per inbound request; it is immutable for the life of that request, threaded
// unchanged through the pipeline, and never persisted. Its only consumers are
// hooks and the audit sink.
type Operation struct {
	RequestID      string
	ActorID        string
	OrganizationID string
	AuditAction    string
	Metadata       Metadata
}
