package roadmap

// Status tags how one pipeline run ended. Only StatusUpstreamUnreachable is
// also reported as an error.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusValidatedEmpty      Status = "validated_empty"
	StatusUpstreamMalformed   Status = "upstream_malformed"
	StatusUpstreamUnreachable Status = "upstream_unreachable"
)

// DropReason mirrors the link verdicts that remove a resource.
type DropReason string

const (
	DropDead        DropReason = "dead"
	DropUnreachable DropReason = "unreachable"
	DropInvalidURL  DropReason = "invalid_url"
	DropBlocked     DropReason = "blocked"
)

// Dropped describes one resource removed by the link filter. Step is the
// zero-based index of the step it belonged to.
type Dropped struct {
	Step       int        `json:"step"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Reason     DropReason `json:"reason"`
	StatusCode int        `json:"statusCode,omitempty"`
}
