package schemas

// -- Issue Schemas --

// Severity is the severity level attached to an issue by the analysis
// platform. Values are upper-case to match the platform wire format.
type Severity string

// Constants defining the platform severity levels, highest first.
const (
	SeverityBlocker  Severity = "BLOCKER"
	SeverityCritical Severity = "CRITICAL"
	SeverityMajor    Severity = "MAJOR"
	SeverityMinor    Severity = "MINOR"
	SeverityInfo     Severity = "INFO"
)

// IssueStatus is the lifecycle state of an issue on the platform.
type IssueStatus string

// Constants for the issue lifecycle states used by the verifier.
const (
	StatusOpen     IssueStatus = "OPEN"
	StatusResolved IssueStatus = "RESOLVED"
	StatusClosed   IssueStatus = "CLOSED"
)

// Issue is a single issue raised by an analysis run, as returned by the
// platform search endpoint. Issues are immutable once received; the
// verifier only reads them.
type Issue struct {
	Key       string      `json:"key"`
	Rule      string      `json:"rule"` // namespaced, e.g. "java:S1234"
	Severity  Severity    `json:"severity"`
	Status    IssueStatus `json:"status"`
	Component string      `json:"component,omitempty"`
	Line      int         `json:"line,omitempty"`
}

// SearchRequest selects one page of a project's issue set.
type SearchRequest struct {
	Projects  []string
	Statuses  []IssueStatus
	PageIndex int // 1-based
	PageSize  int
}

// SearchResponse is one page of a server-side paginated result set. Total
// is the server-declared size of the full result set and is authoritative
// for pagination termination.
type SearchResponse struct {
	Total     int     `json:"total"`
	PageIndex int     `json:"p"`
	PageSize  int     `json:"ps"`
	Issues    []Issue `json:"issues"`
}
