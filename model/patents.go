package model

import (
	"fmt"
	"time"
)

// PatentRequestObjectType tags patent request records in the shared keyspace.
const PatentRequestObjectType = "PatentRequest"

// StatusCode is the numeric lifecycle state of a patent request.
type StatusCode int

const (
	StatusNew            StatusCode = 1  // Filed, awaiting verification
	StatusPendingPublish StatusCode = 2  // Verified, awaiting publication
	StatusRejected       StatusCode = 3  // Verification failed
	StatusPublished      StatusCode = 6  // Publication complete
	StatusPublishing     StatusCode = 15 // Publication in progress
)

type statusEntry struct {
	name string
	text string
}

var statusTable = map[StatusCode]statusEntry{
	StatusNew:            {name: "New", text: "Patent created"},
	StatusPendingPublish: {name: "PendingPublish", text: "Patent verified and pending publish"},
	StatusRejected:       {name: "Rejected", text: "Patent verification failed"},
	StatusPublishing:     {name: "Publishing", text: "Patent being published"},
	StatusPublished:      {name: "Published", text: "Patent published"},
}

// transitions is the complete forward edge set. Rejected and Published are terminal.
var transitions = map[StatusCode][]StatusCode{
	StatusNew:            {StatusPendingPublish, StatusRejected},
	StatusPendingPublish: {StatusPublishing},
	StatusPublishing:     {StatusPublished},
	StatusRejected:       {},
	StatusPublished:      {},
}

// Valid reports whether c is in the status table.
func (c StatusCode) Valid() bool {
	_, ok := statusTable[c]
	return ok
}

func (c StatusCode) String() string {
	if e, ok := statusTable[c]; ok {
		return e.name
	}
	return fmt.Sprintf("StatusCode(%d)", int(c))
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to StatusCode) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Status is the persisted {code, text} pair embedded in every patent request.
type Status struct {
	Code StatusCode `json:"code"`
	Text string     `json:"text"`
}

// NewStatus builds the table entry for code. Unknown codes get an empty text.
func NewStatus(code StatusCode) Status {
	return Status{Code: code, Text: statusTable[code].text}
}

// PatentRequest is the ledger record of one filed patent, stored under its ID.
type PatentRequest struct {
	ObjectType      string    `json:"objectType"` // PatentRequestObjectType
	ID              string    `json:"id"`
	Industry        string    `json:"industry"`
	PriorArtifacts  string    `json:"priorArtifacts"`
	Details         string    `json:"details"`
	OwnerIDs        []string  `json:"ownerIds"`
	VerifierID      string    `json:"verifierId"`
	PublisherID     string    `json:"publisherId,omitempty"`     // Assigned on verification
	RejectionReason string    `json:"rejectionReason,omitempty"` // Set when the verifier rejects
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdatedAt   time.Time `json:"lastUpdatedAt"`
}

// TransitionTo moves the request to the given status if the transition table allows it.
func (p *PatentRequest) TransitionTo(next StatusCode, at time.Time) error {
	if !CanTransition(p.Status.Code, next) {
		return fmt.Errorf("patent request '%s' cannot move from %s (%d) to %s (%d)",
			p.ID, p.Status.Code, int(p.Status.Code), next, int(next))
	}
	p.Status = NewStatus(next)
	p.LastUpdatedAt = at
	return nil
}
