// File: model/participants.go
package model

import (
	"fmt"
	"strings"
)

// Role identifies which of the four participant kinds a registered actor is.
// A participant's role is fixed at registration.
type Role string

const (
	RoleOwner     Role = "owner"     // Files patent requests
	RoleVerifier  Role = "verifier"  // Verifies or rejects new requests
	RolePublisher Role = "publisher" // Publishes verified requests
	RoleAuditor   Role = "auditor"   // Read-only oversight
)

// Roles lists every role in registry order.
var Roles = []Role{RoleOwner, RoleVerifier, RolePublisher, RoleAuditor}

// Registry index keys. Each holds a JSON array of participant ids of one role.
const (
	OwnersIndexKey     = "owners"
	VerifiersIndexKey  = "verifiers"
	PublishersIndexKey = "publishers"
	AuditorsIndexKey   = "auditors"
)

// ParticipantObjectType tags participant records in the shared keyspace.
const ParticipantObjectType = "Participant"

// IndexKey returns the ledger key of the registry index holding ids of this role.
func (r Role) IndexKey() string {
	switch r {
	case RoleOwner:
		return OwnersIndexKey
	case RoleVerifier:
		return VerifiersIndexKey
	case RolePublisher:
		return PublishersIndexKey
	case RoleAuditor:
		return AuditorsIndexKey
	}
	return ""
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	return r.IndexKey() != ""
}

// ParseRole accepts a role name in any case ("Owner", "owner", " OWNER ").
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role '%s'. Valid roles: owner, verifier, publisher, auditor", s)
	}
	return r, nil
}

// IsIndexKey reports whether key is one of the four registry index keys.
func IsIndexKey(key string) bool {
	for _, r := range Roles {
		if r.IndexKey() == key {
			return true
		}
	}
	return false
}

// Participant is the ledger record of one registered actor, stored under its ID.
type Participant struct {
	ObjectType       string   `json:"objectType"` // ParticipantObjectType
	ID               string   `json:"id"`
	CompanyName      string   `json:"companyName"`
	Role             Role     `json:"role"`
	PatentRequestIDs []string `json:"patentRequestIds"` // Requests co-owned (owners), verified or rejected (verifiers), published (publishers)
}

// AddPatentRequest appends a patent request id to the participant's back-references.
func (p *Participant) AddPatentRequest(patentID string) {
	if p.PatentRequestIDs == nil {
		p.PatentRequestIDs = []string{}
	}
	p.PatentRequestIDs = append(p.PatentRequestIDs, patentID)
}

// HasPatentRequest reports whether patentID is already referenced by the participant.
func (p *Participant) HasPatentRequest(patentID string) bool {
	for _, id := range p.PatentRequestIDs {
		if id == patentID {
			return true
		}
	}
	return false
}
