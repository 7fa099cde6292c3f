package contract

import (
	"fmt"

	"globalpatents/ledger"
	"globalpatents/model"
)

// PatentLifecycle creates patent requests and moves them through the status
// table, keeping participant back-references in step. Like the registry it is
// bound to a single transaction's state.
type PatentLifecycle struct {
	state    ledger.State
	registry *ParticipantRegistry
}

func NewPatentLifecycle(state ledger.State) *PatentLifecycle {
	return &PatentLifecycle{state: state, registry: NewParticipantRegistry(state)}
}

// Get loads the patent request stored under patentID.
func (l *PatentLifecycle) Get(patentID string) (*model.PatentRequest, error) {
	if err := validateRequiredString(patentID, "patentId", maxIDLength); err != nil {
		return nil, err
	}
	var req model.PatentRequest
	found, err := getJSON(l.state, patentID, &req)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if !found || req.ObjectType != model.PatentRequestObjectType {
		return nil, newError(ErrPatentRequestNotFound, "patent request '%s' does not exist", patentID)
	}
	if req.OwnerIDs == nil {
		req.OwnerIDs = []string{}
	}
	return &req, nil
}

func (l *PatentLifecycle) put(req *model.PatentRequest) error {
	return putJSON(l.state, req.ID, req)
}

// requireTransition fails with InvalidStateTransition unless req may move to next.
func requireTransition(req *model.PatentRequest, next model.StatusCode) error {
	if !model.CanTransition(req.Status.Code, next) {
		return newError(ErrInvalidStateTransition, "patent request '%s' is %s (%d); cannot move to %s (%d)",
			req.ID, req.Status.Code, int(req.Status.Code), next, int(next))
	}
	return nil
}

// appendBackReference adds patentID to the participant's request list and
// writes the participant back.
func (l *PatentLifecycle) appendBackReference(p *model.Participant, patentID string) error {
	p.AddPatentRequest(patentID)
	if err := l.registry.Put(p); err != nil {
		return fmt.Errorf("failed to update %s '%s': %w", p.Role, p.ID, err)
	}
	return nil
}
