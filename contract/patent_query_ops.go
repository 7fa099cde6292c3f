package contract

import (
	"globalpatents/model"
)

// ListByParticipant returns the patent requests referenced by a participant,
// in the order they were added. Repeated references are returned once and
// references to missing requests are skipped.
func (l *PatentLifecycle) ListByParticipant(participantID string) ([]model.PatentRequest, error) {
	if err := validateRequiredString(participantID, "participantId", maxIDLength); err != nil {
		return nil, err
	}
	p, err := l.registry.Get(participantID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, newError(ErrParticipantNotFound, "participant '%s' does not exist", participantID)
	}

	requests := []model.PatentRequest{}
	seen := make(map[string]bool, len(p.PatentRequestIDs))
	for _, patentID := range p.PatentRequestIDs {
		if seen[patentID] {
			continue
		}
		seen[patentID] = true
		req, err := l.Get(patentID)
		if KindOf(err) == KindNotFound {
			logger.Warningf("ListByParticipant: patent request '%s' referenced by '%s' does not exist. Skipping.", patentID, participantID)
			continue
		}
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	logger.Debugf("ListByParticipant: returning %d patent requests for '%s'", len(requests), participantID)
	return requests, nil
}
