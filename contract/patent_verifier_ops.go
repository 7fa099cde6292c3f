package contract

import (
	"fmt"
	"time"

	"globalpatents/model"
)

// Verify moves a New request to PendingPublish and assigns its publisher.
// The owner and verifier ids passed in must be registered with the right
// roles; they are not compared with the ids stored on the request.
func (l *PatentLifecycle) Verify(patentID string, ownerIDs []string, verifierID, publisherID string, now time.Time) (*model.PatentRequest, error) {
	req, err := l.Get(patentID)
	if err != nil {
		return nil, err
	}

	for i, ownerID := range ownerIDs {
		if err := validateRequiredString(ownerID, fmt.Sprintf("ownerIds[%d]", i), maxIDLength); err != nil {
			return nil, err
		}
		if _, err := l.registry.Require(ownerID, model.RoleOwner); err != nil {
			return nil, err
		}
	}
	if err := validateRequiredString(verifierID, "verifierId", maxIDLength); err != nil {
		return nil, err
	}
	verifier, err := l.registry.Require(verifierID, model.RoleVerifier)
	if err != nil {
		return nil, err
	}
	if err := validateRequiredString(publisherID, "publisherId", maxIDLength); err != nil {
		return nil, err
	}
	if err := requireTransition(req, model.StatusPendingPublish); err != nil {
		return nil, err
	}

	if err := req.TransitionTo(model.StatusPendingPublish, now); err != nil {
		return nil, newError(ErrInvalidStateTransition, "%v", err)
	}
	req.PublisherID = publisherID

	if err := l.appendBackReference(verifier, req.ID); err != nil {
		return nil, fmt.Errorf("Verify: %w", err)
	}
	if err := l.put(req); err != nil {
		return nil, fmt.Errorf("Verify: %w", err)
	}
	logger.Infof("Patent request '%s' verified by '%s', publisher '%s'", req.ID, verifierID, publisherID)
	return req, nil
}

// Reject moves a New request to Rejected. Only the verifier named on the
// request may reject it.
func (l *PatentLifecycle) Reject(patentID, verifierID, reason string, now time.Time) (*model.PatentRequest, error) {
	req, err := l.Get(patentID)
	if err != nil {
		return nil, err
	}
	if err := validateRequiredString(verifierID, "verifierId", maxIDLength); err != nil {
		return nil, err
	}
	if err := validateOptionalString(reason, "reason", maxDescriptionLength); err != nil {
		return nil, err
	}
	verifier, err := l.registry.Require(verifierID, model.RoleVerifier)
	if err != nil {
		return nil, err
	}
	if req.VerifierID != verifierID {
		return nil, newError(ErrInvalidArgument, "verifier '%s' is not assigned to patent request '%s'", verifierID, req.ID)
	}
	if err := requireTransition(req, model.StatusRejected); err != nil {
		return nil, err
	}

	if err := req.TransitionTo(model.StatusRejected, now); err != nil {
		return nil, newError(ErrInvalidStateTransition, "%v", err)
	}
	req.RejectionReason = reason

	if err := l.appendBackReference(verifier, req.ID); err != nil {
		return nil, fmt.Errorf("Reject: %w", err)
	}
	if err := l.put(req); err != nil {
		return nil, fmt.Errorf("Reject: %w", err)
	}
	logger.Infof("Patent request '%s' rejected by '%s'", req.ID, verifierID)
	return req, nil
}
