package contract

import (
	"fmt"
	"time"

	"globalpatents/model"
)

// requireAssignedPublisher loads the publisher and checks it is the one the
// verifier assigned to req.
func (l *PatentLifecycle) requireAssignedPublisher(req *model.PatentRequest, publisherID string) (*model.Participant, error) {
	if err := validateRequiredString(publisherID, "publisherId", maxIDLength); err != nil {
		return nil, err
	}
	publisher, err := l.registry.Require(publisherID, model.RolePublisher)
	if err != nil {
		return nil, err
	}
	if req.PublisherID != publisherID {
		return nil, newError(ErrInvalidArgument, "publisher '%s' is not assigned to patent request '%s'", publisherID, req.ID)
	}
	return publisher, nil
}

// StartPublishing moves a PendingPublish request to Publishing and records the
// request on the publisher.
func (l *PatentLifecycle) StartPublishing(patentID, publisherID string, now time.Time) (*model.PatentRequest, error) {
	req, err := l.Get(patentID)
	if err != nil {
		return nil, err
	}
	publisher, err := l.requireAssignedPublisher(req, publisherID)
	if err != nil {
		return nil, err
	}
	if err := requireTransition(req, model.StatusPublishing); err != nil {
		return nil, err
	}
	if err := req.TransitionTo(model.StatusPublishing, now); err != nil {
		return nil, newError(ErrInvalidStateTransition, "%v", err)
	}

	if err := l.appendBackReference(publisher, req.ID); err != nil {
		return nil, fmt.Errorf("StartPublishing: %w", err)
	}
	if err := l.put(req); err != nil {
		return nil, fmt.Errorf("StartPublishing: %w", err)
	}
	logger.Infof("Patent request '%s' publishing started by '%s'", req.ID, publisherID)
	return req, nil
}

// CompletePublishing moves a Publishing request to Published.
func (l *PatentLifecycle) CompletePublishing(patentID, publisherID string, now time.Time) (*model.PatentRequest, error) {
	req, err := l.Get(patentID)
	if err != nil {
		return nil, err
	}
	if _, err := l.requireAssignedPublisher(req, publisherID); err != nil {
		return nil, err
	}
	if err := requireTransition(req, model.StatusPublished); err != nil {
		return nil, err
	}
	if err := req.TransitionTo(model.StatusPublished, now); err != nil {
		return nil, newError(ErrInvalidStateTransition, "%v", err)
	}

	if err := l.put(req); err != nil {
		return nil, fmt.Errorf("CompletePublishing: %w", err)
	}
	logger.Infof("Patent request '%s' published by '%s'", req.ID, publisherID)
	return req, nil
}
