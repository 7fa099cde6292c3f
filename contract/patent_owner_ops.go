package contract

import (
	"fmt"
	"time"

	"globalpatents/model"
)

// CreateArgs are the inputs of a new patent request.
type CreateArgs struct {
	ID             string
	OwnerIDs       []string
	VerifierID     string
	Industry       string
	PriorArtifacts string
	Details        string
}

// Create files a new patent request with status New. Each owner is validated
// and written back with its new back-reference before the next owner is
// looked at, so a failure part way through leaves earlier owner writes in the
// transaction; the ledger discards them when the transaction fails. The
// verifier is stored as given and only checked on verification.
func (l *PatentLifecycle) Create(args CreateArgs, now time.Time) (*model.PatentRequest, error) {
	if err := validateRecordID(args.ID, "id"); err != nil {
		return nil, err
	}
	ownerIDs, err := normalizeOwnerIDs(args.OwnerIDs)
	if err != nil {
		return nil, err
	}
	if err := validateRequiredString(args.VerifierID, "verifierId", maxIDLength); err != nil {
		return nil, err
	}
	if err := validateOptionalString(args.Industry, "industry", maxStringInputLength); err != nil {
		return nil, err
	}
	if err := validateOptionalString(args.PriorArtifacts, "priorArtifacts", maxDescriptionLength); err != nil {
		return nil, err
	}
	if err := validateOptionalString(args.Details, "details", maxDescriptionLength); err != nil {
		return nil, err
	}

	for _, ownerID := range ownerIDs {
		owner, err := l.registry.Require(ownerID, model.RoleOwner)
		if err != nil {
			return nil, err
		}
		if err := l.appendBackReference(owner, args.ID); err != nil {
			return nil, fmt.Errorf("Create: %w", err)
		}
	}

	req := &model.PatentRequest{
		ObjectType:     model.PatentRequestObjectType,
		ID:             args.ID,
		Industry:       args.Industry,
		PriorArtifacts: args.PriorArtifacts,
		Details:        args.Details,
		OwnerIDs:       ownerIDs,
		VerifierID:     args.VerifierID,
		Status:         model.NewStatus(model.StatusNew),
		CreatedAt:      now,
		LastUpdatedAt:  now,
	}
	if err := l.put(req); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	logger.Infof("Patent request '%s' created for owners %v, verifier '%s'", req.ID, req.OwnerIDs, req.VerifierID)
	return req, nil
}
