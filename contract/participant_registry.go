package contract

import (
	"fmt"

	"globalpatents/ledger"
	"globalpatents/model"

	"github.com/hyperledger/fabric/common/flogging"
)

var registryLogger = flogging.MustGetLogger("globalpatents.registry")

// roleErrors maps each role to the not-found and role-mismatch sentinels used
// when a participant of that role is required.
var roleErrors = map[model.Role][2]*TransactionError{
	model.RoleOwner:     {ErrOwnerNotFound, ErrOwnerRoleMismatch},
	model.RoleVerifier:  {ErrVerifierNotFound, ErrVerifierRoleMismatch},
	model.RolePublisher: {ErrPublisherNotFound, ErrPublisherRoleMismatch},
}

// ParticipantRegistry maintains the four role indexes and the participant
// records. It holds no state of its own; every call reads and writes the ledger.
type ParticipantRegistry struct {
	state ledger.State
}

// NewParticipantRegistry creates a registry bound to one transaction's state.
func NewParticipantRegistry(state ledger.State) *ParticipantRegistry {
	return &ParticipantRegistry{state: state}
}

// Initialize writes an empty index for every role. Calling it again resets
// all indexes; participant records are left in place.
func (r *ParticipantRegistry) Initialize() error {
	for _, role := range model.Roles {
		if err := putJSON(r.state, role.IndexKey(), []string{}); err != nil {
			return fmt.Errorf("Initialize: %w", err)
		}
	}
	registryLogger.Info("Registry indexes initialized")
	return nil
}

// Register writes a new participant record under id and appends id to the
// role's index. Existing ids are not checked: registering an id twice
// overwrites its record and appends a second index entry.
func (r *ParticipantRegistry) Register(role model.Role, id, companyName string) (*model.Participant, error) {
	if !role.Valid() {
		return nil, newError(ErrInvalidArgument, "invalid role '%s'", role)
	}
	if err := validateRecordID(id, "id"); err != nil {
		return nil, err
	}
	if err := validateRequiredString(companyName, "companyName", maxStringInputLength); err != nil {
		return nil, err
	}

	index, err := r.Index(role)
	if err != nil {
		return nil, err
	}

	participant := &model.Participant{
		ObjectType:       model.ParticipantObjectType,
		ID:               id,
		CompanyName:      companyName,
		Role:             role,
		PatentRequestIDs: []string{},
	}
	if err := r.Put(participant); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	for _, existing := range index {
		if existing == id {
			registryLogger.Warningf("Participant '%s' is already listed in the %s index; appending again", id, role.IndexKey())
			break
		}
	}
	index = append(index, id)
	if err := putJSON(r.state, role.IndexKey(), index); err != nil {
		return nil, fmt.Errorf("Register: %w", err)
	}

	registryLogger.Infof("Registered %s '%s' (%s)", role, id, companyName)
	return participant, nil
}

// Index returns the ids registered under role, in registration order.
func (r *ParticipantRegistry) Index(role model.Role) ([]string, error) {
	if !role.Valid() {
		return nil, newError(ErrInvalidArgument, "invalid role '%s'", role)
	}
	var ids []string
	found, err := getJSON(r.state, role.IndexKey(), &ids)
	if err != nil {
		return nil, fmt.Errorf("Index: %w", err)
	}
	if !found {
		return nil, newError(ErrRegistryNotInitialized, "index '%s' does not exist; call Initialize first", role.IndexKey())
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Get loads the participant stored under id, returning nil if there is none
// or if the record under id is not a participant.
func (r *ParticipantRegistry) Get(id string) (*model.Participant, error) {
	var p model.Participant
	found, err := getJSON(r.state, id, &p)
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	if !found {
		return nil, nil
	}
	if p.ObjectType != model.ParticipantObjectType {
		registryLogger.Debugf("Get: record '%s' has objectType '%s', not a participant", id, p.ObjectType)
		return nil, nil
	}
	if p.PatentRequestIDs == nil {
		p.PatentRequestIDs = []string{}
	}
	return &p, nil
}

// Require loads the participant under id and checks it has the given role,
// failing with that role's not-found or role-mismatch error.
func (r *ParticipantRegistry) Require(id string, role model.Role) (*model.Participant, error) {
	notFound, mismatch := ErrParticipantNotFound, ErrInvalidArgument
	if errs, ok := roleErrors[role]; ok {
		notFound, mismatch = errs[0], errs[1]
	}

	p, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, newError(notFound, "%s '%s' does not exist", role, id)
	}
	if p.Role != role {
		return nil, newError(mismatch, "participant '%s' has role '%s', expected '%s'", id, p.Role, role)
	}
	return p, nil
}

// Put writes the whole participant record back under its id.
func (r *ParticipantRegistry) Put(p *model.Participant) error {
	return putJSON(r.state, p.ID, p)
}

// ListByRole returns the records of every participant in the role's index.
// Index entries whose record is missing are skipped; duplicate entries are
// returned once.
func (r *ParticipantRegistry) ListByRole(role model.Role) ([]model.Participant, error) {
	index, err := r.Index(role)
	if err != nil {
		return nil, err
	}
	participants := []model.Participant{}
	seen := make(map[string]bool, len(index))
	for _, id := range index {
		if seen[id] {
			continue
		}
		seen[id] = true
		p, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			registryLogger.Warningf("ListByRole: participant '%s' listed in %s index has no record. Skipping.", id, role.IndexKey())
			continue
		}
		participants = append(participants, *p)
	}
	return participants, nil
}
