package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"globalpatents/metrics"
	"globalpatents/model"

	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("globalpatents.patentcontract")

// Chaincode event names, one per state-changing transaction.
const (
	EventRegistryInitialized     = "RegistryInitialized"
	EventParticipantRegistered   = "ParticipantRegistered"
	EventPatentRequestCreated    = "PatentRequestCreated"
	EventPatentRequestVerified   = "PatentRequestVerified"
	EventPatentRequestRejected   = "PatentRequestRejected"
	EventPatentPublishingStarted = "PatentPublishingStarted"
	EventPatentPublished         = "PatentPublished"
)

// GlobalPatentsContract exposes participant registration and the patent
// request lifecycle as chaincode transactions. Every transaction returns its
// result as a JSON string.
// @contract:GlobalPatentsContract
type GlobalPatentsContract struct {
	contractapi.Contract
	recorder *metrics.Recorder
}

// NewGlobalPatentsContract creates the contract. rec may be nil.
func NewGlobalPatentsContract(rec *metrics.Recorder) *GlobalPatentsContract {
	return &GlobalPatentsContract{recorder: rec}
}

// eventPayload is the JSON body of every chaincode event.
type eventPayload struct {
	ID         string        `json:"id,omitempty"`
	Role       model.Role    `json:"role,omitempty"`
	Status     *model.Status `json:"status,omitempty"`
	Keys       []string      `json:"keys,omitempty"` // Index keys written by Initialize
	TxID       string        `json:"txId"`
	InvokerMSP string        `json:"invokerMsp,omitempty"`
}

// --- Registry ---

// Initialize creates the four empty registry indexes. Re-running it resets them.
func (c *GlobalPatentsContract) Initialize(ctx contractapi.TransactionContextInterface) (err error) {
	defer c.track("Initialize", time.Now(), &err)
	logger.Info("Chaincode Call: Initialize")
	if err := NewParticipantRegistry(ctx.GetStub()).Initialize(); err != nil {
		return err
	}
	c.emitEvent(ctx, EventRegistryInitialized, eventPayload{Keys: indexKeys()})
	return nil
}

// Instantiate is kept for clients that still call the legacy name.
func (c *GlobalPatentsContract) Instantiate(ctx contractapi.TransactionContextInterface) error {
	return c.Initialize(ctx)
}

func (c *GlobalPatentsContract) RegisterOwner(ctx contractapi.TransactionContextInterface, id, companyName string) (string, error) {
	return c.register(ctx, "RegisterOwner", model.RoleOwner, id, companyName)
}

func (c *GlobalPatentsContract) RegisterVerifier(ctx contractapi.TransactionContextInterface, id, companyName string) (string, error) {
	return c.register(ctx, "RegisterVerifier", model.RoleVerifier, id, companyName)
}

func (c *GlobalPatentsContract) RegisterPublisher(ctx contractapi.TransactionContextInterface, id, companyName string) (string, error) {
	return c.register(ctx, "RegisterPublisher", model.RolePublisher, id, companyName)
}

func (c *GlobalPatentsContract) RegisterAuditor(ctx contractapi.TransactionContextInterface, id, companyName string) (string, error) {
	return c.register(ctx, "RegisterAuditor", model.RoleAuditor, id, companyName)
}

func (c *GlobalPatentsContract) register(ctx contractapi.TransactionContextInterface, function string, role model.Role, id, companyName string) (result string, err error) {
	defer c.track(function, time.Now(), &err)
	logger.Infof("Chaincode Call: %s '%s' (%s)", function, id, companyName)

	p, err := NewParticipantRegistry(ctx.GetStub()).Register(role, id, companyName)
	if err != nil {
		return "", fmt.Errorf("%s: %w", function, err)
	}
	c.emitEvent(ctx, EventParticipantRegistered, eventPayload{ID: p.ID, Role: p.Role})
	return marshalResult(p)
}

// --- Patent request lifecycle ---

// CreatePatentRequest files a new request. ownerIdsJson is a JSON array of owner ids.
func (c *GlobalPatentsContract) CreatePatentRequest(ctx contractapi.TransactionContextInterface, id, ownerIdsJson, verifierId, industry, priorArtifacts, details string) (result string, err error) {
	defer c.track("CreatePatentRequest", time.Now(), &err)
	logger.Infof("Chaincode Call: CreatePatentRequest '%s' owners %s verifier '%s'", id, ownerIdsJson, verifierId)

	ownerIDs, err := parseOwnerIDs(ownerIdsJson)
	if err != nil {
		return "", fmt.Errorf("CreatePatentRequest: %w", err)
	}
	now, err := txTimestamp(ctx)
	if err != nil {
		return "", fmt.Errorf("CreatePatentRequest: %w", err)
	}
	req, err := NewPatentLifecycle(ctx.GetStub()).Create(CreateArgs{
		ID:             id,
		OwnerIDs:       ownerIDs,
		VerifierID:     verifierId,
		Industry:       industry,
		PriorArtifacts: priorArtifacts,
		Details:        details,
	}, now)
	if err != nil {
		return "", fmt.Errorf("CreatePatentRequest: %w", err)
	}
	c.emitPatentEvent(ctx, EventPatentRequestCreated, req)
	return marshalResult(req)
}

// VerifyPatentRequest moves a New request to PendingPublish and assigns publisherId.
func (c *GlobalPatentsContract) VerifyPatentRequest(ctx contractapi.TransactionContextInterface, patentId, ownerIdsJson, verifierId, publisherId string) (result string, err error) {
	defer c.track("VerifyPatentRequest", time.Now(), &err)
	logger.Infof("Chaincode Call: VerifyPatentRequest '%s' by verifier '%s', publisher '%s'", patentId, verifierId, publisherId)

	ownerIDs, err := parseOwnerIDs(ownerIdsJson)
	if err != nil {
		return "", fmt.Errorf("VerifyPatentRequest: %w", err)
	}
	now, err := txTimestamp(ctx)
	if err != nil {
		return "", fmt.Errorf("VerifyPatentRequest: %w", err)
	}
	req, err := NewPatentLifecycle(ctx.GetStub()).Verify(patentId, ownerIDs, verifierId, publisherId, now)
	if err != nil {
		return "", fmt.Errorf("VerifyPatentRequest: %w", err)
	}
	c.emitPatentEvent(ctx, EventPatentRequestVerified, req)
	return marshalResult(req)
}

// RejectPatentRequest moves a New request to Rejected.
func (c *GlobalPatentsContract) RejectPatentRequest(ctx contractapi.TransactionContextInterface, patentId, verifierId, reason string) (result string, err error) {
	defer c.track("RejectPatentRequest", time.Now(), &err)
	logger.Infof("Chaincode Call: RejectPatentRequest '%s' by verifier '%s'", patentId, verifierId)

	now, err := txTimestamp(ctx)
	if err != nil {
		return "", fmt.Errorf("RejectPatentRequest: %w", err)
	}
	req, err := NewPatentLifecycle(ctx.GetStub()).Reject(patentId, verifierId, reason, now)
	if err != nil {
		return "", fmt.Errorf("RejectPatentRequest: %w", err)
	}
	c.emitPatentEvent(ctx, EventPatentRequestRejected, req)
	return marshalResult(req)
}

// StartPublishing moves a PendingPublish request to Publishing.
func (c *GlobalPatentsContract) StartPublishing(ctx contractapi.TransactionContextInterface, patentId, publisherId string) (result string, err error) {
	defer c.track("StartPublishing", time.Now(), &err)
	logger.Infof("Chaincode Call: StartPublishing '%s' by publisher '%s'", patentId, publisherId)

	now, err := txTimestamp(ctx)
	if err != nil {
		return "", fmt.Errorf("StartPublishing: %w", err)
	}
	req, err := NewPatentLifecycle(ctx.GetStub()).StartPublishing(patentId, publisherId, now)
	if err != nil {
		return "", fmt.Errorf("StartPublishing: %w", err)
	}
	c.emitPatentEvent(ctx, EventPatentPublishingStarted, req)
	return marshalResult(req)
}

// CompletePublishing moves a Publishing request to Published.
func (c *GlobalPatentsContract) CompletePublishing(ctx contractapi.TransactionContextInterface, patentId, publisherId string) (result string, err error) {
	defer c.track("CompletePublishing", time.Now(), &err)
	logger.Infof("Chaincode Call: CompletePublishing '%s' by publisher '%s'", patentId, publisherId)

	now, err := txTimestamp(ctx)
	if err != nil {
		return "", fmt.Errorf("CompletePublishing: %w", err)
	}
	req, err := NewPatentLifecycle(ctx.GetStub()).CompletePublishing(patentId, publisherId, now)
	if err != nil {
		return "", fmt.Errorf("CompletePublishing: %w", err)
	}
	c.emitPatentEvent(ctx, EventPatentPublished, req)
	return marshalResult(req)
}

// --- Reads ---

// ReadState returns the JSON stored at key, or "" if there is none.
func (c *GlobalPatentsContract) ReadState(ctx contractapi.TransactionContextInterface, key string) (result string, err error) {
	defer c.track("ReadState", time.Now(), &err)
	logger.Debugf("Chaincode Call: ReadState '%s'", key)
	return ReadState(ctx.GetStub(), key)
}

// GetState is the legacy name of ReadState.
func (c *GlobalPatentsContract) GetState(ctx contractapi.TransactionContextInterface, key string) (string, error) {
	return c.ReadState(ctx, key)
}

// GetParticipantsByRole returns the records of every participant registered under role.
func (c *GlobalPatentsContract) GetParticipantsByRole(ctx contractapi.TransactionContextInterface, role string) (result string, err error) {
	defer c.track("GetParticipantsByRole", time.Now(), &err)
	logger.Debugf("Chaincode Call: GetParticipantsByRole '%s'", role)

	r, err := model.ParseRole(role)
	if err != nil {
		return "", fmt.Errorf("GetParticipantsByRole: %w", newError(ErrInvalidArgument, "%v", err))
	}
	participants, err := NewParticipantRegistry(ctx.GetStub()).ListByRole(r)
	if err != nil {
		return "", fmt.Errorf("GetParticipantsByRole: %w", err)
	}
	return marshalResult(participants)
}

// GetPatentRequestsByParticipant returns the requests a participant is associated with.
func (c *GlobalPatentsContract) GetPatentRequestsByParticipant(ctx contractapi.TransactionContextInterface, participantId string) (result string, err error) {
	defer c.track("GetPatentRequestsByParticipant", time.Now(), &err)
	logger.Debugf("Chaincode Call: GetPatentRequestsByParticipant '%s'", participantId)

	requests, err := NewPatentLifecycle(ctx.GetStub()).ListByParticipant(participantId)
	if err != nil {
		return "", fmt.Errorf("GetPatentRequestsByParticipant: %w", err)
	}
	return marshalResult(requests)
}

// --- Internal helpers ---

func (c *GlobalPatentsContract) track(function string, start time.Time, errp *error) {
	outcome := Outcome(*errp)
	if *errp != nil {
		logger.Warningf("%s failed: %v", function, *errp)
	}
	c.recorder.Observe(function, outcome, time.Since(start))
}

// Outcome labels a transaction result for metrics: "ok", the snake-cased
// error kind, or "ledger_error" for failures without a kind.
func Outcome(err error) string {
	if err == nil {
		return metrics.OutcomeOK
	}
	kind := KindOf(err)
	if kind == KindUnknown {
		return "ledger_error"
	}
	return snakeCase(kind.String())
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// txTimestamp returns the transaction timestamp, identical on every endorser.
func txTimestamp(ctx contractapi.TransactionContextInterface) (time.Time, error) {
	ts, err := ctx.GetStub().GetTxTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get transaction timestamp: %w", err)
	}
	return ts.AsTime().UTC(), nil
}

// invokerMSP returns the caller's MSP id, or "" when no client identity is available.
func invokerMSP(ctx contractapi.TransactionContextInterface) string {
	ci := ctx.GetClientIdentity()
	if ci == nil {
		return ""
	}
	mspID, err := ci.GetMSPID()
	if err != nil {
		logger.Debugf("Could not determine invoker MSPID: %v", err)
		return ""
	}
	return mspID
}

func (c *GlobalPatentsContract) emitPatentEvent(ctx contractapi.TransactionContextInterface, eventName string, req *model.PatentRequest) {
	status := req.Status
	c.emitEvent(ctx, eventName, eventPayload{ID: req.ID, Status: &status})
}

// emitEvent sets the transaction's chaincode event. Failures are logged, not returned.
func (c *GlobalPatentsContract) emitEvent(ctx contractapi.TransactionContextInterface, eventName string, payload eventPayload) {
	payload.TxID = ctx.GetStub().GetTxID()
	payload.InvokerMSP = invokerMSP(ctx)
	eventBytes, err := json.Marshal(payload)
	if err != nil {
		logger.Warningf("emitEvent: Failed to marshal payload for event '%s' on '%s': %v", eventName, payload.ID, err)
		return
	}
	if errSet := ctx.GetStub().SetEvent(eventName, eventBytes); errSet != nil {
		logger.Warningf("emitEvent: Failed to set event '%s' for '%s': %v", eventName, payload.ID, errSet)
	}
}

func indexKeys() []string {
	keys := make([]string, 0, len(model.Roles))
	for _, r := range model.Roles {
		keys = append(keys, r.IndexKey())
	}
	return keys
}
