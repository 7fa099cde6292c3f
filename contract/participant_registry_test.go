package contract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalpatents/ledger"
	"globalpatents/ledger/mocks"
	"globalpatents/model"
)

// newState returns an open transaction on a fresh in-memory ledger.
func newState(t *testing.T) *ledger.Tx {
	t.Helper()
	store, err := ledger.OpenMemory()
	require.NoError(t, err)
	tx, err := store.Begin()
	require.NoError(t, err)
	t.Cleanup(func() {
		tx.Abort()
		_ = store.Close()
	})
	return tx
}

func newInitializedState(t *testing.T) *ledger.Tx {
	t.Helper()
	state := newState(t)
	require.NoError(t, NewParticipantRegistry(state).Initialize())
	return state
}

func readJSON(t *testing.T, state ledger.State, key string, v interface{}) {
	t.Helper()
	raw, err := ReadState(state, key)
	require.NoError(t, err)
	require.NotEmpty(t, raw, "key %s", key)
	require.NoError(t, json.Unmarshal([]byte(raw), v))
}

func TestInitializeCreatesEmptyIndexes(t *testing.T) {
	state := newInitializedState(t)
	for _, key := range []string{"owners", "verifiers", "publishers", "auditors"} {
		raw, err := ReadState(state, key)
		require.NoError(t, err)
		assert.Equal(t, "[]", raw, key)
	}
}

func TestInitializeResetsIndexes(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)
	_, err := reg.Register(model.RoleOwner, "O1", "Acme")
	require.NoError(t, err)

	require.NoError(t, reg.Initialize())

	ids, err := reg.Index(model.RoleOwner)
	require.NoError(t, err)
	assert.Empty(t, ids)
	p, err := reg.Get("O1")
	require.NoError(t, err)
	assert.NotNil(t, p, "participant records survive re-initialization")
}

func TestRegisterOwner(t *testing.T) {
	state := newInitializedState(t)
	p, err := NewParticipantRegistry(state).Register(model.RoleOwner, "O1", "Acme")
	require.NoError(t, err)
	assert.Equal(t, &model.Participant{ObjectType: model.ParticipantObjectType, ID: "O1", CompanyName: "Acme", Role: model.RoleOwner, PatentRequestIDs: []string{}}, p)

	var owners []string
	readJSON(t, state, "owners", &owners)
	assert.Equal(t, []string{"O1"}, owners)

	raw, err := ReadState(state, "O1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"objectType":"Participant","id":"O1","companyName":"Acme","role":"owner","patentRequestIds":[]}`, raw)
}

func TestRegisterEachRoleUsesItsOwnIndex(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)
	for i, role := range model.Roles {
		_, err := reg.Register(role, string(role)+"-1", "Co")
		require.NoError(t, err, i)
	}
	for _, role := range model.Roles {
		ids, err := reg.Index(role)
		require.NoError(t, err)
		assert.Equal(t, []string{string(role) + "-1"}, ids)
	}
}

func TestRegisterPreservesRegistrationOrder(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)
	for _, id := range []string{"b", "a", "c"} {
		_, err := reg.Register(model.RoleVerifier, id, "VerCo")
		require.NoError(t, err)
	}
	ids, err := reg.Index(model.RoleVerifier)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

// Registering an id twice is not idempotent: the index gains a second entry
// and the record is overwritten.
func TestRegisterDuplicateIDAppendsAgain(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)
	_, err := reg.Register(model.RoleOwner, "O1", "Acme")
	require.NoError(t, err)
	_, err = reg.Register(model.RoleOwner, "O1", "Acme Renamed")
	require.NoError(t, err)

	var owners []string
	readJSON(t, state, "owners", &owners)
	assert.Equal(t, []string{"O1", "O1"}, owners)

	p, err := reg.Get("O1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", p.CompanyName)

	// Registration under another role is not prevented either.
	_, err = reg.Register(model.RoleVerifier, "O1", "Acme")
	require.NoError(t, err)
	p, err = reg.Get("O1")
	require.NoError(t, err)
	assert.Equal(t, model.RoleVerifier, p.Role)
}

func TestRegisterBeforeInitializeFails(t *testing.T) {
	state := newState(t)
	_, err := NewParticipantRegistry(state).Register(model.RoleOwner, "O1", "Acme")
	assert.ErrorIs(t, err, ErrRegistryNotInitialized)
	assert.Equal(t, KindRegistryNotInitialized, KindOf(err))

	raw, err := ReadState(state, "O1")
	require.NoError(t, err)
	assert.Empty(t, raw, "no record is written when the index is missing")
}

func TestRegisterValidatesInput(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)

	cases := []struct {
		name    string
		role    model.Role
		id      string
		company string
	}{
		{"empty id", model.RoleOwner, " ", "Acme"},
		{"empty company", model.RoleOwner, "O1", ""},
		{"unknown role", model.Role("admin"), "O1", "Acme"},
		{"reserved id", model.RoleOwner, "verifiers", "Acme"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := reg.Register(c.role, c.id, c.company)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, KindInvalidArgument, KindOf(err))
		})
	}
}

func TestRequireChecksExistenceAndRole(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)
	_, err := reg.Register(model.RoleOwner, "own1", "Acme")
	require.NoError(t, err)
	_, err = reg.Register(model.RoleVerifier, "ver1", "VerCo")
	require.NoError(t, err)

	p, err := reg.Require("own1", model.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, "own1", p.ID)

	_, err = reg.Require("ghost", model.RoleOwner)
	assert.ErrorIs(t, err, ErrOwnerNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = reg.Require("ver1", model.RoleOwner)
	assert.ErrorIs(t, err, ErrOwnerRoleMismatch)
	assert.Equal(t, KindRoleMismatch, KindOf(err))

	_, err = reg.Require("own1", model.RoleVerifier)
	assert.ErrorIs(t, err, ErrVerifierRoleMismatch)

	_, err = reg.Require("ghost", model.RolePublisher)
	assert.ErrorIs(t, err, ErrPublisherNotFound)
}

func TestListByRole(t *testing.T) {
	state := newInitializedState(t)
	reg := NewParticipantRegistry(state)
	_, err := reg.Register(model.RoleAuditor, "aud1", "AuditCo")
	require.NoError(t, err)
	_, err = reg.Register(model.RoleAuditor, "aud1", "AuditCo")
	require.NoError(t, err)
	require.NoError(t, putJSON(state, "auditors", []string{"aud1", "aud1", "missing"}))

	list, err := reg.ListByRole(model.RoleAuditor)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "aud1", list[0].ID)

	empty, err := reg.ListByRole(model.RolePublisher)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRegisterPropagatesLedgerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	boom := errors.New("ledger unavailable")
	state := mocks.NewMockState(ctrl)
	state.EXPECT().GetState("owners").Return([]byte(`[]`), nil)
	state.EXPECT().PutState("O1", gomock.Any()).Return(boom)

	_, err := NewParticipantRegistry(state).Register(model.RoleOwner, "O1", "Acme")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindUnknown, KindOf(err))
}
