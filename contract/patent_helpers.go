package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"globalpatents/ledger"
	"globalpatents/model"
)

// Constants for input validation and limits
const (
	maxIDLength          = 128
	maxStringInputLength = 256
	maxDescriptionLength = 4096
	maxOwnersPerRequest  = 50
)

// --- Validation Helper Functions ---

func validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return newError(ErrInvalidArgument, "%s cannot be empty", field)
	}
	if len(input) > max {
		return newError(ErrInvalidArgument, "%s exceeds max length %d", field, max)
	}
	return nil
}

func validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return newError(ErrInvalidArgument, "%s exceeds max length %d", field, max)
	}
	return nil
}

// validateRecordID checks an id that will become a ledger key. Index keys are
// reserved so a record can never overwrite a registry index.
func validateRecordID(id, field string) error {
	if err := validateRequiredString(id, field, maxIDLength); err != nil {
		return err
	}
	if model.IsIndexKey(id) {
		return newError(ErrInvalidArgument, "%s '%s' is a reserved registry key", field, id)
	}
	return nil
}

// normalizeOwnerIDs validates the owner list and drops repeated ids, keeping
// the first occurrence, so each owner gains exactly one back-reference.
func normalizeOwnerIDs(ownerIDs []string) ([]string, error) {
	if len(ownerIDs) == 0 {
		return nil, newError(ErrInvalidArgument, "ownerIds must name at least one owner")
	}
	if len(ownerIDs) > maxOwnersPerRequest {
		return nil, newError(ErrInvalidArgument, "ownerIds has %d items, exceeding maximum of %d", len(ownerIDs), maxOwnersPerRequest)
	}
	seen := make(map[string]bool, len(ownerIDs))
	out := make([]string, 0, len(ownerIDs))
	for i, id := range ownerIDs {
		if err := validateRequiredString(id, fmt.Sprintf("ownerIds[%d]", i), maxIDLength); err != nil {
			return nil, err
		}
		if seen[id] {
			logger.Warningf("Duplicate owner id '%s' in ownerIds ignored", id)
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// parseOwnerIDs decodes the JSON array of owner ids passed to the entry points.
func parseOwnerIDs(ownerIDsJSON string) ([]string, error) {
	var ids []string
	if err := json.Unmarshal([]byte(ownerIDsJSON), &ids); err != nil {
		return nil, newError(ErrInvalidArgument, "ownerIdsJson must be a JSON array of strings: %v", err)
	}
	return ids, nil
}

// --- Ledger JSON codec ---

// getJSON loads the record at key into v. An absent or empty value reports
// found == false and leaves v untouched.
func getJSON(state ledger.State, key string, v interface{}) (bool, error) {
	raw, err := state.GetState(key)
	if err != nil {
		return false, fmt.Errorf("failed to read state for key '%s': %w", key, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal state for key '%s': %w", key, err)
	}
	return true, nil
}

func putJSON(state ledger.State, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal state for key '%s': %w", key, err)
	}
	if err := state.PutState(key, raw); err != nil {
		return fmt.Errorf("failed to write state for key '%s': %w", key, err)
	}
	return nil
}

// ReadState returns the JSON stored at key, compacted, or the empty string if
// the key is absent or holds an empty value. No key shape is enforced.
func ReadState(state ledger.State, key string) (string, error) {
	raw, err := state.GetState(key)
	if err != nil {
		return "", fmt.Errorf("failed to read state for key '%s': %w", key, err)
	}
	if len(raw) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", fmt.Errorf("state at key '%s' is not valid JSON: %w", key, err)
	}
	return buf.String(), nil
}

// marshalResult serializes a transaction result for the caller.
func marshalResult(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(raw), nil
}
