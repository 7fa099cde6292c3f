// Package ledger defines the key-value surface transactions run against and a
// local goleveldb-backed implementation of it.
//
// A Fabric shim.ChaincodeStubInterface satisfies State directly, so the same
// transaction logic runs inside the peer and against a local Store.
package ledger

//go:generate mockgen -destination=mocks/state.go -package=mocks globalpatents/ledger State

// State reads and writes whole records by key. GetState returns nil, nil for an
// absent key. All calls issued within one transaction commit or fail together;
// atomicity is the implementation's responsibility, not the caller's.
type State interface {
	GetState(key string) ([]byte, error)
	PutState(key string, value []byte) error
}
