package ledger_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"globalpatents/ledger"
)

func openMemory(t *testing.T) *ledger.Store {
	t.Helper()
	s, err := ledger.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetStateAbsentKeyReturnsNil(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Abort()

	val, err := tx.GetState("missing")
	assert.NoError(t, err)
	assert.Nil(t, val)
}

func TestTxReadsItsOwnWrites(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Abort()

	require.NoError(t, tx.PutState("k", []byte("v1")))
	require.NoError(t, tx.PutState("k", []byte("v2")))

	val, err := tx.GetState("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), val)
	assert.Equal(t, 2, tx.Len())
}

func TestCommitPersistsWrites(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.PutState("k", []byte("v")))
	require.NoError(t, tx.Commit())

	tx2, err := s.Begin()
	require.NoError(t, err)
	defer tx2.Abort()
	val, err := tx2.GetState("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestAbortDiscardsWrites(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.PutState("k", []byte("v")))
	tx.Abort()

	tx2, err := s.Begin()
	require.NoError(t, err)
	defer tx2.Abort()
	val, err := tx2.GetState("k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestBeginWhileInUseFails(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)

	_, err = s.Begin()
	assert.ErrorIs(t, err, ledger.ErrTxInUse)

	tx.Abort()
	tx2, err := s.Begin()
	assert.NoError(t, err, "begin after abort should succeed")
	tx2.Abort()
}

func TestClosedTxRejectsCalls(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	_, err = tx.GetState("k")
	assert.ErrorIs(t, err, ledger.ErrTxClosed)
	assert.ErrorIs(t, tx.PutState("k", nil), ledger.ErrTxClosed)
	assert.ErrorIs(t, tx.Commit(), ledger.ErrTxClosed)
	tx.Abort()
}

func TestPutStateEmptyKey(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Abort()
	assert.ErrorIs(t, tx.PutState("", []byte("v")), ledger.ErrEmptyKey)
}

func TestPutStateCopiesValue(t *testing.T) {
	s := openMemory(t)
	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Abort()

	buf := []byte("abc")
	require.NoError(t, tx.PutState("k", buf))
	buf[0] = 'z'

	val, err := tx.GetState("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), val)
}

func TestUpdateCommitsOrAborts(t *testing.T) {
	s := openMemory(t)

	err := s.Update(func(st ledger.State) error {
		return st.PutState("kept", []byte("1"))
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Update(func(st ledger.State) error {
		if err := st.PutState("dropped", []byte("1")); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, err)

	require.NoError(t, s.Update(func(st ledger.State) error {
		kept, err := st.GetState("kept")
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), kept)
		dropped, err := st.GetState("dropped")
		require.NoError(t, err)
		assert.Nil(t, dropped)
		return nil
	}))
}

func TestUpdateReleasesStoreWhenFnPanics(t *testing.T) {
	s := openMemory(t)

	assert.Panics(t, func() {
		_ = s.Update(func(st ledger.State) error {
			if err := st.PutState("dropped", []byte("1")); err != nil {
				return err
			}
			panic("boom")
		})
	})

	tx, err := s.Begin()
	require.NoError(t, err)
	defer tx.Abort()
	dropped, err := tx.GetState("dropped")
	require.NoError(t, err)
	assert.Nil(t, dropped)
}

func TestOpenFilePersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")

	s, err := ledger.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Update(func(st ledger.State) error {
		return st.PutState("k", []byte("v"))
	}))
	require.NoError(t, s.Close())

	s, err = ledger.Open(dir)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Update(func(st ledger.State) error {
		val, err := st.GetState("k")
		assert.Equal(t, []byte("v"), val)
		return err
	}))
}
