package storage

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// KV layers typed record access over a raw Database, encoding values with
// RLP. Records stored through it must stay within RLP's type surface
// (unsigned integers, big.Int, booleans, strings, byte arrays and structs of
// those).
type KV struct {
	db Database
}

// NewKV wraps the database in a typed record store.
func NewKV(db Database) *KV {
	return &KV{db: db}
}

// KVPut encodes the value and writes it under the key.
func (kv *KV) KVPut(key []byte, value interface{}) error {
	if kv == nil || kv.db == nil {
		return errors.New("storage: kv not initialised")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return kv.db.Put(key, encoded)
}

// KVGet decodes the stored value into out and reports whether the key exists.
// A nil out probes for existence only.
func (kv *KV) KVGet(key []byte, out interface{}) (bool, error) {
	if kv == nil || kv.db == nil {
		return false, errors.New("storage: kv not initialised")
	}
	encoded, err := kv.db.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(encoded, out); err != nil {
		return false, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return true, nil
}

// KVDelete removes the key if present.
func (kv *KV) KVDelete(key []byte) error {
	if kv == nil || kv.db == nil {
		return errors.New("storage: kv not initialised")
	}
	return kv.db.Delete(key)
}
