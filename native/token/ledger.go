package token

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrInvalidAmount rejects nil, zero or negative transfer amounts.
	ErrInvalidAmount = errors.New("token ledger: amount must be positive")
	// ErrInsufficientFunds rejects transfers exceeding the sender balance.
	ErrInsufficientFunds = errors.New("token ledger: insufficient balance")
)

// kvStore abstracts the typed key-value layer the token ledger persists
// balances in.
type kvStore interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

const balancePrefix = "token/balance/"

func balanceKey(token, holder [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x/%x", balancePrefix, token, holder))
}

// Ledger maintains fungible token balances and satisfies the platform
// engine's payment collaborator contract. It exists so a node can settle
// subscription and tip value internally; production deployments may swap in a
// bridge to an external token system instead.
type Ledger struct {
	kv kvStore
}

// NewLedger binds the balance table to the provided key-value layer.
func NewLedger(kv kvStore) *Ledger {
	return &Ledger{kv: kv}
}

func (l *Ledger) withKV() (kvStore, error) {
	if l == nil || l.kv == nil {
		return nil, errors.New("token ledger: kv not configured")
	}
	return l.kv, nil
}

// BalanceOf returns the holder's balance for the token, zero when the holder
// has never been credited.
func (l *Ledger) BalanceOf(token, holder [20]byte) (*big.Int, error) {
	kv, err := l.withKV()
	if err != nil {
		return nil, err
	}
	balance := new(big.Int)
	ok, err := kv.KVGet(balanceKey(token, holder), balance)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return balance, nil
}

// Mint credits freshly issued tokens to the holder. Used at genesis and in
// tests; there is no burn path.
func (l *Ledger) Mint(token, holder [20]byte, amount *big.Int) error {
	kv, err := l.withKV()
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := l.BalanceOf(token, holder)
	if err != nil {
		return err
	}
	return kv.KVPut(balanceKey(token, holder), new(big.Int).Add(balance, amount))
}

// Transfer moves the amount between holders, implementing the platform
// engine's PaymentCollaborator interface. It either applies both balance
// updates or neither.
func (l *Ledger) Transfer(token [20]byte, from [20]byte, to [20]byte, amount *big.Int) error {
	kv, err := l.withKV()
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	fromBalance, err := l.BalanceOf(token, from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	// A self-transfer is a funds-checked no-op. Writing both legs from the
	// balances read above would overwrite the debit with a stale credit.
	if from == to {
		return nil
	}
	toBalance, err := l.BalanceOf(token, to)
	if err != nil {
		return err
	}
	if err := kv.KVPut(balanceKey(token, from), new(big.Int).Sub(fromBalance, amount)); err != nil {
		return err
	}
	return kv.KVPut(balanceKey(token, to), new(big.Int).Add(toBalance, amount))
}
