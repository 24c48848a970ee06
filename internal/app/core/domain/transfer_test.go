package domain

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransfer(t *testing.T) {
	alice := newTestAccount(t, 12345678, "Alice", 150)
	bob := newTestAccount(t, 87654321, "Bob", 0)
	require.NoError(t, alice.AddPayee(bob.ID()))

	require.NoError(t, Transfer(alice, bob.ID(), bob, 75))

	assert.Equal(t, int64(75), alice.Balance())
	assert.Equal(t, int64(75), bob.Balance())

	out, _ := alice.History().Last()
	assert.Equal(t, TransactionKindTransferOut, out.Kind)
	assert.Equal(t, int64(75), out.Amount)
	assert.Equal(t, "To 87654321", out.Description)

	in, _ := bob.History().Last()
	assert.Equal(t, TransactionKindTransferIn, in.Kind)
	assert.Equal(t, int64(75), in.Amount)
	assert.Equal(t, "From 12345678", in.Description)
}

func TestTransferValidationOrder(t *testing.T) {
	const ghost AccountID = 55555555

	tests := []struct {
		name    string
		payee   AccountID
		dst     func(bob *Account) *Account
		amount  int64
		wantErr error
	}{
		{
			name:    "amount checked before payee registration",
			payee:   ghost,
			dst:     func(*Account) *Account { return nil },
			amount:  0,
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "payee registration checked before balance",
			payee:   33333333,
			dst:     func(*Account) *Account { return nil },
			amount:  1_000_000,
			wantErr: ErrPayeeNotRegistered,
		},
		{
			name:    "balance checked before payee existence",
			payee:   ghost,
			dst:     func(*Account) *Account { return nil },
			amount:  101,
			wantErr: ErrInsufficientFunds,
		},
		{
			name:    "payee existence checked last",
			payee:   ghost,
			dst:     func(*Account) *Account { return nil },
			amount:  10,
			wantErr: ErrAccountNotFound,
		},
		{
			name:    "insufficient funds with existing payee",
			payee:   87654321,
			dst:     func(bob *Account) *Account { return bob },
			amount:  101,
			wantErr: ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := newTestAccount(t, 12345678, "Alice", 100)
			bob := newTestAccount(t, 87654321, "Bob", 20)
			require.NoError(t, alice.AddPayee(ghost))
			require.NoError(t, alice.AddPayee(bob.ID()))
			aliceBefore, bobBefore := alice.History(), bob.History()

			err := Transfer(alice, tt.payee, tt.dst(bob), tt.amount)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, int64(100), alice.Balance())
			assert.Equal(t, int64(20), bob.Balance())
			assert.Equal(t, aliceBefore, alice.History())
			assert.Equal(t, bobBefore, bob.History())
		})
	}
}

func TestTransferOverflow(t *testing.T) {
	tests := []struct {
		name      string
		srcAmount int64
		dstAmount int64
		amount    int64
		wantErr   error
	}{
		{name: "payee at max", srcAmount: math.MaxInt64, dstAmount: math.MaxInt64, amount: 1, wantErr: ErrInvalidAmount},
		{name: "credit past max", srcAmount: 100, dstAmount: math.MaxInt64 - 50, amount: 51, wantErr: ErrInvalidAmount},
		{name: "credit up to max", srcAmount: 100, dstAmount: math.MaxInt64 - 50, amount: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alice := newTestAccount(t, 12345678, "Alice", tt.srcAmount)
			bob := newTestAccount(t, 87654321, "Bob", tt.dstAmount)
			require.NoError(t, alice.AddPayee(bob.ID()))

			err := Transfer(alice, bob.ID(), bob, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.srcAmount, alice.Balance())
				assert.Equal(t, tt.dstAmount, bob.Balance())
				assert.Len(t, alice.History(), 1)
				assert.Len(t, bob.History(), 1)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.srcAmount-tt.amount, alice.Balance())
			assert.Equal(t, int64(math.MaxInt64), bob.Balance())
			assert.GreaterOrEqual(t, bob.Balance(), int64(0))
		})
	}
}

func TestTransferToSelfAtMaxBalance(t *testing.T) {
	a := newTestAccount(t, 12345678, "Alice", math.MaxInt64)
	require.NoError(t, a.AddPayee(a.ID()))

	require.NoError(t, Transfer(a, a.ID(), a, 1))
	assert.Equal(t, int64(math.MaxInt64), a.Balance())
}

func TestTransferToSelf(t *testing.T) {
	a := newTestAccount(t, 12345678, "Alice", 100)
	require.NoError(t, a.AddPayee(a.ID()))

	require.NoError(t, Transfer(a, a.ID(), a, 40))

	assert.Equal(t, int64(100), a.Balance())
	h := a.History()
	require.Len(t, h, 3)
	assert.Equal(t, TransactionKindTransferOut, h[1].Kind)
	assert.Equal(t, TransactionKindTransferIn, h[2].Kind)
}

func TestTransferMismatchedPayee(t *testing.T) {
	alice := newTestAccount(t, 12345678, "Alice", 100)
	bob := newTestAccount(t, 87654321, "Bob", 0)
	require.NoError(t, alice.AddPayee(22222222))

	err := Transfer(alice, 22222222, bob, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, int64(100), alice.Balance())
}

func TestConcurrentOppositeTransfers(t *testing.T) {
	a := newTestAccount(t, 12345678, "A", 1000)
	b := newTestAccount(t, 87654321, "B", 1000)
	require.NoError(t, a.AddPayee(b.ID()))
	require.NoError(t, b.AddPayee(a.ID()))

	const n = 200
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, Transfer(a, b.ID(), b, 1))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, Transfer(b, a.ID(), a, 1))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2000), a.Balance()+b.Balance())
	assert.Len(t, a.History(), 1+2*n)
	assert.Len(t, b.History(), 1+2*n)
}

func TestLockOrder(t *testing.T) {
	lo, hi := LockOrder(87654321, 12345678)
	assert.Equal(t, AccountID(12345678), lo)
	assert.Equal(t, AccountID(87654321), hi)

	lo, hi = LockOrder(12345678, 87654321)
	assert.Equal(t, AccountID(12345678), lo)
	assert.Equal(t, AccountID(87654321), hi)
}

func TestTransactionKindNames(t *testing.T) {
	for _, kind := range []TransactionKind{
		TransactionKindDeposit,
		TransactionKindWithdrawal,
		TransactionKindTransferOut,
		TransactionKindTransferIn,
	} {
		got, err := ParseTransactionKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}
	_, err := ParseTransactionKind("Refund")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
