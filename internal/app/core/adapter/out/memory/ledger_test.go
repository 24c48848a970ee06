package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

type ledgerFactory func(t *testing.T, opts ...Option) usecase.Ledger

func engines() map[string]ledgerFactory {
	return map[string]ledgerFactory{
		"mutex": func(t *testing.T, opts ...Option) usecase.Ledger {
			return NewMutexLedger(opts...)
		},
		"lmax": func(t *testing.T, opts ...Option) usecase.Ledger {
			ctx, cancel := context.WithCancel(context.Background())
			l := NewLMAXLedger(opts...)
			l.Start(ctx)
			t.Cleanup(func() {
				cancel()
				<-l.Done()
			})
			return l
		},
	}
}

// sequenceIDs 依序回傳 ids，用完後一直回傳最後一個
func sequenceIDs(ids ...domain.AccountID) IDSource {
	var mu sync.Mutex
	i := 0
	return func() domain.AccountID {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id
	}
}

func forEachEngine(t *testing.T, fn func(t *testing.T, newLedger ledgerFactory)) {
	for name, factory := range engines() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory)
		})
	}
}

func TestAliceBobScenario(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t)

		alice, err := l.CreateAccount(ctx, "Alice", 100)
		require.NoError(t, err)
		assert.True(t, alice.ID.Valid())
		assert.Equal(t, int64(100), alice.Balance)
		require.NotNil(t, alice.InitialRecord)
		assert.Equal(t, domain.TransactionKindDeposit, alice.InitialRecord.Kind)
		assert.Equal(t, int64(100), alice.InitialRecord.Amount)

		bal, err := l.Deposit(ctx, alice.ID, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(150), bal)

		bob, err := l.CreateAccount(ctx, "Bob", 0)
		require.NoError(t, err)
		assert.Nil(t, bob.InitialRecord)

		require.NoError(t, l.AddPayee(ctx, alice.ID, bob.ID))
		require.NoError(t, l.Transfer(ctx, alice.ID, bob.ID, 75))

		aliceAcct, err := l.Lookup(ctx, alice.ID)
		require.NoError(t, err)
		bobAcct, err := l.Lookup(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(75), aliceAcct.Balance())
		assert.Equal(t, int64(75), bobAcct.Balance())

		out, _ := aliceAcct.History().Last()
		assert.Equal(t, domain.TransactionKindTransferOut, out.Kind)
		assert.Equal(t, int64(75), out.Amount)
		in, _ := bobAcct.History().Last()
		assert.Equal(t, domain.TransactionKindTransferIn, in.Kind)
		assert.Equal(t, int64(75), in.Amount)

		// 餘額 75 轉 100 -> 餘額不足
		err = l.Transfer(ctx, alice.ID, bob.ID, 100)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.Equal(t, int64(75), aliceAcct.Balance())
		assert.Equal(t, int64(75), bobAcct.Balance())

		// 未加入的收款人，先於餘額與存在性檢查
		err = l.Transfer(ctx, alice.ID, 11111111, 1_000_000)
		assert.ErrorIs(t, err, domain.ErrPayeeNotRegistered)
	})
}

func TestCreateAccountErrors(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t)

		_, err := l.CreateAccount(ctx, "", 10)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		opened, err := l.CreateAccount(ctx, "Neg", -10)
		require.NoError(t, err)
		assert.Zero(t, opened.Balance)
		assert.Nil(t, opened.InitialRecord)
	})
}

func TestIDCollisionRetry(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		// 第二次開戶先撞到 11111111，再拿到一個無效帳號，最後成功
		l := newLedger(t, WithIDSource(sequenceIDs(11111111, 11111111, 5, 22222222)))

		a, err := l.CreateAccount(ctx, "A", 0)
		require.NoError(t, err)
		b, err := l.CreateAccount(ctx, "B", 0)
		require.NoError(t, err)
		assert.Equal(t, domain.AccountID(11111111), a.ID)
		assert.Equal(t, domain.AccountID(22222222), b.ID)
	})
}

func TestIDSpaceExhausted(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t,
			WithIDSource(func() domain.AccountID { return 33333333 }),
			WithMaxIDAttempts(5))

		_, err := l.CreateAccount(ctx, "A", 0)
		require.NoError(t, err)
		_, err = l.CreateAccount(ctx, "B", 0)
		assert.ErrorIs(t, err, domain.ErrIDSpaceExhausted)

		// 名稱錯誤優先於帳號耗盡
		_, err = l.CreateAccount(ctx, " ", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestUniqueIDs(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t)

		const n = 500
		seen := make(map[domain.AccountID]struct{}, n)
		for i := 0; i < n; i++ {
			opened, err := l.CreateAccount(ctx, "user", 0)
			require.NoError(t, err)
			assert.True(t, opened.ID.Valid(), "id=%d", opened.ID)
			seen[opened.ID] = struct{}{}
		}
		assert.Len(t, seen, n)
	})
}

func TestAccountNotFound(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t)
		const missing domain.AccountID = 44444444

		_, err := l.Lookup(ctx, missing)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		_, err = l.Deposit(ctx, missing, 10)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		// 帳戶檢查先於金額檢查
		_, err = l.Withdraw(ctx, missing, 0)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)
		assert.ErrorIs(t, l.AddPayee(ctx, missing, 12345678), domain.ErrAccountNotFound)
		assert.ErrorIs(t, l.Transfer(ctx, missing, 12345678, 10), domain.ErrAccountNotFound)
	})
}

func TestTransferToMissingPayee(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t)

		a, err := l.CreateAccount(ctx, "A", 100)
		require.NoError(t, err)
		require.NoError(t, l.AddPayee(ctx, a.ID, 55555555))

		err = l.Transfer(ctx, a.ID, 55555555, 10)
		assert.ErrorIs(t, err, domain.ErrAccountNotFound)

		acct, _ := l.Lookup(ctx, a.ID)
		assert.Equal(t, int64(100), acct.Balance())
		assert.Len(t, acct.History(), 1)
	})
}

func TestConcurrentCrossTransfers(t *testing.T) {
	forEachEngine(t, func(t *testing.T, newLedger ledgerFactory) {
		ctx := context.Background()
		l := newLedger(t)

		a, err := l.CreateAccount(ctx, "A", 1000)
		require.NoError(t, err)
		b, err := l.CreateAccount(ctx, "B", 1000)
		require.NoError(t, err)
		require.NoError(t, l.AddPayee(ctx, a.ID, b.ID))
		require.NoError(t, l.AddPayee(ctx, b.ID, a.ID))

		const n = 200
		var wg sync.WaitGroup
		wg.Add(2 * n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				assert.NoError(t, l.Transfer(ctx, a.ID, b.ID, 1))
			}()
			go func() {
				defer wg.Done()
				assert.NoError(t, l.Transfer(ctx, b.ID, a.ID, 1))
			}()
		}
		wg.Wait()

		aa, _ := l.Lookup(ctx, a.ID)
		bb, _ := l.Lookup(ctx, b.ID)
		assert.Equal(t, int64(2000), aa.Balance()+bb.Balance())
		assert.GreaterOrEqual(t, aa.Balance(), int64(0))
		assert.GreaterOrEqual(t, bb.Balance(), int64(0))
	})
}
