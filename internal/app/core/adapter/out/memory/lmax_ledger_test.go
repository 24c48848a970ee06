package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

func TestLMAXLedgerStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLMAXLedger()
	l.Start(ctx)

	opened, err := l.CreateAccount(context.Background(), "A", 10)
	require.NoError(t, err)

	cancel()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("writer did not stop")
	}

	_, err = l.Deposit(context.Background(), opened.ID, 5)
	assert.ErrorIs(t, err, domain.ErrLedgerStopped)

	// 停止後仍可讀取
	acct, err := l.Lookup(context.Background(), opened.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), acct.Balance())
}

func TestLMAXLedgerSubmitHonoursContextWhileQueueFull(t *testing.T) {
	runCtx, stop := context.WithCancel(context.Background())
	l := NewLMAXLedger(WithBufferSize(1))
	l.Start(runCtx)

	// writer 卡在第一筆，第二筆佔滿容量 1 的輸送帶
	busy := make(chan struct{})
	release := make(chan struct{})
	l.requests <- &ledgerRequest{fn: func() error {
		close(busy)
		<-release
		return nil
	}, result: make(chan error, 1)}
	<-busy
	l.requests <- &ledgerRequest{fn: func() error { return nil }, result: make(chan error, 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.CreateAccount(ctx, "A", 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	stop()
	<-l.Done()
}

func TestLMAXLedgerNotStarted(t *testing.T) {
	l := NewLMAXLedger()

	done := make(chan error, 1)
	go func() {
		_, err := l.CreateAccount(context.Background(), "A", 0)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, domain.ErrLedgerStopped)
	case <-time.After(time.Second):
		t.Fatal("submit blocked on a ledger that was never started")
	}
	assert.ErrorIs(t, l.AddPayee(context.Background(), 12345678, 87654321), domain.ErrLedgerStopped)

	// Restore 在 Start 之前仍可使用
	require.NoError(t, l.Restore(strings.NewReader(`{"seq":1,"op":"create_account","account_id":12345678,"name":"A","amount":10}`+"\n")))
	acct, err := l.Lookup(context.Background(), 12345678)
	require.NoError(t, err)
	assert.Equal(t, int64(10), acct.Balance())
}

func TestLMAXLedgerStartIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLMAXLedger()
	l.Start(ctx)
	l.Start(ctx)

	_, err := l.CreateAccount(context.Background(), "A", 0)
	require.NoError(t, err)

	cancel()
	<-l.Done()
}
