package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// ledgerRequest 交易請求包裝channel，讓呼叫端可以等待結果
type ledgerRequest struct {
	fn     func() error
	result chan error // 容量 1，writer 不會因為呼叫端放棄等待而卡住
}

// LMAXLedger 所有寫入操作經由輸送帶交給單一 writer goroutine 依序執行
// 讀取 (Lookup) 直接查 registry
type LMAXLedger struct {
	*engine
	// 輸送帶 負責接收交易
	requests chan *ledgerRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool
	startOnce   sync.Once
	started     atomic.Bool
	// done: writer 結束後關閉
	done chan struct{}
}

// NewLMAXLedger 建立一個新的 LMAXLedger 實例，需呼叫 Start 才會開始處理交易 (之前送出的交易回傳 ErrLedgerStopped)
//
// 參數:
//
//	opts: 帳號產生器、journal、輸送帶容量等選項
//
// 回傳:
//
//	*LMAXLedger: LMAXLedger 實例
func NewLMAXLedger(opts ...Option) *LMAXLedger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &LMAXLedger{
		engine:   newEngine(o),
		requests: make(chan *ledgerRequest, o.bufferSize),
		requestPool: sync.Pool{
			New: func() any {
				return &ledgerRequest{result: make(chan error, 1)}
			},
		},
		done: make(chan struct{}),
	}
}

// Restore 從 journal 重建帳本，必須在 Start 之前呼叫
func (l *LMAXLedger) Restore(r io.Reader) error {
	return l.restore(r)
}

// Start 啟動核心引擎 (非同步)，ctx 取消後處理完剩下的交易並停止
func (l *LMAXLedger) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		l.started.Store(true)
		go l.run(ctx)
	})
}

// Done 回傳 writer 結束時關閉的 channel
func (l *LMAXLedger) Done() <-chan struct{} {
	return l.done
}

func (l *LMAXLedger) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的交易處理完
			l.drain()
			return
		case req := <-l.requests:
			req.result <- req.fn()
		}
	}
}

func (l *LMAXLedger) drain() {
	for {
		select {
		case req := <-l.requests:
			req.result <- req.fn()
		default:
			return
		}
	}
}

// submit 放入輸送帶並等待結果
// ctx 只在排隊進輸送帶時生效；進入輸送帶後一定等到 writer 回覆或停止
//
// submit(等待) -> Channel -> run (核心) -> registry + journal -> result channel -> submit(收到結果)
func (l *LMAXLedger) submit(ctx context.Context, fn func() error) error {
	// 沒有 writer 時排進輸送帶就再也拿不到結果
	if !l.started.Load() {
		return fmt.Errorf("%w: writer not started", domain.ErrLedgerStopped)
	}
	req := l.requestPool.Get().(*ledgerRequest)
	req.fn = fn

	select {
	case l.requests <- req:
	case <-l.done:
		req.fn = nil
		l.requestPool.Put(req)
		return domain.ErrLedgerStopped
	case <-ctx.Done():
		req.fn = nil
		l.requestPool.Put(req)
		return ctx.Err()
	}

	select {
	case err := <-req.result:
		req.fn = nil
		l.requestPool.Put(req)
		return err
	case <-l.done:
		// writer 可能在結束前剛好處理了這筆
		select {
		case err := <-req.result:
			return err
		default:
			return domain.ErrLedgerStopped
		}
	}
}

// CreateAccount 開戶
func (l *LMAXLedger) CreateAccount(ctx context.Context, name string, initialBalance int64) (domain.OpenedAccount, error) {
	var opened domain.OpenedAccount
	err := l.submit(ctx, func() error {
		var err error
		opened, err = l.createAccount(name, initialBalance)
		return err
	})
	return opened, err
}

// Lookup 取得帳戶
func (l *LMAXLedger) Lookup(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	return l.reg.lookup(id)
}

// Deposit 存款
func (l *LMAXLedger) Deposit(ctx context.Context, id domain.AccountID, amount int64) (int64, error) {
	var balance int64
	err := l.submit(ctx, func() error {
		var err error
		balance, err = l.deposit(id, amount)
		return err
	})
	return balance, err
}

// Withdraw 提款
func (l *LMAXLedger) Withdraw(ctx context.Context, id domain.AccountID, amount int64) (int64, error) {
	var balance int64
	err := l.submit(ctx, func() error {
		var err error
		balance, err = l.withdraw(id, amount)
		return err
	})
	return balance, err
}

// AddPayee 加入收款人
func (l *LMAXLedger) AddPayee(ctx context.Context, id, payeeID domain.AccountID) error {
	return l.submit(ctx, func() error {
		return l.addPayee(id, payeeID)
	})
}

// Transfer 轉帳
func (l *LMAXLedger) Transfer(ctx context.Context, sourceID, payeeID domain.AccountID, amount int64) error {
	return l.submit(ctx, func() error {
		return l.transfer(sourceID, payeeID, amount)
	})
}

var _ usecase.Ledger = (*LMAXLedger)(nil)
