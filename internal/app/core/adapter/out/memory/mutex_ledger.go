package memory

import (
	"context"
	"io"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

// MutexLedger 是一個使用 Mutex 實現的帳本
//
// 結構:
//
//	registry: RWMutex 保護帳戶 Map
//	每個帳戶自己的 Mutex 保護餘額、收款人與交易紀錄
//	轉帳依帳號順序同時鎖住兩個帳戶
type MutexLedger struct {
	*engine
}

// NewMutexLedger 建立一個新的 MutexLedger 實例
//
// 參數:
//
//	opts: 帳號產生器、journal、logger 等選項
//
// 回傳:
//
//	*MutexLedger: MutexLedger 實例
func NewMutexLedger(opts ...Option) *MutexLedger {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MutexLedger{engine: newEngine(o)}
}

// Restore 從 journal 重建帳本，只能在空帳本上呼叫
func (m *MutexLedger) Restore(r io.Reader) error {
	return m.restore(r)
}

// CreateAccount 開戶
func (m *MutexLedger) CreateAccount(ctx context.Context, name string, initialBalance int64) (domain.OpenedAccount, error) {
	return m.createAccount(name, initialBalance)
}

// Lookup 取得帳戶
func (m *MutexLedger) Lookup(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	return m.reg.lookup(id)
}

// Deposit 存款
func (m *MutexLedger) Deposit(ctx context.Context, id domain.AccountID, amount int64) (int64, error) {
	return m.deposit(id, amount)
}

// Withdraw 提款
func (m *MutexLedger) Withdraw(ctx context.Context, id domain.AccountID, amount int64) (int64, error) {
	return m.withdraw(id, amount)
}

// AddPayee 加入收款人
func (m *MutexLedger) AddPayee(ctx context.Context, id, payeeID domain.AccountID) error {
	return m.addPayee(id, payeeID)
}

// Transfer 轉帳
//
// 參數:
//
//	ctx: 上下文
//	sourceID: 轉出帳號
//	payeeID: 收款帳號 (必須已加入收款人)
//	amount: 金額
//
// 回傳:
//
//	error: ErrInvalidAmount / ErrPayeeNotRegistered / ErrInsufficientFunds / ErrAccountNotFound
func (m *MutexLedger) Transfer(ctx context.Context, sourceID, payeeID domain.AccountID, amount int64) error {
	return m.transfer(sourceID, payeeID, amount)
}

var _ usecase.Ledger = (*MutexLedger)(nil)
