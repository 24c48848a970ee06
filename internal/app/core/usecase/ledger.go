package usecase

import (
	"context"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Ledger 是帳務系統的介面，唯一可以建立帳戶與跨帳戶轉帳的元件
type Ledger interface {
	// CreateAccount 分配不重複的帳號並開戶
	CreateAccount(ctx context.Context, name string, initialBalance int64) (domain.OpenedAccount, error)
	// Lookup 取得帳戶，不存在時回傳 domain.ErrAccountNotFound
	Lookup(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	// Deposit 存款，回傳存款後餘額
	Deposit(ctx context.Context, id domain.AccountID, amount int64) (int64, error)
	// Withdraw 提款，回傳提款後餘額
	Withdraw(ctx context.Context, id domain.AccountID, amount int64) (int64, error)
	// AddPayee 加入收款人
	AddPayee(ctx context.Context, id, payeeID domain.AccountID) error
	// Transfer 轉帳 (原子操作)
	Transfer(ctx context.Context, sourceID, payeeID domain.AccountID, amount int64) error
}
