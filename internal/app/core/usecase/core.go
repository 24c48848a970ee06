package usecase

import (
	"context"
	"log/slog"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// CoreUseCase 是核心業務邏輯層，提供給外部 (gRPC、CLI) 呼叫的操作
type CoreUseCase struct {
	ledger Ledger
	logger *slog.Logger
}

func NewCoreUseCase(ledger Ledger, logger *slog.Logger) *CoreUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CoreUseCase{
		ledger: ledger,
		logger: logger,
	}
}

// CreateAccount 開戶
func (c *CoreUseCase) CreateAccount(ctx context.Context, name string, initialBalance int64) (domain.OpenedAccount, error) {
	opened, err := c.ledger.CreateAccount(ctx, name, initialBalance)
	if err != nil {
		c.rejected(ctx, "create account", err, slog.Int64("amount", initialBalance))
		return domain.OpenedAccount{}, err
	}
	c.logger.DebugContext(ctx, "account created",
		slog.String("account_id", opened.ID.String()),
		slog.Int64("balance", opened.Balance))
	return opened, nil
}

// Deposit 存款，回傳新餘額
func (c *CoreUseCase) Deposit(ctx context.Context, id domain.AccountID, amount int64) (int64, error) {
	balance, err := c.ledger.Deposit(ctx, id, amount)
	if err != nil {
		c.rejected(ctx, "deposit", err, slog.String("account_id", id.String()), slog.Int64("amount", amount))
		return 0, err
	}
	c.logger.DebugContext(ctx, "deposit",
		slog.String("account_id", id.String()),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance))
	return balance, nil
}

// Withdraw 提款，回傳新餘額
func (c *CoreUseCase) Withdraw(ctx context.Context, id domain.AccountID, amount int64) (int64, error) {
	balance, err := c.ledger.Withdraw(ctx, id, amount)
	if err != nil {
		c.rejected(ctx, "withdraw", err, slog.String("account_id", id.String()), slog.Int64("amount", amount))
		return 0, err
	}
	c.logger.DebugContext(ctx, "withdraw",
		slog.String("account_id", id.String()),
		slog.Int64("amount", amount),
		slog.Int64("balance", balance))
	return balance, nil
}

// AddPayee 加入收款人
func (c *CoreUseCase) AddPayee(ctx context.Context, id, payeeID domain.AccountID) error {
	if err := c.ledger.AddPayee(ctx, id, payeeID); err != nil {
		c.rejected(ctx, "add payee", err, slog.String("account_id", id.String()), slog.String("payee_id", payeeID.String()))
		return err
	}
	c.logger.DebugContext(ctx, "payee added",
		slog.String("account_id", id.String()),
		slog.String("payee_id", payeeID.String()))
	return nil
}

// Transfer 轉帳
func (c *CoreUseCase) Transfer(ctx context.Context, id, payeeID domain.AccountID, amount int64) error {
	if err := c.ledger.Transfer(ctx, id, payeeID, amount); err != nil {
		c.rejected(ctx, "transfer", err,
			slog.String("account_id", id.String()),
			slog.String("payee_id", payeeID.String()),
			slog.Int64("amount", amount))
		return err
	}
	c.logger.DebugContext(ctx, "transfer",
		slog.String("account_id", id.String()),
		slog.String("payee_id", payeeID.String()),
		slog.Int64("amount", amount))
	return nil
}

// GetDetails 取得帳戶資料 (收款人已排序)
func (c *CoreUseCase) GetDetails(ctx context.Context, id domain.AccountID) (domain.AccountDetails, error) {
	account, err := c.ledger.Lookup(ctx, id)
	if err != nil {
		c.rejected(ctx, "get details", err, slog.String("account_id", id.String()))
		return domain.AccountDetails{}, err
	}
	return account.Details(), nil
}

// GetHistory 取得交易紀錄 (依時間順序)
func (c *CoreUseCase) GetHistory(ctx context.Context, id domain.AccountID) (domain.History, error) {
	account, err := c.ledger.Lookup(ctx, id)
	if err != nil {
		c.rejected(ctx, "get history", err, slog.String("account_id", id.String()))
		return nil, err
	}
	return account.History(), nil
}

// rejected 業務錯誤屬於正常流程，記 Info 即可
func (c *CoreUseCase) rejected(ctx context.Context, op string, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.String("op", op), slog.Any("error", err))
	c.logger.LogAttrs(ctx, slog.LevelInfo, "operation rejected", attrs...)
}
