package memory

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
)

// JournalOp journal 中的操作類型
type JournalOp string

const (
	OpCreateAccount JournalOp = "create_account"
	OpDeposit       JournalOp = "deposit"
	OpWithdraw      JournalOp = "withdraw"
	OpAddPayee      JournalOp = "add_payee"
	OpTransfer      JournalOp = "transfer"
)

// JournalEntry 一筆已成功執行的帳本操作
type JournalEntry struct {
	// Seq: 由帳本分配的遞增序號 (1, 2, 3...)，重放時用來確認順序
	Seq       uint64           `json:"seq"`
	Op        JournalOp        `json:"op"`
	AccountID domain.AccountID `json:"account_id"`
	PayeeID   domain.AccountID `json:"payee_id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Amount    int64            `json:"amount,omitempty"`
	At        time.Time        `json:"at"`
}

// restore 把 journal 重放到空的 registry
//
// 參數:
//
//	reg: 目標 registry (必須是空的)
//	r: journal 內容
//
// 回傳:
//
//	uint64: 最後一筆序號
//	error: 格式錯誤、序號不連續或重放失敗
func restore(reg *registry, r io.Reader) (uint64, error) {
	if reg.count() != 0 {
		return 0, fmt.Errorf("%w: restore requires an empty ledger", domain.ErrInvalidInput)
	}

	var last uint64
	err := journal.Replay(r, func(raw json.RawMessage) error {
		var entry JournalEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		if entry.Seq <= last {
			return fmt.Errorf("journal entry seq %d after %d", entry.Seq, last)
		}
		if err := applyEntry(reg, &entry); err != nil {
			return fmt.Errorf("replay seq %d (%s): %w", entry.Seq, entry.Op, err)
		}
		last = entry.Seq
		return nil
	})
	return last, err
}

// applyEntry 重放單筆操作 (不寫 journal)
func applyEntry(reg *registry, entry *JournalEntry) error {
	switch entry.Op {
	case OpCreateAccount:
		account, err := domain.NewAccount(entry.AccountID, entry.Name, entry.Amount)
		if err != nil {
			return err
		}
		return reg.insert(account)
	case OpDeposit:
		_, err := reg.deposit(entry.AccountID, entry.Amount)
		return err
	case OpWithdraw:
		_, err := reg.withdraw(entry.AccountID, entry.Amount)
		return err
	case OpAddPayee:
		return reg.addPayee(entry.AccountID, entry.PayeeID)
	case OpTransfer:
		return reg.transfer(entry.AccountID, entry.PayeeID, entry.Amount)
	default:
		return fmt.Errorf("%w: unknown journal op %q", domain.ErrInvalidInput, entry.Op)
	}
}
