package memory

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
)

// engine 兩種帳本共用的核心：registry + journal
// 不負責排程，MutexLedger 直接在呼叫端 goroutine 執行，LMAXLedger 交給單一 writer 執行
type engine struct {
	reg *registry

	// journalMu 有 journal 時序列化「執行 + 寫 journal」，讓 journal 順序等於實際執行順序
	journalMu sync.Mutex
	journal   *journal.Journal
	seq       uint64
	logger    *slog.Logger
}

func newEngine(opts options) *engine {
	return &engine{
		reg:     newRegistry(opts),
		journal: opts.journal,
		logger:  opts.logger,
	}
}

// commit 執行 fn，成功後寫入 journal
// journal 寫入失敗不會回滾已完成的交易，只記錄錯誤
func (e *engine) commit(fn func() (JournalEntry, error)) error {
	if e.journal == nil {
		_, err := fn()
		return err
	}

	e.journalMu.Lock()
	defer e.journalMu.Unlock()

	entry, err := fn()
	if err != nil {
		return err
	}
	e.seq++
	entry.Seq = e.seq
	entry.At = time.Now()
	if err := e.journal.Append(&entry); err != nil {
		e.logger.Error("journal append failed",
			slog.Uint64("seq", entry.Seq),
			slog.String("op", string(entry.Op)),
			slog.Any("error", err))
	}
	return nil
}

func (e *engine) createAccount(name string, initialBalance int64) (domain.OpenedAccount, error) {
	var opened domain.OpenedAccount
	err := e.commit(func() (JournalEntry, error) {
		var err error
		opened, err = e.reg.create(name, initialBalance)
		return JournalEntry{
			Op:        OpCreateAccount,
			AccountID: opened.ID,
			Name:      opened.Name,
			Amount:    opened.Balance,
		}, err
	})
	return opened, err
}

func (e *engine) deposit(id domain.AccountID, amount int64) (int64, error) {
	var balance int64
	err := e.commit(func() (JournalEntry, error) {
		var err error
		balance, err = e.reg.deposit(id, amount)
		return JournalEntry{Op: OpDeposit, AccountID: id, Amount: amount}, err
	})
	return balance, err
}

func (e *engine) withdraw(id domain.AccountID, amount int64) (int64, error) {
	var balance int64
	err := e.commit(func() (JournalEntry, error) {
		var err error
		balance, err = e.reg.withdraw(id, amount)
		return JournalEntry{Op: OpWithdraw, AccountID: id, Amount: amount}, err
	})
	return balance, err
}

func (e *engine) addPayee(id, payeeID domain.AccountID) error {
	return e.commit(func() (JournalEntry, error) {
		return JournalEntry{Op: OpAddPayee, AccountID: id, PayeeID: payeeID}, e.reg.addPayee(id, payeeID)
	})
}

func (e *engine) transfer(sourceID, payeeID domain.AccountID, amount int64) error {
	return e.commit(func() (JournalEntry, error) {
		return JournalEntry{
			Op:        OpTransfer,
			AccountID: sourceID,
			PayeeID:   payeeID,
			Amount:    amount,
		}, e.reg.transfer(sourceID, payeeID, amount)
	})
}

// restore 從 journal 重建帳本，重放的操作不會再寫入 journal
func (e *engine) restore(r io.Reader) error {
	e.journalMu.Lock()
	defer e.journalMu.Unlock()
	last, err := restore(e.reg, r)
	if err != nil {
		return err
	}
	e.seq = last
	return nil
}
