package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Account 單一帳戶：餘額、收款人清單與交易紀錄
//
// 結構:
//
//	id, name: 建立後不可變，讀取不需要 Lock
//	mu: 保護 balance / payees / history
type Account struct {
	id   AccountID
	name string

	mu      sync.Mutex
	balance int64
	payees  map[AccountID]struct{}
	history []TransactionRecord
}

// AccountDetails 帳戶資料快照
type AccountDetails struct {
	ID      AccountID
	Name    string
	Balance int64
	// Payees 由小到大排序
	Payees []AccountID
}

// OpenedAccount 開戶結果，初始餘額大於 0 時附上初始存款紀錄
type OpenedAccount struct {
	AccountDetails
	InitialRecord *TransactionRecord
}

// NewAccount 建立帳戶 (帳號由 Ledger 分配)
//
// 參數:
//
//	id: 8 位數帳號
//	name: 戶名，不可為空
//	initialBalance: 初始餘額，負數視為 0
//
// 回傳:
//
//	*Account: 帳戶
//	error: ErrInvalidInput
func NewAccount(id AccountID, name string, initialBalance int64) (*Account, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if !id.Valid() {
		return nil, fmt.Errorf("%w: account id %d out of range", ErrInvalidInput, id)
	}
	a := &Account{
		id:     id,
		name:   name,
		payees: make(map[AccountID]struct{}),
	}
	if initialBalance > 0 {
		a.balance = initialBalance
		a.record(TransactionKindDeposit, initialBalance, "")
	}
	return a, nil
}

// ValidateName 戶名不可為空白
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	return nil
}

func (a *Account) ID() AccountID {
	return a.id
}

func (a *Account) Name() string {
	return a.name
}

// Balance 目前餘額
func (a *Account) Balance() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Deposit 存款，回傳存款後餘額
func (a *Account) Deposit(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.balance > math.MaxInt64-amount {
		return 0, fmt.Errorf("%w: balance would overflow", ErrInvalidAmount)
	}
	a.balance += amount
	a.record(TransactionKindDeposit, amount, "")
	return a.balance, nil
}

// Withdraw 提款，回傳提款後餘額
func (a *Account) Withdraw(amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if amount > a.balance {
		return 0, ErrInsufficientFunds
	}
	a.balance -= amount
	a.record(TransactionKindWithdrawal, amount, "")
	return a.balance, nil
}

// AddPayee 加入收款人；重複加入不會報錯。
// 不檢查收款帳戶是否存在，轉帳時才檢查。
func (a *Account) AddPayee(payeeID AccountID) error {
	if !payeeID.Valid() {
		return ErrInvalidPayeeID
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payees[payeeID] = struct{}{}
	return nil
}

// HasPayee 是否已加入該收款人
func (a *Account) HasPayee(payeeID AccountID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.payees[payeeID]
	return ok
}

// Details 回傳帳戶資料快照
func (a *Account) Details() AccountDetails {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.detailsLocked()
}

func (a *Account) detailsLocked() AccountDetails {
	payees := make([]AccountID, 0, len(a.payees))
	for id := range a.payees {
		payees = append(payees, id)
	}
	slices.Sort(payees)
	return AccountDetails{
		ID:      a.id,
		Name:    a.name,
		Balance: a.balance,
		Payees:  payees,
	}
}

// History 回傳交易紀錄快照 (複製，呼叫端修改不影響帳戶)
func (a *Account) History() History {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(History, len(a.history))
	copy(out, a.history)
	return out
}

// Opened 回傳開戶結果
func (a *Account) Opened() OpenedAccount {
	a.mu.Lock()
	defer a.mu.Unlock()
	opened := OpenedAccount{AccountDetails: a.detailsLocked()}
	if len(a.history) > 0 && a.history[0].Kind == TransactionKindDeposit {
		rec := a.history[0]
		opened.InitialRecord = &rec
	}
	return opened
}

// record 寫入一筆交易紀錄，呼叫端必須持有 mu (建構子除外)
func (a *Account) record(kind TransactionKind, amount int64, description string) {
	a.history = append(a.history, TransactionRecord{
		ID:          uuid.New(),
		Timestamp:   time.Now(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
	})
}
