package memory

import (
	"fmt"
	"sync"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// registry 帳號 -> 帳戶 的對照表
//
// 結構:
//
//	mu: 保護 accounts；帳戶本身的狀態由各自的 Lock 保護
//	idSource: 候選帳號產生器
//	maxAttempts: 碰撞重試上限
type registry struct {
	mu          sync.RWMutex
	accounts    map[domain.AccountID]*domain.Account
	idSource    IDSource
	maxAttempts int
}

func newRegistry(opts options) *registry {
	return &registry{
		accounts:    make(map[domain.AccountID]*domain.Account),
		idSource:    opts.idSource,
		maxAttempts: opts.maxIDAttempts,
	}
}

// create 分配帳號並開戶，產生帳號與寫入 map 在同一個 Lock 內完成
func (r *registry) create(name string, initialBalance int64) (domain.OpenedAccount, error) {
	if err := domain.ValidateName(name); err != nil {
		return domain.OpenedAccount{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.nextID()
	if err != nil {
		return domain.OpenedAccount{}, err
	}
	account, err := domain.NewAccount(id, name, initialBalance)
	if err != nil {
		return domain.OpenedAccount{}, err
	}
	// 放進 map 之前取快照，其他人還看不到這個帳戶
	opened := account.Opened()
	r.accounts[id] = account
	return opened, nil
}

// nextID 呼叫端必須持有寫鎖
func (r *registry) nextID() (domain.AccountID, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		id := r.idSource()
		if !id.Valid() {
			continue
		}
		if _, taken := r.accounts[id]; !taken {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: no free id after %d attempts", domain.ErrIDSpaceExhausted, r.maxAttempts)
}

// insert 以指定帳號放入帳戶 (journal 重放用)
func (r *registry) insert(account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.accounts[account.ID()]; taken {
		return fmt.Errorf("%w: account %s already exists", domain.ErrInvalidInput, account.ID())
	}
	r.accounts[account.ID()] = account
	return nil
}

func (r *registry) lookup(id domain.AccountID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *registry) deposit(id domain.AccountID, amount int64) (int64, error) {
	account, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	return account.Deposit(amount)
}

func (r *registry) withdraw(id domain.AccountID, amount int64) (int64, error) {
	account, err := r.lookup(id)
	if err != nil {
		return 0, err
	}
	return account.Withdraw(amount)
}

func (r *registry) addPayee(id, payeeID domain.AccountID) error {
	account, err := r.lookup(id)
	if err != nil {
		return err
	}
	return account.AddPayee(payeeID)
}

// transfer 來源帳戶必須存在；收款帳戶是否存在交給 domain.Transfer 依順序檢查
func (r *registry) transfer(sourceID, payeeID domain.AccountID, amount int64) error {
	r.mu.RLock()
	source, ok := r.accounts[sourceID]
	payee := r.accounts[payeeID]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrAccountNotFound
	}
	return domain.Transfer(source, payeeID, payee, amount)
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
