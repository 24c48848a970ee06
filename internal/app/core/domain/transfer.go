package domain

import (
	"fmt"
	"math"
)

// Transfer 由 src 轉帳 amount 給 payeeID
//
// 檢查順序固定 (先失敗者回傳)：
//  1. amount > 0                  -> ErrInvalidAmount
//  2. payeeID 在 src 收款人清單中 -> ErrPayeeNotRegistered
//  3. amount <= src 餘額          -> ErrInsufficientFunds
//  4. 收款帳戶存在 (dst != nil)   -> ErrAccountNotFound
//  5. 入帳後不溢位                -> ErrInvalidAmount
//
// 兩個帳戶依帳號順序上鎖，檢查與扣款/入帳都在同一個臨界區內完成，
// 任何檢查失敗兩邊的餘額與交易紀錄都不會改變。
//
// 參數:
//
//	src: 轉出帳戶
//	payeeID: 收款帳號
//	dst: 收款帳戶，找不到時傳 nil
//	amount: 金額 (最小貨幣單位)
func Transfer(src *Account, payeeID AccountID, dst *Account, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if dst != nil && dst.id != payeeID {
		return fmt.Errorf("%w: payee account %d does not match payee id %d", ErrInvalidInput, dst.id, payeeID)
	}

	unlock := lockPair(src, dst)
	defer unlock()

	if _, ok := src.payees[payeeID]; !ok {
		return ErrPayeeNotRegistered
	}
	if amount > src.balance {
		return ErrInsufficientFunds
	}
	if dst == nil {
		return ErrAccountNotFound
	}
	// 自己轉給自己餘額不變，不會溢位
	if dst != src && dst.balance > math.MaxInt64-amount {
		return fmt.Errorf("%w: balance would overflow", ErrInvalidAmount)
	}

	// 自己轉給自己時餘額不變，但仍留下轉出與轉入兩筆紀錄
	src.balance -= amount
	dst.balance += amount
	src.record(TransactionKindTransferOut, amount, "To "+payeeID.String())
	dst.record(TransactionKindTransferIn, amount, "From "+src.id.String())
	return nil
}

// lockPair 依帳號順序鎖定兩個帳戶，回傳解鎖函式
func lockPair(a, b *Account) (unlock func()) {
	if b == nil || a == b {
		a.mu.Lock()
		return a.mu.Unlock
	}
	first, second := a, b
	if lo, _ := LockOrder(a.id, b.id); lo != a.id {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
