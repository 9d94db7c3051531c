package domain

import "time"

// Account represents a caller's billing state.
type Account struct {
	ID        string
	Email     string
	Balance   int64
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance-amount < 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the new balance after a debit.
func (a *Account) ApplyDebit(amount int64) int64 {
	return a.Balance - amount
}

// ApplyCredit returns the new balance after a credit.
func (a *Account) ApplyCredit(amount int64) int64 {
	return a.Balance + amount
}
