package model

import (
	"github.com/shopspring/decimal"

	"tradecore/internal/model/enum"
)

// AccountBalance is one currency's balance split into locked and free.
type AccountBalance struct {
	Currency string
	Total    decimal.Decimal
	Locked   decimal.Decimal
	Free     decimal.Decimal
}

// Account is the account view consumed by the risk engine.
type Account struct {
	ID           AccountId
	Venue        Venue
	Type         enum.AccountType
	BaseCurrency string // empty for multi-currency accounts
	Balances     map[string]AccountBalance
}

// NewAccount builds an account with the given balances.
func NewAccount(id AccountId, venue Venue, accountType enum.AccountType, balances ...AccountBalance) *Account {
	acc := &Account{
		ID:       id,
		Venue:    venue,
		Type:     accountType,
		Balances: make(map[string]AccountBalance, len(balances)),
	}
	for _, b := range balances {
		acc.Balances[b.Currency] = b
	}
	return acc
}

// BalanceFree returns the free balance for a currency, if any.
func (a *Account) BalanceFree(currency string) (decimal.Decimal, bool) {
	b, ok := a.Balances[currency]
	if !ok {
		return decimal.Decimal{}, false
	}
	return b.Free, true
}

// BalanceTotal returns the total balance for a currency, if any.
func (a *Account) BalanceTotal(currency string) (decimal.Decimal, bool) {
	b, ok := a.Balances[currency]
	if !ok {
		return decimal.Decimal{}, false
	}
	return b.Total, true
}
