// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/pkg/errors"

	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/table"
	"github.com/worbli/rescore/log"
	"github.com/worbli/rescore/sys"
)

var (
	logger = log.WithContext("pkg", "token")

	tableAccounts = sys.MustParseName("accounts")
	tableStat     = sys.MustParseName("stat")
)

type account struct {
	Balance uint64
}

type stat struct {
	Supply    uint64
	MaxSupply uint64
	Issuer    sys.Name
}

// Token is the ledger of the core token: balances, supply and transfers.
type Token struct {
	symbol   sys.Symbol
	accounts *table.Table[account]
	stat     *table.Singleton[stat]
}

func New(ctx *table.Context, symbol sys.Symbol) *Token {
	return &Token{
		symbol:   symbol,
		accounts: table.New[account](ctx, tableAccounts),
		stat:     table.NewSingleton[stat](ctx, tableStat),
	}
}

// Symbol returns the token symbol.
func (t *Token) Symbol() sys.Symbol {
	return t.symbol
}

// Create registers the token with its issuer and maximum supply.
func (t *Token) Create(issuer sys.Name, maxSupply sys.Asset) error {
	if err := t.checkAsset(maxSupply, "max supply"); err != nil {
		return err
	}
	st, err := t.stat.Get()
	if err != nil {
		return err
	}
	if st != nil {
		return reverts.New("token with symbol already exists")
	}
	return t.stat.Set(&stat{MaxSupply: uint64(maxSupply.Amount), Issuer: issuer})
}

// Supply returns the current supply.
func (t *Token) Supply() (sys.Asset, error) {
	st, err := t.stat.Get()
	if err != nil {
		return sys.Asset{}, err
	}
	if st == nil {
		return sys.Asset{Symbol: t.symbol}, nil
	}
	return sys.Asset{Amount: int64(st.Supply), Symbol: t.symbol}, nil
}

// Issue mints quantity into the account.
func (t *Token) Issue(to sys.Name, quantity sys.Asset, memo string) error {
	if err := t.checkAsset(quantity, "quantity"); err != nil {
		return err
	}
	st, err := t.stat.Get()
	if err != nil {
		return err
	}
	if st == nil {
		return reverts.New("token with symbol does not exist, create token before issue")
	}
	if uint64(quantity.Amount) > st.MaxSupply-st.Supply {
		return reverts.New("quantity exceeds available supply")
	}
	st.Supply += uint64(quantity.Amount)
	if err := t.stat.Set(st); err != nil {
		return err
	}
	logger.Debug("issue", "to", to, "quantity", quantity, "memo", memo)
	return t.add(to, uint64(quantity.Amount), st.Issuer)
}

// Balance returns the balance of the account.
func (t *Token) Balance(owner sys.Name) (sys.Asset, error) {
	acc, err := t.accounts.Get(owner, owner)
	if err != nil {
		return sys.Asset{}, err
	}
	var amount uint64
	if acc != nil {
		amount = acc.Balance
	}
	return sys.Asset{Amount: int64(amount), Symbol: t.symbol}, nil
}

// Transfer moves quantity between accounts.
func (t *Token) Transfer(from, to sys.Name, quantity sys.Asset, memo string) error {
	if err := reverts.Require(from != to, "cannot transfer to self"); err != nil {
		return err
	}
	if err := t.checkAsset(quantity, "quantity"); err != nil {
		return err
	}
	if err := reverts.Require(len(memo) <= 256, "memo has more than 256 bytes"); err != nil {
		return err
	}
	if err := t.sub(from, uint64(quantity.Amount)); err != nil {
		return err
	}
	if err := t.add(to, uint64(quantity.Amount), from); err != nil {
		return err
	}
	logger.Debug("transfer", "from", from, "to", to, "quantity", quantity, "memo", memo)
	return nil
}

func (t *Token) checkAsset(a sys.Asset, what string) error {
	if a.Symbol != t.symbol {
		return reverts.Errorf("symbol precision mismatch: %v", a.Symbol)
	}
	if !a.IsValid() || a.Amount <= 0 {
		return reverts.Errorf("must use positive %s", what)
	}
	return nil
}

func (t *Token) sub(owner sys.Name, amount uint64) error {
	acc, err := t.accounts.Get(owner, owner)
	if err != nil {
		return err
	}
	if acc == nil || acc.Balance < amount {
		return reverts.New("overdrawn balance")
	}
	acc.Balance -= amount
	return errors.WithMessage(t.accounts.Update(owner, owner, acc, owner), "sub balance")
}

func (t *Token) add(owner sys.Name, amount uint64, payer sys.Name) error {
	acc, err := t.accounts.Get(owner, owner)
	if err != nil {
		return err
	}
	if acc == nil {
		return t.accounts.Insert(owner, owner, &account{Balance: amount}, payer)
	}
	acc.Balance += amount
	return t.accounts.Update(owner, owner, acc, 0)
}
