// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package system

import (
	"github.com/worbli/rescore/builtin/reverts"
	"github.com/worbli/rescore/builtin/system/limits"
	"github.com/worbli/rescore/sys"
)

// StakeBandwidth stakes net and cpu from one account for a receiver.
func (s *System) StakeBandwidth(env *Env, from, receiver sys.Name, net, cpu sys.Asset, transfer bool) error {
	return s.run("stakebw", env, func(svc *services) error {
		if err := env.RequireAuth(from); err != nil {
			return err
		}
		return svc.bandwidth.Stake(from, receiver, net, cpu, transfer, env.Time)
	})
}

// UnstakeBandwidth withdraws stake from a receiver into the staker's refund queue.
func (s *System) UnstakeBandwidth(env *Env, from, receiver sys.Name, net, cpu sys.Asset) error {
	return s.run("unstakebw", env, func(svc *services) error {
		if err := env.RequireAuth(from); err != nil {
			return err
		}
		return svc.bandwidth.Unstake(from, receiver, net, cpu, env.Time)
	})
}

// ClaimRefund pays a matured refund out of custody and returns the amount paid.
func (s *System) ClaimRefund(env *Env, owner sys.Name) (paid sys.Asset, err error) {
	err = s.run("refund", env, func(svc *services) error {
		if err := env.RequireAuth(owner); err != nil {
			return err
		}
		req, err := svc.refunds.Claim(owner, env.Time)
		if err != nil {
			return err
		}
		amount, err := req.Amount()
		if err != nil {
			return err
		}
		paid = sys.NewAsset(int64(amount))
		if amount == 0 {
			return nil
		}
		return s.tokens.Transfer(sys.StakeAccount, owner, paid, "unstake")
	})
	if err != nil {
		return sys.Asset{}, err
	}
	metricRefundSettled().Add(paid.Amount)
	return paid, nil
}

// BuyRam buys RAM for quantity tokens. It returns the bytes bought.
func (s *System) BuyRam(env *Env, payer, receiver sys.Name, quantity sys.Asset) (bytes uint64, err error) {
	err = s.run("buyram", env, func(svc *services) error {
		if err := env.RequireAuth(payer); err != nil {
			return err
		}
		bytes, err = svc.market.Buy(payer, receiver, quantity, env.Time)
		return err
	})
	return bytes, err
}

// BuyRamBytes buys at least bytes of RAM at the current price. It returns the bytes bought.
func (s *System) BuyRamBytes(env *Env, payer, receiver sys.Name, bytes uint64) (bought uint64, err error) {
	err = s.run("buyrambytes", env, func(svc *services) error {
		if err := env.RequireAuth(payer); err != nil {
			return err
		}
		bought, err = svc.market.BuyBytes(payer, receiver, bytes, env.Time)
		return err
	})
	return bought, err
}

// SellRam sells RAM of the account. It returns the tokens credited to the refund queue.
func (s *System) SellRam(env *Env, account sys.Name, bytes int64) (tokens uint64, err error) {
	err = s.run("sellram", env, func(svc *services) error {
		if err := env.RequireAuth(account); err != nil {
			return err
		}
		tokens, err = svc.market.Sell(account, bytes, env.Time)
		return err
	})
	return tokens, err
}

// GrantRam buys RAM for a receiver on behalf of a privileged grantor.
func (s *System) GrantRam(env *Env, grantor, receiver sys.Name, quantity sys.Asset) (bytes uint64, err error) {
	err = s.run("grantram", env, func(svc *services) error {
		if err := env.RequireAuth(grantor); err != nil {
			return err
		}
		bytes, err = svc.market.Grant(grantor, receiver, quantity)
		return err
	})
	return bytes, err
}

// RevokeRam takes back granted RAM. It returns the tokens credited to the grantor's refund queue.
func (s *System) RevokeRam(env *Env, grantor, receiver sys.Name, bytes uint64) (tokens uint64, err error) {
	err = s.run("revokeram", env, func(svc *services) error {
		if err := env.RequireAuth(grantor); err != nil {
			return err
		}
		tokens, err = svc.market.Revoke(grantor, receiver, bytes, env.Time)
		return err
	})
	return tokens, err
}

// SetManagedFlags marks limit dimensions of an account as set by an external delegate.
func (s *System) SetManagedFlags(env *Env, account sys.Name, flags limits.Flags) error {
	return s.run("setflags", env, func(*services) error {
		if err := env.RequireAuth(sys.SystemAccount); err != nil {
			return err
		}
		return s.flags.Set(account, flags)
	})
}

// SetLimits sets the limits of an account directly, as a delegate managing them would.
func (s *System) SetLimits(env *Env, account sys.Name, l limits.Limits) error {
	return s.run("setlimits", env, func(*services) error {
		if err := env.RequireAuth(sys.SystemAccount); err != nil {
			return err
		}
		for _, v := range []int64{l.RAM, l.Net, l.CPU} {
			if err := reverts.Require(v >= limits.Unlimited, "invalid limit %d", v); err != nil {
				return err
			}
		}
		return s.gov.SetLimits(account, l)
	})
}

// SetParam overrides a governance param. Zero restores the default.
func (s *System) SetParam(env *Env, key string, value uint64) error {
	return s.run("setparam", env, func(*services) error {
		if err := env.RequireAuth(sys.SystemAccount); err != nil {
			return err
		}
		switch key {
		case string(sys.KeyRefundDelay), string(sys.KeyRAMGiftBytes):
			return s.params.Set([]byte(key), value)
		case string(sys.KeyMaxRAMSize):
			g, err := s.totals.Global()
			if err != nil {
				return err
			}
			if err := reverts.Require(value > 0, "max ram size must be positive"); err != nil {
				return err
			}
			if err := reverts.Require(value >= g.TotalRAMBytesReserved, "attempt to set max below reserved"); err != nil {
				return err
			}
			g.MaxRAMSize = value
			return s.totals.SetGlobal(g)
		default:
			return reverts.Errorf("unknown param %q", key)
		}
	})
}

// CreateToken registers the core token with the system account as issuer.
func (s *System) CreateToken(env *Env, maxSupply sys.Asset) error {
	return s.run("create", env, func(*services) error {
		if err := env.RequireAuth(sys.SystemAccount); err != nil {
			return err
		}
		return s.tokens.Create(sys.SystemAccount, maxSupply)
	})
}

// Issue mints core tokens to an account.
func (s *System) Issue(env *Env, to sys.Name, quantity sys.Asset, memo string) error {
	return s.run("issue", env, func(*services) error {
		if err := env.RequireAuth(sys.SystemAccount); err != nil {
			return err
		}
		return s.tokens.Issue(to, quantity, memo)
	})
}

// Transfer moves core tokens between accounts.
func (s *System) Transfer(env *Env, from, to sys.Name, quantity sys.Asset, memo string) error {
	return s.run("transfer", env, func(*services) error {
		if err := env.RequireAuth(from); err != nil {
			return err
		}
		return s.tokens.Transfer(from, to, quantity, memo)
	})
}
