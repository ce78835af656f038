// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sys

// Constants of the resource system.
const (
	RefundDelaySec uint64 = 3 * 24 * 3600 // (unit: second) cooldown before unstaked or sold value is withdrawable.
	RAMGiftBytes   uint64 = 1400          // ram every account gets regardless of stake.

	InitialMaxRAMSize uint64 = 64 * 1024 * 1024 * 1024
)

// Well known accounts.
var (
	SystemAccount     = MustParseName("eosio")       // the system contract itself, privileged
	StakeAccount      = MustParseName("eosio.stake") // custody of staked and ram tokens
	AdminAccount      = MustParseName("worbli.admin")
	ComplianceAccount = MustParseName("worbli.prov")

	CoreSymbol = Symbol{Precision: 4, Code: "WBI"}
)

// Keys of governance params.
var (
	KeyRefundDelay  = []byte("refund-delay")
	KeyRAMGiftBytes = []byte("ram-gift-bytes")
	KeyMaxRAMSize   = []byte("max-ram-size")
)
