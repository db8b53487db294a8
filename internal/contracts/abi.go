// Package contracts wraps the three deployed SLD contracts (token,
// presale, staking) behind typed read/write methods. The contracts
// themselves are external collaborators; only their published
// interfaces are encoded here.
package contracts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// StakedEventTopic is keccak256("Staked(address,uint8,uint256)"), the
// topic0 of the staking contract's Staked event. Used to look up a
// user's last stake timestamp from indexed logs.
const StakedEventTopic = "0x3cf14181ae25669a913d72411736fc5c01f538fa503e963b0b2e56bcefb3edaf"

const tokenABIJSON = `[
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
]`

const presaleABIJSON = `[
  {"type":"function","name":"rate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"saleActive","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"buyTokens","stateMutability":"payable","inputs":[],"outputs":[]},
  {"type":"function","name":"startSale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"stopSale","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"setRate","stateMutability":"nonpayable","inputs":[{"name":"newRate","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawBNB","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"withdrawTokens","stateMutability":"nonpayable","inputs":[{"name":"amount","type":"uint256"}],"outputs":[]}
]`

const stakingABIJSON = `[
  {"type":"function","name":"getUserInfo","stateMutability":"view","inputs":[{"name":"account","type":"address"},{"name":"poolId","type":"uint8"}],"outputs":[{"name":"stakedAmount","type":"uint256"},{"name":"pendingReward","type":"uint256"},{"name":"rateBps","type":"uint256"}]},
  {"type":"function","name":"NUM_POOLS","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"stake","stateMutability":"nonpayable","inputs":[{"name":"poolId","type":"uint8"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"unstake","stateMutability":"nonpayable","inputs":[{"name":"poolId","type":"uint8"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"claim","stateMutability":"nonpayable","inputs":[{"name":"poolId","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"exit","stateMutability":"nonpayable","inputs":[{"name":"poolId","type":"uint8"}],"outputs":[]},
  {"type":"function","name":"setRewardRate","stateMutability":"nonpayable","inputs":[{"name":"poolId","type":"uint8"},{"name":"rateBps","type":"uint256"}],"outputs":[]}
]`

var (
	tokenABI   = mustParseABI("token", tokenABIJSON)
	presaleABI = mustParseABI("presale", presaleABIJSON)
	stakingABI = mustParseABI("staking", stakingABIJSON)
)

func mustParseABI(name, js string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(js))
	if err != nil {
		panic(fmt.Sprintf("parse %s ABI: %v", name, err))
	}
	return parsed
}
