package contracts

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	chainstub "sld-dashboard/internal/chain/stub"
	"sld-dashboard/internal/domain"
	walletstub "sld-dashboard/internal/wallet/stub"
)

var (
	tokenAddr   = common.HexToAddress("0x1000000000000000000000000000000000000001")
	stakingAddr = common.HexToAddress("0x1000000000000000000000000000000000000002")
	userAddr    = common.HexToAddress("0x2000000000000000000000000000000000000001")
)

func TestTokenSelectors(t *testing.T) {
	// Standard ERC-20 selectors (EIP-20).
	cases := []struct {
		method string
		want   string
	}{
		{"balanceOf", "70a08231"},
		{"totalSupply", "18160ddd"},
		{"allowance", "dd62ed3e"},
		{"approve", "095ea7b3"},
	}

	for _, tc := range cases {
		m, ok := tokenABI.Methods[tc.method]
		if !ok {
			t.Fatalf("method %s missing from token ABI", tc.method)
		}
		if got := hex.EncodeToString(m.ID); got != tc.want {
			t.Errorf("%s: expected selector %s, got %s", tc.method, tc.want, got)
		}
	}
}

func TestToken_BalanceOf(t *testing.T) {
	caller := chainstub.NewCaller()
	token := NewToken(tokenAddr, caller, nil)

	want := big.NewInt(123456)
	out, err := tokenABI.Methods["balanceOf"].Outputs.Pack(want)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	caller.SetResponse(tokenAddr, tokenABI.Methods["balanceOf"].ID, out)

	got, err := token.BalanceOf(context.Background(), userAddr)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if got.Cmp(want) != 0 {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestToken_Approve(t *testing.T) {
	sender := walletstub.NewSender()
	token := NewToken(tokenAddr, nil, sender)

	hash, err := token.Approve(context.Background(), stakingAddr, big.NewInt(100))
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if hash == "" {
		t.Fatal("expected transaction hash")
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent tx, got %d", len(sent))
	}
	if sent[0].Req.To != tokenAddr {
		t.Errorf("expected tx to token contract, got %s", sent[0].Req.To.Hex())
	}
	if got := hex.EncodeToString(sent[0].Req.Data[:4]); got != "095ea7b3" {
		t.Errorf("expected approve selector, got %s", got)
	}
}

func TestStaking_GetUserInfo(t *testing.T) {
	caller := chainstub.NewCaller()
	staking := NewStaking(stakingAddr, caller, nil)

	staked := big.NewInt(5_000)
	pending := big.NewInt(42)
	rate := big.NewInt(250)

	out, err := stakingABI.Methods["getUserInfo"].Outputs.Pack(staked, pending, rate)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	caller.SetResponse(stakingAddr, stakingABI.Methods["getUserInfo"].ID, out)

	info, err := staking.GetUserInfo(context.Background(), userAddr, domain.PoolFlexible)
	if err != nil {
		t.Fatalf("GetUserInfo: %v", err)
	}

	if info.StakedRaw.Cmp(staked) != 0 {
		t.Errorf("staked: expected %s, got %s", staked, info.StakedRaw)
	}
	if info.PendingRaw.Cmp(pending) != 0 {
		t.Errorf("pending: expected %s, got %s", pending, info.PendingRaw)
	}
	if info.RateBps != 250 {
		t.Errorf("rateBps: expected 250, got %d", info.RateBps)
	}
}

func TestStaking_StakeEncodesPool(t *testing.T) {
	sender := walletstub.NewSender()
	staking := NewStaking(stakingAddr, nil, sender)

	if _, err := staking.Stake(context.Background(), domain.PoolLock90, big.NewInt(10)); err != nil {
		t.Fatalf("Stake: %v", err)
	}

	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent tx, got %d", len(sent))
	}

	method, err := stakingABI.MethodById(sent[0].Req.Data[:4])
	if err != nil || method.Name != "stake" {
		t.Fatalf("expected stake call, got %v (%v)", method, err)
	}

	args, err := method.Inputs.Unpack(sent[0].Req.Data[4:])
	if err != nil {
		t.Fatalf("unpack args: %v", err)
	}
	if args[0].(uint8) != 1 {
		t.Errorf("expected pool 1, got %v", args[0])
	}
}
