package main

import (
	"encoding/hex"
	"fmt"

	"xdao.co/synchronizer/instruction"
	"xdao.co/synchronizer/program"
)

func key(b byte) program.PublicKey {
	var pk program.PublicKey
	for i := range pk {
		pk[i] = b
	}
	return pk
}

func main() {
	vectors := []struct {
		name string
		inst instruction.Instruction
	}{
		{"buy_for", instruction.BuyFor{
			Multiplier: 2,
			Amount:     50_000_000_000,
			Fee:        1_000_000,
			Prices:     []uint64{500_000_000, 400_000_000},
		}},
		{"sell_for", instruction.SellFor{
			Multiplier: 2,
			Amount:     100_000_000_000,
			Fee:        1_000_000,
			Prices:     []uint64{500_000_000, 400_000_000},
		}},
		{"initialize", instruction.Initialize{
			CollateralToken:           key(0xC0),
			RemainingDollarCap:        1_000_000_000_000,
			WithdrawableFeeAmount:     0,
			MinimumRequiredSignatures: 2,
			Oracles:                   []program.PublicKey{key(1), key(2), key(3)},
		}},
		{"set_minimum_required_signatures", instruction.SetMinimumRequiredSignatures{
			MinimumRequiredSignatures: 3,
		}},
		{"set_collateral_token", instruction.SetCollateralToken{
			CollateralToken: key(0xC1),
		}},
		{"set_remaining_dollar_cap", instruction.SetRemainingDollarCap{
			RemainingDollarCap: 2_000_000_000_000,
		}},
		{"withdraw_fee", instruction.WithdrawFee{Amount: 1_000_000}},
		{"withdraw_collateral", instruction.WithdrawCollateral{Amount: 10_000_000_000}},
		{"set_oracles", instruction.SetOracles{
			Oracles: []program.PublicKey{key(4), key(5)},
		}},
	}

	for _, v := range vectors {
		raw := instruction.Encode(v.inst)
		fmt.Printf("%s tag=%d len=%d\n", v.name, v.inst.Tag(), len(raw))
		fmt.Printf("%s\n\n", hex.EncodeToString(raw))
	}
}
