// Package processor implements the Synchronizer transition engine. Process
// gates on the program identity, decodes the command, runs the authorization
// and quorum checks, and applies the balance movements and the record
// mutation as one all-or-nothing step: every fallible computation happens
// before the first ledger call, and the record is packed only after every
// ledger call has succeeded.
package processor

import (
	"errors"

	"xdao.co/synchronizer/fixedpoint"
	"xdao.co/synchronizer/instruction"
	"xdao.co/synchronizer/program"
	"xdao.co/synchronizer/runtime"
	"xdao.co/synchronizer/state"
	"xdao.co/synchronizer/token"
)

// Account positions for BuyFor and SellFor. Oracle accounts follow the fixed
// block, one per claimed attestation.
const (
	tradeFiatMint = iota
	tradeUserCollateral
	tradeUserFiat
	tradeSyncCollateral
	tradeUserAuthority
	tradeSyncAuthority
	tradeAccountCount
)

// Account positions for WithdrawFee and WithdrawCollateral.
const (
	withdrawSyncCollateral = iota
	withdrawRecipient
	withdrawRecord
	withdrawAccountCount
)

// Processor executes Synchronizer commands against a token ledger under the
// host's rent schedule. The host serializes conflicting invocations, so a
// Processor holds no locks of its own.
type Processor struct {
	ledger token.Ledger
	rent   runtime.Rent
}

// New returns a Processor bound to a ledger and a rent schedule.
func New(ledger token.Ledger, rent runtime.Rent) *Processor {
	return &Processor{ledger: ledger, rent: rent}
}

// Process executes one serialized command. The account list layout is fixed
// per command variant; the record-bearing account's Data buffer is mutated in
// place on success and left untouched on any failure.
func (p *Processor) Process(programID program.PublicKey, accounts []*runtime.Account, data []byte) error {
	if programID != program.ID {
		return program.NewError(program.CodeIncorrectProgramID)
	}

	inst, err := instruction.Decode(data)
	if err != nil {
		return err
	}

	switch cmd := inst.(type) {
	case instruction.BuyFor:
		return p.buyFor(accounts, cmd)
	case instruction.SellFor:
		return p.sellFor(accounts, cmd)
	case instruction.Initialize:
		return p.initialize(accounts, cmd)
	case instruction.SetMinimumRequiredSignatures:
		return p.setMinimumRequiredSignatures(accounts, cmd)
	case instruction.SetCollateralToken:
		return p.setCollateralToken(accounts, cmd)
	case instruction.SetRemainingDollarCap:
		return p.setRemainingDollarCap(accounts, cmd)
	case instruction.WithdrawFee:
		return p.withdrawFee(accounts, cmd)
	case instruction.WithdrawCollateral:
		return p.withdrawCollateral(accounts, cmd)
	case instruction.SetOracles:
		return p.setOracles(accounts, cmd)
	}
	return program.NewError(program.CodeInvalidInstruction)
}

// requireRecordAuthority enforces the two gates every handler shares: the
// record account must be owned by this program and must have signed.
func requireRecordAuthority(acc *runtime.Account) error {
	if acc.Owner != program.ID {
		return program.NewError(program.CodeAccessDenied)
	}
	if !acc.IsSigner {
		return program.NewError(program.CodeInvalidSigner)
	}
	return nil
}

// tradeView is the validated context shared by BuyFor and SellFor: the host
// accounts, the unpacked record, and the ledger's view of every token
// account involved.
type tradeView struct {
	fiatMintAcc *runtime.Account
	userColl    *runtime.Account
	userFiat    *runtime.Account
	syncColl    *runtime.Account
	userAuth    *runtime.Account
	syncAuth    *runtime.Account

	rec         state.Record
	fiatMint    token.Mint
	userCollAcc token.Account
	userFiatAcc token.Account
	syncCollAcc token.Account
}

// openTrade runs the full buy/sell prologue: signer gates, record unpack,
// quorum validation against the record's persisted oracle set, collateral
// binding, and scale checks. Price selection is left to the caller since it
// is the only asymmetric step.
func (p *Processor) openTrade(accounts []*runtime.Account, prices []uint64) (*tradeView, error) {
	if len(accounts) < tradeAccountCount {
		return nil, program.NewError(program.CodeNotEnoughAccountKeys)
	}
	v := &tradeView{
		fiatMintAcc: accounts[tradeFiatMint],
		userColl:    accounts[tradeUserCollateral],
		userFiat:    accounts[tradeUserFiat],
		syncColl:    accounts[tradeSyncCollateral],
		userAuth:    accounts[tradeUserAuthority],
		syncAuth:    accounts[tradeSyncAuthority],
	}

	if err := requireRecordAuthority(v.syncAuth); err != nil {
		return nil, err
	}
	if !v.userAuth.IsSigner {
		return nil, program.NewError(program.CodeInvalidSigner)
	}

	rec, err := state.UnpackUnchecked(v.syncAuth.Data)
	if err != nil {
		return nil, err
	}
	if !rec.IsInitialized {
		return nil, program.NewError(program.CodeNotInitialized)
	}
	v.rec = rec

	oracles := accounts[tradeAccountCount:]
	quorum := int(rec.MinimumRequiredSignatures)
	// Price selection needs at least one entry even under a zero threshold.
	if len(prices) == 0 || len(oracles) < quorum || len(prices) < quorum {
		return nil, program.NewError(program.CodeNotEnoughOracles)
	}
	for i := 0; i < quorum; i++ {
		if !rec.HasOracle(oracles[i].Key) || !oracles[i].IsSigner {
			return nil, program.NewError(program.CodeBadOracle)
		}
	}

	v.syncCollAcc, err = p.ledger.Account(v.syncColl.Key)
	if err != nil {
		return nil, ledgerError(err)
	}
	v.userCollAcc, err = p.ledger.Account(v.userColl.Key)
	if err != nil {
		return nil, ledgerError(err)
	}
	if v.syncCollAcc.Mint != rec.CollateralToken {
		return nil, program.NewError(program.CodeBadCollateralMint)
	}
	if v.syncCollAcc.Owner != v.syncAuth.Key {
		return nil, program.NewError(program.CodeOwnerMismatch)
	}
	if v.userCollAcc.Mint != rec.CollateralToken {
		return nil, program.NewError(program.CodeBadCollateralMint)
	}
	if v.userCollAcc.Owner != v.userAuth.Key {
		return nil, program.NewError(program.CodeOwnerMismatch)
	}

	v.fiatMint, err = p.ledger.Mint(v.fiatMintAcc.Key)
	if err != nil {
		return nil, ledgerError(err)
	}
	if v.fiatMint.Decimals != program.DefaultDecimals {
		return nil, program.NewError(program.CodeBadDecimals)
	}

	v.userFiatAcc, err = p.ledger.Account(v.userFiat.Key)
	if err != nil {
		return nil, ledgerError(err)
	}
	if v.userFiatAcc.Owner != v.userAuth.Key {
		return nil, program.NewError(program.CodeOwnerMismatch)
	}
	if v.userFiatAcc.Mint != v.fiatMintAcc.Key {
		return nil, program.NewError(program.CodeOwnerMismatch)
	}

	return v, nil
}

func (p *Processor) buyFor(accounts []*runtime.Account, cmd instruction.BuyFor) error {
	v, err := p.openTrade(accounts, cmd.Prices)
	if err != nil {
		return err
	}
	// Worst case for the minter: the highest attested price.
	price := cmd.Prices[0]
	for _, pr := range cmd.Prices[:v.rec.MinimumRequiredSignatures] {
		if pr > price {
			price = pr
		}
	}

	if !v.fiatMint.HasAuthority || v.fiatMint.Authority != v.syncAuth.Key {
		return program.NewError(program.CodeBadMintAuthority)
	}

	collateralAmount, err := fixedpoint.MulScaled(cmd.Amount, price)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	feeAmount, err := fixedpoint.MulScaled(collateralAmount, cmd.Fee)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	total, err := fixedpoint.Add(collateralAmount, feeAmount)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	if v.userCollAcc.Amount < total {
		return program.NewError(program.CodeInsufficientFunds)
	}

	capDelta, err := fixedpoint.Mul(collateralAmount, cmd.Multiplier)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	newCap, err := fixedpoint.Sub(v.rec.RemainingDollarCap, capDelta)
	if err != nil {
		return program.WrapError(program.CodeInsufficientFunds, err)
	}
	newFeePool, err := fixedpoint.Add(v.rec.WithdrawableFeeAmount, feeAmount)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	// Both credit legs need headroom before any funds move.
	if _, err := fixedpoint.Add(v.syncCollAcc.Amount, total); err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	if _, err := fixedpoint.Add(v.userFiatAcc.Amount, cmd.Amount); err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}

	if err := p.ledger.Transfer(v.userColl.Key, v.syncColl.Key, v.userAuth.Key, total); err != nil {
		return ledgerError(err)
	}
	if err := p.ledger.MintTo(v.fiatMintAcc.Key, v.userFiat.Key, v.syncAuth.Key, cmd.Amount); err != nil {
		return ledgerError(err)
	}

	v.rec.RemainingDollarCap = newCap
	v.rec.WithdrawableFeeAmount = newFeePool
	return v.rec.Pack(v.syncAuth.Data)
}

func (p *Processor) sellFor(accounts []*runtime.Account, cmd instruction.SellFor) error {
	v, err := p.openTrade(accounts, cmd.Prices)
	if err != nil {
		return err
	}
	// Worst case for the redeemer: the lowest attested price.
	price := cmd.Prices[0]
	for _, pr := range cmd.Prices[:v.rec.MinimumRequiredSignatures] {
		if pr < price {
			price = pr
		}
	}

	collateralAmount, err := fixedpoint.MulScaled(cmd.Amount, price)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	feeAmount, err := fixedpoint.MulScaled(collateralAmount, cmd.Fee)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	payout, err := fixedpoint.Sub(collateralAmount, feeAmount)
	if err != nil {
		return program.WrapError(program.CodeInsufficientFunds, err)
	}

	if v.userFiatAcc.Amount < cmd.Amount {
		return program.NewError(program.CodeInsufficientFunds)
	}
	if v.syncCollAcc.Amount < payout {
		return program.NewError(program.CodeInsufficientFunds)
	}
	// The payout credit needs headroom before the fiat leg burns.
	if _, err := fixedpoint.Add(v.userCollAcc.Amount, payout); err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}

	capDelta, err := fixedpoint.Mul(collateralAmount, cmd.Multiplier)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	newCap, err := fixedpoint.Add(v.rec.RemainingDollarCap, capDelta)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	newFeePool, err := fixedpoint.Add(v.rec.WithdrawableFeeAmount, feeAmount)
	if err != nil {
		return program.WrapError(program.CodeAmountOverflow, err)
	}

	if err := p.ledger.Burn(v.userFiat.Key, v.fiatMintAcc.Key, v.userAuth.Key, cmd.Amount); err != nil {
		return ledgerError(err)
	}
	if err := p.ledger.Transfer(v.syncColl.Key, v.userColl.Key, v.syncAuth.Key, payout); err != nil {
		return ledgerError(err)
	}

	v.rec.RemainingDollarCap = newCap
	v.rec.WithdrawableFeeAmount = newFeePool
	return v.rec.Pack(v.syncAuth.Data)
}

func (p *Processor) initialize(accounts []*runtime.Account, cmd instruction.Initialize) error {
	if len(accounts) < 1 {
		return program.NewError(program.CodeNotEnoughAccountKeys)
	}
	recAcc := accounts[0]

	if err := requireRecordAuthority(recAcc); err != nil {
		return err
	}
	if len(cmd.Oracles) > program.MaxOracles {
		return program.NewError(program.CodeMaxOraclesExceed)
	}
	// Same slot bound SetMinimumRequiredSignatures enforces: the threshold
	// can never exceed the number of oracle slots.
	if cmd.MinimumRequiredSignatures > program.MaxOracles {
		return program.NewError(program.CodeMaxOraclesExceed)
	}
	if cmd.MinimumRequiredSignatures > program.MaxSigners {
		return program.NewError(program.CodeMaxSignersExceed)
	}

	rec, err := state.UnpackUnchecked(recAcc.Data)
	if err != nil {
		return err
	}
	if rec.IsInitialized {
		return program.NewError(program.CodeAlreadyInitialized)
	}
	if !p.rent.IsExempt(recAcc.Lamports, len(recAcc.Data)) {
		return program.NewError(program.CodeNotRentExempt)
	}

	rec.IsInitialized = true
	rec.CollateralToken = cmd.CollateralToken
	rec.RemainingDollarCap = cmd.RemainingDollarCap
	rec.WithdrawableFeeAmount = cmd.WithdrawableFeeAmount
	rec.MinimumRequiredSignatures = cmd.MinimumRequiredSignatures
	rec.SetOracleSet(cmd.Oracles)
	return rec.Pack(recAcc.Data)
}

// openRecord is the shared setter prologue: one record account, owned and
// signed, already initialized.
func openRecord(accounts []*runtime.Account) (*runtime.Account, state.Record, error) {
	if len(accounts) < 1 {
		return nil, state.Record{}, program.NewError(program.CodeNotEnoughAccountKeys)
	}
	recAcc := accounts[0]
	if err := requireRecordAuthority(recAcc); err != nil {
		return nil, state.Record{}, err
	}
	rec, err := state.UnpackUnchecked(recAcc.Data)
	if err != nil {
		return nil, state.Record{}, err
	}
	if !rec.IsInitialized {
		return nil, state.Record{}, program.NewError(program.CodeNotInitialized)
	}
	return recAcc, rec, nil
}

func (p *Processor) setMinimumRequiredSignatures(accounts []*runtime.Account, cmd instruction.SetMinimumRequiredSignatures) error {
	if len(accounts) < 1 {
		return program.NewError(program.CodeNotEnoughAccountKeys)
	}
	if err := requireRecordAuthority(accounts[0]); err != nil {
		return err
	}
	// The threshold can never exceed the number of oracle slots, checked
	// before the record is touched so that an absurd value fails the same
	// way on an uninitialized record.
	if cmd.MinimumRequiredSignatures > program.MaxOracles {
		return program.NewError(program.CodeMaxOraclesExceed)
	}
	if cmd.MinimumRequiredSignatures > program.MaxSigners {
		return program.NewError(program.CodeMaxSignersExceed)
	}

	recAcc, rec, err := openRecord(accounts)
	if err != nil {
		return err
	}
	rec.MinimumRequiredSignatures = cmd.MinimumRequiredSignatures
	return rec.Pack(recAcc.Data)
}

func (p *Processor) setCollateralToken(accounts []*runtime.Account, cmd instruction.SetCollateralToken) error {
	recAcc, rec, err := openRecord(accounts)
	if err != nil {
		return err
	}
	rec.CollateralToken = cmd.CollateralToken
	return rec.Pack(recAcc.Data)
}

func (p *Processor) setRemainingDollarCap(accounts []*runtime.Account, cmd instruction.SetRemainingDollarCap) error {
	recAcc, rec, err := openRecord(accounts)
	if err != nil {
		return err
	}
	rec.RemainingDollarCap = cmd.RemainingDollarCap
	return rec.Pack(recAcc.Data)
}

func (p *Processor) setOracles(accounts []*runtime.Account, cmd instruction.SetOracles) error {
	if len(accounts) < 1 {
		return program.NewError(program.CodeNotEnoughAccountKeys)
	}
	if err := requireRecordAuthority(accounts[0]); err != nil {
		return err
	}
	if len(cmd.Oracles) > program.MaxOracles {
		return program.NewError(program.CodeMaxOraclesExceed)
	}

	recAcc, rec, err := openRecord(accounts)
	if err != nil {
		return err
	}
	rec.SetOracleSet(cmd.Oracles)
	return rec.Pack(recAcc.Data)
}

func (p *Processor) withdrawFee(accounts []*runtime.Account, cmd instruction.WithdrawFee) error {
	if len(accounts) < withdrawAccountCount {
		return program.NewError(program.CodeNotEnoughAccountKeys)
	}
	syncColl := accounts[withdrawSyncCollateral]
	recipient := accounts[withdrawRecipient]

	recAcc, rec, err := openRecord(accounts[withdrawRecord:])
	if err != nil {
		return err
	}
	if rec.WithdrawableFeeAmount < cmd.Amount {
		return program.NewError(program.CodeInsufficientFunds)
	}

	if err := p.ledger.Transfer(syncColl.Key, recipient.Key, recAcc.Key, cmd.Amount); err != nil {
		return ledgerError(err)
	}

	rec.WithdrawableFeeAmount -= cmd.Amount
	return rec.Pack(recAcc.Data)
}

func (p *Processor) withdrawCollateral(accounts []*runtime.Account, cmd instruction.WithdrawCollateral) error {
	if len(accounts) < withdrawAccountCount {
		return program.NewError(program.CodeNotEnoughAccountKeys)
	}
	syncColl := accounts[withdrawSyncCollateral]
	recipient := accounts[withdrawRecipient]

	recAcc, _, err := openRecord(accounts[withdrawRecord:])
	if err != nil {
		return err
	}

	collAcc, err := p.ledger.Account(syncColl.Key)
	if err != nil {
		return ledgerError(err)
	}
	if collAcc.Amount < cmd.Amount {
		return program.NewError(program.CodeInsufficientFunds)
	}

	// No fee or cap bookkeeping changes, so the record is never re-packed.
	return ledgerError(p.ledger.Transfer(syncColl.Key, recipient.Key, recAcc.Key, cmd.Amount))
}

// ledgerError translates token ledger failures into the program taxonomy.
// Most are unreachable after the handler's own checks, but the ledger is an
// external collaborator and its verdict is final.
func ledgerError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, token.ErrAccountNotFound), errors.Is(err, token.ErrMintNotFound):
		return program.WrapError(program.CodeInvalidAccountData, err)
	case errors.Is(err, token.ErrInsufficientFunds):
		return program.WrapError(program.CodeInsufficientFunds, err)
	case errors.Is(err, token.ErrOwnerMismatch), errors.Is(err, token.ErrMintMismatch):
		return program.WrapError(program.CodeOwnerMismatch, err)
	case errors.Is(err, token.ErrAuthorityMismatch):
		return program.WrapError(program.CodeBadMintAuthority, err)
	case errors.Is(err, token.ErrAmountOverflow):
		return program.WrapError(program.CodeAmountOverflow, err)
	}
	return err
}
