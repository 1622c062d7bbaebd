package issuance

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cellforge/cellforge/internal/faults"
	"github.com/cellforge/cellforge/internal/guard"
	"github.com/cellforge/cellforge/internal/ledger"
	"github.com/cellforge/cellforge/internal/lifecycle"
	"github.com/cellforge/cellforge/internal/token"
	"github.com/cellforge/cellforge/internal/wallet"
	"github.com/cellforge/cellforge/pkg/crypto"
	"github.com/cellforge/cellforge/pkg/tx"
	"github.com/cellforge/cellforge/pkg/types"
	"github.com/asaskevich/EventBus"
)

// Step cell capacities, in base units. The lock cell is oversized on
// purpose: together with the seal it must fund both mint outputs plus the
// mint fee without any further input completion.
const (
	sealCellCapacity  = 70 * types.UnitsPerCoin
	lockCellCapacity  = 350 * types.UnitsPerCoin
	tokenCellCapacity = 142 * types.UnitsPerCoin
	metaCellCapacity  = 170 * types.UnitsPerCoin
)

// Config holds the orchestrator's operational knobs. Tip wait values are
// configurable because indexing latency varies per deployment.
type Config struct {
	FeeRate          uint64        // base units per transaction byte
	PlatformFee      uint64        // mandatory charge, base units
	CollectorAddress types.Address // platform fee destination
	CreatorAddress   types.Address // tip destination
	TipIndexWait     time.Duration // bounded wait for the token cell to index
	TipProgressEvery time.Duration // progress event cadence during the wait
}

// Orchestrator drives issuance sessions against one wallet session. Its
// single-flight guard is scoped to that wallet session, so one user cannot
// race two issuances, while separate sessions stay independent.
type Orchestrator struct {
	client ledger.Client
	asm    *ledger.Assembler
	wallet *wallet.Session
	tokens *token.Store // may be nil (no local registry)
	cfg    Config
	bus    EventBus.Bus

	guard guard.Guard

	// lastStamp guards the seal/lock timestamp tags against clock
	// regression: tags must increase monotonically within a process.
	stampMu   sync.Mutex
	lastStamp int64
}

// New creates an orchestrator for a wallet session.
func New(client ledger.Client, ws *wallet.Session, tokens *token.Store, cfg Config, bus EventBus.Bus) *Orchestrator {
	return &Orchestrator{
		client: client,
		asm:    ledger.NewAssembler(client),
		wallet: ws,
		tokens: tokens,
		cfg:    cfg,
		bus:    bus,
	}
}

// AcquireTransactionLock exposes the single-flight guard to the UI layer
// for its own reentrancy prevention. Returns false without blocking when
// the lock is held.
func (o *Orchestrator) AcquireTransactionLock() bool {
	return o.guard.TryAcquire()
}

// ReleaseTransactionLock releases the guard. Idempotent.
func (o *Orchestrator) ReleaseTransactionLock() {
	o.guard.Release()
}

// StartIssuance validates params, takes the session guard, and drives the
// workflow to a terminal state. The returned session is always non-nil and
// carries the status stream, transaction references, and error log. The
// returned error is the fatal fault for aborted sessions, a guard/
// validation fault for sessions that never left Idle, and nil when the
// session completed (even with a failed tip).
func (o *Orchestrator) StartIssuance(ctx context.Context, params Params) (*Session, error) {
	// Symbol case is normalized at input time so every downstream
	// comparison sees one spelling.
	params.Symbol = token.NormalizeSymbol(params.Symbol)

	sess := newSession(params, NewStream(o.bus))

	// Precondition guards. Failures here are user-correctable: the session
	// never leaves Idle and nothing is submitted.
	if f := o.validate(sess); f != nil {
		sess.recordFault(f)
		sess.stream.emit(sess.ID, "", StateIdle, f.Message)
		return sess, f
	}
	if !o.wallet.Connected() {
		f := faults.New(faults.WalletConnection, "wallet not connected")
		sess.recordFault(f)
		sess.stream.emit(sess.ID, "", StateIdle, f.Message)
		return sess, f
	}
	if !o.guard.TryAcquire() {
		f := faults.New(faults.TransactionLockConflict, "issuance already in progress for this session")
		sess.recordFault(f)
		sess.stream.emit(sess.ID, "", StateIdle, f.Message)
		return sess, f
	}
	defer o.guard.Release()

	sess.stream.emit(sess.ID, "", StateIdle, fmt.Sprintf("starting issuance of %s %s", params.Amount, params.Symbol))

	if err := o.stepFee(ctx, sess); err != nil {
		return sess, o.abort(sess, lifecycle.RoleFee, err)
	}
	if err := o.stepSeal(ctx, sess); err != nil {
		return sess, o.abort(sess, lifecycle.RoleSeal, err)
	}
	if err := o.stepLock(ctx, sess); err != nil {
		return sess, o.abort(sess, lifecycle.RoleLock, err)
	}
	if err := o.stepMint(ctx, sess); err != nil {
		return sess, o.abort(sess, lifecycle.RoleMint, err)
	}

	if params.TipEnabled {
		if err := o.stepTip(ctx, sess); err != nil {
			f := faults.Classify(err)
			if f.Kind.Fatal() {
				return sess, o.abort(sess, lifecycle.RoleTip, err)
			}
			// Non-fatal: the token already exists. Record the failure and
			// complete anyway; the tip can be retried independently.
			sess.recordFault(f)
			sess.setState(StateTipFailed, lifecycle.RoleTip, f.Message+" — "+f.Suggestion)
		}
	}

	sess.setState(StateComplete, "", "issuance complete")
	return sess, nil
}

// validate checks all required fields. The codec itself never range-checks,
// so this is the single gate before anything is encoded.
func (o *Orchestrator) validate(sess *Session) *faults.Fault {
	p := sess.Params
	if err := token.ValidateDecimals(p.Decimals); err != nil {
		return faults.Wrap(faults.Validation, err, "invalid decimals")
	}
	if err := token.ValidateSymbol(p.Symbol); err != nil {
		return faults.Wrap(faults.Validation, err, "invalid symbol")
	}
	if err := token.ValidateName(p.Name); err != nil {
		return faults.Wrap(faults.Validation, err, "invalid name")
	}
	if p.TipEnabled {
		if err := token.ValidateTipPercent(p.TipPercentage); err != nil {
			return faults.Wrap(faults.Validation, err, "invalid tip percentage")
		}
	}
	baseUnits, err := token.ParseAmount(p.Amount, p.Decimals)
	if err != nil {
		return faults.Wrap(faults.Validation, err, "invalid amount")
	}
	sess.mu.Lock()
	sess.baseUnits = baseUnits
	sess.mu.Unlock()
	return nil
}

// abort classifies the failure, logs it, releases nothing (the deferred
// guard release handles that), and moves the machine to Aborted.
func (o *Orchestrator) abort(sess *Session, step lifecycle.Role, err error) *faults.Fault {
	f := faults.Classify(err)
	sess.recordFault(f)
	sess.setState(StateAborted, step, f.Message+" — "+f.Suggestion)
	return f
}

// signSubmitAwait signs the draft, submits it, records the reference, and
// blocks on confirmation. When reserveOutput is true, the transaction's
// first outpoint is marked unusable in the local cache immediately after
// submission so nothing else can offer it for spending.
func (o *Orchestrator) signSubmitAwait(ctx context.Context, sess *Session, role lifecycle.Role, d *tx.Draft, reserveOutput bool) (types.Hash, error) {
	signer, err := o.wallet.Signer()
	if err != nil {
		return types.Hash{}, faults.Wrap(faults.WalletConnection, err, "wallet session lost")
	}
	if err := d.Sign(signer); err != nil {
		return types.Hash{}, err
	}

	hash, err := o.client.SubmitTransaction(ctx, d.Build())
	if err != nil {
		return types.Hash{}, err
	}
	if err := sess.refs.Record(role, hash, 0); err != nil {
		return types.Hash{}, faults.Wrap(faults.Internal, err, "duplicate step transaction")
	}
	if reserveOutput {
		o.client.MarkOutpointUnusable(types.Outpoint{TxID: hash, Index: 0})
	}

	if err := o.client.WaitForConfirmation(ctx, hash); err != nil {
		return types.Hash{}, err
	}
	if err := sess.refs.MarkConfirmed(role); err != nil {
		return types.Hash{}, faults.Wrap(faults.Internal, err, "confirmation for unknown step")
	}
	return hash, nil
}

// stepFee pays the fixed platform fee to the collector address. The fee is
// a hard prerequisite: on failure nothing token-specific has been created
// and the session aborts.
func (o *Orchestrator) stepFee(ctx context.Context, sess *Session) error {
	sess.setState(StateFeePending, lifecycle.RoleFee, "paying platform fee")

	d := o.asm.BuildTransaction(types.Cell{
		Capacity: o.cfg.PlatformFee,
		Lock:     o.cfg.CollectorAddress.LockScript(),
	})
	allowance := tx.EstimateFee(4, 2, 0, o.cfg.FeeRate)
	if err := o.asm.CompleteInputsByCapacity(ctx, d, o.wallet.Lock, o.cfg.PlatformFee, allowance); err != nil {
		return err
	}
	if _, err := o.asm.CompleteFee(d, o.cfg.FeeRate); err != nil {
		return err
	}

	if _, err := o.signSubmitAwait(ctx, sess, lifecycle.RoleFee, d, false); err != nil {
		return err
	}
	sess.setState(StateFeeConfirmed, lifecycle.RoleFee, "platform fee confirmed")
	return nil
}

// stepSeal creates the seal cell: a plain output under the user's own lock
// whose only purpose is to be referenced by outpoint in the next step. Its
// data carries a monotonic timestamp tag so two sessions can never produce
// bit-identical transactions.
func (o *Orchestrator) stepSeal(ctx context.Context, sess *Session) error {
	sess.setState(StateSealPending, lifecycle.RoleSeal, "creating seal cell")

	d := o.asm.BuildTransaction(types.Cell{
		Capacity: sealCellCapacity,
		Lock:     o.wallet.Lock,
		Data:     token.EncodeTimestamp(o.timestamp()),
	})
	allowance := tx.EstimateFee(4, 2, 8, o.cfg.FeeRate)
	if err := o.asm.CompleteInputsByCapacity(ctx, d, o.wallet.Lock, sealCellCapacity, allowance); err != nil {
		return err
	}
	if _, err := o.asm.CompleteFee(d, o.cfg.FeeRate); err != nil {
		return err
	}

	if _, err := o.signSubmitAwait(ctx, sess, lifecycle.RoleSeal, d, true); err != nil {
		return err
	}
	sess.setState(StateSealConfirmed, lifecycle.RoleSeal, "seal cell confirmed")
	return nil
}

// stepLock creates the single-use lock cell. Its lock script is derived
// deterministically from the confirmed seal outpoint, which is what makes
// the later mint authorization non-replayable.
func (o *Orchestrator) stepLock(ctx context.Context, sess *Session) error {
	sealOp, err := sess.refs.ConfirmedOutpoint(lifecycle.RoleSeal)
	if err != nil {
		return faults.Wrap(faults.Internal, err, "lock step requires a confirmed seal")
	}

	sess.setState(StateLockPending, lifecycle.RoleLock, "creating single-use lock cell")

	d := o.asm.BuildTransaction(types.Cell{
		Capacity: lockCellCapacity,
		Lock:     token.DeriveSingleUseLock(sealOp),
		Data:     token.EncodeTimestamp(o.timestamp()),
	})
	allowance := tx.EstimateFee(4, 2, 8, o.cfg.FeeRate)
	if err := o.asm.CompleteInputsByCapacity(ctx, d, o.wallet.Lock, lockCellCapacity, allowance); err != nil {
		return err
	}
	if _, err := o.asm.CompleteFee(d, o.cfg.FeeRate); err != nil {
		return err
	}

	if _, err := o.signSubmitAwait(ctx, sess, lifecycle.RoleLock, d, true); err != nil {
		return err
	}
	sess.setState(StateLockConfirmed, lifecycle.RoleLock, "single-use lock confirmed")
	return nil
}

// stepMint consumes both the seal and the lock outpoints and produces the
// token cell plus the metadata cell. Failure here is fatal and explicitly
// reported as a creation failure: the platform fee is spent and is not
// refundable by design.
func (o *Orchestrator) stepMint(ctx context.Context, sess *Session) error {
	sealOp, err := sess.refs.ConfirmedOutpoint(lifecycle.RoleSeal)
	if err != nil {
		return faults.Wrap(faults.Internal, err, "mint step requires a confirmed seal")
	}
	lockOp, err := sess.refs.ConfirmedOutpoint(lifecycle.RoleLock)
	if err != nil {
		return faults.Wrap(faults.Internal, err, "mint step requires a confirmed lock")
	}

	sess.setState(StateMintPending, lifecycle.RoleMint, "minting token")

	singleUseLock := token.DeriveSingleUseLock(sealOp)
	tokenType := token.DeriveTokenType(singleUseLock)
	// The seal is the mint's first input; the metadata cell's uniqueness
	// args derive from it.
	metaType := token.DeriveMetadataType(sealOp)

	baseUnits := sess.BaseUnits()
	p := sess.Params

	d := o.asm.BuildTransaction(
		types.Cell{
			Capacity: tokenCellCapacity,
			Lock:     o.wallet.Lock,
			Type:     &tokenType,
			Data:     token.EncodeAmount(baseUnits, token.AmountWidth),
		},
		types.Cell{
			Capacity: metaCellCapacity,
			Lock:     o.wallet.Lock,
			Type:     &metaType,
			Data:     token.EncodeTokenInfo(p.Decimals, p.Symbol, p.Name),
		},
	)
	d.AddInput(sealOp)
	d.AddInput(lockOp)

	// Seal + lock fund the mint outright; the surplus becomes change and
	// the fee is carved out of it.
	const provided = sealCellCapacity + lockCellCapacity
	const declared = tokenCellCapacity + metaCellCapacity
	d.AddChange(provided-declared, o.wallet.Lock)
	if _, err := o.asm.CompleteFee(d, o.cfg.FeeRate); err != nil {
		return err
	}

	mintHash, err := o.signSubmitAwait(ctx, sess, lifecycle.RoleMint, d, false)
	if err != nil {
		return faults.Wrap(faults.TokenCreationFailure, err, "token was not created")
	}

	// Both anchors are consumed now; drop them from any cached view.
	_ = sess.refs.Invalidate(lifecycle.RoleSeal)
	_ = sess.refs.Invalidate(lifecycle.RoleLock)

	id := types.TokenID(crypto.ScriptHash(singleUseLock))
	sess.mu.Lock()
	sess.tokenID = id
	sess.mu.Unlock()

	if o.tokens != nil {
		err := o.tokens.Put(id, &token.Metadata{
			Name:     p.Name,
			Symbol:   p.Symbol,
			Decimals: p.Decimals,
			Supply:   baseUnits.String(),
			Creator:  o.wallet.Address,
			MintTx:   mintHash,
		})
		if err != nil {
			// Registry is a local convenience; the mint already happened.
			sess.stream.emit(sess.ID, lifecycle.RoleMint, StateMintConfirmed, "warning: minted token could not be recorded locally")
		}
	}

	sess.setState(StateMintConfirmed, lifecycle.RoleMint,
		fmt.Sprintf("token %s minted: %s base units", p.Symbol, baseUnits.String()))
	return nil
}

// tipFault downgrades a tip-step failure to the retryable transfer kind.
// Errors that already carry a classification, and canceled or expired
// contexts, keep their own kind: losing the wallet session mid-tip is not
// something a retry of the transfer can cure.
func tipFault(err error) error {
	var f *faults.Fault
	if errors.As(err, &f) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return faults.Wrap(faults.TokenTransferFailure, err, "creator tip failed after a successful mint")
}

// stepTip locates the freshly minted token cell and sends the configured
// percentage to the creator address. Newly minted cells may lag the
// indexer, so the step polls within a bounded window, emitting progress,
// before giving up. Failures are downgraded through tipFault so the caller
// can distinguish retryable transfer failures from fatal ones.
func (o *Orchestrator) stepTip(ctx context.Context, sess *Session) error {
	sess.setState(StateTipPending, lifecycle.RoleTip, "preparing creator tip")

	baseUnits := sess.BaseUnits()
	tip := token.TipAmount(baseUnits, sess.Params.TipPercentage)
	if tip.Sign() == 0 {
		sess.setState(StateTipConfirmed, lifecycle.RoleTip, "tip rounds down to zero, skipped")
		return nil
	}

	// The token type is recomputed from the session's own anchors rather
	// than queried, so it survives even a rebuilt session state.
	id := sess.TokenID()
	if id.IsZero() {
		ref, ok := sess.refs.Get(lifecycle.RoleSeal)
		if !ok {
			return tipFault(fmt.Errorf("cannot recompute token type: no seal reference"))
		}
		id = types.TokenID(crypto.ScriptHash(token.DeriveSingleUseLock(ref.Outpoint())))
	}
	tokenType := types.Script{Template: types.TemplateFungibleToken, Args: types.Hash(id).Bytes()}

	tokenCell, err := o.awaitTokenCell(ctx, sess, tokenType)
	if err != nil {
		return tipFault(err)
	}

	minted := token.DecodeAmount(tokenCell.Data)
	remainder := new(big.Int).Sub(minted, tip)
	if remainder.Sign() < 0 {
		return tipFault(fmt.Errorf("tip %s exceeds minted amount", tip.String()))
	}

	d := o.asm.BuildTransaction(
		types.Cell{
			Capacity: tokenCellCapacity,
			Lock:     o.cfg.CreatorAddress.LockScript(),
			Type:     &tokenType,
			Data:     token.EncodeAmount(tip, token.AmountWidth),
		},
		types.Cell{
			Capacity: tokenCellCapacity,
			Lock:     o.wallet.Lock,
			Type:     &tokenType,
			Data:     token.EncodeAmount(remainder, token.AmountWidth),
		},
	)
	d.AddInput(tokenCell.Outpoint)

	// The consumed token cell covers one output; fresh capacity covers the
	// second plus the fee. Any capacity the token cell carries beyond the
	// declared outputs flows back as change.
	allowance := tx.EstimateFee(5, 3, 2*token.AmountWidth, o.cfg.FeeRate)
	const declared = 2 * tokenCellCapacity
	var required uint64
	if declared > tokenCell.Capacity {
		required = declared - tokenCell.Capacity
	} else if tokenCell.Capacity > declared {
		d.AddChange(tokenCell.Capacity-declared, o.wallet.Lock)
	}
	if err := o.asm.CompleteInputsByCapacity(ctx, d, o.wallet.Lock, required, allowance); err != nil {
		return tipFault(err)
	}
	if _, err := o.asm.CompleteFee(d, o.cfg.FeeRate); err != nil {
		return tipFault(err)
	}

	if _, err := o.signSubmitAwait(ctx, sess, lifecycle.RoleTip, d, false); err != nil {
		return tipFault(err)
	}
	sess.setState(StateTipConfirmed, lifecycle.RoleTip,
		fmt.Sprintf("creator tip of %s base units confirmed", tip.String()))
	return nil
}

// awaitTokenCell polls for the minted token cell within the configured
// indexing window. It emits a progress event on each poll and makes one
// final attempt at the deadline; it never loops indefinitely.
func (o *Orchestrator) awaitTokenCell(ctx context.Context, sess *Session, tokenType types.Script) (types.LiveCell, error) {
	deadline := time.Now().Add(o.cfg.TipIndexWait)
	every := o.cfg.TipProgressEvery
	if every <= 0 {
		every = 10 * time.Second
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		cells, err := o.client.QueryLiveCells(ctx, o.wallet.Lock, &tokenType)
		if err == nil && len(cells) > 0 {
			return cells[0], nil
		}
		if err != nil {
			// Indexer hiccups inside the window are expected; keep polling.
			sess.stream.emit(sess.ID, lifecycle.RoleTip, StateTipPending, "token cell query failed, still waiting for indexing")
		}

		if time.Now().After(deadline) {
			return types.LiveCell{}, fmt.Errorf("token cell not indexed within %s", o.cfg.TipIndexWait)
		}
		sess.stream.emit(sess.ID, lifecycle.RoleTip, StateTipPending, "waiting for the minted token cell to be indexed")

		select {
		case <-ctx.Done():
			return types.LiveCell{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// timestamp returns unix milliseconds, strictly increasing within this
// process even if the wall clock steps backward.
func (o *Orchestrator) timestamp() int64 {
	o.stampMu.Lock()
	defer o.stampMu.Unlock()
	now := time.Now().UnixMilli()
	if now <= o.lastStamp {
		now = o.lastStamp + 1
	}
	o.lastStamp = now
	return now
}
