package handler

import (
	"context"

	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/ballotlabs/ballot-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type DelegateTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewDelegateTxHandler(logger cmtlog.Logger) (h *DelegateTxHandler) {
	logger = logger.With("module", "delegateTx")
	h = &DelegateTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *DelegateTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.DelegateTx)
	_, err1 := st.Delegate(stx, btx.Voter, true)
	if err1 != nil {
		h.logger.Info("CheckTx delegate fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *DelegateTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *DelegateTxHandler) handle(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Voter]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.DelegateTx)
	event, err := st.Delegate(stx, btx.Voter, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Voter] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventWeightDelegated(event)}
	}
	return
}

func (h *DelegateTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *DelegateTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
