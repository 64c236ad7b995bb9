package handler

import (
	"context"

	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/ballotlabs/ballot-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type VoteTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewVoteTxHandler(logger cmtlog.Logger) (h *VoteTxHandler) {
	logger = logger.With("module", "voteTx")
	h = &VoteTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *VoteTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.VoteTx)
	_, err1 := st.CastVote(stx, btx.Voter, true)
	if err1 != nil {
		h.logger.Info("CheckTx vote fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *VoteTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *VoteTxHandler) handle(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Voter]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.VoteTx)
	event, err := st.CastVote(stx, btx.Voter, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Voter] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventVoteCast(event)}
	}
	return
}

func (h *VoteTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *VoteTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
