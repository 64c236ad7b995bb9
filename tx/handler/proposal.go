package handler

import (
	"context"

	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/ballotlabs/ballot-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type ProposalTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewProposalTxHandler(logger cmtlog.Logger) (h *ProposalTxHandler) {
	logger = logger.With("module", "proposalTx")
	h = &ProposalTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *ProposalTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.ProposalTx)
	_, err1 := st.CreateProposal(stx, btx.Voter, true)
	if err1 != nil {
		h.logger.Info("CheckTx proposal fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *ProposalTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *ProposalTxHandler) handle(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Voter]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.ProposalTx)
	event, err := st.CreateProposal(stx, btx.Voter, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Voter] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventProposalCreated(event)}
	}
	return
}

func (h *ProposalTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *ProposalTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
