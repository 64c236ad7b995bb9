package handler

import (
	"context"

	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/ballotlabs/ballot-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

type AuthorizeTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewAuthorizeTxHandler(logger cmtlog.Logger) (h *AuthorizeTxHandler) {
	logger = logger.With("module", "authorizeTx")
	h = &AuthorizeTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *AuthorizeTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.AuthorizeTx)
	_, err1 := st.Authorize(stx, btx.Voter, true)
	if err1 != nil {
		h.logger.Info("CheckTx authorize fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *AuthorizeTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *AuthorizeTxHandler) handle(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Voter]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.AuthorizeTx)
	event, err := st.Authorize(stx, btx.Voter, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Voter] = true
	res = &abcitypes.ExecTxResult{}
	if event != nil {
		res.Events = []abcitypes.Event{types.EncodeEventVoterAuthorized(event)}
	}
	return
}

func (h *AuthorizeTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *AuthorizeTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

type AuthorizeBatchTxHandler struct {
	logger cmtlog.Logger

	senderSet map[uint64]bool
}

func NewAuthorizeBatchTxHandler(logger cmtlog.Logger) (h *AuthorizeBatchTxHandler) {
	logger = logger.With("module", "authorizeBatchTx")
	h = &AuthorizeBatchTxHandler{
		logger:    logger,
		senderSet: make(map[uint64]bool),
	}
	return
}

func (h *AuthorizeBatchTxHandler) Check(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	stx := btx.Tx.(*tx.AuthorizeBatchTx)
	_, err1 := st.AuthorizeBatch(stx, btx.Voter, true)
	if err1 != nil {
		h.logger.Info("CheckTx authorize batch fail", "err", err1)
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func (h *AuthorizeBatchTxHandler) NewContext(ctx context.Context) {
	h.senderSet = make(map[uint64]bool)
}

func (h *AuthorizeBatchTxHandler) handle(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	if _, ok := h.senderSet[btx.Voter]; ok {
		return nil, state.ErrOneActionInOneBlock
	}
	stx := btx.Tx.(*tx.AuthorizeBatchTx)
	events, err := st.AuthorizeBatch(stx, btx.Voter, false)
	if err != nil {
		return nil, err
	}
	h.senderSet[btx.Voter] = true
	res = &abcitypes.ExecTxResult{}
	for _, event := range events {
		res.Events = append(res.Events, types.EncodeEventVoterAuthorized(event))
	}
	return
}

func (h *AuthorizeBatchTxHandler) Prepare(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *AuthorizeBatchTxHandler) Process(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}
