package handler

import (
	"context"

	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
)

type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.BallotTx) (res *abcitypes.ExecTxResult, err error)
}
