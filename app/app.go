package app

import (
	"context"
	"encoding/json"

	"github.com/ballotlabs/ballot-app/config"
	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/ballotlabs/ballot-app/tx/handler"
	ballot_types "github.com/ballotlabs/ballot-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &BallotApp{}

type BallotApp struct {
	cfg    *config.BallotAppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.BallotTxType]handler.TxHandler
	queriers map[string]Querier

	st *state.State
}

func NewBallotApp(cfg *config.BallotAppConfig, logger cmtlog.Logger) (app *BallotApp, err error) {
	logger = logger.With("module", "app")

	dir := cfg.Home + "/data"
	db, err := state.NewStateDB(dir, logger)
	if err != nil {
		return nil, err
	}

	app = &BallotApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.BallotTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *BallotApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *BallotApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("ballot app stopped")
}

func (app *BallotApp) registerTxHandler() {
	app.txHdlrs = map[tx.BallotTxType]handler.TxHandler{
		tx.BallotTxTypeAuthorize:      handler.NewAuthorizeTxHandler(app.logger),
		tx.BallotTxTypeAuthorizeBatch: handler.NewAuthorizeBatchTxHandler(app.logger),
		tx.BallotTxTypeProposal:       handler.NewProposalTxHandler(app.logger),
		tx.BallotTxTypeVote:           handler.NewVoteTxHandler(app.logger),
		tx.BallotTxTypeDelegate:       handler.NewDelegateTxHandler(app.logger),
		tx.BallotTxTypeTransferAdmin:  handler.NewTransferAdminTxHandler(app.logger),
	}
}

func (app *BallotApp) registerQuerier() {
	vq := NewVoterQuerier(app.db, app.logger)
	pq := NewProposalQuerier(app.db, app.logger)
	lq := NewLeaderQuerier(app.db, app.logger)
	rq := NewVoteRecordQuerier(app.db, app.logger)
	app.queriers["/voters/"] = vq
	app.queriers["/proposals/"] = pq
	app.queriers["/leader/"] = lq
	app.queriers["/votes/"] = rq
}

// InitChain seeds the registry from the genesis app state. When no admin
// key is given the first genesis validator becomes administrator, so a
// fresh single-node chain is usable without extra setup.
func (app *BallotApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetBlockTime(uint64(chain.Time.Unix()))

	var gs ballot_types.BallotGenesisState
	if len(chain.AppStateBytes) != 0 {
		if err = json.Unmarshal(chain.AppStateBytes, &gs); err != nil {
			app.logger.Error("InitChain parse app state fail", "err", err)
			return nil, err
		}
	}
	adminPub := gs.AdminPubKey
	if adminPub == nil && len(chain.Validators) > 0 {
		adminPub = chain.Validators[0].PubKey.GetEd25519()
	}
	if adminPub != nil {
		admin := state.Voter{
			Authorized: true,
			Weight:     1,
			Name:       "admin",
		}
		admin.SetPubKey(adminPub)
		err = st.AddVoter(&admin)
		if err != nil {
			app.logger.Error("InitChain add admin fail", "err", err)
			return nil, err
		}
		st.SetAdmin(admin.Address())
	}
	for _, v := range gs.Voters {
		var voter state.Voter
		voter.SetPubKey(v.PubKey)
		voter.Name = v.Name
		voter.Authorized = true
		voter.Weight = 1
		err = st.AddVoter(&voter)
		if err != nil {
			app.logger.Error("InitChain add voter fail", "err", err)
			return nil, err
		}
	}
	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *BallotApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *BallotApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *BallotApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{}, nil
}

func (app *BallotApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return nil, nil
}

func (app *BallotApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return nil, nil
}

func (app *BallotApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return nil, nil
}

func (app *BallotApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return nil, nil
}
