package state

import (
	"sync"

	ballot_types "github.com/ballotlabs/ballot-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/ethereum/go-ethereum/common"
)

type StateDB struct {
	mtx sync.RWMutex

	dir    string
	logger cmtlog.Logger
	db     *iavl.MutableTree

	state *State
}

func NewStateDB(dir string, logger cmtlog.Logger) (db *StateDB, err error) {
	logger = logger.With("module", "ballotdb")
	ldb, err := dbm.NewDB("ballot", "goleveldb", dir)
	if err != nil {
		return nil, err
	}
	tdb := iavl.NewMutableTree(ldb, 128, true, Cometbft2CosmosLogger(logger))
	version, err := tdb.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("load db success", "version", version)
	st := newState(tdb, logger)
	err = st.load()
	if err != nil {
		logger.Error("from ballotdb load fail", "err", err)
		return nil, err
	}
	db = &StateDB{
		dir:    dir,
		logger: logger,
		db:     tdb,
		state:  st,
	}
	return
}

func (db *StateDB) Close() (err error) {
	err = db.db.Close()
	return
}

func (db *StateDB) Header() (header *StateHeader) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	header = db.state.Header()
	return
}

func (db *StateDB) State() *State {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	return db.state
}

func (db *StateDB) NewState() (st *State) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	st = db.state.nextState()
	return
}

func (db *StateDB) SetState(st *State) (hash common.Hash, err error) {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	hash, err = st.save()
	if err != nil {
		return
	}
	db.state = st
	return
}

func (db *StateDB) GetVoterByIndex(idx uint64) (voter *Voter, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	voter, err = db.state.GetVoter(idx)
	if err != nil {
		return
	}
	if voter != nil {
		voter = voter.Clone()
	}
	height = db.state.header.Height

	return

}

func (db *StateDB) GetVoterByAddress(addr []byte) (voter *Voter, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	voter, err = db.state.FindVoter(addr)
	if err != nil {
		return
	}
	if voter != nil {
		voter = voter.Clone()
	}
	height = db.state.header.Height

	return
}

func (db *StateDB) GetProposal(idx uint64) (proposal *ballot_types.Proposal, active bool, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	proposal, active, err = db.state.GetProposal(idx)
	height = db.state.header.Height
	return
}

func (db *StateDB) Leader() (winner uint64, height uint64, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	winner, err = db.state.Leader()
	height = db.state.header.Height
	return
}

func (db *StateDB) HasVoted(proposal, voter uint64) (voted bool, err error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()
	voted, err = db.state.HasVoted(proposal, voter)
	return
}
