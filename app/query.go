package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ballotlabs/ballot-app/state"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

func (app *BallotApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

func dataToIndex(dat []byte) (idx uint64) {
	for _, v := range dat {
		idx <<= 8
		idx |= uint64(v)
	}
	return
}

type VoterQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewVoterQuerier(db *state.StateDB, logger cmtlog.Logger) (q *VoterQuerier) {
	q = &VoterQuerier{
		db:     db,
		logger: logger,
	}
	return
}

// Query resolves a voter by 20-byte address or big-endian index; empty
// data returns the whole voter list.
func (q *VoterQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	if len(req.Data) == 0 {
		voters, err := q.db.State().VoterList()
		if err != nil {
			res.Code = 1
			return res, nil
		}
		res.Height = int64(q.db.Header().Height)
		res.Value, _ = json.Marshal(voters)
		return res, nil
	}
	var v *state.Voter
	var height uint64
	if len(req.Data) == 20 {
		v, height, _ = q.db.GetVoterByAddress(req.Data)
	} else if len(req.Data) <= 8 {
		v, height, _ = q.db.GetVoterByIndex(dataToIndex(req.Data))
	}
	if v != nil {
		res.Value, _ = json.Marshal(v)
		res.Height = int64(height)
	} else {
		res.Code = 1
	}
	return
}

type ProposalQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewProposalQuerier(db *state.StateDB, logger cmtlog.Logger) (q *ProposalQuerier) {
	q = &ProposalQuerier{
		db:     db,
		logger: logger,
	}
	return
}

type ProposalView struct {
	Proposal any  `json:"proposal"`
	Active   bool `json:"active"`
}

func (q *ProposalQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	if len(req.Data) > 8 {
		res.Code = 1
		return
	}
	proposal, active, height, err1 := q.db.GetProposal(dataToIndex(req.Data))
	if err1 != nil {
		res.Code = 1
		res.Log = err1.Error()
		return
	}
	res.Height = int64(height)
	res.Value, _ = json.Marshal(ProposalView{Proposal: proposal, Active: active})
	return
}

type LeaderQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewLeaderQuerier(db *state.StateDB, logger cmtlog.Logger) (q *LeaderQuerier) {
	q = &LeaderQuerier{
		db:     db,
		logger: logger,
	}
	return
}

type LeaderView struct {
	Winner uint64 `json:"winner"`
}

func (q *LeaderQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	winner, height, err1 := q.db.Leader()
	if err1 != nil {
		res.Code = 1
		res.Log = err1.Error()
		return
	}
	res.Height = int64(height)
	res.Value, _ = json.Marshal(LeaderView{Winner: winner})
	return
}

type VoteRecordQuerier struct {
	db     *state.StateDB
	logger cmtlog.Logger
}

func NewVoteRecordQuerier(db *state.StateDB, logger cmtlog.Logger) (q *VoteRecordQuerier) {
	q = &VoteRecordQuerier{
		db:     db,
		logger: logger,
	}
	return
}

type VoteRecordView struct {
	Voted bool `json:"voted"`
}

// Query expects 16 bytes: big-endian proposal index then voter index.
func (q *VoteRecordQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	if len(req.Data) != 16 {
		res.Code = 1
		return
	}
	voted, err1 := q.db.HasVoted(dataToIndex(req.Data[:8]), dataToIndex(req.Data[8:]))
	if err1 != nil {
		res.Code = 1
		res.Log = err1.Error()
		return
	}
	res.Height = int64(q.db.Header().Height)
	res.Value, _ = json.Marshal(VoteRecordView{Voted: voted})
	return
}
