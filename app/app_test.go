package app

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/ballotlabs/ballot-app/config"
	"github.com/ballotlabs/ballot-app/state"
	"github.com/ballotlabs/ballot-app/tx"
	ballot_types "github.com/ballotlabs/ballot-app/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/stretchr/testify/require"
)

const testChainId = "ballot-test-chain"

func newTestApp(t *testing.T) (*BallotApp, ed25519.PrivKey, ed25519.PrivKey) {
	t.Helper()
	cfg := config.NewBallotAppConfig(t.TempDir())
	app, err := NewBallotApp(cfg, cmtlog.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(app.Stop)

	adminPriv := ed25519.GenPrivKey()
	alicePriv := ed25519.GenPrivKey()
	gs := ballot_types.BallotGenesisState{
		AdminPubKey: adminPriv.PubKey().Bytes(),
		Voters: []ballot_types.GenesisVoter{
			{PubKey: alicePriv.PubKey().Bytes(), Name: "alice"},
		},
	}
	appState, err := json.Marshal(gs)
	require.NoError(t, err)

	res, err := app.InitChain(context.Background(), &abcitypes.RequestInitChain{
		ChainId:       testChainId,
		Time:          time.Unix(1000, 0),
		AppStateBytes: appState,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AppHash)
	return app, adminPriv, alicePriv
}

func signedTx(t *testing.T, priv ed25519.PrivKey, btx *tx.BallotTx) []byte {
	t.Helper()
	dat, err := btx.SigData([]byte(testChainId))
	require.NoError(t, err)
	sig, err := priv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	out, err := tx.MarshalBallotTx(btx)
	require.NoError(t, err)
	return out
}

func finalizeAndCommit(t *testing.T, app *BallotApp, height int64, at time.Time, txs [][]byte) *abcitypes.ResponseFinalizeBlock {
	t.Helper()
	ctx := context.Background()
	res, err := app.FinalizeBlock(ctx, &abcitypes.RequestFinalizeBlock{
		Height: height,
		Time:   at,
		Txs:    txs,
	})
	require.NoError(t, err)
	_, err = app.Commit(ctx, &abcitypes.RequestCommit{})
	require.NoError(t, err)
	return res
}

func indexData(idx uint64) []byte {
	dat := make([]byte, 8)
	binary.BigEndian.PutUint64(dat, idx)
	return dat
}

func TestProposalVoteLifecycle(t *testing.T) {
	app, adminPriv, alicePriv := newTestApp(t)
	ctx := context.Background()

	const adminIdx = uint64(state.StartVoterIdx)
	const aliceIdx = adminIdx + 1

	// alice opens a one hour proposal
	proposalTx := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeProposal,
		Nonce:   0,
		Voter:   aliceIdx,
		Tx:      &tx.ProposalTx{Description: "rotate the signing key", Duration: 3600},
	})
	res := finalizeAndCommit(t, app, 1, time.Unix(2000, 0), [][]byte{proposalTx})
	require.Len(t, res.TxResults, 1)
	require.Len(t, res.TxResults[0].Events, 1)
	ev := ballot_types.DecodeEventProposalCreated(res.TxResults[0].Events[0])
	require.NotNil(t, ev)
	require.Equal(t, uint64(1), ev.ProposalIndex)
	require.Equal(t, uint64(2000), ev.StartTime)
	require.Equal(t, uint64(5600), ev.EndTime)

	// both voters vote inside the window, in the same block
	aliceVote := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeVote,
		Nonce:   1,
		Voter:   aliceIdx,
		Tx:      &tx.VoteTx{Proposal: 1},
	})
	adminVote := signedTx(t, adminPriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeVote,
		Nonce:   0,
		Voter:   adminIdx,
		Tx:      &tx.VoteTx{Proposal: 1},
	})
	res = finalizeAndCommit(t, app, 2, time.Unix(2100, 0), [][]byte{aliceVote, adminVote})
	require.Len(t, res.TxResults, 2)
	last := ballot_types.DecodeEventVoteCast(res.TxResults[1].Events[0])
	require.NotNil(t, last)
	require.Equal(t, uint64(2), last.Tally)

	// replaying a spent vote fails CheckTx on the nonce
	check, err := app.CheckTx(ctx, &abcitypes.RequestCheckTx{Tx: aliceVote})
	require.NoError(t, err)
	require.NotZero(t, check.Code)

	// leader query sees proposal 1
	qres, err := app.Query(ctx, &abcitypes.RequestQuery{Path: "/leader/"})
	require.NoError(t, err)
	require.Zero(t, qres.Code)
	var leader LeaderView
	require.NoError(t, json.Unmarshal(qres.Value, &leader))
	require.Equal(t, uint64(1), leader.Winner)

	// vote record query
	dat := append(indexData(1), indexData(aliceIdx)...)
	qres, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/votes/", Data: dat})
	require.NoError(t, err)
	var rec VoteRecordView
	require.NoError(t, json.Unmarshal(qres.Value, &rec))
	require.True(t, rec.Voted)

	// full voter list
	qres, err = app.Query(ctx, &abcitypes.RequestQuery{Path: "/voters/"})
	require.NoError(t, err)
	var voters []state.Voter
	require.NoError(t, json.Unmarshal(qres.Value, &voters))
	require.Len(t, voters, 2)
}

func TestAuthorizeThenVote(t *testing.T) {
	app, adminPriv, alicePriv := newTestApp(t)
	ctx := context.Background()

	const adminIdx = uint64(state.StartVoterIdx)
	const aliceIdx = adminIdx + 1
	const bobIdx = adminIdx + 2

	bobPriv := ed25519.GenPrivKey()
	authTx := signedTx(t, adminPriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeAuthorize,
		Nonce:   0,
		Voter:   adminIdx,
		Tx: &tx.AuthorizeTx{
			Voter: tx.AuthorizeSt{Pubkey: bobPriv.PubKey().Bytes(), Name: "bob"},
		},
	})
	proposalTx := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeProposal,
		Nonce:   0,
		Voter:   aliceIdx,
		Tx:      &tx.ProposalTx{Description: "expand quorum", Duration: 600},
	})
	finalizeAndCommit(t, app, 1, time.Unix(2000, 0), [][]byte{authTx, proposalTx})

	// the voter authorized in block 1 can act in block 2
	bobVote := signedTx(t, bobPriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeVote,
		Nonce:   0,
		Voter:   bobIdx,
		Tx:      &tx.VoteTx{Proposal: 1},
	})
	res := finalizeAndCommit(t, app, 2, time.Unix(2100, 0), [][]byte{bobVote})
	ev := ballot_types.DecodeEventVoteCast(res.TxResults[0].Events[0])
	require.NotNil(t, ev)
	require.Equal(t, uint64(1), ev.Weight)

	// voter query by index
	qres, err := app.Query(ctx, &abcitypes.RequestQuery{Path: "/voters/", Data: indexData(bobIdx)})
	require.NoError(t, err)
	require.Zero(t, qres.Code)
	var bob state.Voter
	require.NoError(t, json.Unmarshal(qres.Value, &bob))
	require.Equal(t, "bob", bob.Name)
	require.True(t, bob.Authorized)
}

func TestPrepareProposalDropsInvalidTxs(t *testing.T) {
	app, _, alicePriv := newTestApp(t)
	ctx := context.Background()

	const aliceIdx = uint64(state.StartVoterIdx) + 1

	proposalTx := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeProposal,
		Nonce:   0,
		Voter:   aliceIdx,
		Tx:      &tx.ProposalTx{Description: "ok", Duration: 600},
	})
	badTx := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeProposal,
		Nonce:   1,
		Voter:   aliceIdx,
		Tx:      &tx.ProposalTx{Description: "", Duration: 600},
	})
	res, err := app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{
		Height: 1,
		Time:   time.Unix(2000, 0),
		Txs:    [][]byte{proposalTx, badTx},
	})
	require.NoError(t, err)
	require.Len(t, res.Txs, 1)
	require.Equal(t, proposalTx, res.Txs[0])
}

func TestExpiredWindowRejectsVotes(t *testing.T) {
	app, _, alicePriv := newTestApp(t)
	ctx := context.Background()

	const aliceIdx = uint64(state.StartVoterIdx) + 1

	proposalTx := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeProposal,
		Nonce:   0,
		Voter:   aliceIdx,
		Tx:      &tx.ProposalTx{Description: "short lived", Duration: 60},
	})
	finalizeAndCommit(t, app, 1, time.Unix(2000, 0), [][]byte{proposalTx})

	// the block after the window closed cannot carry the vote
	voteTx := signedTx(t, alicePriv, &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeVote,
		Nonce:   1,
		Voter:   aliceIdx,
		Tx:      &tx.VoteTx{Proposal: 1},
	})
	res, err := app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{
		Height: 2,
		Time:   time.Unix(2061, 0),
		Txs:    [][]byte{voteTx},
	})
	require.NoError(t, err)
	require.Empty(t, res.Txs)

	// while a block on the boundary can
	res, err = app.PrepareProposal(ctx, &abcitypes.RequestPrepareProposal{
		Height: 2,
		Time:   time.Unix(2060, 0),
		Txs:    [][]byte{voteTx},
	})
	require.NoError(t, err)
	require.Len(t, res.Txs, 1)
}
