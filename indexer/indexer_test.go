package indexer

import (
	"context"
	"path/filepath"
	"testing"

	ballot_types "github.com/ballotlabs/ballot-app/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/require"
)

func newTestIndexer(t *testing.T) *ChainIndexer {
	t.Helper()
	db, err := gorm.Open("sqlite3", filepath.Join(t.TempDir(), "indexer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	err = db.AutoMigrate(&Height{}, &Voter{}, &Proposal{}, &Vote{}, &Delegation{}, &AdminChange{}).Error
	require.NoError(t, err)

	c := &ChainIndexer{
		logger:  cmtlog.NewNopLogger(),
		db:      db,
		ChainId: "test-chain",
	}
	c.eventHandlers = map[string]eventHandler{
		ballot_types.EventVoterAuthorizedType:  c.handleEventVoterAuthorized,
		ballot_types.EventProposalCreatedType:  c.handleEventProposalCreated,
		ballot_types.EventVoteCastType:         c.handleEventVoteCast,
		ballot_types.EventWeightDelegatedType:  c.handleEventWeightDelegated,
		ballot_types.EventAdminTransferredType: c.handleEventAdminTransferred,
	}
	return c
}

func TestIndexerMirrorsEvents(t *testing.T) {
	c := newTestIndexer(t)
	ctx := context.Background()

	c.handleEvent(ctx, ballot_types.EncodeEventVoterAuthorized(&ballot_types.EventVoterAuthorized{
		Voter:   65537,
		Address: "AA11",
		Name:    "alice",
		Weight:  1,
	}), 1)
	c.handleEvent(ctx, ballot_types.EncodeEventProposalCreated(&ballot_types.EventProposalCreated{
		ProposalIndex:   1,
		Proposer:        65537,
		ProposerAddress: "AA11",
		Description:     "upgrade the relay",
		StartTime:       2000,
		EndTime:         2600,
	}), 2)
	c.handleEvent(ctx, ballot_types.EncodeEventVoteCast(&ballot_types.EventVoteCast{
		Voter:        65537,
		VoterAddress: "AA11",
		Proposal:     1,
		Weight:       1,
		Tally:        1,
	}), 3)

	voter, err := c.getVoterById(65537)
	require.NoError(t, err)
	require.Equal(t, "alice", voter.Name)
	require.True(t, voter.Authorized)

	proposal, err := c.getProposalById(1)
	require.NoError(t, err)
	require.Equal(t, "alice", proposal.ProposerName)
	require.Equal(t, uint64(1), proposal.Tally)

	votes, total, err := c.getVotesByProposal(1, 0, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
	require.Equal(t, "AA11", votes[0].VoterAddress)
}

func TestIndexerDelegationMovesWeight(t *testing.T) {
	c := newTestIndexer(t)
	ctx := context.Background()

	c.handleEvent(ctx, ballot_types.EncodeEventVoterAuthorized(&ballot_types.EventVoterAuthorized{
		Voter: 65537, Address: "AA11", Name: "alice", Weight: 1,
	}), 1)
	c.handleEvent(ctx, ballot_types.EncodeEventVoterAuthorized(&ballot_types.EventVoterAuthorized{
		Voter: 65538, Address: "BB22", Name: "bob", Weight: 1,
	}), 1)
	c.handleEvent(ctx, ballot_types.EncodeEventWeightDelegated(&ballot_types.EventWeightDelegated{
		From: 65537, FromAddress: "AA11", To: 65538, ToAddress: "BB22", Amount: 1,
	}), 2)

	alice, err := c.getVoterById(65537)
	require.NoError(t, err)
	require.Zero(t, alice.Weight)
	bob, err := c.getVoterById(65538)
	require.NoError(t, err)
	require.Equal(t, uint64(2), bob.Weight)

	dels, total, err := c.getDelegationsByAddr("AA11", 0, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
	require.Equal(t, "BB22", dels[0].ToAddress)
}

func TestIndexerLeader(t *testing.T) {
	c := newTestIndexer(t)
	ctx := context.Background()

	for i, tally := range []uint64{2, 2, 1} {
		c.handleEvent(ctx, ballot_types.EncodeEventProposalCreated(&ballot_types.EventProposalCreated{
			ProposalIndex: uint64(i + 1), Proposer: 65537, ProposerAddress: "AA11",
			Description: "p", StartTime: 2000, EndTime: 2600,
		}), 1)
		c.handleEvent(ctx, ballot_types.EncodeEventVoteCast(&ballot_types.EventVoteCast{
			Voter: 65537, VoterAddress: "AA11", Proposal: uint64(i + 1), Weight: tally, Tally: tally,
		}), 2)
	}

	// proposal 1 keeps the lead on the tie with proposal 2
	winner, err := c.leader()
	require.NoError(t, err)
	require.Equal(t, uint64(1), winner)
}

func TestIndexerAdminHistory(t *testing.T) {
	c := newTestIndexer(t)
	ctx := context.Background()

	c.handleEvent(ctx, ballot_types.EncodeEventAdminTransferred(&ballot_types.EventAdminTransferred{
		OldAddress: "AA11", NewAddress: "BB22",
	}), 5)
	c.handleEvent(ctx, ballot_types.EncodeEventAdminTransferred(&ballot_types.EventAdminTransferred{
		OldAddress: "BB22", NewAddress: "CC33",
	}), 9)

	changes, err := c.getAdminChanges()
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.Equal(t, "CC33", changes[1].NewAddress)
	require.Equal(t, uint64(9), changes[1].Height)
}
