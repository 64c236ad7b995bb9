package state

import (
	"testing"

	txtypes "github.com/ballotlabs/ballot-app/tx"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	dbm "github.com/cosmos/iavl/db"
	"github.com/stretchr/testify/require"
)

const testBlockTime = uint64(1000)

func newTestState(t *testing.T) *State {
	t.Helper()
	tree := iavl.NewMutableTree(dbm.NewMemDB(), 128, true, Cometbft2CosmosLogger(cmtlog.NewNopLogger()))
	st := newState(tree, cmtlog.NewNopLogger())
	st.SetChainId("test-chain")
	st.SetBlockTime(testBlockTime)
	return st
}

func addTestVoter(t *testing.T, st *State, name string) (*Voter, ed25519.PrivKey) {
	t.Helper()
	priv := ed25519.GenPrivKey()
	v := &Voter{
		Name:       name,
		Authorized: true,
		Weight:     1,
	}
	v.SetPubKey(priv.PubKey().Bytes())
	require.NoError(t, st.AddVoter(v))
	got, err := st.GetVoter(v.Index)
	require.NoError(t, err)
	return got, priv
}

func newAdminState(t *testing.T) (*State, *Voter) {
	t.Helper()
	st := newTestState(t)
	admin, _ := addTestVoter(t, st, "admin")
	st.SetAdmin(admin.Address())
	return st, admin
}

func totalWeight(t *testing.T, st *State) uint64 {
	t.Helper()
	var sum uint64
	for idx := uint64(StartVoterIdx); idx < st.header.VoterIdx; idx++ {
		v, err := st.GetVoter(idx)
		require.NoError(t, err)
		sum += v.Weight
	}
	return sum
}

func TestAuthorize(t *testing.T) {
	st, admin := newAdminState(t)

	priv := ed25519.GenPrivKey()
	atx := &txtypes.AuthorizeTx{Voter: txtypes.AuthorizeSt{Pubkey: priv.PubKey().Bytes(), Name: "alice"}}
	event, err := st.Authorize(atx, admin.Index, false)
	require.NoError(t, err)
	require.NotNil(t, event)
	require.Equal(t, uint64(1), event.Weight)

	v, err := st.FindVoter(priv.PubKey().Address())
	require.NoError(t, err)
	require.True(t, v.Authorized)
	require.Equal(t, uint64(1), v.Weight)
	require.Equal(t, "alice", v.Name)

	// the same identity cannot be authorized twice
	_, err = st.Authorize(atx, admin.Index, false)
	require.ErrorIs(t, err, ErrAlreadyAuthorized)

	// only the admin may authorize
	_, err = st.Authorize(&txtypes.AuthorizeTx{
		Voter: txtypes.AuthorizeSt{Pubkey: ed25519.GenPrivKey().PubKey().Bytes()},
	}, v.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)

	// malformed key
	_, err = st.Authorize(&txtypes.AuthorizeTx{
		Voter: txtypes.AuthorizeSt{Pubkey: []byte{1, 2, 3}},
	}, admin.Index, false)
	require.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestAuthorizeBatchSkipsBadEntries(t *testing.T) {
	st, admin := newAdminState(t)
	existing, _ := addTestVoter(t, st, "bob")

	batch := &txtypes.AuthorizeBatchTx{Voters: []txtypes.AuthorizeSt{
		{Pubkey: ed25519.GenPrivKey().PubKey().Bytes(), Name: "c"},
		{Pubkey: existing.PubKey, Name: "bob again"},
		{Pubkey: []byte{0xde, 0xad}},
		{Pubkey: ed25519.GenPrivKey().PubKey().Bytes(), Name: "d"},
	}}
	events, err := st.AuthorizeBatch(batch, admin.Index, false)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "c", events[0].Name)
	require.Equal(t, "d", events[1].Name)

	_, err = st.AuthorizeBatch(batch, existing.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthorizeBatchDedupWithinBatch(t *testing.T) {
	st, admin := newAdminState(t)

	pk := ed25519.GenPrivKey().PubKey().Bytes()
	batch := &txtypes.AuthorizeBatchTx{Voters: []txtypes.AuthorizeSt{
		{Pubkey: pk, Name: "first"},
		{Pubkey: pk, Name: "dup"},
	}}
	events, err := st.AuthorizeBatch(batch, admin.Index, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "first", events[0].Name)
}

func TestCreateProposal(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")

	_, err := st.CreateProposal(&txtypes.ProposalTx{Description: "", Duration: 60}, alice.Index, false)
	require.ErrorIs(t, err, ErrEmptyDescription)

	_, err = st.CreateProposal(&txtypes.ProposalTx{Description: "x", Duration: 0}, alice.Index, false)
	require.ErrorIs(t, err, ErrInvalidDuration)

	event, err := st.CreateProposal(&txtypes.ProposalTx{Description: "upgrade", Duration: 60}, alice.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), event.ProposalIndex)
	require.Equal(t, testBlockTime, event.StartTime)
	require.Equal(t, testBlockTime+60, event.EndTime)

	event, err = st.CreateProposal(&txtypes.ProposalTx{Description: "second", Duration: 60}, alice.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(2), event.ProposalIndex)

	p, active, err := st.GetProposal(1)
	require.NoError(t, err)
	require.True(t, active)
	require.Equal(t, "upgrade", p.Description)
	require.Equal(t, uint64(0), p.Tally)
}

func TestCreateProposalRequiresAuthorized(t *testing.T) {
	st, admin := newAdminState(t)

	stranger := &Voter{}
	stranger.SetPubKey(ed25519.GenPrivKey().PubKey().Bytes())
	require.NoError(t, st.AddVoter(stranger))

	_, err := st.CreateProposal(&txtypes.ProposalTx{Description: "x", Duration: 60}, stranger.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = st.CreateProposal(&txtypes.ProposalTx{Description: "x", Duration: 60}, admin.Index, false)
	require.NoError(t, err)
}

func TestCastVote(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")
	bob, _ := addTestVoter(t, st, "bob")

	_, err := st.CreateProposal(&txtypes.ProposalTx{Description: "p", Duration: 60}, alice.Index, false)
	require.NoError(t, err)

	event, err := st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), event.Weight)
	require.Equal(t, uint64(1), event.Tally)

	// one ballot per voter per proposal
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.ErrorIs(t, err, ErrAlreadyVoted)

	event, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, bob.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(2), event.Tally)

	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 42}, alice.Index, false)
	require.ErrorIs(t, err, ErrProposalNotFound)

	voted, err := st.HasVoted(1, alice.Index)
	require.NoError(t, err)
	require.True(t, voted)
	voted, err = st.HasVoted(2, alice.Index)
	require.NoError(t, err)
	require.False(t, voted)
}

func TestVoteWindowBounds(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")
	bob, _ := addTestVoter(t, st, "bob")
	carol, _ := addTestVoter(t, st, "carol")

	_, err := st.CreateProposal(&txtypes.ProposalTx{Description: "p", Duration: 60}, alice.Index, false)
	require.NoError(t, err)

	// a block before the window opens
	st.SetBlockTime(testBlockTime - 1)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.ErrorIs(t, err, ErrVotingNotStarted)

	// both bounds are inclusive
	st.SetBlockTime(testBlockTime)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.NoError(t, err)

	st.SetBlockTime(testBlockTime + 60)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, bob.Index, false)
	require.NoError(t, err)

	st.SetBlockTime(testBlockTime + 61)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, carol.Index, false)
	require.ErrorIs(t, err, ErrVotingEnded)

	_, active, err := st.GetProposal(1)
	require.NoError(t, err)
	require.False(t, active)
}

func TestDelegate(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")
	bob, _ := addTestVoter(t, st, "bob")

	before := totalWeight(t, st)

	_, err := st.Delegate(&txtypes.DelegateTx{To: alice.Index}, alice.Index, false)
	require.ErrorIs(t, err, ErrSelfDelegation)

	_, err = st.Delegate(&txtypes.DelegateTx{To: alice.Index + 100}, alice.Index, false)
	require.ErrorIs(t, err, ErrUnregisteredDelegate)

	event, err := st.Delegate(&txtypes.DelegateTx{To: bob.Index}, alice.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), event.Amount)

	a, err := st.GetVoter(alice.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(0), a.Weight)
	b, err := st.GetVoter(bob.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(2), b.Weight)

	// weight is conserved by delegation
	require.Equal(t, before, totalWeight(t, st))

	// an emptied voter cannot delegate again
	_, err = st.Delegate(&txtypes.DelegateTx{To: bob.Index}, alice.Index, false)
	require.ErrorIs(t, err, ErrNoWeightToDelegate)

	// but the weight can come back the other way
	event, err = st.Delegate(&txtypes.DelegateTx{To: alice.Index}, bob.Index, false)
	require.NoError(t, err)
	require.Equal(t, uint64(2), event.Amount)
	a, err = st.GetVoter(alice.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(2), a.Weight)
	b, err = st.GetVoter(bob.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(0), b.Weight)
	require.Equal(t, before, totalWeight(t, st))
}

func TestDelegateRequiresAuthorizedTarget(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")

	inert := &Voter{}
	inert.SetPubKey(ed25519.GenPrivKey().PubKey().Bytes())
	require.NoError(t, st.AddVoter(inert))

	_, err := st.Delegate(&txtypes.DelegateTx{To: inert.Index}, alice.Index, false)
	require.ErrorIs(t, err, ErrUnregisteredDelegate)
}

func TestVotedWeightIsSnapshotted(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")
	bob, _ := addTestVoter(t, st, "bob")

	_, err := st.CreateProposal(&txtypes.ProposalTx{Description: "p", Duration: 60}, alice.Index, false)
	require.NoError(t, err)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.NoError(t, err)

	// delegation after the ballot leaves the tally untouched
	_, err = st.Delegate(&txtypes.DelegateTx{To: bob.Index}, alice.Index, false)
	require.NoError(t, err)
	p, _, err := st.GetProposal(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), p.Tally)
}

func TestLeader(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")
	bob, _ := addTestVoter(t, st, "bob")
	carol, _ := addTestVoter(t, st, "carol")

	// no proposals at all
	winner, err := st.Leader()
	require.NoError(t, err)
	require.Equal(t, uint64(0), winner)

	for _, desc := range []string{"a", "b", "c"} {
		_, err = st.CreateProposal(&txtypes.ProposalTx{Description: desc, Duration: 600}, alice.Index, false)
		require.NoError(t, err)
	}

	// proposals exist but nothing has a positive tally
	winner, err = st.Leader()
	require.NoError(t, err)
	require.Equal(t, uint64(0), winner)

	// tie between 1 and 3 keeps the earliest
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.NoError(t, err)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 3}, bob.Index, false)
	require.NoError(t, err)
	winner, err = st.Leader()
	require.NoError(t, err)
	require.Equal(t, uint64(1), winner)

	// a strictly greater tally takes over
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 3}, carol.Index, false)
	require.NoError(t, err)
	winner, err = st.Leader()
	require.NoError(t, err)
	require.Equal(t, uint64(3), winner)
}

func TestTransferAdmin(t *testing.T) {
	st, admin := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")

	_, err := st.TransferAdmin(&txtypes.TransferAdminTx{NewAdminPubkey: alice.PubKey}, alice.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = st.TransferAdmin(&txtypes.TransferAdminTx{NewAdminPubkey: []byte{1}}, admin.Index, false)
	require.ErrorIs(t, err, ErrInvalidIdentity)

	// transfer to a key with no account yet
	priv := ed25519.GenPrivKey()
	event, err := st.TransferAdmin(&txtypes.TransferAdminTx{NewAdminPubkey: priv.PubKey().Bytes()}, admin.Index, false)
	require.NoError(t, err)
	require.Equal(t, admin.Address(), event.OldAddress)
	require.Equal(t, priv.PubKey().Address().String(), st.Admin())

	// the new admin account exists but carries no voting rights
	v, err := st.FindVoter(priv.PubKey().Address())
	require.NoError(t, err)
	require.False(t, v.Authorized)
	require.Equal(t, uint64(0), v.Weight)

	// the old admin lost the role
	_, err = st.Authorize(&txtypes.AuthorizeTx{
		Voter: txtypes.AuthorizeSt{Pubkey: ed25519.GenPrivKey().PubKey().Bytes()},
	}, admin.Index, false)
	require.ErrorIs(t, err, ErrUnauthorized)

	// and the new admin can authorize once it is a known account
	_, err = st.Authorize(&txtypes.AuthorizeTx{
		Voter: txtypes.AuthorizeSt{Pubkey: ed25519.GenPrivKey().PubKey().Bytes()},
	}, v.Index, false)
	require.NoError(t, err)
}

func TestVerify(t *testing.T) {
	st, admin := newAdminState(t)
	_, alicePriv := addTestVoter(t, st, "alice")
	alice, err := st.FindVoter(alicePriv.PubKey().Address())
	require.NoError(t, err)

	btx := &txtypes.BallotTx{
		Version: txtypes.BallotTxVersion1,
		Type:    txtypes.BallotTxTypeVote,
		Nonce:   alice.Nonce,
		Voter:   alice.Index,
		Tx:      &txtypes.VoteTx{Proposal: 1},
	}
	dat, err := btx.SigData([]byte("test-chain"))
	require.NoError(t, err)
	sig, err := alicePriv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}

	succ, err := st.Verify(btx, false)
	require.NoError(t, err)
	require.True(t, succ)

	// a signature over another chain id fails
	other, err := btx.SigData([]byte("other-chain"))
	require.NoError(t, err)
	otherSig, err := alicePriv.Sign(other)
	require.NoError(t, err)
	btx.Sig = [][]byte{otherSig}
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxSigInvalid)

	// nonce must match exactly unless a gap is allowed
	btx.Nonce = alice.Nonce + 3
	btx.Sig = [][]byte{sig}
	_, err = st.Verify(btx, false)
	require.ErrorIs(t, err, ErrTxNonceInvalid)

	dat, err = btx.SigData([]byte("test-chain"))
	require.NoError(t, err)
	sig, err = alicePriv.Sign(dat)
	require.NoError(t, err)
	btx.Sig = [][]byte{sig}
	succ, err = st.Verify(btx, true)
	require.NoError(t, err)
	require.True(t, succ)

	// unknown sender
	btx.Voter = admin.Index + 1000
	_, err = st.Verify(btx, false)
	require.Error(t, err)
}

func TestUpdatePersistsAcrossStates(t *testing.T) {
	st, _ := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")

	_, err := st.CreateProposal(&txtypes.ProposalTx{Description: "durable", Duration: 60}, alice.Index, false)
	require.NoError(t, err)
	_, err = st.CastVote(&txtypes.VoteTx{Proposal: 1}, alice.Index, false)
	require.NoError(t, err)

	_, err = st.Update()
	require.NoError(t, err)
	_, err = st.save()
	require.NoError(t, err)

	next := st.nextState()
	require.Equal(t, st.header.Height+1, next.header.Height)

	p, _, err := next.GetProposal(1)
	require.NoError(t, err)
	require.Equal(t, "durable", p.Description)
	require.Equal(t, uint64(1), p.Tally)

	voted, err := next.HasVoted(1, alice.Index)
	require.NoError(t, err)
	require.True(t, voted)

	// created a proposal and voted
	a, err := next.GetVoter(alice.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(2), a.Nonce)

	voters, err := next.VoterList()
	require.NoError(t, err)
	require.Len(t, voters, 2)
}

func TestCheckOnlyLeavesNoTrace(t *testing.T) {
	st, admin := newAdminState(t)
	alice, _ := addTestVoter(t, st, "alice")

	// flush the genesis voters so only checkOnly traffic could dirty the state
	_, err := st.Update()
	require.NoError(t, err)

	_, err = st.Authorize(&txtypes.AuthorizeTx{
		Voter: txtypes.AuthorizeSt{Pubkey: ed25519.GenPrivKey().PubKey().Bytes()},
	}, admin.Index, true)
	require.NoError(t, err)
	_, err = st.CreateProposal(&txtypes.ProposalTx{Description: "x", Duration: 60}, alice.Index, true)
	require.NoError(t, err)
	require.Equal(t, uint64(0), st.ProposalMax())

	a, err := st.GetVoter(admin.Index)
	require.NoError(t, err)
	require.Equal(t, uint64(0), a.Nonce)
	require.Empty(t, st.modProposals)
	require.Empty(t, st.modifiedVoters)
}
