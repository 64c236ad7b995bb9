package state

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"encoding/json"

	txtypes "github.com/ballotlabs/ballot-app/tx"
	ballot_types "github.com/ballotlabs/ballot-app/types"
	cmtcrypto "github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/crypto/ed25519"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	StartVoterIdx = 65536

	ModifiedFlagNew = 1 << 0
	ModifiedFlagMod = 1 << 1
)

var (
	ErrNotFound = errors.New("not found")
)

var (
	KeyState         = "s"
	KeyVoterIndex    = "i%s"
	KeyVoterBody     = "a%v"
	KeyProposalBody  = "p%v"
	KeyProposalIndex = "pi"
	KeyVoteRecord    = "v%v:%v"
)

// Envelope-level failures surfaced before an operation runs.
var (
	ErrTxVoterNoexists      = errors.New("voter noexists")
	ErrTxNonceInvalid       = errors.New("nonce invalid")
	ErrTxSigInvalid         = errors.New("signature invalid")
	ErrStateHeightUnmatched = errors.New("state height unmatched")
	ErrOneActionInOneBlock  = errors.New("one action in one block")
)

// Operation precondition failures. Every violation aborts the whole
// operation with no partial state change; authorize-batch's per-element
// skip is filtering, not an error path.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAlreadyAuthorized    = errors.New("already authorized")
	ErrInvalidIdentity      = errors.New("invalid identity")
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrEmptyDescription     = errors.New("empty description")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrVotingNotStarted     = errors.New("voting not started")
	ErrVotingEnded          = errors.New("voting ended")
	ErrAlreadyVoted         = errors.New("already voted")
	ErrSelfDelegation       = errors.New("self delegation")
	ErrUnregisteredDelegate = errors.New("unregistered delegate")
	ErrNoWeightToDelegate   = errors.New("no weight to delegate")
)

// State is one block's view of the registry. Mutations accumulate in the
// dirty sets and reach the tree only in Update; a failed precondition
// leaves nothing behind.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64

	header *StateHeader
	idxs   map[string]uint64
	voters map[uint64]*Voter

	modifiedVoters   map[uint64]uint32
	proposalMaxIndex uint64
	modProposals     map[uint64]*ballot_types.Proposal
	newVotes         map[string]bool
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	s := &State{
		logger:           logger,
		db:               db,
		dbVer:            0,
		header:           new(StateHeader),
		idxs:             make(map[string]uint64),
		voters:           make(map[uint64]*Voter),
		modifiedVoters:   make(map[uint64]uint32),
		proposalMaxIndex: 0,
		modProposals:     make(map[uint64]*ballot_types.Proposal),
		newVotes:         make(map[string]bool),
	}
	s.header.VoterIdx = StartVoterIdx
	return s
}

func (s *State) nextState() *State {
	n := &State{
		logger:           s.logger,
		db:               s.db,
		dbVer:            s.dbVer,
		idxs:             make(map[string]uint64),
		voters:           make(map[uint64]*Voter),
		modifiedVoters:   make(map[uint64]uint32),
		proposalMaxIndex: s.proposalMaxIndex,
		modProposals:     make(map[uint64]*ballot_types.Proposal),
		newVotes:         make(map[string]bool),
	}
	n.header = s.header.Clone()
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

func deepCopyMap[K comparable, V any](source map[K]V) map[K]V {
	res := make(map[K]V)
	for k, v := range source {
		switch x := any(v).(type) {
		case *Voter:
			res[k] = any(x.Clone()).(V)
		case *ballot_types.Proposal:
			p := *x
			res[k] = any(&p).(V)
		default:
			res[k] = v
		}
	}
	return res
}

func (s *State) Clone() *State {
	n := &State{
		logger:           s.logger,
		db:               s.db,
		dbVer:            s.dbVer,
		header:           s.header.Clone(),
		idxs:             deepCopyMap(s.idxs),
		voters:           deepCopyMap(s.voters),
		modifiedVoters:   deepCopyMap(s.modifiedVoters),
		proposalMaxIndex: s.proposalMaxIndex,
		modProposals:     deepCopyMap(s.modProposals),
		newVotes:         deepCopyMap(s.newVotes),
	}
	return n
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyProposalIndex))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return err
		}
	}
	s.proposalMaxIndex = new(big.Int).SetBytes(val).Uint64()
	val, err = s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = s.header.Decode(val)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		if s.header.RootHash == nil {
			s.header.RootHash = make([]byte, len(rootHash))
		}
		copy(s.header.RootHash, rootHash)
		if s.header.Hash == nil {
			s.header.Hash = make([]byte, len(h))
		}
		copy(s.header.Hash, h[:])
	}
	return
}

// Update flushes the dirty sets into the iavl working tree and returns the
// resulting app hash. Nothing is durable until save.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	var val []byte
	val, err = s.header.Encode()
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	if len(s.modProposals) != 0 {
		_, err = s.db.Set([]byte(KeyProposalIndex), big.NewInt(int64(s.proposalMaxIndex)).Bytes())
		if err != nil {
			return
		}
		idxs := make([]uint64, 0, len(s.modProposals))
		for idx := range s.modProposals {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
		for _, idx := range idxs {
			key := fmt.Sprintf(KeyProposalBody, idx)
			proposalBz, _ := json.Marshal(s.modProposals[idx])
			_, err = s.db.Set([]byte(key), proposalBz)
			if err != nil {
				return
			}
		}
	}

	if len(s.newVotes) != 0 {
		keys := make([]string, 0, len(s.newVotes))
		for k := range s.newVotes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, err = s.db.Set([]byte(k), []byte{1})
			if err != nil {
				return
			}
		}
	}

	n := len(s.modifiedVoters)
	if n > 0 {
		idxs := make([]uint64, n)
		i := 0
		for idx := range s.modifiedVoters {
			idxs[i] = idx
			i += 1
		}
		sort.Slice(idxs, func(i, j int) bool {
			return idxs[i] < idxs[j]
		})
		for _, idx := range idxs {
			flag := s.modifiedVoters[idx]
			voter := s.voters[idx]
			key := fmt.Sprintf(KeyVoterBody, voter.Index)
			val, err = voter.Encode()
			if err != nil {
				return
			}
			_, err = s.db.Set([]byte(key), val)
			if err != nil {
				return
			}
			if flag&ModifiedFlagNew == ModifiedFlagNew {
				key = fmt.Sprintf(KeyVoterIndex, voter.Address())
				val, err = rlp.EncodeToBytes(voter.Index)
				if err != nil {
					return
				}
				_, err = s.db.Set([]byte(key), val)
				if err != nil {
					return
				}
			}
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.modifiedVoters = make(map[uint64]uint32)
	s.modProposals = make(map[uint64]*ballot_types.Proposal)
	s.newVotes = make(map[string]bool)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

func (s *State) SetBlockTime(t uint64) {
	s.header.BlockTime = t
}

func (s *State) BlockTime() uint64 {
	return s.header.BlockTime
}

func (s *State) SetAdmin(addr string) {
	s.header.Admin = addr
}

func (s *State) Admin() string {
	return s.header.Admin
}

func (s *State) ProposalMax() uint64 {
	return s.proposalMaxIndex
}

func (s *State) getProposal(idx uint64) (proposal *ballot_types.Proposal, err error) {
	if idx == 0 || idx > s.proposalMaxIndex {
		err = ErrProposalNotFound
		return
	}
	if p, ok := s.modProposals[idx]; ok {
		cp := *p
		return &cp, nil
	}
	key := fmt.Sprintf(KeyProposalBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	proposal = new(ballot_types.Proposal)
	err = json.Unmarshal(val, proposal)
	return
}

// GetProposal returns the proposal view plus whether its window covers the
// last committed block time.
func (s *State) GetProposal(idx uint64) (proposal *ballot_types.Proposal, active bool, err error) {
	proposal, err = s.getProposal(idx)
	if err != nil {
		return
	}
	active = proposal.Active(s.header.BlockTime)
	return
}

// Leader scans proposals in creation order and keeps the first strictly
// greatest tally. 0 means no proposal carries a positive tally.
func (s *State) Leader() (winner uint64, err error) {
	var best uint64
	for idx := uint64(1); idx <= s.proposalMaxIndex; idx++ {
		p, err := s.getProposal(idx)
		if err != nil {
			return 0, err
		}
		if p.Tally > best {
			best = p.Tally
			winner = idx
		}
	}
	return
}

func voteKey(proposal, voter uint64) string {
	return fmt.Sprintf(KeyVoteRecord, proposal, voter)
}

// HasVoted defaults to false for never-seen pairs.
func (s *State) HasVoted(proposal, voter uint64) (bool, error) {
	key := voteKey(proposal, voter)
	if s.newVotes[key] {
		return true, nil
	}
	val, err := s.db.Get([]byte(key))
	if err != nil {
		if err != leveldb.ErrNotFound {
			return false, err
		}
	}
	return val != nil, nil
}

func (s *State) GetVoter(idx uint64) (voter *Voter, err error) {
	if idx >= s.header.VoterIdx {
		err = ErrTxVoterNoexists
		return
	}
	voter = s.voters[idx]
	if voter != nil {
		return
	}
	key := fmt.Sprintf(KeyVoterBody, idx)
	val, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	if val == nil {
		err = ErrNotFound
		return
	}
	voter = new(Voter)
	err = voter.Decode(val)
	if err != nil {
		voter = nil
		return
	}
	s.voters[idx] = voter
	return
}

func (s *State) FindVoter(addr []byte) (voter *Voter, err error) {
	saddr := cmtcrypto.Address(addr).String()
	idx, ok := s.idxs[saddr]
	if !ok {
		key := fmt.Sprintf(KeyVoterIndex, saddr)
		val, err := s.db.Get([]byte(key))
		if err != nil {
			if err == leveldb.ErrNotFound {
				return nil, nil
			}
			return nil, err
		}
		if val == nil {
			return nil, nil
		}
		err = rlp.DecodeBytes(val, &idx)
		if err != nil {
			return nil, err
		}
		s.idxs[saddr] = idx
	}
	voter, err = s.GetVoter(idx)

	return
}

// AddVoter registers a genesis participant directly, outside any
// transaction.
func (s *State) AddVoter(voter *Voter) (err error) {
	v, err := s.FindVoter(voter.AddrBytes())
	if err != nil {
		return err
	}
	if v != nil {
		err = ErrAlreadyAuthorized
		return
	}
	voter.Index = s.header.VoterIdx
	s.header.VoterIdx += 1
	s.voters[voter.Index] = voter.Clone()
	s.idxs[voter.Address()] = voter.Index
	s.modifiedVoters[voter.Index] = ModifiedFlagNew
	return
}

// Verify checks a transaction envelope: sender exists, nonce matches, and
// the signature covers the chain-id-salted payload.
func (s *State) Verify(btx *txtypes.BallotTx, allowNonceGap bool) (succ bool, err error) {
	a, err := s.GetVoter(btx.Voter)
	if err != nil {
		return succ, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !(a.Nonce == btx.Nonce || (allowNonceGap && a.Nonce < btx.Nonce)) {
		err = ErrTxNonceInvalid
		return
	}
	dat, err := btx.SigData([]byte(s.header.ChainId))
	if err != nil {
		return succ, err
	}
	succ = a.Verify(dat, btx.Sig)
	if !succ {
		err = ErrTxSigInvalid
	}
	return
}

func (s *State) isAdmin(v *Voter) bool {
	return s.header.Admin != "" && v.Address() == s.header.Admin
}

func (s *State) touchVoter(v *Voter, flag uint32) {
	f := s.modifiedVoters[v.Index]
	f |= flag
	s.modifiedVoters[v.Index] = f
	s.voters[v.Index] = v.Clone()
}

// registerVoter creates or re-activates the account behind pk with weight 1.
// Callers have already validated the key and the not-authorized predicate.
func (s *State) registerVoter(pk []byte, name string) (v *Voter, err error) {
	addr := ed25519.PubKey(pk).Address()
	v, err = s.FindVoter(addr)
	if err != nil {
		return nil, err
	}
	if v != nil {
		v.Authorized = true
		v.Weight = 1
		if name != "" {
			v.Name = name
		}
		s.touchVoter(v, ModifiedFlagMod)
		return v, nil
	}
	v = &Voter{
		Index:      s.header.VoterIdx,
		PubKey:     pk,
		Name:       name,
		Authorized: true,
		Weight:     1,
		Nonce:      0,
	}
	s.header.VoterIdx += 1
	s.voters[v.Index] = v.Clone()
	s.idxs[v.Address()] = v.Index
	s.modifiedVoters[v.Index] = ModifiedFlagNew
	return v, nil
}

// Authorize registers a single voter. Unlike the batch form, a duplicate or
// malformed identity is a hard failure the caller must handle.
func (s *State) Authorize(stx *txtypes.AuthorizeTx, caller uint64, checkOnly bool) (event *ballot_types.EventVoterAuthorized, err error) {
	s.logger.Debug("apply authorize", "caller", caller, "height", s.header.Height)
	a, err := s.GetVoter(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !s.isAdmin(a) {
		err = ErrUnauthorized
		return
	}
	if len(stx.Voter.Pubkey) != ed25519.PubKeySize {
		err = ErrInvalidIdentity
		return
	}
	existing, err := s.FindVoter(ed25519.PubKey(stx.Voter.Pubkey).Address())
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Authorized {
		err = ErrAlreadyAuthorized
		return
	}
	if !checkOnly {
		v, err := s.registerVoter(stx.Voter.Pubkey, stx.Voter.Name)
		if err != nil {
			return nil, err
		}

		a.Nonce += 1
		s.touchVoter(a, ModifiedFlagMod)

		event = &ballot_types.EventVoterAuthorized{
			Voter:        v.Index,
			Address:      v.Address(),
			Name:         v.Name,
			Weight:       v.Weight,
			AdminAddress: a.Address(),
		}
	}
	return
}

// AuthorizeBatch registers voters best-effort: already-authorized and
// malformed entries are skipped, never failing the batch. The asymmetry
// with Authorize is deliberate.
func (s *State) AuthorizeBatch(stx *txtypes.AuthorizeBatchTx, caller uint64, checkOnly bool) (events []*ballot_types.EventVoterAuthorized, err error) {
	s.logger.Debug("apply authorize batch", "caller", caller, "n", len(stx.Voters), "height", s.header.Height)
	a, err := s.GetVoter(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !s.isAdmin(a) {
		err = ErrUnauthorized
		return
	}
	if checkOnly {
		return nil, nil
	}
	for _, cand := range stx.Voters {
		if len(cand.Pubkey) != ed25519.PubKeySize {
			continue
		}
		existing, err := s.FindVoter(ed25519.PubKey(cand.Pubkey).Address())
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Authorized {
			continue
		}
		v, err := s.registerVoter(cand.Pubkey, cand.Name)
		if err != nil {
			return nil, err
		}
		events = append(events, &ballot_types.EventVoterAuthorized{
			Voter:        v.Index,
			Address:      v.Address(),
			Name:         v.Name,
			Weight:       v.Weight,
			AdminAddress: a.Address(),
		})
	}

	a.Nonce += 1
	s.touchVoter(a, ModifiedFlagMod)
	return
}

// CreateProposal opens a voting window [blockTime, blockTime+duration] and
// assigns the next dense index.
func (s *State) CreateProposal(stx *txtypes.ProposalTx, caller uint64, checkOnly bool) (event *ballot_types.EventProposalCreated, err error) {
	s.logger.Debug("apply proposal", "caller", caller, "height", s.header.Height)
	a, err := s.GetVoter(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !a.Authorized {
		err = ErrUnauthorized
		return
	}
	if stx.Description == "" {
		err = ErrEmptyDescription
		return
	}
	if stx.Duration == 0 {
		err = ErrInvalidDuration
		return
	}
	if !checkOnly {
		s.proposalMaxIndex += 1
		now := s.header.BlockTime
		proposal := ballot_types.Proposal{
			Index:           s.proposalMaxIndex,
			Description:     stx.Description,
			Tally:           0,
			StartTime:       now,
			EndTime:         now + stx.Duration,
			Proposer:        a.Index,
			ProposerAddress: a.Address(),
		}
		s.modProposals[proposal.Index] = &proposal

		a.Nonce += 1
		s.touchVoter(a, ModifiedFlagMod)

		event = &ballot_types.EventProposalCreated{
			ProposalIndex:   proposal.Index,
			Proposer:        a.Index,
			ProposerAddress: a.Address(),
			Description:     proposal.Description,
			StartTime:       proposal.StartTime,
			EndTime:         proposal.EndTime,
		}
	}
	return
}

// CastVote adds the caller's current weight to the proposal tally, once per
// (proposal, voter). The added weight is final; later delegation never
// adjusts a committed tally.
func (s *State) CastVote(stx *txtypes.VoteTx, caller uint64, checkOnly bool) (event *ballot_types.EventVoteCast, err error) {
	s.logger.Debug("apply vote", "caller", caller, "proposal", stx.Proposal, "height", s.header.Height)
	a, err := s.GetVoter(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !a.Authorized {
		err = ErrUnauthorized
		return
	}
	proposal, err := s.getProposal(stx.Proposal)
	if err != nil {
		return nil, err
	}
	now := s.header.BlockTime
	if now < proposal.StartTime {
		err = ErrVotingNotStarted
		return
	}
	if now > proposal.EndTime {
		err = ErrVotingEnded
		return
	}
	voted, err := s.HasVoted(stx.Proposal, caller)
	if err != nil {
		return nil, err
	}
	if voted {
		err = ErrAlreadyVoted
		return
	}
	if !checkOnly {
		proposal.Tally += a.Weight
		s.modProposals[proposal.Index] = proposal
		s.newVotes[voteKey(stx.Proposal, caller)] = true

		a.Nonce += 1
		s.touchVoter(a, ModifiedFlagMod)

		event = &ballot_types.EventVoteCast{
			Voter:        a.Index,
			VoterAddress: a.Address(),
			Proposal:     proposal.Index,
			Weight:       a.Weight,
			Tally:        proposal.Tally,
		}
	}
	return
}

// Delegate moves the caller's whole weight to another authorized voter,
// zeroing the source. Weight is conserved; no cycle detection is needed
// because a zero-weight voter cannot delegate again.
func (s *State) Delegate(stx *txtypes.DelegateTx, caller uint64, checkOnly bool) (event *ballot_types.EventWeightDelegated, err error) {
	s.logger.Debug("apply delegate", "caller", caller, "to", stx.To, "height", s.header.Height)
	a, err := s.GetVoter(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !a.Authorized {
		err = ErrUnauthorized
		return
	}
	if stx.To == caller {
		err = ErrSelfDelegation
		return
	}
	target, err := s.GetVoter(stx.To)
	if err != nil && err != ErrNotFound && err != ErrTxVoterNoexists {
		return nil, err
	}
	if target == nil || !target.Authorized {
		err = ErrUnregisteredDelegate
		return
	}
	if a.Weight == 0 {
		err = ErrNoWeightToDelegate
		return
	}
	if !checkOnly {
		amount := a.Weight
		target.Weight += amount
		a.Weight = 0

		a.Nonce += 1
		s.touchVoter(a, ModifiedFlagMod)
		s.touchVoter(target, ModifiedFlagMod)

		event = &ballot_types.EventWeightDelegated{
			From:        a.Index,
			FromAddress: a.Address(),
			To:          target.Index,
			ToAddress:   target.Address(),
			Amount:      amount,
		}
	}
	return
}

// TransferAdmin replaces the administrator. The new key need not belong to
// a registered voter; an inert account is created so it can sign later
// transactions.
func (s *State) TransferAdmin(stx *txtypes.TransferAdminTx, caller uint64, checkOnly bool) (event *ballot_types.EventAdminTransferred, err error) {
	s.logger.Debug("apply transfer admin", "caller", caller, "height", s.header.Height)
	a, err := s.GetVoter(caller)
	if err != nil {
		return nil, err
	}
	if a == nil {
		err = ErrTxVoterNoexists
		return
	}
	if !s.isAdmin(a) {
		err = ErrUnauthorized
		return
	}
	if len(stx.NewAdminPubkey) != ed25519.PubKeySize {
		err = ErrInvalidIdentity
		return
	}
	newAddr := ed25519.PubKey(stx.NewAdminPubkey).Address()
	if !checkOnly {
		existing, err := s.FindVoter(newAddr)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			v := &Voter{
				Index:  s.header.VoterIdx,
				PubKey: stx.NewAdminPubkey,
			}
			s.header.VoterIdx += 1
			s.voters[v.Index] = v.Clone()
			s.idxs[v.Address()] = v.Index
			s.modifiedVoters[v.Index] = ModifiedFlagNew
		}
		old := s.header.Admin
		s.header.Admin = newAddr.String()

		a.Nonce += 1
		s.touchVoter(a, ModifiedFlagMod)

		event = &ballot_types.EventAdminTransferred{
			OldAddress: old,
			NewAddress: s.header.Admin,
		}
	}
	return
}

// VoterList walks the voter bodies in the tree, for the voters querier.
func (s *State) VoterList() (voters []*Voter, err error) {
	start := []byte(fmt.Sprintf(KeyVoterBody, ""))
	end := PrefixEndBytes(start)
	it, err := s.db.Iterator(start, end, false)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		var v Voter
		if err = v.Decode(it.Value()); err != nil {
			return nil, err
		}
		voters = append(voters, &v)
	}
	sort.Slice(voters, func(i, j int) bool { return voters[i].Index < voters[j].Index })
	return voters, nil
}

func PrefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}

	end := make([]byte, len(prefix))
	copy(end, prefix)

	for {
		if end[len(end)-1] != byte(255) {
			end[len(end)-1]++
			break
		}

		end = end[:len(end)-1]

		if len(end) == 0 {
			end = nil
			break
		}
	}

	return end
}
