package tx

import (
	"errors"
)

type BallotTxType uint8

const (
	BallotTxTypeUnknown        BallotTxType = 0
	BallotTxTypeAuthorize      BallotTxType = 1
	BallotTxTypeAuthorizeBatch BallotTxType = 2
	BallotTxTypeProposal       BallotTxType = 3
	BallotTxTypeVote           BallotTxType = 4
	BallotTxTypeDelegate       BallotTxType = 5
	BallotTxTypeTransferAdmin  BallotTxType = 6
)

const (
	BallotTxVersion0 uint8 = 0
	BallotTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx         = errors.New("invalid tx")
	ErrUnsupportedTxType = errors.New("unsupported tx type")
	ErrUnmatchedTxType   = errors.New("unmatched tx type")

	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
)

// AuthorizeTx registers a single voter. Registration of an already known or
// malformed identity is a hard failure, unlike the batch form.
type AuthorizeTx struct {
	Voter AuthorizeSt `json:"voter"`
}

// AuthorizeBatchTx registers a set of voters best-effort: entries that are
// already authorized or malformed are skipped without failing the batch.
type AuthorizeBatchTx struct {
	Voters []AuthorizeSt `json:"voters"`
}

type AuthorizeSt struct {
	Pubkey []byte `json:"pubkey"`
	Name   string `json:"name"`
}

type ProposalTx struct {
	Description string `json:"description"`
	// Duration of the voting window in seconds, measured from the block
	// time the proposal is committed at.
	Duration uint64 `json:"duration"`
}

type VoteTx struct {
	Proposal uint64 `json:"proposal"`
}

type DelegateTx struct {
	To uint64 `json:"to"`
}

type TransferAdminTx struct {
	NewAdminPubkey []byte `json:"newAdminPubkey"`
}
