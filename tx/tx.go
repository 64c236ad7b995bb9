package tx

import (
	"encoding/json"
)

// BallotTx is the signed envelope around every state-changing operation.
// Voter is the sender's account index; Nonce makes replays impossible and
// Sig covers the chain-id-salted envelope.
type BallotTx struct {
	Version uint8        `json:"version"`
	Type    BallotTxType `json:"type"`
	Nonce   uint64       `json:"nonce"`
	Voter   uint64       `json:"voter"`
	Tx      any          `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

type ballotTxTmpl[Tx any] struct {
	Version uint8        `json:"version"`
	Type    BallotTxType `json:"type"`
	Nonce   uint64       `json:"nonce"`
	Voter   uint64       `json:"voter"`
	Tx      Tx           `json:"tx"`
	Sig     [][]byte     `json:"sig"`
}

// SigData returns the bytes a sender signs: the envelope with the signature
// slot replaced by ext (the chain id), so a signature never validates on
// another chain.
func (tx *BallotTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = [][]byte{ext}
	dat, err = json.Marshal(ntx)
	return
}

func parseBallotTxType(dat []byte) BallotTxType {
	var tx struct {
		Type BallotTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return BallotTxTypeUnknown
	}
	return tx.Type
}

func unmarshalBallotTx[Tx any](dat []byte) (btx *BallotTx, err error) {
	var txt ballotTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	btx = new(BallotTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.Voter = txt.Voter
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalBallotTx(dat []byte) (btx *BallotTx, err error) {
	tp := parseBallotTxType(dat)
	switch tp {
	case BallotTxTypeAuthorize:
		return unmarshalBallotTx[AuthorizeTx](dat)
	case BallotTxTypeAuthorizeBatch:
		return unmarshalBallotTx[AuthorizeBatchTx](dat)
	case BallotTxTypeProposal:
		return unmarshalBallotTx[ProposalTx](dat)
	case BallotTxTypeVote:
		return unmarshalBallotTx[VoteTx](dat)
	case BallotTxTypeDelegate:
		return unmarshalBallotTx[DelegateTx](dat)
	case BallotTxTypeTransferAdmin:
		return unmarshalBallotTx[TransferAdminTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalBallotTx(btx *BallotTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
