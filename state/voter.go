package state

import (
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/ethereum/go-ethereum/rlp"
)

// Voter is one registry participant. VotedProposal is reserved for a
// single-global-vote mode and is never written by any operation.
type Voter struct {
	Index         uint64 `json:"index"`
	PubKey        []byte `json:"pubKey"`
	Name          string `json:"name"`
	Authorized    bool   `json:"authorized"`
	Weight        uint64 `json:"weight"`
	Nonce         uint64 `json:"nonce"`
	VotedProposal uint64 `json:"votedProposal"`
}

func (v *Voter) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(v)
}

func (v *Voter) Decode(dat []byte) error {
	return rlp.DecodeBytes(dat, v)
}

func (v *Voter) Clone() *Voter {
	n := *v
	n.PubKey = make([]byte, len(v.PubKey))
	copy(n.PubKey, v.PubKey)
	return &n
}

func (v *Voter) SetPubKey(pkey []byte) {
	if v.PubKey == nil {
		v.PubKey = make([]byte, len(pkey))
	}
	copy(v.PubKey, pkey)
}

func (v *Voter) AddrBytes() []byte {
	pk := ed25519.PubKey(v.PubKey[:])
	return pk.Address()[:]
}

func (v *Voter) Address() string {
	pk := ed25519.PubKey(v.PubKey[:])
	return pk.Address().String()
}

func (v *Voter) Verify(msg []byte, sigs [][]byte) (succ bool) {
	if len(sigs) != 1 {
		return false
	}
	pk := ed25519.PubKey(v.PubKey[:])
	return pk.VerifySignature(msg, sigs[0])
}
