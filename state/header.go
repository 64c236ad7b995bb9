package state

import "encoding/json"

// StateHeader is the committed summary of the registry: chain identity,
// last block height and time, the next voter index, and the administrator
// address. Admin is mutable only through TransferAdmin.
type StateHeader struct {
	ChainId   string `json:"chainId"`
	Height    uint64 `json:"height"`
	BlockTime uint64 `json:"blockTime"`
	VoterIdx  uint64 `json:"voterIdx"`
	Admin     string `json:"admin"`
	Hash      []byte `json:"hash"`
	RootHash  []byte `json:"rootHash"`
}

func (h *StateHeader) Encode() ([]byte, error) {
	return json.Marshal(h)
}

func (h *StateHeader) Decode(dat []byte) error {
	return json.Unmarshal(dat, h)
}

func (h *StateHeader) Clone() *StateHeader {
	n := *h
	n.Hash = append([]byte(nil), h.Hash...)
	n.RootHash = append([]byte(nil), h.RootHash...)
	return &n
}
