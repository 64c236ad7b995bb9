package types

type Proposal struct {
	Index           uint64 `json:"index"`
	Description     string `json:"description"`
	Tally           uint64 `json:"tally"`
	StartTime       uint64 `json:"start_time"`
	EndTime         uint64 `json:"end_time"`
	Proposer        uint64 `json:"proposer"`
	ProposerAddress string `json:"proposer_address"`
	// Executed is reserved for a future execution phase. No operation
	// transitions it.
	Executed bool `json:"executed"`
}

// Active reports whether now falls inside the voting window. Both bounds
// are inclusive.
func (p *Proposal) Active(now uint64) bool {
	return now >= p.StartTime && now <= p.EndTime
}
