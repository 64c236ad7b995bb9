package indexer

// sqlite models

type Height struct {
	Id     uint64 `gorm:"primaryKey" json:"id"`
	Height uint64 `json:"height"`
}

type Voter struct {
	Id         uint64 `gorm:"primaryKey" json:"id"`
	Address    string `json:"address"`
	Name       string `json:"name"`
	Weight     uint64 `json:"weight"`
	Authorized bool   `json:"authorized"`
	Height     uint64 `json:"height"`
}

type Proposal struct {
	Id              uint64 `gorm:"primaryKey" json:"id"`
	ProposerIndex   uint64 `json:"proposer_index"`
	ProposerAddress string `json:"proposer_address"`
	ProposerName    string `json:"proposer_name"`
	Description     string `json:"description"`
	StartTime       uint64 `json:"start_time"`
	EndTime         uint64 `json:"end_time"`
	Tally           uint64 `json:"tally"`
	Height          uint64 `json:"height"`
}

type Vote struct {
	Id           uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Proposal     uint64 `json:"proposal"`
	VoterIndex   uint64 `json:"voter_index"`
	VoterAddress string `json:"voter_address"`
	Weight       uint64 `json:"weight"`
	Tally        uint64 `json:"tally"`
	Height       uint64 `json:"height"`
}

type Delegation struct {
	Id          uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FromIndex   uint64 `json:"from_index"`
	FromAddress string `json:"from_address"`
	ToIndex     uint64 `json:"to_index"`
	ToAddress   string `json:"to_address"`
	Amount      uint64 `json:"amount"`
	Height      uint64 `json:"height"`
}

type AdminChange struct {
	Id         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OldAddress string `json:"old_address"`
	NewAddress string `json:"new_address"`
	Height     uint64 `json:"height"`
}
