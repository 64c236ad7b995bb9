package types

import (
	"fmt"
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"
)

const (
	EventVoterAuthorizedType  = "voter_authorized"
	EventProposalCreatedType  = "proposal_created"
	EventVoteCastType         = "vote_cast"
	EventWeightDelegatedType  = "weight_delegated"
	EventAdminTransferredType = "admin_transferred"
)

type EventVoterAuthorized struct {
	Voter        uint64 `json:"voterIndex"`
	Address      string `json:"address"`
	Name         string `json:"name"`
	Weight       uint64 `json:"weight"`
	AdminAddress string `json:"adminAddress"`
}

func EncodeEventVoterAuthorized(event *EventVoterAuthorized) abci.Event {
	return abci.Event{
		Type: EventVoterAuthorizedType,
		Attributes: []abci.EventAttribute{
			{Key: "voter", Value: fmt.Sprintf("%v", event.Voter), Index: true},
			{Key: "address", Value: event.Address, Index: true},
			{Key: "name", Value: event.Name, Index: false},
			{Key: "weight", Value: fmt.Sprintf("%v", event.Weight), Index: false},
			{Key: "adminAddress", Value: event.AdminAddress, Index: false},
		},
	}
}

func DecodeEventVoterAuthorized(originEvent abci.Event) *EventVoterAuthorized {
	event := &EventVoterAuthorized{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "voter":
			voter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Voter = voter
		case "address":
			event.Address = v.Value
		case "name":
			event.Name = v.Value
		case "weight":
			weight, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Weight = weight
		case "adminAddress":
			event.AdminAddress = v.Value
		}
	}
	return event
}

type EventProposalCreated struct {
	ProposalIndex   uint64 `json:"proposalIndex"`
	Proposer        uint64 `json:"proposerIndex"`
	ProposerAddress string `json:"proposerAddress"`
	Description     string `json:"description"`
	StartTime       uint64 `json:"startTime"`
	EndTime         uint64 `json:"endTime"`
}

func EncodeEventProposalCreated(event *EventProposalCreated) abci.Event {
	return abci.Event{
		Type: EventProposalCreatedType,
		Attributes: []abci.EventAttribute{
			{Key: "proposal", Value: fmt.Sprintf("%v", event.ProposalIndex), Index: true},
			{Key: "proposer", Value: fmt.Sprintf("%v", event.Proposer), Index: true},
			{Key: "proposerAddress", Value: event.ProposerAddress, Index: false},
			{Key: "description", Value: event.Description, Index: false},
			{Key: "startTime", Value: fmt.Sprintf("%v", event.StartTime), Index: false},
			{Key: "endTime", Value: fmt.Sprintf("%v", event.EndTime), Index: false},
		},
	}
}

func DecodeEventProposalCreated(originEvent abci.Event) *EventProposalCreated {
	event := &EventProposalCreated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.ProposalIndex = proposal
		case "proposer":
			proposer, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposer = proposer
		case "proposerAddress":
			event.ProposerAddress = v.Value
		case "description":
			event.Description = v.Value
		case "startTime":
			start, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.StartTime = start
		case "endTime":
			end, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.EndTime = end
		}
	}
	return event
}

type EventVoteCast struct {
	Voter        uint64 `json:"voterIndex"`
	VoterAddress string `json:"voterAddress"`
	Proposal     uint64 `json:"proposal"`
	Weight       uint64 `json:"weight"`
	Tally        uint64 `json:"tally"`
}

func EncodeEventVoteCast(event *EventVoteCast) abci.Event {
	return abci.Event{
		Type: EventVoteCastType,
		Attributes: []abci.EventAttribute{
			{Key: "voter", Value: fmt.Sprintf("%v", event.Voter), Index: true},
			{Key: "voterAddress", Value: event.VoterAddress, Index: false},
			{Key: "proposal", Value: fmt.Sprintf("%v", event.Proposal), Index: true},
			{Key: "weight", Value: fmt.Sprintf("%v", event.Weight), Index: false},
			{Key: "tally", Value: fmt.Sprintf("%v", event.Tally), Index: false},
		},
	}
}

func DecodeEventVoteCast(originEvent abci.Event) *EventVoteCast {
	event := &EventVoteCast{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "voter":
			voter, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Voter = voter
		case "voterAddress":
			event.VoterAddress = v.Value
		case "proposal":
			proposal, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Proposal = proposal
		case "weight":
			weight, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Weight = weight
		case "tally":
			tally, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Tally = tally
		}
	}
	return event
}

type EventWeightDelegated struct {
	From        uint64 `json:"fromIndex"`
	FromAddress string `json:"fromAddress"`
	To          uint64 `json:"toIndex"`
	ToAddress   string `json:"toAddress"`
	Amount      uint64 `json:"amount"`
}

func EncodeEventWeightDelegated(event *EventWeightDelegated) abci.Event {
	return abci.Event{
		Type: EventWeightDelegatedType,
		Attributes: []abci.EventAttribute{
			{Key: "from", Value: fmt.Sprintf("%v", event.From), Index: true},
			{Key: "fromAddress", Value: event.FromAddress, Index: false},
			{Key: "to", Value: fmt.Sprintf("%v", event.To), Index: true},
			{Key: "toAddress", Value: event.ToAddress, Index: false},
			{Key: "amount", Value: fmt.Sprintf("%v", event.Amount), Index: false},
		},
	}
}

func DecodeEventWeightDelegated(originEvent abci.Event) *EventWeightDelegated {
	event := &EventWeightDelegated{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "from":
			from, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.From = from
		case "fromAddress":
			event.FromAddress = v.Value
		case "to":
			to, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.To = to
		case "toAddress":
			event.ToAddress = v.Value
		case "amount":
			amount, err := strconv.ParseUint(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			event.Amount = amount
		}
	}
	return event
}

type EventAdminTransferred struct {
	OldAddress string `json:"oldAddress"`
	NewAddress string `json:"newAddress"`
}

func EncodeEventAdminTransferred(event *EventAdminTransferred) abci.Event {
	return abci.Event{
		Type: EventAdminTransferredType,
		Attributes: []abci.EventAttribute{
			{Key: "oldAddress", Value: event.OldAddress, Index: false},
			{Key: "newAddress", Value: event.NewAddress, Index: true},
		},
	}
}

func DecodeEventAdminTransferred(originEvent abci.Event) *EventAdminTransferred {
	event := &EventAdminTransferred{}
	for _, v := range originEvent.Attributes {
		switch v.Key {
		case "oldAddress":
			event.OldAddress = v.Value
		case "newAddress":
			event.NewAddress = v.Value
		}
	}
	return event
}
