package main

import (
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/spf13/cobra"
)

type newProposalArguments struct {
	Url         string
	Index       uint64
	Nonce       uint64
	Skey        string
	Description string
	Duration    uint64
	NoSend      bool
}

var newProposalArgs newProposalArguments

var newProposalCmd = &cobra.Command{
	Use:   "newproposal",
	Short: "Create a proposal with a voting window starting now",
	Long:  ``,
	Run:   newProposalRun,
}

func init() {
	urlFlag(newProposalCmd, &newProposalArgs.Url)
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Index, "index", "i", 0, "voter index")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Nonce, "nonce", "n", 0, "voter nonce")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	newProposalCmd.Flags().StringVarP(&newProposalArgs.Description, "description", "m", "", "proposal description")
	newProposalCmd.Flags().Uint64VarP(&newProposalArgs.Duration, "duration", "t", 3600, "voting window in seconds")
	newProposalCmd.Flags().BoolVarP(&newProposalArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func newProposalRun(cmd *cobra.Command, args []string) {
	btx := &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeProposal,
		Nonce:   newProposalArgs.Nonce,
		Voter:   newProposalArgs.Index,
		Tx: &tx.ProposalTx{
			Description: newProposalArgs.Description,
			Duration:    newProposalArgs.Duration,
		},
	}
	signAndSend(newProposalArgs.Url, newProposalArgs.Skey, btx, newProposalArgs.NoSend)
}
