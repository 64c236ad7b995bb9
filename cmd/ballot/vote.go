package main

import (
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/spf13/cobra"
)

type voteArguments struct {
	Url      string
	Index    uint64
	Nonce    uint64
	Skey     string
	Proposal uint64
	NoSend   bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast the voter's full weight on a proposal",
	Long:  ``,
	Run:   voteRun,
}

func init() {
	urlFlag(voteCmd, &voteArgs.Url)
	voteCmd.Flags().Uint64VarP(&voteArgs.Index, "index", "i", 0, "voter index")
	voteCmd.Flags().Uint64VarP(&voteArgs.Nonce, "nonce", "n", 0, "voter nonce")
	voteCmd.Flags().StringVarP(&voteArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal index")
	voteCmd.Flags().BoolVarP(&voteArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func voteRun(cmd *cobra.Command, args []string) {
	btx := &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeVote,
		Nonce:   voteArgs.Nonce,
		Voter:   voteArgs.Index,
		Tx: &tx.VoteTx{
			Proposal: voteArgs.Proposal,
		},
	}
	signAndSend(voteArgs.Url, voteArgs.Skey, btx, voteArgs.NoSend)
}
