package main

import (
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/spf13/cobra"
)

type delegateArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	To     uint64
	NoSend bool
}

var delegateArgs delegateArguments

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Delegate the voter's full weight to another voter",
	Long:  ``,
	Run:   delegateRun,
}

func init() {
	urlFlag(delegateCmd, &delegateArgs.Url)
	delegateCmd.Flags().Uint64VarP(&delegateArgs.Index, "index", "i", 0, "voter index")
	delegateCmd.Flags().Uint64VarP(&delegateArgs.Nonce, "nonce", "n", 0, "voter nonce")
	delegateCmd.Flags().StringVarP(&delegateArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	delegateCmd.Flags().Uint64VarP(&delegateArgs.To, "to", "t", 0, "delegate target voter index")
	delegateCmd.Flags().BoolVarP(&delegateArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func delegateRun(cmd *cobra.Command, args []string) {
	btx := &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeDelegate,
		Nonce:   delegateArgs.Nonce,
		Voter:   delegateArgs.Index,
		Tx: &tx.DelegateTx{
			To: delegateArgs.To,
		},
	}
	signAndSend(delegateArgs.Url, delegateArgs.Skey, btx, delegateArgs.NoSend)
}
