package main

import (
	"encoding/hex"
	"fmt"

	"github.com/ballotlabs/ballot-app/tx"
	"github.com/spf13/cobra"
)

type transferAdminArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	Pubkey string
	NoSend bool
}

var transferAdminArgs transferAdminArguments

var transferAdminCmd = &cobra.Command{
	Use:   "transferadmin",
	Short: "Hand the administrator role to another key (admin only)",
	Long:  ``,
	Run:   transferAdminRun,
}

func init() {
	urlFlag(transferAdminCmd, &transferAdminArgs.Url)
	transferAdminCmd.Flags().Uint64VarP(&transferAdminArgs.Index, "index", "i", 0, "admin account index")
	transferAdminCmd.Flags().Uint64VarP(&transferAdminArgs.Nonce, "nonce", "n", 0, "admin account nonce")
	transferAdminCmd.Flags().StringVarP(&transferAdminArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	transferAdminCmd.Flags().StringVarP(&transferAdminArgs.Pubkey, "pubkey", "p", "", "new admin ed25519 pubkey hex")
	transferAdminCmd.Flags().BoolVarP(&transferAdminArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func transferAdminRun(cmd *cobra.Command, args []string) {
	pk, err := hex.DecodeString(transferAdminArgs.Pubkey)
	if err != nil {
		fmt.Printf("invalid pubkey:%v\n", transferAdminArgs.Pubkey)
		return
	}
	btx := &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeTransferAdmin,
		Nonce:   transferAdminArgs.Nonce,
		Voter:   transferAdminArgs.Index,
		Tx: &tx.TransferAdminTx{
			NewAdminPubkey: pk,
		},
	}
	signAndSend(transferAdminArgs.Url, transferAdminArgs.Skey, btx, transferAdminArgs.NoSend)
}
