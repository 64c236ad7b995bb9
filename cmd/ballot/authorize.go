package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ballotlabs/ballot-app/tx"
	"github.com/spf13/cobra"
)

type authorizeArguments struct {
	Url    string
	Index  uint64
	Nonce  uint64
	Skey   string
	Pubkey string
	Name   string
	NoSend bool
}

var authorizeArgs authorizeArguments

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Authorize a voter (admin only)",
	Long:  ``,
	Run:   authorizeRun,
}

func init() {
	urlFlag(authorizeCmd, &authorizeArgs.Url)
	authorizeCmd.Flags().Uint64VarP(&authorizeArgs.Index, "index", "i", 0, "admin account index")
	authorizeCmd.Flags().Uint64VarP(&authorizeArgs.Nonce, "nonce", "n", 0, "admin account nonce")
	authorizeCmd.Flags().StringVarP(&authorizeArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	authorizeCmd.Flags().StringVarP(&authorizeArgs.Pubkey, "pubkey", "p", "", "voter ed25519 pubkey hex")
	authorizeCmd.Flags().StringVarP(&authorizeArgs.Name, "name", "m", "", "voter name")
	authorizeCmd.Flags().BoolVarP(&authorizeArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func authorizeRun(cmd *cobra.Command, args []string) {
	pk, err := hex.DecodeString(authorizeArgs.Pubkey)
	if err != nil {
		fmt.Printf("invalid pubkey:%v\n", authorizeArgs.Pubkey)
		return
	}
	btx := &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeAuthorize,
		Nonce:   authorizeArgs.Nonce,
		Voter:   authorizeArgs.Index,
		Tx: &tx.AuthorizeTx{
			Voter: tx.AuthorizeSt{Pubkey: pk, Name: authorizeArgs.Name},
		},
	}
	signAndSend(authorizeArgs.Url, authorizeArgs.Skey, btx, authorizeArgs.NoSend)
}

type authorizeBatchArguments struct {
	Url     string
	Index   uint64
	Nonce   uint64
	Skey    string
	Pubkeys string
	NoSend  bool
}

var authorizeBatchArgs authorizeBatchArguments

var authorizeBatchCmd = &cobra.Command{
	Use:   "authorizebatch",
	Short: "Authorize a comma separated list of voter pubkeys (admin only)",
	Long:  ``,
	Run:   authorizeBatchRun,
}

func init() {
	urlFlag(authorizeBatchCmd, &authorizeBatchArgs.Url)
	authorizeBatchCmd.Flags().Uint64VarP(&authorizeBatchArgs.Index, "index", "i", 0, "admin account index")
	authorizeBatchCmd.Flags().Uint64VarP(&authorizeBatchArgs.Nonce, "nonce", "n", 0, "admin account nonce")
	authorizeBatchCmd.Flags().StringVarP(&authorizeBatchArgs.Skey, "skeyPath", "s", "./config/priv_validator_key.json", "private key path")
	authorizeBatchCmd.Flags().StringVarP(&authorizeBatchArgs.Pubkeys, "pubkeys", "p", "", "comma separated voter pubkeys hex")
	authorizeBatchCmd.Flags().BoolVarP(&authorizeBatchArgs.NoSend, "nosend", "", false, "not send transaction but print signature")
}

func authorizeBatchRun(cmd *cobra.Command, args []string) {
	voters := make([]tx.AuthorizeSt, 0)
	for _, s := range strings.Split(authorizeBatchArgs.Pubkeys, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		pk, err := hex.DecodeString(s)
		if err != nil {
			fmt.Printf("invalid pubkey:%v\n", s)
			return
		}
		voters = append(voters, tx.AuthorizeSt{Pubkey: pk})
	}
	btx := &tx.BallotTx{
		Version: tx.BallotTxVersion1,
		Type:    tx.BallotTxTypeAuthorizeBatch,
		Nonce:   authorizeBatchArgs.Nonce,
		Voter:   authorizeBatchArgs.Index,
		Tx:      &tx.AuthorizeBatchTx{Voters: voters},
	}
	signAndSend(authorizeBatchArgs.Url, authorizeBatchArgs.Skey, btx, authorizeBatchArgs.NoSend)
}
