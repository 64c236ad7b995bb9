package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(accountCmd)
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(authorizeCmd)
	clCmd.AddCommand(authorizeBatchCmd)
	clCmd.AddCommand(newProposalCmd)
	clCmd.AddCommand(voteCmd)
	clCmd.AddCommand(delegateCmd)
	clCmd.AddCommand(transferAdminCmd)
	clCmd.AddCommand(leaderCmd)
	clCmd.AddCommand(pubkeyCmd)
	clCmd.AddCommand(signCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
