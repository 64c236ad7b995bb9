package main

import (
	"context"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type leaderArguments struct {
	Url string
}

var leaderArgs leaderArguments

var leaderCmd = &cobra.Command{
	Use:   "leader",
	Short: "Query the proposal with the strictly greatest tally",
	Long:  ``,
	Run:   leaderRun,
}

func init() {
	urlFlag(leaderCmd, &leaderArgs.Url)
}

func leaderRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(leaderArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	res, err := cli.ABCIQuery(context.Background(), "/leader/", nil)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("%#v\n", res)
		return
	}
	fmt.Println(string(res.Response.Value))
}
