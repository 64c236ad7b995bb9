package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ballotlabs/ballot-app/state"
	"github.com/cometbft/cometbft/crypto/ed25519"
	"github.com/cometbft/cometbft/privval"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

const (
	DefaultPrivValKeyName   = "priv_validator_key.json"
	DefaultPrivValStateName = "priv_validator_state.json"
)

type accountArguments struct {
	Url     string
	Address string
	Index   uint64
}

var accountArgs accountArguments

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Query a voter account by address or index",
	Long:  ``,
	Run:   accountRun,
}

func init() {
	urlFlag(accountCmd, &accountArgs.Url)
	accountCmd.Flags().StringVarP(&accountArgs.Address, "address", "a", "", "voter address")
	accountCmd.Flags().Uint64VarP(&accountArgs.Index, "index", "i", 0, "voter index")
	showCmd.Flags().StringVarP(&showArgs.Home, "homedir", "d", "data", "home dir")
	accountCmd.AddCommand(showCmd)
}

func accountRun(cmd *cobra.Command, args []string) {
	voter, err := queryVoter(accountArgs.Url, accountArgs.Index, accountArgs.Address)
	if err != nil {
		return
	}
	pk := ed25519.PubKey(voter.PubKey[:])
	voterStr := fmt.Sprintf("nonce:%v index:%v pk:%v weight:%v authorized:%v addr:%v\n",
		voter.Nonce, voter.Index, common.Bytes2Hex(voter.PubKey), voter.Weight, voter.Authorized, common.Bytes2Hex(pk.Address()[:]))
	fmt.Println(voterStr)
}

func queryVoter(url string, index uint64, address string) (*state.Voter, error) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return nil, err
	}
	ctx := context.Background()
	var dat []byte
	if len(address) > 0 {
		dat, err = hex.DecodeString(address)
		if err != nil {
			fmt.Printf("invalid address:%v\n", address)
			return nil, err
		}
	} else {
		s := fmt.Sprintf("0%x", index)
		if len(s)&1 == 1 {
			s = s[1:]
		}
		dat, _ = hex.DecodeString(s)
	}
	res, err := cli.ABCIQuery(ctx, "/voters/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return nil, err
	}
	if res.Response.Code != 0 {
		fmt.Printf("%#v\n", res)
		return nil, errors.New("response code not 0")
	}
	var voter state.Voter
	err = json.Unmarshal(res.Response.Value, &voter)
	if err != nil {
		return nil, err
	}
	return &voter, err
}

type showArguments struct {
	Home string
}

var showArgs showArguments

var showCmd = &cobra.Command{
	Use:   "pk",
	Short: "",
	Long:  ``,
	Run:   showRun,
}

func showRun(cmd *cobra.Command, args []string) {
	filePV := privval.LoadFilePV(
		filepath.Join(showArgs.Home, "config", DefaultPrivValKeyName),
		filepath.Join(showArgs.Home, "data", DefaultPrivValStateName),
	)
	pubKey, err := filePV.GetPubKey()
	if err != nil {
		fmt.Printf("get public key error %v", err)
		return
	}
	fmt.Printf("pk:%s\n", hex.EncodeToString(pubKey.Bytes()))
}
