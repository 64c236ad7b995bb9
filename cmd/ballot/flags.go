package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ballotlabs/ballot-app/crypto"
	"github.com/ballotlabs/ballot-app/tx"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

func urlFlag(cmd *cobra.Command, url *string) {
	cmd.Flags().StringVarP(url, "url", "u", "http://127.0.0.1:26657", "ballot-cl service url")
}

// signAndSend finishes an envelope the way every write command does: fetch
// the chain id, pull the live nonce when none is given, sign with the file
// key and broadcast. With noSend it just prints the signature.
func signAndSend(url string, skeyPath string, btx *tx.BallotTx, noSend bool) {
	cli, err := http.New(url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		fmt.Printf("get chain genesis err:%v\n", err)
		return
	}
	chainId := gres.Genesis.ChainID
	if btx.Nonce == 0 {
		voter, err := queryVoter(url, btx.Voter, "")
		if err != nil {
			return
		}
		btx.Nonce = voter.Nonce
	}
	dat, err := btx.SigData([]byte(chainId))
	if err != nil {
		fmt.Printf("tx sign data err:%v\n", err)
		return
	}
	println("data signed:", hex.EncodeToString(dat))
	pv := crypto.LoadFilePV(skeyPath)
	sig, err := pv.Sign(dat)
	if err != nil {
		fmt.Printf("sign tx err:%v\n", err)
		return
	}
	println("pubkey:", hex.EncodeToString(pv.PublicKey()))
	println("address:", pv.Address())
	sigs := [][]byte{sig}
	if noSend {
		fmt.Println("transaction signatures:")
		for _, sig := range sigs {
			fmt.Println(hex.EncodeToString(sig))
		}
		return
	}
	btx.Sig = sigs
	dat, err = tx.MarshalBallotTx(btx)
	if err != nil {
		fmt.Printf("marshal tx err:%v\n", err)
		return
	}
	fmt.Printf("tx:%x btx:%#v\n", dat, btx)
	res, err := cli.BroadcastTxSync(ctx, dat)
	if err != nil {
		fmt.Printf("broadcast tx err:%v\n", err)
		return
	}
	dat, _ = json.Marshal(res)
	fmt.Printf("%v\n", string(dat))
}
