package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli"

	"github.com/branched-services/go-nftptr"
)

type deployReply struct {
	Account  common.Address `json:"account"`
	Network  uint64         `json:"network"`
	Token    common.Address `json:"token"`
	Name     string         `json:"name"`
	Tx       common.Hash    `json:"tx"`
	Explorer string         `json:"explorer,omitempty"`
}

func runDeploy(c *cli.Context) error {
	m := getMetadata(c)
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openSession(ctx, m)
	if err != nil {
		return err
	}
	defer s.Close()

	token := s.Token()
	reply := deployReply{
		Account: s.Account(),
		Network: s.NetworkID(),
		Token:   token.Address(),
		Name:    token.Name(),
		Tx:      token.TxHash(),
	}
	if e := nftptr.ExplorerFor(s.NetworkID()); e != nil {
		reply.Explorer = e.TokenURL(token.Address())
	}
	return printJson(m.w, reply)
}
