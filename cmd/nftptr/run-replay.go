package main

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli"

	"github.com/branched-services/go-nftptr/event"
)

type replayReply struct {
	Token  common.Address `json:"token"`
	Events int            `json:"events"`
}

func runReplay(c *cli.Context) error {
	m := getMetadata(c)
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	ctx, cancel := signalContext()
	defer cancel()

	s, err := openSession(ctx, m)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := event.Replay(ctx, in, event.NewDispatcher(s, log.New("module", "replay")))
	if err != nil {
		return err
	}
	return printJson(m.w, replayReply{Token: s.Token().Address(), Events: n})
}
