package main

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli"

	"github.com/branched-services/go-nftptr/event"
	"github.com/branched-services/go-nftptr/server"
)

func runServe(c *cli.Context) error {
	m := getMetadata(c)
	ctx, cancel := signalContext()
	defer cancel()

	s, err := openSession(ctx, m)
	if err != nil {
		return err
	}
	defer s.Close()

	d := event.NewDispatcher(s, nil)
	srv := server.New(d, m.registry, log.New("module", "server"))
	return srv.ListenAndServe(ctx, c.String("listen"))
}
