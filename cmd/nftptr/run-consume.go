package main

import (
	"errors"
	"io"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli"

	"github.com/branched-services/go-nftptr/broker"
	"github.com/branched-services/go-nftptr/event"
)

func runConsume(c *cli.Context) error {
	m := getMetadata(c)
	ctx, cancel := signalContext()
	defer cancel()

	conn, err := broker.Dial(c.String("amqp"))
	if err != nil {
		return err
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	s, err := openSession(ctx, m)
	if err != nil {
		return err
	}
	defer s.Close()

	consumer := broker.NewConsumer(broker.Config{
		Queue:      c.String("queue"),
		Exchange:   c.String("exchange"),
		RoutingKey: c.String("routing-key"),
		Tag:        broker.DefaultTag,
	}, event.NewDispatcher(s, nil), log.New("module", "broker"))

	deliveries, err := consumer.Setup(ch)
	if err != nil {
		return err
	}
	err = consumer.Run(ctx, deliveries)
	if errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

func runPublish(c *cli.Context) error {
	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	conn, err := broker.Dial(c.String("amqp"))
	if err != nil {
		return err
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	exchange := c.String("exchange")
	events := event.NewReader(in)
	for {
		ev, err := events.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := broker.Publish(ch, exchange, "event."+string(ev.Kind), ev); err != nil {
			return err
		}
	}
	log.Info("Published events", "count", events.Count(), "exchange", exchange)
	return printJson(getMetadata(c).w, map[string]int{"events": events.Count()})
}
