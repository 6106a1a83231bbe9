// Command server runs the matching engine behind the package's TCP
// binary protocol, following the exchange skeleton's cmd/main.go
// shutdown pattern.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fenrir-exchange/fenrir/internal/app"
	"github.com/fenrir-exchange/fenrir/internal/net"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "markets.toml", "path to the market configuration TOML file")
	address := flag.String("address", "0.0.0.0", "address to listen on")
	port := flag.Int("port", 9001, "port to listen on")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	container, err := app.NewFromConfigFile(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("unable to load market configuration")
	}

	srv := net.New(*address, *port, container.Service)

	go srv.Run(ctx)

	<-ctx.Done()
}
