package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lancomm/internal/runner"
)

func main() {
	options := runner.ParseOptions()
	lancommRunner, err := runner.NewRunner(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s\n", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup close handler, the runner disconnects from peers on its own
	// goroutine once the context is cancelled
	go func() {
		<-c
		fmt.Println("\r- Ctrl+C pressed in Terminal, Exiting...")
		cancel()
	}()

	err = lancommRunner.Run(ctx)
	if err != nil {
		gologger.Fatal().Msgf("Could not run lancomm: %s\n", err)
	}
}
