package main

import (
	"context"
	"os"

	"github.com/viddec/viddec/internal/app"
	"github.com/viddec/viddec/internal/decode"
	"github.com/viddec/viddec/pkg/shell"
)

func main() {
	app.Init() // init config and logs

	decode.Init()

	if len(app.Inputs) == 0 {
		app.Logger.Error().Msg("no inputs")
		os.Exit(2)
	}

	ctx, cancel := shell.SignalContext(context.Background())

	_, err := decode.Run(ctx, app.Inputs)

	cancel()

	if err != nil {
		app.Logger.Error().Err(err).Send()
		os.Exit(1)
	}
}
