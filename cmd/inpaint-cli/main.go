// Command inpaint-cli runs the yellow-mask and mask-image inpainting
// pipelines without a window.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mask-mender/internal/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, newRootCmd(), logger.NewConsoleLogger(zerolog.ErrorLevel))
	stop()
	os.Exit(code)
}

// run executes root and reports a failure through log.
func run(ctx context.Context, root *cobra.Command, log logger.Logger) int {
	if err := root.ExecuteContext(ctx); err != nil {
		log.Error("inpaint-cli", err, nil)
		return 1
	}
	return 0
}
