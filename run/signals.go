package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridge/quarry/tlog"
	"go.uber.org/zap"
)

// Interrupted is returned when a signal stops the program before its task
// finished. The summary of an interrupted analysis is never written.
type Interrupted struct {
	Signal os.Signal
}

func (i Interrupted) Error() string {
	return fmt.Sprintf("interrupted by %s", i.Signal)
}

// ExitCode follows the shell convention of 128 plus the signal number
func (i Interrupted) ExitCode() int {
	if sig, ok := i.Signal.(syscall.Signal); ok {
		return 128 + int(sig)
	}
	return 1
}

func handleSignals(ctx context.Context) error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	defer signal.Stop(signals)
	return waitSignal(ctx, signals)
}

func waitSignal(ctx context.Context, signals <-chan os.Signal) error {
	select {
	case sig := <-signals:
		tlog.Get(ctx).Info("Received signal, stopping the run", zap.Stringer("signal", sig))
		return Interrupted{Signal: sig}
	case <-ctx.Done():
		return ctx.Err()
	}
}
