//go:build unix

package console

import (
	"os"
	"os/signal"
	"syscall"
)

// notifyResize calls fn on every SIGWINCH until the returned stop
// function is called.
func notifyResize(fn func()) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGWINCH)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				fn()
			}
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
