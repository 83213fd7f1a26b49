package signaler

import (
	"os"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForInterrupt(t *testing.T) {
	t.Parallel()
	for _, sig := range []os.Signal{os.Interrupt, syscall.SIGTERM} {
		t.Run(sig.String(), func(t *testing.T) {
			sigC := WaitForInterrupt()
			proc, err := os.FindProcess(os.Getpid())
			require.NoError(t, err)

			if err := proc.Signal(sig); err != nil {
				if runtime.GOOS == "windows" {
					t.Skipf("proc.Signal(%s) not supported on Windows: %v", sig, err)
				}
				require.NoErrorf(t, err, "proc.Signal(%s) must not error", sig)
			}

			assert.Eventuallyf(t, func() bool {
				select {
				case got := <-sigC:
					return got == sig
				default:
					return false
				}
			}, 2*time.Second, 10*time.Millisecond, "signal %s should be received before the deadline", sig)
		})
	}
}
