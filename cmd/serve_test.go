package cmd

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitAndShutdownOnServerError(t *testing.T) {
	serveErr := make(chan error, 1)
	serveErr <- errors.New("listen tcp :8000: address already in use")

	stopped := false
	err := waitAndShutdown(make(chan os.Signal), serveErr, func() { stopped = true })
	assert.ErrorContains(t, err, "address already in use")
	assert.True(t, stopped)
}

func TestWaitAndShutdownOnSignal(t *testing.T) {
	sig := make(chan os.Signal, 1)
	sig <- syscall.SIGTERM

	stopped := false
	err := waitAndShutdown(sig, make(chan error), func() { stopped = true })
	assert.NoError(t, err)
	assert.True(t, stopped)
}
