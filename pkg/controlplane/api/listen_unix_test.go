//go:build linux

package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenConfig_ReusePort(t *testing.T) {
	ctx := context.Background()

	lc := listenConfig(true)
	first, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()

	addr := first.Addr().String()
	second, err := lc.Listen(ctx, "tcp", addr)
	require.NoError(t, err, "a second reuse-port socket should bind the same port")
	_ = second.Close()

	plain := listenConfig(false)
	_, err = plain.Listen(ctx, "tcp", addr)
	assert.Error(t, err, "a socket without reuse-port should not bind a taken port")
}

