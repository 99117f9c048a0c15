package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"SecretQuery/internal/chain"

	"go.uber.org/zap"
)

// HeightWatcher prints the height of every new block announced over the
// CometBFT websocket.
type HeightWatcher struct {
	Endpoint string
	Out      io.Writer
	Logger   *zap.Logger
	// Blocks stops the watcher after that many blocks. Zero runs until ctx
	// is done.
	Blocks int
	// ReconnectDelay enables reconnecting after a dropped connection. Zero
	// returns the error instead.
	ReconnectDelay time.Duration
}

func (w HeightWatcher) Run(ctx context.Context) error {
	if w.Endpoint == "" {
		return errors.New("ws endpoint is empty")
	}

	seen := 0
	for {
		err := w.watch(ctx, &seen)
		if err == nil || ctx.Err() != nil {
			return nil
		}
		if w.ReconnectDelay <= 0 {
			return err
		}
		w.Logger.Warn("ws dropped, reconnecting", zap.Error(err), zap.Duration("delay", w.ReconnectDelay))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.ReconnectDelay):
		}
	}
}

// watch returns nil once enough blocks were printed.
func (w HeightWatcher) watch(ctx context.Context, seen *int) error {
	client := chain.NewWSClient(w.Endpoint)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	defer client.Close()
	w.Logger.Info("ws connected", zap.String("endpoint", w.Endpoint))

	if err := client.Subscribe(ctx, chain.NewBlockQuery); err != nil {
		return fmt.Errorf("ws subscribe: %w", err)
	}

	for {
		msg, err := client.Read(ctx)
		if err != nil {
			return fmt.Errorf("ws read: %w", err)
		}
		header, ok, err := chain.ParseWSBlock(msg)
		if err != nil {
			return fmt.Errorf("ws parse: %w", err)
		}
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w.Out, "Block height: %d\n", header.Height); err != nil {
			return err
		}
		*seen++
		if w.Blocks > 0 && *seen >= w.Blocks {
			return nil
		}
	}
}
