package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ChainInfo answers the two liveness queries of a node.
type ChainInfo interface {
	ChainID(ctx context.Context) (string, error)
	Height(ctx context.Context) (int64, error)
}

// Connector checks that a node is reachable and reports where its chain is.
type Connector struct {
	Chain  ChainInfo
	Out    io.Writer
	Logger *zap.Logger
}

// Run prints nothing unless both queries succeed.
func (c Connector) Run(ctx context.Context) error {
	chainID, err := c.Chain.ChainID(ctx)
	if err != nil {
		return err
	}
	height, err := c.Chain.Height(ctx)
	if err != nil {
		return err
	}
	c.Logger.Debug("node reachable", zap.String("chain_id", chainID), zap.Int64("height", height))

	_, err = fmt.Fprintf(c.Out, "ChainId: %s\nBlock height: %d\nSuccessfully connected to Secret Network\n", chainID, height)
	return err
}
