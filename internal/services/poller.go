package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// HeightPoller is the REST fallback of HeightWatcher: it asks the node for
// its height every Interval and prints each height it has not printed yet.
type HeightPoller struct {
	Chain    ChainInfo
	Out      io.Writer
	Logger   *zap.Logger
	Interval time.Duration
	Blocks   int
}

func (p HeightPoller) Run(ctx context.Context) error {
	if p.Interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	var last int64
	seen := 0
	for {
		height, err := p.Chain.Height(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if height > last {
			if _, err := fmt.Fprintf(p.Out, "Block height: %d\n", height); err != nil {
				return err
			}
			last = height
			seen++
			if p.Blocks > 0 && seen >= p.Blocks {
				return nil
			}
		} else {
			p.Logger.Debug("height unchanged", zap.Int64("height", height))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
