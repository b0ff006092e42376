package cli

import (
	"context"
	"fmt"
	"time"

	"position-report-extractor/internal/logging"
	"position-report-extractor/internal/mailstore"
	"position-report-extractor/internal/models"
)

const maxDialAttempts = 5

var (
	dialIMAP = mailstore.DialIMAP

	dialBackoffBase = 5 * time.Second
	maxDialBackoff  = 2 * time.Minute
)

// connect dials the IMAP server, retrying with an exponential backoff
func connect(ctx context.Context, cfg models.EmailConfig) (*mailstore.IMAPStore, error) {
	for failures := 1; ; failures++ {
		store, err := dialIMAP(cfg)
		if err == nil {
			return store, nil
		}
		logging.Log.Errorf("IMAP connection error: %v", err)

		if failures >= maxDialAttempts {
			return nil, fmt.Errorf("connecting to %s after %d attempts: %w", cfg.Imap, failures, err)
		}

		backoff := dialBackoff(failures)
		logging.Log.Warnf("IMAP failed %d times, waiting %s before next attempt", failures, backoff)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func dialBackoff(failures int) time.Duration {
	n := failures - 1
	if n > 10 {
		n = 10
	}

	backoff := dialBackoffBase * time.Duration(1<<n)
	if backoff > maxDialBackoff {
		backoff = maxDialBackoff
	}
	return backoff
}
