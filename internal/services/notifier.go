package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
)

// VendorNotifier delivers the terminal-status callback to a vendor's
// configured URL. One bounded GET, never retried: the ledger and counters
// are already committed by the time this runs, so a failure here is
// reported to the caller but rolls nothing back.
type VendorNotifier struct {
	client *http.Client
}

// NewVendorNotifier creates a notifier with its own HTTP client. A nil
// client falls back to a default with a 10 second timeout.
func NewVendorNotifier(client *http.Client) *VendorNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &VendorNotifier{client: client}
}

// Notify fires the callback GET at the fully substituted URL. A transport
// failure or non-2xx answer comes back as ErrNotifyFailed.
func (n *VendorNotifier) Notify(ctx context.Context, url string) error {
	logrus.WithField("url", url).Info("Notifying vendor")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return customerrors.ErrNotifyFailed{URL: url, Reason: err.Error()}
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return customerrors.ErrNotifyFailed{URL: url, Reason: err.Error()}
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused; the body content is irrelevant.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return customerrors.ErrNotifyFailed{URL: url, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	return nil
}
