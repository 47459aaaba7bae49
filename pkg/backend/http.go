package backend

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/httputil"
)

// HTTP posts snapshots to a remote geoset server.
type HTTP struct {
	Endpoint string
	Client   *httputil.Client
	Logger   *log.Logger
}

// NewHTTP creates a remote backend for endpoint, e.g.
// "http://geoset.internal:8080/api/generate".
func NewHTTP(endpoint string, timeout time.Duration, logger *log.Logger) (*HTTP, error) {
	if err := errors.ValidateURL(endpoint); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTP{Endpoint: endpoint, Client: httputil.NewClient(timeout), Logger: logger}, nil
}

// remoteError is the server's JSON error body.
type remoteError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Generate posts data and decodes the remote Result.
func (h *HTTP) Generate(ctx context.Context, data []byte) (*Result, error) {
	start := time.Now()
	body, err := h.Client.Post(ctx, h.Endpoint, "application/json", data)
	if err != nil {
		return nil, fail(remoteCause(err), "remote backend")
	}

	var res Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fail(fmt.Errorf("decode response: %w", err), "remote backend")
	}
	h.Logger.Info("exported snapshot", "endpoint", h.Endpoint, "files", len(res.Files), "duration", time.Since(start))
	return &res, nil
}

// remoteCause extracts the server's message from a status error body.
func remoteCause(err error) error {
	var serr *httputil.StatusError
	if !stderrors.As(err, &serr) {
		return err
	}
	var re remoteError
	if json.Unmarshal([]byte(serr.Body), &re) == nil && re.Error != "" {
		return fmt.Errorf("%s (status %d)", re.Error, serr.StatusCode)
	}
	return err
}

var _ Backend = (*HTTP)(nil)
