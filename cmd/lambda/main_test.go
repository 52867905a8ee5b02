package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mathoholic/exchange-updater/internal/app"
	"github.com/Mathoholic/exchange-updater/internal/config"
)

const ratesPage = `<html><body>
<table><tr><th>Top 10</th></tr></table>
<table><tr><th>US Dollar</th><th>1.00 USD</th></tr>
<tr><td>Euro</td><td>0.913</td></tr></table></body></html>`

func fileRuntime(t *testing.T) func(ctx context.Context) (*app.Runtime, error) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ratesPage))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	body := fmt.Sprintf("app:\n  epoch: %q\n  fetch-delay-ms: 0\n  data-file: %s\nxrates:\n  base-url: %s\ntracing:\n  disabled: true\n",
		time.Now().Format("2006-01-02"), filepath.Join(dir, "exchange-rates.csv"), server.URL)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)

	return func(ctx context.Context) (*app.Runtime, error) {
		conf, err := config.New()
		if err != nil {
			return nil, err
		}
		return app.New(ctx, conf)
	}
}

func Test_OnMissingDates_ShouldReportSuccess(t *testing.T) {
	h := &handler{open: fileRuntime(t)}

	res, err := h.Handle(context.Background(), events.CloudWatchEvent{Source: "aws.events"})
	require.NoError(t, err)
	assert.Equal(t, &Response{Message: "success"}, res)

	res, err = h.Handle(context.Background(), events.CloudWatchEvent{Source: "aws.events"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func Test_OnMissingS3URI_ShouldFailBeforeWork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app:\n  backend: file\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("S3_URI", "")
	h := &handler{open: openS3Runtime}

	_, err := h.Handle(context.Background(), events.CloudWatchEvent{})
	assert.ErrorIs(t, err, config.ErrMissingS3URI)
}
