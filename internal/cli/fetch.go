package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/artpar/crumbs/internal/cookies"
	"github.com/spf13/cobra"
)

// FetchOptions holds options for the fetch command.
type FetchOptions struct {
	Method  string
	Headers []string
	Timeout time.Duration
}

// NewFetchCommand creates the fetch command.
func NewFetchCommand(root *RootOptions) *cobra.Command {
	opts := &FetchOptions{}

	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Request a URL and store the cookies it sets",
		Long:  "Send an HTTP request using the stored cookies and persist every cookie the server sets, following redirects.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Request headers (format: Key:Value)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Request timeout (overrides config)")

	return cmd
}

func runFetch(cmd *cobra.Command, root *RootOptions, opts *FetchOptions, rawURL string) error {
	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	jar, err := cookies.NewPersistentJar(s.store, cookies.WithJarLogger(s.logger))
	if err != nil {
		return fmt.Errorf("failed to load cookies: %w", err)
	}

	before, err := jar.Count()
	if err != nil {
		return err
	}

	timeout := s.cfg.FetchTimeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	client := &http.Client{Jar: jar, Timeout: timeout}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(opts.Method), rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range parseHeaders(opts.Headers) {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	after, err := jar.Count()
	if err != nil {
		return err
	}

	s.logger.Info("fetch complete", "url", rawURL, "status", resp.StatusCode, "duration", time.Since(start))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "HTTP %s\n", resp.Status)
	fmt.Fprintf(out, "Cookies stored: %d (was %d)\n", after, before)
	return nil
}

// parseHeaders converts header strings to a map.
func parseHeaders(headerStrs []string) map[string]string {
	headers := make(map[string]string)
	for _, h := range headerStrs {
		idx := strings.Index(h, ":")
		if idx == -1 {
			continue
		}
		key := strings.TrimSpace(h[:idx])
		value := strings.TrimSpace(h[idx+1:])
		if key != "" {
			headers[key] = value
		}
	}
	return headers
}
