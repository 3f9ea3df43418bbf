package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/vitrina/internal/fetch"
	"go.uber.org/zap"
)

// statusConfigResponse holds configuration info returned by status.
type statusConfigResponse struct {
	SearchLatency  string  `json:"search_latency"`
	ItemLatency    string  `json:"item_latency"`
	FailureRate    float64 `json:"failure_rate"`
	DatabasePath   string  `json:"database_path,omitempty"`
	BleveIndexPath string  `json:"bleve_index_path,omitempty"`
	FixturesPath   string  `json:"fixtures_path,omitempty"`
}

// statusResponse is the shape of GET /api/status.
type statusResponse struct {
	Listings       int64                 `json:"listings"`
	Products       int64                 `json:"products"`
	Ready          bool                  `json:"ready"`
	DiskUsageBytes *int64                `json:"disk_usage_bytes,omitempty"`
	Config         *statusConfigResponse `json:"config,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "API base URL (default: client.base_url from config)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Client.BaseURL = *serverURL
	}

	status, err := statusViaHTTP(context.Background(), newUnit(cfg.Client, zap.NewNop()), cfg.Client.BaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %s\n", fetch.Message(err))
		os.Exit(1)
	}
	if err := writeStatus(os.Stdout, status, *outputFormat); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusViaHTTP reads /api/status through the fetch unit, so a warming server is retried.
func statusViaHTTP(ctx context.Context, unit *fetch.Unit, baseURL string) (*statusResponse, error) {
	out, err := unit.Get(ctx, strings.TrimRight(baseURL, "/")+"/api/status", fetch.EndpointDetail)
	if err != nil {
		return nil, err
	}
	var status statusResponse
	if err := json.Unmarshal(out.Body, &status); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return &status, nil
}

func writeStatus(w io.Writer, status *statusResponse, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	fmt.Fprintf(w, "Listings: %d\n", status.Listings)
	fmt.Fprintf(w, "Products: %d\n", status.Products)
	fmt.Fprintf(w, "Ready:    %t\n", status.Ready)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "Disk:     %s\n", formatBytes(*status.DiskUsageBytes))
	}
	if c := status.Config; c != nil {
		fmt.Fprintf(w, "Latency:  search %s, item %s\n", c.SearchLatency, c.ItemLatency)
		fmt.Fprintf(w, "Failures: %.0f%%\n", c.FailureRate*100)
		if c.FixturesPath != "" {
			fmt.Fprintf(w, "Fixtures: %s\n", c.FixturesPath)
		}
	}
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
