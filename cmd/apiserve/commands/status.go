package commands

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/marmos91/apiserve/internal/cli/health"
	"github.com/marmos91/apiserve/internal/cli/output"
	"github.com/marmos91/apiserve/internal/cli/timeutil"
	"github.com/marmos91/apiserve/pkg/config"
	"github.com/spf13/cobra"
)

var (
	statusOutput   string
	statusURL      string
	statusInsecure bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long: `Display the status of a running apiserve server.

This command calls the /system/alive and /system/info endpoints of the
system container. The server address defaults to the configured api.port
on 127.0.0.1, over HTTPS when a certificate is configured.

Examples:
  # Check status of the locally configured server
  apiserve status

  # Check a remote server with a self-signed certificate
  apiserve status --url https://api.example.com:5001 --insecure

  # Output as JSON
  apiserve status --output json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "Server base URL (default: from configuration)")
	statusCmd.Flags().BoolVar(&statusInsecure, "insecure", false, "Skip TLS certificate verification")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// ServerStatus represents the server status information.
type ServerStatus struct {
	URL       string `json:"url" yaml:"url"`
	Running   bool   `json:"running" yaml:"running"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`
	Message   string `json:"message" yaml:"message"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Secure    bool   `json:"secure" yaml:"secure"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	UptimeSec int64  `json:"uptime_sec,omitempty" yaml:"uptime_sec,omitempty"`
	GoVersion string `json:"go_version,omitempty" yaml:"go_version,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	base := statusURL
	if base == "" {
		cfg, err := config.MustLoad(GetConfigFile())
		if err != nil {
			return err
		}
		base = defaultStatusURL(cfg)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	if statusInsecure {
		client.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via --insecure
		}
	}

	status := checkStatus(client, strings.TrimRight(base, "/"))

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(cmd.OutOrStdout(), status)
	case output.FormatYAML:
		return output.PrintYAML(cmd.OutOrStdout(), status)
	default:
		printStatusTable(cmd.OutOrStdout(), status)
	}
	return nil
}

func defaultStatusURL(cfg *config.Config) string {
	scheme := "http"
	if cfg.API.TLSEnabled() {
		scheme = "https"
	}
	return fmt.Sprintf("%s://127.0.0.1:%d", scheme, cfg.API.Port)
}

// checkStatus queries the system container of the server at base.
func checkStatus(client *http.Client, base string) ServerStatus {
	status := ServerStatus{
		URL:     base,
		Message: "Server is not running",
	}

	resp, err := client.Get(base + "/system/alive")
	if err != nil {
		return status
	}
	defer func() { _ = resp.Body.Close() }()

	status.Running = true
	if resp.StatusCode == http.StatusNotFound {
		status.Message = "Server is running but does not serve the system container"
		return status
	}

	var alive health.Response
	if err := json.NewDecoder(resp.Body).Decode(&alive); err != nil {
		status.Message = "Server is running but health response invalid"
		return status
	}

	status.Healthy = alive.Status == "healthy"
	status.Name = alive.Data.Name
	status.StartedAt = alive.Data.StartedAt
	status.Uptime = alive.Data.Uptime
	status.UptimeSec = alive.Data.UptimeSec
	if status.Healthy {
		status.Message = "Server is running and healthy"
	} else {
		status.Message = fmt.Sprintf("Server is running but unhealthy: %s", alive.Error)
	}

	if info, err := fetchInfo(client, base); err == nil {
		status.Secure = info.Data.Secure
		status.GoVersion = info.Data.GoVersion
	}
	return status
}

func fetchInfo(client *http.Client, base string) (*health.InfoResponse, error) {
	resp, err := client.Get(base + "/system/info")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var info health.InfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

func printStatusTable(w io.Writer, status ServerStatus) {
	p := func(format string, args ...any) { _, _ = fmt.Fprintf(w, format, args...) }

	p("\napiserve Server Status\n")
	p("======================\n\n")
	p("  URL:        %s\n", status.URL)

	if status.Running {
		if status.Healthy {
			p("  Status:     \033[32m● Running\033[0m\n")
		} else {
			p("  Status:     \033[33m● Running (unhealthy)\033[0m\n")
		}
		if status.Name != "" {
			p("  Name:       %s\n", status.Name)
		}
		if status.StartedAt != "" {
			p("  Started:    %s\n", timeutil.FormatTime(status.StartedAt))
		}
		if status.Uptime != "" || status.UptimeSec > 0 {
			p("  Uptime:     %s\n", timeutil.FormatUptime(status.Uptime, status.UptimeSec))
		}
		if status.GoVersion != "" {
			p("  Go:         %s\n", status.GoVersion)
		}
	} else {
		p("  Status:     \033[31m○ Stopped\033[0m\n")
	}

	p("\n  %s\n\n", status.Message)
}
