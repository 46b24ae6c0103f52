// Package main provides a command-line tool that exports Mist guest Wi-Fi
// authorizations to CSV, with access point MACs resolved to AP names from
// the organization inventory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"Mist-Guest-Grabber/pkg/config"
	"Mist-Guest-Grabber/pkg/enrich"
	"Mist-Guest-Grabber/pkg/logger"
	"Mist-Guest-Grabber/pkg/mist"
	"Mist-Guest-Grabber/pkg/output"
	"Mist-Guest-Grabber/pkg/pipeline"
)

// Version information injected at build time via ldflags.
// Build with: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=<git-sha> -X main.BuildTime=<timestamp>"
var (
	Version   = "dev"     // Version set at build time
	Commit    = "unknown" // Git commit SHA set at build time
	BuildTime = "unknown" // Build timestamp set at build time
)

// options are the flags that pick what the command does rather than how.
type options struct {
	cfgFile   string
	testAPI   bool
	listSites bool
	version   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx), stdout, stderr)
}

// exitCode reports err and maps it to an exit code. Cancellation by the
// operator is a normal exit.
func exitCode(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil:
		return 0
	case pipeline.IsCanceled(err):
		fmt.Fprintln(stdout, "User cancelled, exiting.")
		fmt.Fprintln(stdout, "Done.")
		return 0
	default:
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "mist-guest-grabber",
		Short: "Export Mist guest Wi-Fi authorizations to CSV",
		Long: `Pulls guest authorizations from every selected site of a Mist organization,
adds the name of the access point each guest joined through, converts the
authorization timestamps to local time and writes one row per guest.

Settings come from flags, MIST_* environment variables, a .env file in the
working directory, or $HOME/.mist-guest-grabber.yaml, in that order.`,
		Example: `  mist-guest-grabber --org-id <org> --api-token <token>
  mist-guest-grabber --site "HQ,Branch" --duration 7d -o week.csv
  mist-guest-grabber --timezone America/Chicago --time-format "%Y-%m-%d %H:%M"
  mist-guest-grabber --list-sites
  mist-guest-grabber --test-api`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd.Context(), cmd.Flags(), opts, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	fs := cmd.Flags()
	config.RegisterFlags(fs)
	fs.StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/"+config.DefaultConfigName+".yaml)")
	fs.BoolVar(&opts.testAPI, "test-api", false, "Validate the API token and exit")
	fs.BoolVar(&opts.listSites, "list-sites", false, "List the organization's sites and exit")
	fs.BoolVar(&opts.version, "version", false, "Show version and exit")
	return cmd
}

func execute(ctx context.Context, fs *pflag.FlagSet, opts options, stdout, stderr io.Writer) error {
	if opts.version {
		printVersion(stdout)
		return nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	v, err := config.New(fs)
	if err != nil {
		return err
	}
	if err := config.ReadFile(v, opts.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogFile, logger.ParseLogLevel(cfg.LogLevel))
	if cfg.APIToken == "" {
		return config.ErrMissingToken
	}
	client := mist.NewClient(mist.ClientConfig{
		Token:   cfg.APIToken,
		Host:    cfg.APIHost,
		Timeout: cfg.Timeout,
		Logger:  log.WithComponent("mist"),
	})

	if opts.testAPI {
		self, err := client.Self(ctx)
		if err != nil {
			return err
		}
		who := firstNonEmpty(self.Email, self.Name, strings.TrimSpace(self.FirstName+" "+self.LastName), "unknown user")
		fmt.Fprintf(stdout, "API OK: token belongs to %s\n", who)
		return nil
	}

	if opts.listSites {
		if cfg.OrgID == "" {
			return config.ErrMissingOrgID
		}
		sites, err := client.Sites(ctx, cfg.OrgID)
		if err != nil {
			return err
		}
		writeSites(stdout, cfg.OrgID, sites)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	pcfg, err := pipelineConfig(cfg)
	if err != nil {
		return err
	}
	p := pipeline.New(pcfg, client, log, stdout)
	report, err := p.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(stdout, report)
	fmt.Fprintln(stdout, "Done.")
	return nil
}

// pipelineConfig maps validated settings onto a pipeline run.
func pipelineConfig(cfg config.Config) (pipeline.Config, error) {
	format, err := output.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return pipeline.Config{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return pipeline.Config{}, err
	}
	formatter, err := enrich.NewFormatter(loc, cfg.TimeFormat)
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		OrgID:         cfg.OrgID,
		InventoryType: cfg.InventoryType,
		Sites:         cfg.Site,
		Search: mist.GuestSearch{
			Duration: cfg.Duration,
			Limit:    cfg.Limit,
			WLAN:     cfg.WLAN,
		},
		SiteDevices:  cfg.SiteDevices,
		OutputPath:   cfg.Output,
		OutputFormat: format,
		Formatter:    formatter,
	}, nil
}

// firstNonEmpty returns the first non-empty string from the provided values.
// Returns empty string if all values are empty or contain only whitespace.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// printSummary writes what the run did, including anything it had to skip.
func printSummary(w io.Writer, report *pipeline.Report) {
	fmt.Fprintf(w, "Searched %d sites, %d guest records.\n", len(report.Sites), len(report.Records))
	for _, f := range report.SiteFailures {
		fmt.Fprintf(w, "Skipped site %s (%s): %v\n", f.Site.Name, f.Site.ID, f.Err)
	}
	if report.InventoryErr != nil {
		fmt.Fprintf(w, "AP names unavailable, inventory request failed: %v\n", report.InventoryErr)
	}
	if n := enrich.Count(report.Skipped, enrich.KindMalformed); n > 0 {
		fmt.Fprintf(w, "%d timestamp fields could not be formatted\n", n)
	}
	if n := enrich.Count(report.Skipped, enrich.KindAPUnresolved); n > 0 {
		fmt.Fprintf(w, "%d records have an AP without a unique inventory match\n", n)
	}
	fmt.Fprintf(w, "Wrote %d rows to %s\n", len(report.Records), report.OutputPath)
}

// writeSites writes the organization's sites sorted by name.
func writeSites(w io.Writer, orgID string, sites []mist.Site) {
	sorted := append([]mist.Site(nil), sites...)
	sort.Slice(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	fmt.Fprintf(w, "Organization: %s\n", orgID)
	if len(sorted) == 0 {
		fmt.Fprintln(w, "  (no sites)")
		return
	}
	for _, s := range sorted {
		fmt.Fprintf(w, "  - %s (%s)\n", s.Name, s.ID)
	}
}

// printVersion writes version and build information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Mist-Guest-Grabber version %s\n", Version)
	fmt.Fprintf(w, "  Commit:     %s\n", Commit)
	fmt.Fprintf(w, "  Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "  Go Version: %s\n", runtime.Version())
}
