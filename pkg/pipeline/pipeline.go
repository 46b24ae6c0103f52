// Package pipeline runs one guest report: inventory, sites, guest search,
// enrichment, then the output file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"Mist-Guest-Grabber/pkg/enrich"
	"Mist-Guest-Grabber/pkg/filters"
	"Mist-Guest-Grabber/pkg/inventory"
	"Mist-Guest-Grabber/pkg/logger"
	"Mist-Guest-Grabber/pkg/macaddr"
	"Mist-Guest-Grabber/pkg/mist"
	"Mist-Guest-Grabber/pkg/output"
)

// Config holds everything a run needs. It is built once by main from the
// loaded configuration and never changed.
type Config struct {
	OrgID         string
	InventoryType string
	Sites         string // comma-separated names or IDs, or filters.AllSites
	Search        mist.GuestSearch
	SiteDevices   bool
	OutputPath    string
	OutputFormat  output.Format
	Formatter     enrich.Formatter
}

// SiteFailure is a site whose guests could not be retrieved.
type SiteFailure struct {
	Site mist.Site
	Err  error
}

func (f SiteFailure) Error() string {
	return fmt.Sprintf("site %s (%s): %v", f.Site.Name, f.Site.ID, f.Err)
}

// Report describes a finished run.
type Report struct {
	// Sites that were searched successfully.
	Sites   []mist.Site
	Records []mist.Record
	Columns []string
	// Skipped holds diagnostics for records kept without full enrichment.
	Skipped      []enrich.Diagnostic
	SiteFailures []SiteFailure
	// InventoryErr is set when the inventory could not be fetched and AP
	// names were left unresolved.
	InventoryErr  error
	InventorySize int
	OutputPath    string
}

// Pipeline is a configured report run.
type Pipeline struct {
	cfg      Config
	api      API
	log      *logger.Logger
	progress io.Writer
}

// New returns a pipeline. Progress lines go to progress when it is not nil.
func New(cfg Config, api API, log *logger.Logger, progress io.Writer) *Pipeline {
	if progress == nil {
		progress = io.Discard
	}
	if cfg.InventoryType == "" {
		cfg.InventoryType = inventory.APKey
	}
	if cfg.Sites == "" {
		cfg.Sites = filters.AllSites
	}
	return &Pipeline{cfg: cfg, api: api, log: log.WithComponent("pipeline"), progress: progress}
}

// IsCanceled reports whether err comes from the run being canceled.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// fatal reports whether err must stop the run rather than be recorded.
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || mist.IsTransport(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Run executes the report. The returned Report is never nil and carries
// whatever was gathered before a fatal error. No output file is left
// behind unless Run returns a nil error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{OutputPath: p.cfg.OutputPath}

	orgIndex, err := p.loadInventory(ctx, report)
	if err != nil {
		return report, err
	}

	all, err := p.api.Sites(ctx, p.cfg.OrgID)
	if err != nil {
		return report, fmt.Errorf("fetch sites: %w", err)
	}
	sites, err := filters.SelectSites(p.cfg.Sites, all)
	if err != nil {
		return report, err
	}
	p.log.Infof("Searching %d of %d sites", len(sites), len(all))

	enricher := enrich.Enricher{Formatter: p.cfg.Formatter, Log: p.log}
	fmt.Fprintln(p.progress, "Getting guests...")
	for _, site := range sites {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		guests, err := p.api.SearchGuests(ctx, site.ID, p.cfg.Search)
		if err != nil {
			if fatal(ctx, err) {
				return report, fmt.Errorf("search guests for site %s: %w", site.Name, err)
			}
			p.log.Errorf("Skipping site %s (%s): %v", site.Name, site.ID, err)
			report.SiteFailures = append(report.SiteFailures, SiteFailure{Site: site, Err: err})
			continue
		}
		p.log.Debugf("Site %s returned %d guest records", site.Name, len(guests))

		resolver, err := p.resolverFor(ctx, site, orgIndex, guests)
		if err != nil {
			return report, err
		}

		for _, guest := range guests {
			rec, diags := enricher.Enrich(len(report.Records), guest, resolver)
			report.Records = append(report.Records, rec)
			report.Skipped = append(report.Skipped, diags...)
		}
		report.Sites = append(report.Sites, site)
	}
	fmt.Fprintf(p.progress, "Got %d records.\n", len(report.Records))

	fmt.Fprintln(p.progress, "Formatting guest data...")
	report.Columns = enrich.Columns(report.Records)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	fmt.Fprintf(p.progress, "Writing data to %s file %s...\n", p.cfg.OutputFormat, p.cfg.OutputPath)
	if err := output.WriteFile(p.cfg.OutputPath, p.cfg.OutputFormat, report.Columns, report.Records); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Pipeline) loadInventory(ctx context.Context, report *Report) (inventory.Index, error) {
	devices, err := p.api.Inventory(ctx, p.cfg.OrgID, p.cfg.InventoryType)
	if err != nil {
		if fatal(ctx, err) {
			return nil, fmt.Errorf("fetch inventory: %w", err)
		}
		p.log.Warnf("Inventory unavailable, AP names will be left empty: %v", err)
		report.InventoryErr = err
		return inventory.Index{}, nil
	}
	devices = filters.FilterDevicesByType(devices, p.cfg.InventoryType)
	report.InventorySize = len(devices)
	p.log.Infof("Loaded %d inventory devices", len(devices))
	return inventory.BuildIndex(devices), nil
}

// resolverFor returns the org index, followed by the site's own device list
// when per-site lookups are enabled. A site device list that cannot be
// fetched falls back to the org index alone.
func (p *Pipeline) resolverFor(ctx context.Context, site mist.Site, orgIndex inventory.Index, guests []mist.Record) (inventory.Resolver, error) {
	chain := inventory.Chain{orgIndex}
	if !p.cfg.SiteDevices {
		return chain, nil
	}

	devices, err := p.api.SiteDevices(ctx, site.ID)
	if err != nil {
		if fatal(ctx, err) {
			return nil, fmt.Errorf("fetch devices for site %s: %w", site.Name, err)
		}
		p.log.Warnf("Device list for site %s unavailable: %v", site.Name, err)
	} else {
		chain = append(chain, inventory.BuildIndex(filters.FilterDevicesByType(devices, p.cfg.InventoryType)))
	}
	return p.lookupMissing(ctx, site, chain, guests)
}

// lookupMissing fetches each AP that no index knows by its device ID, once
// per distinct MAC, and appends whatever was found to the chain.
func (p *Pipeline) lookupMissing(ctx context.Context, site mist.Site, chain inventory.Chain, guests []mist.Record) (inventory.Chain, error) {
	var found []mist.Device
	tried := make(map[string]struct{})
	for _, g := range guests {
		ap := g.String(inventory.APKey)
		if strings.TrimSpace(ap) == "" || chain.Matches(ap) > 0 {
			continue
		}
		key := macaddr.Key(ap)
		if _, done := tried[key]; done {
			continue
		}
		tried[key] = struct{}{}

		dev, err := p.api.Device(ctx, site.ID, ap)
		switch {
		case err == nil:
			if dev.MAC == "" {
				dev.MAC = key
			}
			found = append(found, *dev)
		case fatal(ctx, err):
			return nil, fmt.Errorf("fetch device %s on site %s: %w", ap, site.Name, err)
		case mist.IsAPI(err):
			p.log.Debugf("AP %s not found on site %s: %v", ap, site.Name, err)
		default:
			p.log.Warnf("Cannot look up AP %s on site %s: %v", ap, site.Name, err)
		}
	}
	if len(found) == 0 {
		return chain, nil
	}
	return append(chain, inventory.BuildIndex(found)), nil
}
