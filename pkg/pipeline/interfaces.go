//go:generate mockgen -destination=mock_api.go -package=pipeline Mist-Guest-Grabber/pkg/pipeline API

package pipeline

import (
	"context"

	"Mist-Guest-Grabber/pkg/mist"
)

// API is the part of the Mist API the pipeline needs. *mist.Client implements it.
type API interface {
	Sites(ctx context.Context, orgID string) ([]mist.Site, error)
	Inventory(ctx context.Context, orgID, deviceType string) ([]mist.Device, error)
	SiteDevices(ctx context.Context, siteID string) ([]mist.Device, error)
	Device(ctx context.Context, siteID, mac string) (*mist.Device, error)
	SearchGuests(ctx context.Context, siteID string, q mist.GuestSearch) ([]mist.Record, error)
}

var _ API = (*mist.Client)(nil)
