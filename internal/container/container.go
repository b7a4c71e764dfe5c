// Package container wires the charterdesk services using go.uber.org/dig.
package container

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/charterdesk/charterdesk/internal/backend"
	"github.com/charterdesk/charterdesk/internal/bus"
	"github.com/charterdesk/charterdesk/internal/config"
	"github.com/charterdesk/charterdesk/internal/feed"
	"github.com/charterdesk/charterdesk/internal/panel"
	"github.com/charterdesk/charterdesk/internal/refresh"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	registry  *config.Registry
	client    *backend.Client
	bus       *bus.Bus
	search    *panel.SearchPanel
	results   *panel.ResultList
	detail    *panel.DetailPanel
	feed      *feed.Listener
	refresher *refresh.Refresher
}

func (c *Container) Registry() *config.Registry    { return c.registry }
func (c *Container) Client() *backend.Client       { return c.client }
func (c *Container) Bus() *bus.Bus                 { return c.bus }
func (c *Container) Search() *panel.SearchPanel    { return c.search }
func (c *Container) Results() *panel.ResultList    { return c.results }
func (c *Container) Detail() *panel.DetailPanel    { return c.detail }
func (c *Container) Refresher() *refresh.Refresher { return c.refresher }

// Feed returns the live feed listener, or nil when the feed is disabled.
func (c *Container) Feed() *feed.Listener { return c.feed }

// BackendURL is a named string type so dig can tell the resolved backend
// address apart from other strings.
type BackendURL string

// New builds and wires all services for the backend at baseURL. The panels
// are activated; call Close to drop their subscriptions.
func New(reg *config.Registry, baseURL string) (*Container, error) {
	if reg == nil {
		reg = config.NewRegistry()
	}
	if err := config.ValidateBackendURL(baseURL); err != nil {
		return nil, err
	}

	d := dig.New()

	if err := d.Provide(func() *config.Registry { return reg }); err != nil {
		return nil, err
	}
	if err := d.Provide(func() BackendURL { return BackendURL(baseURL) }); err != nil {
		return nil, err
	}
	if err := d.Provide(newClient); err != nil {
		return nil, err
	}
	if err := d.Provide(bus.New); err != nil {
		return nil, err
	}
	if err := d.Provide(newResultList); err != nil {
		return nil, err
	}
	if err := d.Provide(newDetailPanel); err != nil {
		return nil, err
	}
	if err := d.Provide(newSearchPanel); err != nil {
		return nil, err
	}
	if err := d.Provide(newFeed); err != nil {
		return nil, err
	}
	if err := d.Provide(newRefresher); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		client *backend.Client,
		b *bus.Bus,
		search *panel.SearchPanel,
		results *panel.ResultList,
		detail *panel.DetailPanel,
		listener *feed.Listener,
		refresher *refresh.Refresher,
	) {
		results.Activate()
		detail.Activate()
		result = &Container{
			registry:  reg,
			client:    client,
			bus:       b,
			search:    search,
			results:   results,
			detail:    detail,
			feed:      listener,
			refresher: refresher,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to wire services: %w", dig.RootCause(err))
	}
	return result, nil
}

// Close deactivates the panels.
func (c *Container) Close() {
	c.results.Deactivate()
	c.detail.Deactivate()
}

func newClient(reg *config.Registry, url BackendURL) *backend.Client {
	c := backend.NewClient(string(url))
	if reg.Backend != nil {
		if reg.Backend.Timeout > 0 {
			c.SetTimeout(reg.Backend.Timeout)
		}
		c.SetRetry(reg.Backend.MaxRetries, backend.DefaultRetryDelay)
	}
	return c
}

func newResultList(client *backend.Client, b *bus.Bus) *panel.ResultList {
	return panel.NewResultList(client, b)
}

func newDetailPanel(client *backend.Client, b *bus.Bus) *panel.DetailPanel {
	return panel.NewDetailPanel(client, b)
}

func newSearchPanel(results *panel.ResultList, client *backend.Client, reg *config.Registry) *panel.SearchPanel {
	s := panel.NewSearchPanel(results, client)
	if reg.Preferences != nil {
		s.SetType(reg.Preferences.DefaultYachtType)
	}
	return s
}

// newFeed returns nil when the live feed is turned off in the preferences.
func newFeed(reg *config.Registry, url BackendURL, b *bus.Bus) (*feed.Listener, error) {
	if reg.Preferences == nil || !reg.Preferences.LiveFeed {
		return nil, nil
	}
	return feed.NewListener(string(url), b)
}

func newRefresher(results *panel.ResultList, reg *config.Registry) (*refresh.Refresher, error) {
	var expr string
	if reg.Preferences != nil {
		expr = reg.Preferences.RefreshSchedule
	}
	return refresh.New(results, expr)
}
