package lookup

import (
	"context"
	"strings"

	"github.com/evyataryagoni/ipscope/internal/geo"
	"github.com/evyataryagoni/ipscope/internal/models"
)

// Renderer is the display port of a query
// Implementations own all presentation (terminal, JSON, ...)
type Renderer interface {
	ShowLoading()
	HideLoading()
	ShowError(message string)
	ShowResult(record *models.DisplayRecord)

	// SetInput echoes an address back into the input field
	SetInput(address string)
}

// Resolver turns an address query into a display record
// LookupAddress validates user input; LookupSelf does not.
type Resolver interface {
	LookupAddress(ctx context.Context, address string) (*models.DisplayRecord, error)
	LookupSelf(ctx context.Context) (*models.DisplayRecord, error)
}

// Controller is the command interface of the lookup flow
//
// It holds no query state of its own: a second query simply overwrites
// what the renderer shows, and in-flight queries are never cancelled.
type Controller struct {
	resolver Resolver
	renderer Renderer
}

// NewController wires a resolver to a renderer
func NewController(resolver Resolver, renderer Renderer) *Controller {
	return &Controller{
		resolver: resolver,
		renderer: renderer,
	}
}

// SubmitQuery looks up a user-supplied address
// The raw input is trimmed before validation.
func (c *Controller) SubmitQuery(ctx context.Context, raw string) error {
	address := strings.TrimSpace(raw)

	c.renderer.ShowLoading()
	defer c.renderer.HideLoading()

	record, err := c.resolver.LookupAddress(ctx, address)
	if err != nil {
		c.renderer.ShowError(geo.UserMessage(err))
		return err
	}

	c.renderer.ShowResult(record)
	return nil
}

// SubmitSelfQuery looks up the caller's own address
// On success the echoed address is written back to the input.
func (c *Controller) SubmitSelfQuery(ctx context.Context) error {
	c.renderer.ShowLoading()
	defer c.renderer.HideLoading()

	record, err := c.resolver.LookupSelf(ctx)
	if err != nil {
		c.renderer.ShowError(geo.UserMessage(err))
		return err
	}

	c.renderer.ShowResult(record)
	c.renderer.SetInput(record.Address)
	return nil
}
