package connection

import (
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-social-connect"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes the connection operations and the OAuth
// callback relay over HTTP. The callback route is the redirect listener
// the provider sends the user back to; it translates the redirect query
// into the structured message the waiting authorize call consumes.
type HTTPController struct {
	manager *Manager
	broker  *CallbackBroker
	config  HTTPConfig
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// CallbackClosePage is the HTML served to the authorization window
	// after the callback is relayed (default: a minimal close notice).
	CallbackClosePage string
}

const defaultClosePage = `<!doctype html><html><body>Authorization complete. You may close this window.</body></html>`

// NewHTTPController creates the controller.
func NewHTTPController(manager *Manager, broker *CallbackBroker, cfg HTTPConfig) *HTTPController {
	if cfg.CallbackClosePage == "" {
		cfg.CallbackClosePage = defaultClosePage
	}
	return &HTTPController{
		manager: manager,
		broker:  broker,
		config:  cfg,
	}
}

// RegisterRoutes registers the connection routes. The middleware is
// applied to the operation routes only: the callback and relay routes
// are hit by the provider redirect, which carries no session.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar, mw ...router.MiddlewareFunc) {
	group.Get("/callback", c.Callback)
	group.Post("/message", c.RelayMessage)
	group.Get("/status", c.Status, mw...)
	group.Post("/connect", c.Connect, mw...)
	group.Post("/refresh", c.Refresh, mw...)
	group.Delete("/", c.Disconnect, mw...)
}

// Callback handles the provider redirect. It relays the query into the
// pending authorization attempt and renders a close notice for the
// window.
func (c *HTTPController) Callback(ctx router.Context) error {
	msg := Message{Type: MessageAuthSuccess}

	if errCode := ctx.Query("error"); errCode != "" {
		msg.Type = MessageAuthError
		msg.Error = errCode
		if desc := ctx.Query("error_description"); desc != "" {
			msg.Error = desc
		}
	} else {
		msg.Code = ctx.Query("code")
		msg.State = ctx.Query("state")
		if msg.Code == "" {
			msg.Type = MessageAuthError
			msg.Error = "missing authorization code"
		}
	}

	// The redirect arrives on our own origin by definition; the origin
	// gate only applies to relayed messages.
	c.broker.Deliver(msg, c.brokerOrigin())

	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Status(router.StatusOK).SendString(c.config.CallbackClosePage)
}

// RelayMessage accepts a posted callback message from a relay page.
// Messages from other origins are ignored, mirroring the cross-window
// origin check of the original flow.
func (c *HTTPController) RelayMessage(ctx router.Context) error {
	var msg Message
	if err := ctx.Bind(&msg); err != nil {
		return ctx.JSON(router.StatusBadRequest, map[string]string{
			"error": "invalid message payload",
		})
	}

	accepted := c.broker.Deliver(msg, ctx.GetString("Origin", ""))
	return ctx.JSON(router.StatusOK, map[string]bool{"accepted": accepted})
}

// Connect runs the full connect flow. The request blocks until the
// authorization resolves or times out.
func (c *HTTPController) Connect(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, c.manager.Connect(ctx.Context()))
}

// Disconnect clears the current connection.
func (c *HTTPController) Disconnect(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, c.manager.Disconnect(ctx.Context()))
}

// Refresh refreshes the stored tokens.
func (c *HTTPController) Refresh(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, c.manager.Refresh(ctx.Context()))
}

// Status returns the current user's connection record.
func (c *HTTPController) Status(ctx router.Context) error {
	conn, err := c.manager.Current(ctx.Context())
	if err != nil {
		return ctx.JSON(router.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}
	if conn == nil {
		conn = &connect.Connection{IsConnected: false}
	}
	return ctx.JSON(router.StatusOK, conn)
}

func (c *HTTPController) brokerOrigin() string {
	if c.broker == nil {
		return ""
	}
	return c.broker.origin
}
