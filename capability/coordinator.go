package capability

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-social-connect"
)

// StoreProbe is the storage backend surface the coordinator checks.
type StoreProbe interface {
	Configured() bool
	Ping(ctx context.Context) error
}

// SocialProbe is the OAuth backend surface. It is judged on
// configuration alone; no liveness call is made.
type SocialProbe interface {
	Configured() bool
	MissingConfigFields() []string
}

// ImageProbe is the image-search backend surface.
type ImageProbe interface {
	Configured() bool
	CheckConnection(ctx context.Context) bool
}

// Purger removes residual demo records. Purges run on startup only,
// never on health-check re-runs.
type Purger interface {
	PurgeDemoData(ctx context.Context) error
}

// Health is the outcome of a purge-free health check.
type Health struct {
	Healthy   bool      `json:"healthy"`
	Issues    []string  `json:"issues"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Coordinator probes the dependencies in a fixed order and aggregates
// the reports. Probes are fault-isolated from one another, and the
// coordinator itself never fails: any escape hatch collapses to a
// fully-demo snapshot the caller can still render.
type Coordinator struct {
	store    StoreProbe
	social   SocialProbe
	image    ImageProbe
	profiles connect.ProfileStore

	storePurger  Purger
	socialPurger Purger

	logger   connect.Logger
	notifier connect.Notifier
	now      func() time.Time
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithStorePurger registers the startup purge for the storage backend.
func WithStorePurger(p Purger) Option {
	return func(c *Coordinator) {
		c.storePurger = p
	}
}

// WithSocialPurger registers the startup purge for residual OAuth
// tokens.
func WithSocialPurger(p Purger) Option {
	return func(c *Coordinator) {
		c.socialPurger = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger connect.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets the user-facing notifier.
func WithNotifier(n connect.Notifier) Option {
	return func(c *Coordinator) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator creates the coordinator.
func NewCoordinator(store StoreProbe, social SocialProbe, image ImageProbe, profiles connect.ProfileStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		social:   social,
		image:    image,
		profiles: profiles,
		logger:   connect.DefaultLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.notifier == nil {
		c.notifier = connect.NewLogNotifier(c.logger)
	}
	return c
}

// Initialize runs the full startup sequence: all probes, the startup
// purges, and current-user resolution. It emits one notification
// describing the overall mode.
func (c *Coordinator) Initialize(ctx context.Context) *SystemStatus {
	status := c.run(ctx, true)

	switch status.Overall.Mode {
	case ModeProduction:
		c.notifier.Success("All systems live: running in production mode")
	case ModeMixed:
		c.notifier.Info("Running in mixed mode: %d of 3 services live", len(status.Overall.ProductionServices))
	default:
		c.notifier.Info("Running in demo mode: no external services configured")
	}

	return status
}

// Snapshot re-probes everything without startup side effects.
func (c *Coordinator) Snapshot(ctx context.Context) *SystemStatus {
	return c.run(ctx, false)
}

func (c *Coordinator) run(ctx context.Context, startup bool) (status *SystemStatus) {
	status = &SystemStatus{CheckedAt: c.now()}

	// Whatever goes wrong below, the caller still gets a renderable
	// all-demo snapshot.
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("capability run collapsed: %v", r)
			status = c.demoFallback(fmt.Sprintf("%v", r))
		}
	}()

	status.Store = c.probeStore(ctx, startup)
	status.Social = c.probeSocial(ctx, startup)
	status.Image = c.probeImage(ctx)
	status.Payment = Report{
		Service:    ServicePayment,
		Configured: false,
		Status:     StatusDemo,
		Message:    "Payment processing is simulated by design",
	}

	if user, err := c.profiles.CurrentUser(ctx); err == nil && user != nil {
		status.CurrentUser = user
	}

	status.Overall = deriveOverall(status.Reports())
	return status
}

func (c *Coordinator) probeStore(ctx context.Context, startup bool) (report Report) {
	report = Report{Service: ServiceStore}
	defer c.isolate(&report, "storage probe")

	if !c.store.Configured() {
		report.Status = StatusDemo
		report.Message = "Storage running in demo mode, data is not persisted"
		c.purge(ctx, startup, c.storePurger, "store")
		return report
	}

	report.Configured = true
	if err := c.store.Ping(ctx); err != nil {
		report.Status = StatusError
		report.Message = fmt.Sprintf("Storage backend unreachable: %v", err)
		return report
	}

	report.Connected = true
	report.Status = StatusReady
	report.Message = "Storage backend connected"
	c.purge(ctx, startup, c.storePurger, "store")
	return report
}

func (c *Coordinator) probeSocial(ctx context.Context, startup bool) (report Report) {
	report = Report{Service: ServiceSocial}
	defer c.isolate(&report, "social probe")

	c.purge(ctx, startup, c.socialPurger, "social")

	if !c.social.Configured() {
		report.Status = StatusDemo
		report.Message = "Instagram API running in demo mode, configure credentials to publish for real"
		report.MissingConfigFields = c.social.MissingConfigFields()
		return report
	}

	report.Configured = true
	report.Connected = true
	report.Status = StatusReady
	report.Message = "Instagram API configured"
	return report
}

func (c *Coordinator) probeImage(ctx context.Context) (report Report) {
	report = Report{Service: ServiceImage}
	defer c.isolate(&report, "image probe")

	if !c.image.Configured() {
		report.Status = StatusDemo
		report.Message = "Unsplash running in demo mode, serving sample images"
		return report
	}

	report.Configured = true
	if !c.image.CheckConnection(ctx) {
		report.Status = StatusError
		report.Message = "Unsplash API unreachable"
		return report
	}

	report.Connected = true
	report.Status = StatusReady
	report.Message = "Unsplash API connected"
	return report
}

// HealthCheck re-runs the liveness-only parts of the probes. No purge
// side effects, no notifications.
func (c *Coordinator) HealthCheck(ctx context.Context) Health {
	health := Health{Issues: []string{}, CheckedAt: c.now()}

	func() {
		defer func() {
			if r := recover(); r != nil {
				health.Issues = append(health.Issues, fmt.Sprintf("health check failed: %v", r))
			}
		}()

		if c.store.Configured() {
			if err := c.store.Ping(ctx); err != nil {
				health.Issues = append(health.Issues, fmt.Sprintf("%s unreachable: %v", ServiceStore, err))
			}
		}
		if c.image.Configured() && !c.image.CheckConnection(ctx) {
			health.Issues = append(health.Issues, fmt.Sprintf("%s unreachable", ServiceImage))
		}
	}()

	health.Healthy = len(health.Issues) == 0
	return health
}

// isolate converts a probe panic into a demo classification so one
// failing probe never aborts the others.
func (c *Coordinator) isolate(report *Report, name string) {
	if r := recover(); r != nil {
		c.logger.Error("%s panicked: %v", name, r)
		*report = Report{
			Service: report.Service,
			Status:  StatusDemo,
			Message: fmt.Sprintf("%s failed: %v", name, r),
		}
	}
}

func (c *Coordinator) purge(ctx context.Context, startup bool, purger Purger, name string) {
	if !startup || purger == nil {
		return
	}
	if err := purger.PurgeDemoData(ctx); err != nil {
		c.logger.Error("%s purge failed: %v", name, err)
	}
}

func (c *Coordinator) demoFallback(message string) *SystemStatus {
	status := &SystemStatus{
		Store:   Report{Service: ServiceStore, Status: StatusDemo, Message: "Storage running in demo mode"},
		Social:  Report{Service: ServiceSocial, Status: StatusDemo, Message: "Instagram API running in demo mode"},
		Image:   Report{Service: ServiceImage, Status: StatusDemo, Message: "Unsplash running in demo mode"},
		Payment: Report{Service: ServicePayment, Status: StatusDemo, Message: "Payment processing is simulated by design"},
		Error:   message,

		CheckedAt: c.now(),
	}
	status.Overall = deriveOverall(status.Reports())
	return status
}
