// Package capability probes every external dependency the application
// can use and derives the operating mode that gates live versus
// simulated behavior everywhere else.
package capability

import (
	"fmt"
	"time"

	"github.com/goliatone/go-social-connect"
)

// Status classifies one dependency.
type Status string

const (
	// StatusReady means configured and, where probed, reachable.
	StatusReady Status = "ready"
	// StatusDemo means not configured; the dependency is simulated.
	StatusDemo Status = "demo"
	// StatusError means configured but the liveness probe failed.
	StatusError Status = "error"
)

// Mode is the derived overall operating mode.
type Mode string

const (
	ModeProduction Mode = "production"
	ModeDemo       Mode = "demo"
	ModeMixed      Mode = "mixed"
)

// Service names, in probe order.
const (
	ServiceStore   = "Storage Backend"
	ServiceSocial  = "Instagram API"
	ServiceImage   = "Unsplash API"
	ServicePayment = "Payment System"
)

// Report is a point-in-time snapshot of one dependency's health.
type Report struct {
	Service             string   `json:"service"`
	Configured          bool     `json:"configured"`
	Connected           bool     `json:"connected"`
	Status              Status   `json:"status"`
	Message             string   `json:"message"`
	MissingConfigFields []string `json:"missingConfigFields,omitempty"`
}

// Overall is the derived aggregate.
type Overall struct {
	Mode               Mode     `json:"mode"`
	ReadyForProduction bool     `json:"readyForProduction"`
	ProductionServices []string `json:"productionServices"`
	DemoServices       []string `json:"demoServices"`
}

// SystemStatus aggregates all reports. It is recomputed whole on every
// coordinator run, never patched incrementally.
type SystemStatus struct {
	Store   Report `json:"store"`
	Social  Report `json:"social"`
	Image   Report `json:"image"`
	Payment Report `json:"payment"`

	Overall     Overall       `json:"overall"`
	CurrentUser *connect.User `json:"currentUser,omitempty"`
	Error       string        `json:"error,omitempty"`
	CheckedAt   time.Time     `json:"checkedAt"`
}

// Reports returns the four reports in probe order.
func (s *SystemStatus) Reports() []Report {
	return []Report{s.Store, s.Social, s.Image, s.Payment}
}

// SetupSteps lists what remains to be configured before the
// deployment can leave demo mode.
func (s *SystemStatus) SetupSteps() []string {
	var steps []string

	if !s.Store.Configured {
		steps = append(steps, "Configure the database DSN to enable persistent storage")
	}
	if !s.Social.Configured {
		step := "Configure Instagram OAuth credentials to enable real publishing"
		if len(s.Social.MissingConfigFields) > 0 {
			step = fmt.Sprintf("%s (missing: %v)", step, s.Social.MissingConfigFields)
		}
		steps = append(steps, step)
	}
	if !s.Image.Configured {
		steps = append(steps, "Configure an Unsplash access key to enable live image search")
	}

	return steps
}

// ChecklistItem is one production-readiness line item.
type ChecklistItem struct {
	Service string `json:"service"`
	Ready   bool   `json:"ready"`
	Action  string `json:"action,omitempty"`
}

// ProductionChecklist reports per-service readiness. Payment is listed
// ready: simulation is its production behavior.
func (s *SystemStatus) ProductionChecklist() []ChecklistItem {
	items := make([]ChecklistItem, 0, 4)
	for _, r := range s.Reports() {
		item := ChecklistItem{
			Service: r.Service,
			Ready:   r.Status == StatusReady || r.Service == ServicePayment,
		}
		if !item.Ready {
			item.Action = r.Message
		}
		items = append(items, item)
	}
	return items
}

// deriveOverall applies the aggregation rule. Payment is deliberately
// always simulated, so it is the single demo service production mode
// tolerates; readiness is judged on the three probed services only.
func deriveOverall(reports []Report) Overall {
	overall := Overall{
		ProductionServices: []string{},
		DemoServices:       []string{},
	}

	readyProbed := 0
	for _, r := range reports {
		if r.Status == StatusReady {
			overall.ProductionServices = append(overall.ProductionServices, r.Service)
			if r.Service != ServicePayment {
				readyProbed++
			}
		} else {
			overall.DemoServices = append(overall.DemoServices, r.Service)
		}
	}

	overall.ReadyForProduction = readyProbed == 3

	switch {
	case overall.ReadyForProduction:
		overall.Mode = ModeProduction
	case readyProbed == 0:
		overall.Mode = ModeDemo
	default:
		overall.Mode = ModeMixed
	}

	return overall
}
