// Package channels maps WhatsApp routing identifiers onto the business's
// logical channels and holds the per-channel sender configuration.
package channels

import (
	"fmt"
	"strings"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// Channel is a logical business line sharing the WhatsApp transport.
type Channel string

const (
	Sales      Channel = "sales"
	Support    Channel = "support"
	Accounting Channel = "accounting"
	Unknown    Channel = "unknown"
)

// Known lists the channels that carry their own configuration.
var Known = []Channel{Sales, Support, Accounting}

func (c Channel) String() string { return string(c) }

// Config is the sender configuration for one channel.
type Config struct {
	EndpointID  string
	Credential  string
	HandoffLink string
}

// Complete reports whether the config can be used to send.
func (c Config) Complete() bool {
	return strings.TrimSpace(c.EndpointID) != "" && strings.TrimSpace(c.Credential) != ""
}

// Table is the enum-keyed channel configuration. It is read-only after startup.
type Table struct {
	configs map[Channel]Config
	// routing holds only channel-specific endpoint ids; the shared default
	// endpoint never resolves to a channel.
	routing map[string]Channel
}

// NewTable builds a table from per-channel configs. routingIDs maps each
// channel to the endpoint id that identifies it on inbound webhooks.
func NewTable(configs map[Channel]Config, routingIDs map[Channel]string) *Table {
	t := &Table{
		configs: make(map[Channel]Config, len(Known)),
		routing: make(map[string]Channel, len(Known)),
	}
	for _, ch := range Known {
		t.configs[ch] = configs[ch]
		if id := strings.TrimSpace(routingIDs[ch]); id != "" {
			if _, dup := t.routing[id]; !dup {
				t.routing[id] = ch
			}
		}
	}
	return t
}

// Validate returns an error naming every channel whose config is incomplete.
func (t *Table) Validate() error {
	var missing []string
	for _, ch := range Known {
		cfg := t.configs[ch]
		if strings.TrimSpace(cfg.EndpointID) == "" {
			missing = append(missing, string(ch)+".endpoint_id")
		}
		if strings.TrimSpace(cfg.Credential) == "" {
			missing = append(missing, string(ch)+".credential")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("channels: incomplete configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Resolver resolves routing ids and channel configs, logging misses.
type Resolver struct {
	table  *Table
	logger *logging.Logger
}

// NewResolver wraps a channel table.
func NewResolver(table *Table, logger *logging.Logger) *Resolver {
	if table == nil {
		panic("channels: table cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Resolver{table: table, logger: logger}
}

// Resolve maps the inbound routing identifier to a channel. Empty or
// unrecognised identifiers resolve to Unknown.
func (r *Resolver) Resolve(routingID string) Channel {
	routingID = strings.TrimSpace(routingID)
	if routingID == "" {
		r.logger.Warn("channels: empty routing id")
		return Unknown
	}
	if ch, ok := r.table.routing[routingID]; ok {
		return ch
	}
	r.logger.Warn("channels: unrecognised routing id", "routing_id", routingID)
	return Unknown
}

// ConfigFor returns the sender config for a channel. Unknown falls back to
// Sales. Missing values are logged and the partial config is returned as-is.
func (r *Resolver) ConfigFor(ch Channel) Config {
	target := ch
	switch ch {
	case Sales, Support, Accounting:
	default:
		target = Sales
	}
	cfg := r.table.configs[target]
	if !cfg.Complete() {
		r.logger.Error("channels: incomplete sender configuration",
			"channel", string(ch),
			"resolved_channel", string(target),
			"has_endpoint_id", strings.TrimSpace(cfg.EndpointID) != "",
			"has_credential", strings.TrimSpace(cfg.Credential) != "",
		)
	}
	return cfg
}

// HandoffLink returns the human-agent deep link of a channel, "" when unset.
func (r *Resolver) HandoffLink(ch Channel) string {
	return r.table.configs[ch].HandoffLink
}
