package tapwake

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/tapwake/tapwake/internal/classify"
	"github.com/tapwake/tapwake/internal/config"
	"github.com/tapwake/tapwake/internal/deliver"
	"github.com/tapwake/tapwake/internal/gate"
	"github.com/tapwake/tapwake/internal/launch"
	"github.com/tapwake/tapwake/internal/routing"
	"github.com/tapwake/tapwake/internal/store"
)

// Context is the one owned object wiring store, gate, classifier and
// delivery together. Its lifetime is the process lifetime.
//
// Thread-safety model:
//   - HandleLaunch/HandleResume: safe from the native callback thread
//   - pull and stream methods: safe from the application side
//
// The store's transactional read-and-clear is the synchronization
// point between the two.
type Context struct {
	cfg      Config
	log      *slog.Logger
	store    *store.Store
	gate     *gate.Gate
	classify *classify.Classifier
	resolver *routing.Resolver

	states *deliver.Stream[LaunchState]
	links  *deliver.Stream[string]

	observers []LaunchObserver
}

// Option configures a Context at construction time.
type Option func(*Context)

// WithLogger sets the logger. The default discards everything;
// logging is opt-in.
func WithLogger(log *slog.Logger) Option {
	return func(c *Context) { c.log = log }
}

// WithObserver registers a lifecycle observer. May be given repeatedly.
func WithObserver(obs LaunchObserver) Option {
	return func(c *Context) { c.observers = append(c.observers, obs) }
}

// WithDeepLinkPolicy sets the host's deep link routing policy.
func WithDeepLinkPolicy(p DeepLinkPolicy) Option {
	return func(c *Context) { c.resolver.DeepLink = adaptDeepLinkPolicy(p) }
}

// WithNotificationPolicy sets the host's notification routing policy.
func WithNotificationPolicy(p NotificationPolicy) Option {
	return func(c *Context) { c.resolver.Notification = adaptNotificationPolicy(p) }
}

// WithManualGate replaces the timer-driven gate with one the caller
// trips explicitly via TripGate. For tests and the scenario harness.
func WithManualGate() Option {
	return func(c *Context) { c.gate = gate.NewManual() }
}

// New constructs a Context: opens the store, arms the gate timer, and
// wires the classifier and resolver.
func New(cfg Config, opts ...Option) (*Context, error) {
	if cfg.DefaultRoute == "" {
		cfg.DefaultRoute = "/"
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "tapwake.db"
	}
	if cfg.NotificationFallback == "" {
		cfg.NotificationFallback = routing.NotificationFallbackRoute
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open launch store: %w", err)
	}

	c := &Context{
		cfg:    cfg,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		store:  st,
		gate:   gate.Start(cfg.GateWindow),
		states: deliver.NewStream[LaunchState](),
		links:  deliver.NewStream[string](),
	}
	c.resolver = &routing.Resolver{
		Routes:       routeSet(cfg),
		DefaultRoute: cfg.DefaultRoute,
		Fallback:     cfg.NotificationFallback,
	}

	for _, opt := range opts {
		opt(c)
	}
	c.resolver.Log = c.log
	c.classify = classify.New(st, c.log)

	if len(cfg.Rules) > 0 {
		policy, err := routing.CompileRules(toInternalRules(cfg.Rules), c.log)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("compile routing rules: %w", err)
		}
		// Configured rules fill whichever policy slot the host left open.
		if c.resolver.DeepLink == nil {
			c.resolver.DeepLink = policy
		}
		if c.resolver.Notification == nil {
			c.resolver.Notification = policy
		}
	}

	return c, nil
}

// FromConfigFile builds a Context from a validated tapwake.yaml.
func FromConfigFile(path string, opts ...Option) (*Context, error) {
	fileCfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(fromFileConfig(fileCfg), opts...)
}

// Close tears the Context down: streams first so subscribers terminate,
// then the store.
func (c *Context) Close() error {
	c.states.Close()
	c.links.Close()
	return c.store.Close()
}

// TripGate forces the gate to Ready. Only meaningful with
// WithManualGate; with a timer gate it merely brings expiry forward.
func (c *Context) TripGate() {
	c.gate.Trip()
}

// GateReady reports whether the startup window has passed.
func (c *Context) GateReady() bool {
	return c.gate.Ready()
}

// HandleLaunch feeds a cold-start launch signal into the classifier.
// Called by the per-OS glue with whatever the OS handed over.
func (c *Context) HandleLaunch(ctx context.Context, sig Signal) {
	c.handleSignal(ctx, sig)
}

// HandleResume feeds a resume-time signal into the classifier. The
// gate, not the entry point, decides whether the process counts as
// still starting up - the OS calls both paths for a single tap.
func (c *Context) HandleResume(ctx context.Context, sig Signal) {
	c.handleSignal(ctx, sig)
}

// HandleURL is shorthand for a signal that is just an opened URL.
func (c *Context) HandleURL(ctx context.Context, url string) {
	c.handleSignal(ctx, Signal{URL: url})
}

// handleSignal classifies and routes one signal.
//
// While the gate is Initializing the event is persisted for the cold
// pull. Once Ready it is pushed live instead - and deliberately NOT
// persisted, so force-closing the app cannot resurrect an already
// delivered notification on the next cold start.
func (c *Context) handleSignal(ctx context.Context, sig Signal) {
	ev, ok := c.classify.Classify(ctx, classify.Signal{
		URL:           sig.URL,
		Action:        sig.Action,
		Extras:        sig.Extras,
		RemotePayload: sig.RemotePayload,
	}, !c.gate.Ready())
	if !ok {
		return
	}

	c.notifyObservers(ev)

	if ev.DuringInit {
		if err := c.store.Persist(ctx, ev); err != nil {
			c.log.Warn("persist launch event", "error", err, "source", ev.Source)
		}
		return
	}

	switch ev.Source {
	case launch.SourceNotification:
		c.states.Emit(LaunchState(launch.StateFromEvent(ev)))
	case launch.SourceDeepLink:
		c.links.Emit(ev.RawURL)
	}
}

// notifyObservers delivers the event to each registered observer,
// isolating their panics.
func (c *Context) notifyObservers(ev launch.Event) {
	public := LaunchEvent{
		ID:         ev.ID,
		Source:     ev.Source.String(),
		Payload:    ev.Payload,
		RawURL:     ev.RawURL,
		DuringInit: ev.DuringInit,
	}
	for _, obs := range c.observers {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					c.log.Warn("launch observer panicked", "error", rec)
				}
			}()
			obs.OnLaunchEvent(public)
		}()
	}
}

// ConsumeLaunchState performs the one-shot pull: the pending
// notification state, read-and-cleared. Callable before any UI exists.
// A broken store degrades to "normal launch", never an error.
func (c *Context) ConsumeLaunchState(ctx context.Context) LaunchState {
	state, err := c.store.ConsumeState(ctx)
	if err != nil {
		c.log.Warn("consume launch state", "error", err)
		return LaunchState(launch.EmptyState())
	}
	return LaunchState(state)
}

// GetInitialLink returns the raw URL that caused a cold launch,
// read-and-cleared. Empty when the launch was not link-caused, or when
// the store is broken.
func (c *Context) GetInitialLink(ctx context.Context) string {
	rawURL, err := c.store.ConsumeLink(ctx)
	if err != nil {
		c.log.Warn("consume initial link", "error", err)
		return ""
	}
	return rawURL
}

// NotificationEvents subscribes to live notification launches.
// At most one subscriber; a second call replaces the first.
func (c *Context) NotificationEvents() <-chan LaunchState {
	return c.states.Subscribe()
}

// DeepLinkEvents subscribes to raw URLs of links opened while running.
// At most one subscriber; a second call replaces the first.
func (c *Context) DeepLinkEvents() <-chan string {
	return c.links.Subscribe()
}

// StorePendingPayload pre-registers a payload to be merged into the
// next classified notification. Returns false when the store rejected
// it; per the degradation policy this is not an error.
func (c *Context) StorePendingPayload(ctx context.Context, payload string) bool {
	if err := c.store.SetPending(ctx, payload); err != nil {
		c.log.Warn("store pending payload", "error", err)
		return false
	}
	return true
}

// routeSet builds the resolver's registered route lookup.
func routeSet(cfg Config) map[string]bool {
	fileCfg := config.Config{
		DefaultRoute:         cfg.DefaultRoute,
		Routes:               cfg.Routes,
		NotificationFallback: cfg.NotificationFallback,
	}
	return fileCfg.RouteSet()
}

// fromFileConfig maps the validated file configuration onto Config.
func fromFileConfig(fc *config.Config) Config {
	rules := make([]RoutingRule, len(fc.Rules))
	for i, r := range fc.Rules {
		rules[i] = RoutingRule{When: r.When, Goto: r.Goto}
	}
	return Config{
		DefaultRoute:         fc.DefaultRoute,
		Routes:               fc.Routes,
		NotificationFallback: fc.NotificationFallback,
		GateWindow:           fc.GateWindow(),
		StorePath:            fc.StorePath,
		Rules:                rules,
	}
}

// toInternalRules converts public rules for compilation.
func toInternalRules(rules []RoutingRule) []routing.Rule {
	out := make([]routing.Rule, len(rules))
	for i, r := range rules {
		out[i] = routing.Rule{When: r.When, Goto: r.Goto}
	}
	return out
}
