// Package client is the composition root: it assembles the logger,
// transport, connection handler, dispatcher, and endpoint resolver from a
// validated configuration and exposes the library's public surface.
package client

import (
	"context"
	"io"

	"github.com/gaborage/replicon-go/config"
	"github.com/gaborage/replicon-go/discovery"
	"github.com/gaborage/replicon-go/dispatch"
	"github.com/gaborage/replicon-go/handler"
	"github.com/gaborage/replicon-go/httpclient"
	"github.com/gaborage/replicon-go/logger"
)

// Client is a tenant-bound API client. All methods are safe for concurrent use.
type Client struct {
	cfg        *config.Config
	log        logger.Logger
	logCloser  io.Closer
	handler    *handler.Handler
	dispatcher *dispatch.Dispatcher
	resolver   *discovery.Resolver
}

type options struct {
	log         logger.Logger
	transport   httpclient.Transport
	progress    func(done, total int)
	handlerOpts []handler.Option
}

// Option configures the client.
type Option func(*options)

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(log logger.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTransport replaces the HTTP transport. Tests inject fakes here.
func WithTransport(t httpclient.Transport) Option {
	return func(o *options) { o.transport = t }
}

// WithProgress installs a batch progress callback.
func WithProgress(fn func(done, total int)) Option {
	return func(o *options) { o.progress = fn }
}

// WithHandlerOptions forwards options to the connection handler, e.g. a
// custom clock for tests.
func WithHandlerOptions(opts ...handler.Option) Option {
	return func(o *options) { o.handlerOpts = append(o.handlerOpts, opts...) }
}

// New creates a Client from a configuration, validating it first.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{cfg: cfg}

	if o.log != nil {
		c.log = o.log
	} else if cfg.Log.File != "" {
		log, closer, err := logger.NewFileLogger(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return nil, err
		}
		c.log = log
		c.logCloser = closer
	} else {
		c.log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
	}

	transport := o.transport
	if transport == nil {
		transport = httpclient.NewHTTPTransport(c.log, cfg.API.CorrelationHeader)
	}

	c.handler = handler.New(transport, cfg, c.log, o.handlerOpts...)

	var dispatchOpts []dispatch.Option
	if o.progress != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithProgress(o.progress))
	}
	c.dispatcher = dispatch.New(c.handler, c.log, dispatchOpts...)

	// Discovery always POSTs JSON and carries no credentials, regardless of
	// how the tenant's own calls are configured.
	discoveryCfg := *cfg
	discoveryCfg.API.Method = config.MethodPost
	discoveryCfg.API.Headers = map[string]string{"content-type": "application/json"}
	discoveryHandler := handler.New(transport, &discoveryCfg, c.log,
		append(o.handlerOpts, handler.WithAnonymous())...)
	c.resolver = discovery.NewResolver(discoveryHandler, c.log, cfg.Discovery.URL)

	return c, nil
}

// Do sends one payload to url and resolves it through the retry state
// machine. Application-level error bodies come back as results.
func (c *Client) Do(ctx context.Context, url string, payload httpclient.Payload) (*httpclient.Result, error) {
	return c.handler.Handle(ctx, url, payload)
}

// DoBatch fans payloads out to a bounded worker pool against url and returns
// one outcome per payload in completion order. A workers value of zero falls
// back to the configured dispatch worker count.
func (c *Client) DoBatch(ctx context.Context, url string, payloads []httpclient.Payload, workers int) ([]dispatch.Outcome, error) {
	if workers <= 0 {
		workers = c.cfg.Dispatch.Workers
	}
	return c.dispatcher.Run(ctx, url, payloads, workers)
}

// Endpoints resolves the tenant's swimlane URLs, caching the result for the
// process lifetime. Requires a company key, so it is unavailable in
// token-credential mode.
func (c *Client) Endpoints(ctx context.Context) (*discovery.Endpoints, error) {
	return c.resolver.Resolve(ctx, c.cfg.Tenant.CompanyKey)
}

// Close releases the log file when one was opened by New.
func (c *Client) Close() error {
	if c.logCloser != nil {
		return c.logCloser.Close()
	}
	return nil
}
