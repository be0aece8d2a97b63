package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/skillmapper-backend/internal/observability"
	"github.com/yungbote/skillmapper-backend/internal/platform/cache"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

type Verdict string

const (
	VerdictOK          Verdict = "ok"
	VerdictDead        Verdict = "dead"
	VerdictUnreachable Verdict = "unreachable"
	VerdictInvalidURL  Verdict = "invalid_url"
	VerdictBlocked     Verdict = "blocked"
)

type Result struct {
	URL        string
	Verdict    Verdict
	StatusCode int
}

func (r Result) OK() bool { return r.Verdict == VerdictOK }

type Config struct {
	// Concurrency bounds in-flight probes per CheckAll call.
	Concurrency int
	// Timeout bounds a whole CheckAll call.
	Timeout time.Duration
	// RequestTimeout bounds each HEAD probe.
	RequestTimeout time.Duration
	BlockPrivate   bool
	// CacheTTL is how long ok/dead verdicts are reused. Zero disables.
	CacheTTL  time.Duration
	UserAgent string
}

func DefaultConfig() Config {
	return Config{
		Concurrency:    8,
		Timeout:        10 * time.Second,
		RequestTimeout: 5 * time.Second,
		BlockPrivate:   true,
		UserAgent:      "SkillMapperBot/1.0 (+link check)",
	}
}

type Option func(*Prober)

// WithHTTPClient replaces the guarded default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Prober) { p.http = hc }
}

func WithCache(c cache.Cache) Option {
	return func(p *Prober) { p.cache = c }
}

// Prober checks resource links with HEAD requests. It is safe for
// concurrent use.
type Prober struct {
	log    *logger.Logger
	cfg    Config
	http   *http.Client
	cache  cache.Cache
	flight singleflight.Group
}

func New(log *logger.Logger, cfg Config, opts ...Option) *Prober {
	def := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = def.UserAgent
	}
	if log == nil {
		log = logger.Nop()
	}
	p := &Prober{log: log.With("service", "LinkProber"), cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.http == nil {
		p.http = newGuardedClient(cfg.BlockPrivate)
	}
	return p
}

func newGuardedClient(blockPrivate bool) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	if blockPrivate {
		dialer.Control = dialControl
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = dialer.DialContext
	tr.Proxy = nil
	tr.MaxIdleConnsPerHost = 4
	tr.IdleConnTimeout = 30 * time.Second

	c := &http.Client{Transport: tr}
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 6 {
			return fmt.Errorf("too many redirects")
		}
		if req == nil || req.URL == nil {
			return fmt.Errorf("redirect missing url")
		}
		if _, err := parseTarget(req.URL.String()); err != nil {
			return fmt.Errorf("redirect rejected: %w", err)
		}
		if blockPrivate && blockedHost(req.URL.Hostname()) {
			return fmt.Errorf("%w: redirect to %s", errBlocked, req.URL.Hostname())
		}
		return nil
	}
	return c
}

// CheckAll probes every URL with bounded concurrency and returns one Result
// per distinct input. URLs still unprobed when the overall deadline expires
// are reported unreachable.
func (p *Prober) CheckAll(ctx context.Context, urls []string) map[string]Result {
	out := make(map[string]Result, len(urls))
	distinct := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, seen := out[u]; seen {
			continue
		}
		out[u] = Result{URL: u, Verdict: VerdictUnreachable}
		distinct = append(distinct, u)
	}
	if len(distinct) == 0 {
		return out
	}

	ctx, span := observability.Tracer().Start(ctx, "linkcheck.check_all")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	results := make([]Result, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, u := range distinct {
		if gctx.Err() != nil {
			results[i] = Result{URL: u, Verdict: VerdictUnreachable}
			continue
		}
		g.Go(func() error {
			results[i] = p.Check(gctx, u)
			return nil
		})
	}
	_ = g.Wait()

	counts := map[Verdict]int{}
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		out[r.URL] = r
		counts[r.Verdict]++
	}
	p.log.Debug("link check finished",
		"urls", len(distinct),
		"ok", counts[VerdictOK],
		"dead", counts[VerdictDead],
		"unreachable", counts[VerdictUnreachable],
		"blocked", counts[VerdictBlocked],
		"invalid_url", counts[VerdictInvalidURL],
	)
	return out
}

// Check probes one URL, consulting the verdict cache first. Concurrent
// checks of the same URL share one probe, which runs detached from every
// caller's cancellation and is bounded by RequestTimeout alone. A caller
// whose ctx ends first gets unreachable without affecting the others.
func (p *Prober) Check(ctx context.Context, raw string) Result {
	u, err := parseTarget(raw)
	if err != nil {
		observability.Current().ObserveLinkProbe(string(VerdictInvalidURL), "guard", 0)
		return Result{URL: raw, Verdict: VerdictInvalidURL}
	}
	if p.cfg.BlockPrivate && blockedHost(u.Hostname()) {
		observability.Current().ObserveLinkProbe(string(VerdictBlocked), "guard", 0)
		return Result{URL: raw, Verdict: VerdictBlocked}
	}
	target := u.String()

	if r, ok := p.cached(ctx, target); ok {
		observability.Current().ObserveLinkProbe(string(r.Verdict), "cache", 0)
		r.URL = raw
		return r
	}

	probeCtx := context.WithoutCancel(ctx)
	ch := p.flight.DoChan(target, func() (interface{}, error) {
		start := time.Now()
		r := p.head(probeCtx, target)
		observability.Current().ObserveLinkProbe(string(r.Verdict), "probe", time.Since(start))
		p.store(probeCtx, target, r)
		return r, nil
	})
	select {
	case res := <-ch:
		r := res.Val.(Result)
		r.URL = raw
		return r
	case <-ctx.Done():
		return Result{URL: raw, Verdict: VerdictUnreachable}
	}
}

func (p *Prober) head(ctx context.Context, target string) Result {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Result{Verdict: VerdictInvalidURL}
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := p.http.Do(req)
	if err != nil {
		if errors.Is(err, errBlocked) {
			return Result{Verdict: VerdictBlocked}
		}
		p.log.Debug("link probe failed", "url", target, "error", err)
		return Result{Verdict: VerdictUnreachable}
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return Result{Verdict: VerdictOK, StatusCode: resp.StatusCode}
	}
	return Result{Verdict: VerdictDead, StatusCode: resp.StatusCode}
}

func cacheKey(target string) string { return "linkcheck:" + target }

func (p *Prober) cached(ctx context.Context, target string) (Result, bool) {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return Result{}, false
	}
	raw, ok, err := p.cache.Get(ctx, cacheKey(target))
	if err != nil {
		p.log.Warn("verdict cache get failed", "error", err)
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	verdict, code, found := strings.Cut(string(raw), " ")
	if !found {
		return Result{}, false
	}
	status, _ := strconv.Atoi(code)
	switch Verdict(verdict) {
	case VerdictOK, VerdictDead:
		return Result{Verdict: Verdict(verdict), StatusCode: status}, true
	default:
		return Result{}, false
	}
}

// store caches definitive verdicts only. Unreachable may be transient.
func (p *Prober) store(ctx context.Context, target string, r Result) {
	if p.cache == nil || p.cfg.CacheTTL <= 0 {
		return
	}
	if r.Verdict != VerdictOK && r.Verdict != VerdictDead {
		return
	}
	val := fmt.Sprintf("%s %d", r.Verdict, r.StatusCode)
	if err := p.cache.Set(context.WithoutCancel(ctx), cacheKey(target), []byte(val), p.cfg.CacheTTL); err != nil {
		p.log.Warn("verdict cache set failed", "error", err)
	}
}
