package dispatch

import (
	"context"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"geosearch/internal/domain"
	"geosearch/internal/logging"
)

const (
	// MinQueryLength is the minimum number of non-blank characters sent upstream.
	MinQueryLength = 3
	// DefaultDebounce is the quiet period before a query is sent.
	DefaultDebounce = 300 * time.Millisecond
)

// Searcher runs one location search.
type Searcher interface {
	Search(ctx context.Context, query string) ([]domain.Location, error)
}

// Publisher receives search lifecycle events.
type Publisher interface {
	Publish(event domain.DomainEvent)
}

// Policy decides which response is kept when several requests overlap.
type Policy int

const (
	// LastCompletedWins keeps whichever response arrives last, even when it
	// answers an older query.
	LastCompletedWins Policy = iota
	// LatestIssuedWins drops responses to requests that were superseded.
	LatestIssuedWins
)

// ParsePolicy maps the config values "accept" and "drop" to a Policy.
func ParsePolicy(s string) Policy {
	if s == "drop" {
		return LatestIssuedWins
	}
	return LastCompletedWins
}

// ChangeKind describes what an Update did to the result set.
type ChangeKind int

const (
	NoChange ChangeKind = iota
	// Cleared means the query was too short and the result set was emptied.
	Cleared
	// Started means a request was issued and loading is set.
	Started
	// Completed means a response replaced the result set.
	Completed
	// Failed means a request failed and the result set was emptied.
	Failed
	// Discarded means a response to a superseded request was dropped.
	Discarded
)

// Change is the observable outcome of Update.
type Change struct {
	Kind      ChangeKind
	Query     string
	RequestID string
	Count     int
	Err       error
}

type debounceMsg struct {
	owner uint64
	token uint64
	query string
}

type resultMsg struct {
	owner     uint64
	seq       uint64
	requestID string
	query     string
	results   []domain.Location
	err       error
	elapsed   time.Duration
}

var owners atomic.Uint64

// Dispatcher debounces queries and runs them against a Searcher. It holds a
// single pending-timer token and the sequence of the latest issued request;
// all state changes happen in Update on the Bubble Tea goroutine.
type Dispatcher struct {
	owner    uint64
	ctx      context.Context
	searcher Searcher
	bus      Publisher
	debounce time.Duration
	policy   Policy

	tokens  uint64
	pending uint64
	issued  uint64

	inflight int
	loading  bool
	results  []domain.Location
	query    string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDebounce sets the quiet period. Zero fires on the next message loop.
func WithDebounce(d time.Duration) Option {
	return func(ds *Dispatcher) {
		if d >= 0 {
			ds.debounce = d
		}
	}
}

// WithPolicy sets the overlapping-response policy.
func WithPolicy(p Policy) Option {
	return func(ds *Dispatcher) { ds.policy = p }
}

// WithPublisher publishes SearchStarted, SearchCompleted and SearchFailed events.
func WithPublisher(p Publisher) Option {
	return func(ds *Dispatcher) { ds.bus = p }
}

// New creates a dispatcher. ctx is the parent of every request and carries the logger.
func New(ctx context.Context, searcher Searcher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		owner:    owners.Add(1),
		ctx:      logging.WithComponent(ctx, "dispatch"),
		searcher: searcher,
		debounce: DefaultDebounce,
		policy:   LastCompletedWins,
		results:  []domain.Location{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch schedules query to run once the debounce window passes without
// another call. Earlier pending calls are superseded.
func (d *Dispatcher) Dispatch(query string) tea.Cmd {
	d.tokens++
	d.pending = d.tokens
	msg := debounceMsg{owner: d.owner, token: d.pending, query: query}

	if d.debounce <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(d.debounce, func(time.Time) tea.Msg { return msg })
}

// Update consumes timer and response messages belonging to this dispatcher.
// Other messages return a NoChange.
func (d *Dispatcher) Update(msg tea.Msg) (Change, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.owner != d.owner || msg.token != d.pending {
			return Change{}, nil
		}
		d.pending = 0
		return d.fire(msg.query)

	case resultMsg:
		if msg.owner != d.owner {
			return Change{}, nil
		}
		return d.complete(msg), nil
	}
	return Change{}, nil
}

func (d *Dispatcher) fire(query string) (Change, tea.Cmd) {
	log := logging.FromContext(d.ctx)

	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength {
		d.results = []domain.Location{}
		d.query = query
		if d.policy == LatestIssuedWins {
			// responses still in flight answer an older query
			d.issued++
			d.loading = false
		}
		log.Debug().Str("query", query).Msg("query below minimum length, cleared results")
		return Change{Kind: Cleared, Query: query}, nil
	}

	d.issued++
	seq := d.issued
	d.inflight++
	d.loading = true
	d.query = query

	requestID := uuid.NewString()
	log.Debug().Str("request_id", requestID).Str("query", query).Int("in_flight", d.inflight).Msg("dispatching search")
	if d.bus != nil {
		d.bus.Publish(domain.SearchStartedEvent{RequestID: requestID, Query: query})
	}

	ctx, searcher, owner := d.ctx, d.searcher, d.owner
	cmd := func() tea.Msg {
		start := time.Now()
		results, err := searcher.Search(ctx, query)
		return resultMsg{
			owner:     owner,
			seq:       seq,
			requestID: requestID,
			query:     query,
			results:   results,
			err:       err,
			elapsed:   time.Since(start),
		}
	}
	return Change{Kind: Started, Query: query, RequestID: requestID}, cmd
}

func (d *Dispatcher) complete(msg resultMsg) Change {
	log := logging.FromContext(d.ctx)

	if d.inflight > 0 {
		d.inflight--
	}

	if d.policy == LatestIssuedWins && msg.seq != d.issued {
		log.Debug().Str("request_id", msg.requestID).Str("query", msg.query).Msg("dropping superseded response")
		return Change{Kind: Discarded, Query: msg.query, RequestID: msg.requestID}
	}

	d.loading = false

	if msg.err != nil {
		d.results = []domain.Location{}
		log.Warn().Err(msg.err).Str("request_id", msg.requestID).Str("query", msg.query).Dur("elapsed", msg.elapsed).Msg("search failed")
		if d.bus != nil {
			d.bus.Publish(domain.SearchFailedEvent{RequestID: msg.requestID, Query: msg.query, Err: msg.err})
		}
		return Change{Kind: Failed, Query: msg.query, RequestID: msg.requestID, Err: msg.err}
	}

	results := msg.results
	if results == nil {
		results = []domain.Location{}
	}
	d.results = results
	log.Debug().Str("request_id", msg.requestID).Str("query", msg.query).Int("results", len(results)).Dur("elapsed", msg.elapsed).Msg("search completed")
	if d.bus != nil {
		d.bus.Publish(domain.SearchCompletedEvent{RequestID: msg.requestID, Query: msg.query, Count: len(results), Duration: msg.elapsed})
	}
	return Change{Kind: Completed, Query: msg.query, RequestID: msg.requestID, Count: len(results)}
}

// Results returns the current result set. It is never nil.
func (d *Dispatcher) Results() []domain.Location {
	return d.results
}

// Loading reports whether a request is outstanding.
func (d *Dispatcher) Loading() bool {
	return d.loading
}

// Pending reports whether a debounce timer is waiting to fire.
func (d *Dispatcher) Pending() bool {
	return d.pending != 0
}

// InFlight returns the number of requests without a response yet.
func (d *Dispatcher) InFlight() int {
	return d.inflight
}

// LastQuery returns the query of the most recent fired dispatch.
func (d *Dispatcher) LastQuery() string {
	return d.query
}

// Policy returns the overlapping-response policy.
func (d *Dispatcher) Policy() Policy {
	return d.policy
}
