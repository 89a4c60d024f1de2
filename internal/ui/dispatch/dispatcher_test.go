package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"geosearch/internal/domain"
	"geosearch/internal/mocks"
)

var london = domain.Location{PlaceID: 1, DisplayName: "London, UK", Lat: "51.5", Lon: "-0.12"}

type recordingBus struct {
	mu     sync.Mutex
	events []domain.DomainEvent
}

func (b *recordingBus) Publish(e domain.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) types() []domain.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.EventType, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type())
	}
	return out
}

func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)
	return cmd()
}

func TestShortQueriesNeverReachTheNetwork(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), gomock.Any()).Times(0)

	d := New(context.Background(), searcher, WithDebounce(0))

	for _, q := range []string{"", " ", "Lo", "  L  ", "\tab\n", "é"} {
		change, cmd := d.Update(run(t, d.Dispatch(q)))
		assert.Equal(t, Cleared, change.Kind, "query %q", q)
		assert.Nil(t, cmd)
		assert.Empty(t, d.Results())
		assert.False(t, d.Loading())
	}
}

func TestShortQueryClearsPreviousResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), "London").Return([]domain.Location{london}, nil)

	d := New(context.Background(), searcher, WithDebounce(0))

	_, cmd := d.Update(run(t, d.Dispatch("London")))
	d.Update(run(t, cmd))
	require.Len(t, d.Results(), 1)

	change, _ := d.Update(run(t, d.Dispatch("Lo")))
	assert.Equal(t, Cleared, change.Kind)
	assert.Empty(t, d.Results())
}

func TestRapidInputFiresOnlyTheLastQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), "Londo").Return([]domain.Location{london}, nil).Times(1)

	d := New(context.Background(), searcher, WithDebounce(time.Millisecond))

	var cmds []tea.Cmd
	for _, q := range []string{"L", "Lo", "Lon", "Lond", "Londo"} {
		cmds = append(cmds, d.Dispatch(q))
	}
	require.True(t, d.Pending())

	var fetch tea.Cmd
	started := 0
	for _, c := range cmds {
		change, cmd := d.Update(run(t, c))
		if change.Kind == Started {
			started++
			fetch = cmd
			assert.Equal(t, "Londo", change.Query)
		} else {
			assert.Equal(t, NoChange, change.Kind)
		}
	}
	assert.Equal(t, 1, started)
	assert.False(t, d.Pending())
	assert.True(t, d.Loading())

	change, _ := d.Update(run(t, fetch))
	assert.Equal(t, Completed, change.Kind)
	assert.Equal(t, 1, change.Count)
	assert.False(t, d.Loading())
}

func TestDebounceWaitsForQuietWindow(t *testing.T) {
	d := New(context.Background(), nil, WithDebounce(40*time.Millisecond))

	start := time.Now()
	msg := run(t, d.Dispatch("Paris"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)

	dm, ok := msg.(debounceMsg)
	require.True(t, ok)
	assert.Equal(t, "Paris", dm.query)
}

func TestSuccessReplacesResultsAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), "Lon").Return([]domain.Location{london}, nil)

	bus := &recordingBus{}
	d := New(context.Background(), searcher, WithDebounce(0), WithPublisher(bus))

	change, cmd := d.Update(run(t, d.Dispatch("Lon")))
	require.Equal(t, Started, change.Kind)
	assert.NotEmpty(t, change.RequestID)
	assert.True(t, d.Loading())
	assert.Equal(t, 1, d.InFlight())

	change, _ = d.Update(run(t, cmd))
	require.Equal(t, Completed, change.Kind)
	require.Len(t, d.Results(), 1)
	assert.Equal(t, "London, UK", d.Results()[0].Label())
	assert.False(t, d.Loading())
	assert.Equal(t, 0, d.InFlight())

	assert.Equal(t, []domain.EventType{domain.EventSearchStarted, domain.EventSearchCompleted}, bus.types())
}

func TestFailureClearsResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	boom := errors.New("connection refused")
	gomock.InOrder(
		searcher.EXPECT().Search(gomock.Any(), "London").Return([]domain.Location{london}, nil),
		searcher.EXPECT().Search(gomock.Any(), "Londres").Return(nil, boom),
	)

	bus := &recordingBus{}
	d := New(context.Background(), searcher, WithDebounce(0), WithPublisher(bus))

	_, cmd := d.Update(run(t, d.Dispatch("London")))
	d.Update(run(t, cmd))
	require.Len(t, d.Results(), 1)

	_, cmd = d.Update(run(t, d.Dispatch("Londres")))
	change, _ := d.Update(run(t, cmd))

	require.Equal(t, Failed, change.Kind)
	assert.ErrorIs(t, change.Err, boom)
	assert.Empty(t, d.Results())
	assert.NotNil(t, d.Results())
	assert.False(t, d.Loading())
	assert.Contains(t, bus.types(), domain.EventSearchFailed)
}

func TestNilResultsBecomeEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	searcher.EXPECT().Search(gomock.Any(), "Atlantis").Return(nil, nil)

	d := New(context.Background(), searcher, WithDebounce(0))
	_, cmd := d.Update(run(t, d.Dispatch("Atlantis")))
	change, _ := d.Update(run(t, cmd))

	assert.Equal(t, Completed, change.Kind)
	assert.Equal(t, 0, change.Count)
	assert.NotNil(t, d.Results())
}

func TestLastCompletedWinsKeepsLateStaleResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	old := domain.Location{PlaceID: 2, DisplayName: "Lond, Somewhere"}
	searcher.EXPECT().Search(gomock.Any(), "Lond").Return([]domain.Location{old}, nil)
	searcher.EXPECT().Search(gomock.Any(), "London").Return([]domain.Location{london}, nil)

	d := New(context.Background(), searcher, WithDebounce(0))

	_, first := d.Update(run(t, d.Dispatch("Lond")))
	_, second := d.Update(run(t, d.Dispatch("London")))
	assert.Equal(t, 2, d.InFlight())

	// the newer request completes first, the older one last
	d.Update(run(t, second))
	change, _ := d.Update(run(t, first))

	assert.Equal(t, Completed, change.Kind)
	require.Len(t, d.Results(), 1)
	assert.Equal(t, "Lond, Somewhere", d.Results()[0].Label())
	assert.False(t, d.Loading())
}

func TestLatestIssuedWinsDropsStaleResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	searcher := mocks.NewMockSearcher(ctrl)
	old := domain.Location{PlaceID: 2, DisplayName: "Lond, Somewhere"}
	searcher.EXPECT().Search(gomock.Any(), "Lond").Return([]domain.Location{old}, nil)
	searcher.EXPECT().Search(gomock.Any(), "London").Return([]domain.Location{london}, nil)

	d := New(context.Background(), searcher, WithDebounce(0), WithPolicy(LatestIssuedWins))

	_, first := d.Update(run(t, d.Dispatch("Lond")))
	_, second := d.Update(run(t, d.Dispatch("London")))

	change, _ := d.Update(run(t, first))
	assert.Equal(t, Discarded, change.Kind)
	assert.True(t, d.Loading(), "newest request is still outstanding")

	change, _ = d.Update(run(t, second))
	assert.Equal(t, Completed, change.Kind)
	assert.Equal(t, "London, UK", d.Results()[0].Label())
	assert.False(t, d.Loading())
}

func TestForeignMessagesAreIgnored(t *testing.T) {
	a := New(context.Background(), nil, WithDebounce(0))
	b := New(context.Background(), nil, WithDebounce(0))

	msg := run(t, a.Dispatch("Berlin"))
	b.Dispatch("Bern")

	change, cmd := b.Update(msg)
	assert.Equal(t, NoChange, change.Kind)
	assert.Nil(t, cmd)

	change, cmd = b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, NoChange, change.Kind)
	assert.Nil(t, cmd)
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, LatestIssuedWins, ParsePolicy("drop"))
	assert.Equal(t, LastCompletedWins, ParsePolicy("accept"))
	assert.Equal(t, LastCompletedWins, ParsePolicy(""))
}
