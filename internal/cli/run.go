package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"geosearch/internal/eventbus"
	"geosearch/internal/logging"
	"geosearch/internal/ui"
)

// runInteractive runs the form until the user quits and prints the chosen
// location as JSON to out.
func runInteractive(ctx context.Context, app *App, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = app.Context(ctx)
	log := logging.FromContext(ctx)

	model := ui.NewApp(ctx, app.Config, app.Searcher(), app.Bus)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if app.Config.UI.Mouse {
		// motion events drive hover highlighting
		opts = append(opts, tea.WithMouseAllMotion())
	}
	p := tea.NewProgram(model, opts...)
	model.SetProgram(p)

	events := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case events <- e:
		default:
			log.Warn().Str("event", string(e.Type())).Msg("event channel full, dropping event")
		}
	}
	unsubscribe := []func(){
		app.Bus.Subscribe(eventbus.EventSearchCompleted, forward),
		app.Bus.Subscribe(eventbus.EventSearchFailed, func(e eventbus.DomainEvent) {
			if ev, ok := e.(eventbus.SearchFailedEvent); ok {
				log.Warn().Err(ev.Err).Str("request_id", ev.RequestID).Str("query", ev.Query).Msg("search failed")
			}
		}),
		app.Bus.Subscribe(eventbus.EventSelectionChanged, func(e eventbus.DomainEvent) {
			if ev, ok := e.(eventbus.SelectionChangedEvent); ok && ev.Location != nil {
				log.Info().Int64("place_id", ev.Location.PlaceID).Msg("selection changed")
			}
		}),
	}
	defer func() {
		for _, unsub := range unsubscribe {
			unsub()
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		log.Info().Msg("starting UI")
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("error running program: %w", err)
		}
		log.Info().Msg("UI exited")
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				p.Quit()
				return nil
			case e := <-events:
				p.Send(ui.EventMsg{Event: e})
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return printSelection(out, model)
}

func printSelection(out io.Writer, model *ui.App) error {
	loc := model.Selected()
	if loc == nil {
		return nil
	}
	data, err := ui.LocationJSON(loc)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, data)
	return err
}
