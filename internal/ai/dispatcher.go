package ai

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Fallback texts posted to the room when generation fails. Failures
// are never surfaced as errors to users; the room just sees the AI
// struggle.
const (
	fallbackTimeout     = "Sorry, the AI model is taking too long to respond."
	fallbackUnavailable = "Sorry, I'm having trouble connecting to the AI model."
	fallbackGeneric     = "Sorry, I encountered an error while processing your request."
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sink receives finished completions. Implemented by the hub; posting
// reads the room's live membership at delivery time.
type Sink interface {
	PostAIMessage(room, text string)
}

// Dispatcher runs completion jobs detached from the chat path. Jobs
// overlap freely, for the same room or different ones, and carry their
// own timeout; there is no cancellation hook from the chat side.
type Dispatcher struct {
	gen     Generator
	sink    Sink
	timeout time.Duration
	log     *zerolog.Logger
}

// NewDispatcher builds a dispatcher posting results to sink.
func NewDispatcher(gen Generator, sink Sink, timeout time.Duration, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		gen:     gen,
		sink:    sink,
		timeout: timeout,
		log:     logger,
	}
}

// Submit schedules one completion job for the room and returns
// immediately. Completion communicates solely by re-entering the
// broadcast path through the sink.
func (d *Dispatcher) Submit(room, prompt string) {
	go d.run(room, prompt)
}

func (d *Dispatcher) run(room, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	d.log.Info().Str("room", room).Msg("generating ai response")

	text, err := d.gen.Generate(ctx, prompt)
	if err != nil {
		d.log.Error().Err(err).Str("room", room).Msg("ai generation failed")
		d.sink.PostAIMessage(room, fallbackFor(err))
		return
	}

	d.sink.PostAIMessage(room, text)
	d.log.Info().Str("room", room).Msg("ai response sent")
}

func fallbackFor(err error) string {
	var statusErr *StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fallbackTimeout
	case errors.As(err, &statusErr):
		return fallbackUnavailable
	default:
		return fallbackGeneric
	}
}
