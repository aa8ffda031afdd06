// Package assistant runs one chat turn: check the upload, ask the vision
// model, normalize its reply and stream the answer back.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/floorplan-layout/analyzer/internal/attachment"
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/logger"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/result"
	"github.com/floorplan-layout/analyzer/internal/session"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

// Fixed user-facing messages.
const (
	MsgNoAttachment = "Please upload a floor plan image to analyze it."
	MsgNotImage     = "Please upload a valid floor plan image."
	MsgProcessing   = "Processing the floor plan..."
	MsgStructured   = "Here is the JSON structure of the floor plan:"
	MsgInvalid      = "The floor plan reply did not match the row/rack layout:"
)

// EventKind tells what an Event carries.
type EventKind int

const (
	// EventPrompt asks the user for a (valid) image. It ends the turn.
	EventPrompt EventKind = iota
	// EventProcessing is the placeholder shown while the model works.
	EventProcessing
	// EventChunk is the next piece of the reply.
	EventChunk
	// EventDone carries the full reply and the normalization result.
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventPrompt:
		return "prompt"
	case EventProcessing:
		return "processing"
	case EventChunk:
		return "chunk"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one user-visible step of a turn.
type Event struct {
	Kind   EventKind
	Text   string
	Result *result.Result // EventDone only
}

// Options configures the assistant.
type Options struct {
	// Shape selects the prompt variant sent to the model.
	Shape floorplan.Shape
	// ChunkSize is the streaming granularity in bytes.
	ChunkSize int
	// ChunkDelay paces the chunks to give a typing effect.
	ChunkDelay time.Duration
}

// DefaultOptions returns default assistant options.
func DefaultOptions() Options {
	return Options{
		Shape:      floorplan.ShapeAuto,
		ChunkSize:  100,
		ChunkDelay: 50 * time.Millisecond,
	}
}

// Assistant handles image turns.
type Assistant struct {
	model vision.Model
	norm  *normalize.Normalizer
	opts  Options
	log   *slog.Logger
}

// New returns an assistant using model and norm.
func New(model vision.Model, norm *normalize.Normalizer, opts Options) *Assistant {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 100
	}
	if opts.Shape == "" {
		opts.Shape = floorplan.ShapeAuto
	}
	return &Assistant{model: model, norm: norm, opts: opts, log: logger.Default}
}

// WithLogger returns a copy of the assistant logging to l.
func (a *Assistant) WithLogger(l *slog.Logger) *Assistant {
	c := *a
	c.log = l
	return &c
}

// OnImageSubmitted runs one turn and yields its events in order:
//   - no or non-image attachment: a single EventPrompt, session untouched
//   - otherwise EventProcessing, then the reply as EventChunks, then EventDone
//
// A vision model failure is yielded as an error wrapping
// result.ErrModelInvocation and ends the turn. The session is updated before
// streaming starts, so a consumer that stops early only loses display.
func (a *Assistant) OnImageSubmitted(ctx context.Context, sess *session.Session, att *attachment.Attachment) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		if _, err := attachment.Check(att); err != nil {
			msg := MsgNotImage
			if errors.Is(err, result.ErrNoAttachment) {
				msg = MsgNoAttachment
			}
			a.log.Info("attachment rejected", "error", err)
			yield(Event{Kind: EventPrompt, Text: msg}, nil)
			return
		}

		if sess != nil {
			sess.Lock()
			defer sess.Unlock()
		}

		if !yield(Event{Kind: EventProcessing, Text: MsgProcessing}, nil) {
			return
		}

		res, err := a.analyze(ctx, sess, att)
		if err != nil {
			yield(Event{}, err)
			return
		}

		msg := Render(res)
		for chunk := range Chunks(msg, a.opts.ChunkSize) {
			if !yield(Event{Kind: EventChunk, Text: chunk}, nil) {
				return
			}
			if a.opts.ChunkDelay > 0 {
				select {
				case <-time.After(a.opts.ChunkDelay):
				case <-ctx.Done():
					return
				}
			}
		}
		yield(Event{Kind: EventDone, Text: msg, Result: res}, nil)
	}
}

// Analyze checks att, invokes the model and normalizes the reply without
// streaming. A structured result is stored in sess when sess is not nil.
func (a *Assistant) Analyze(ctx context.Context, sess *session.Session, att *attachment.Attachment) (*result.Result, error) {
	if _, err := attachment.Check(att); err != nil {
		return nil, err
	}
	if sess != nil {
		sess.Lock()
		defer sess.Unlock()
	}
	return a.analyze(ctx, sess, att)
}

func (a *Assistant) analyze(ctx context.Context, sess *session.Session, att *attachment.Attachment) (*result.Result, error) {
	info, err := attachment.Check(att)
	if err != nil {
		return nil, err
	}
	prompts := vision.PromptsFor(a.opts.Shape)

	start := time.Now()
	raw, err := a.model.Invoke(ctx, vision.Request{
		SystemPrompt: prompts.System,
		UserPrompt:   prompts.User,
		Image:        att.Data,
		MimeType:     info.MimeType,
	})
	if err != nil {
		a.log.Error("vision model failed", "error", err, "attachment", att.Name)
		return nil, fmt.Errorf("%w: %w", result.ErrModelInvocation, err)
	}
	a.log.Info("vision model replied",
		"attachment", att.Name,
		"format", info.Format,
		"bytes", len(raw),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	res := a.norm.Normalize(raw)
	if res.Success() && sess != nil {
		sess.Store(res.Shape, res.Document)
	}
	return res, nil
}

// Render turns a result into the message shown to the user.
func Render(res *result.Result) string {
	switch res.Kind {
	case result.KindStructured:
		pretty, err := floorplan.Pretty(res.Document)
		if err != nil {
			return res.Text
		}
		return MsgStructured + "\n```json\n" + pretty + "\n```"
	case result.KindSchemaViolation:
		var b strings.Builder
		b.WriteString(MsgInvalid)
		b.WriteString("\n")
		for _, e := range res.Errors {
			b.WriteString("- ")
			if e.NodeID != "" {
				b.WriteString("[" + e.NodeID + "] ")
			}
			b.WriteString(e.Message)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(res.Text)
		return b.String()
	default:
		return res.Text
	}
}

// Chunks splits s into pieces of at most size bytes without cutting a UTF-8
// sequence. The pieces concatenate back to s.
func Chunks(s string, size int) iter.Seq[string] {
	return func(yield func(string) bool) {
		for len(s) > 0 {
			n := min(size, len(s))
			for n < len(s) && n > 0 && !utf8.RuneStart(s[n]) {
				n--
			}
			if n == 0 {
				// size smaller than one rune
				_, n = utf8.DecodeRuneInString(s)
			}
			if !yield(s[:n]) {
				return
			}
			s = s[n:]
		}
	}
}
