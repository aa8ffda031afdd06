package assistant

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"

	"github.com/floorplan-layout/analyzer/internal/attachment"
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	_ "github.com/floorplan-layout/analyzer/internal/handler"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/result"
	"github.com/floorplan-layout/analyzer/internal/session"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

const nestedReply = `{"name":"Room1","rows":[{"name":"Row1","racks":[{"name":"Rack1"},{"name":"Rack2"}]}]}`

func planImage(t *testing.T) *attachment.Attachment {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 16))); err != nil {
		t.Fatal(err)
	}
	return &attachment.Attachment{Name: "plan.png", MimeType: "image/png", Data: buf.Bytes()}
}

func newAssistant(model vision.Model, chunkSize int) *Assistant {
	discard := slog.New(slog.DiscardHandler)
	norm := normalize.New(normalize.DefaultOptions()).WithLogger(discard)
	return New(model, norm, Options{ChunkSize: chunkSize}).WithLogger(discard)
}

func reply(text string) vision.Model {
	return vision.ModelFunc(func(ctx context.Context, req vision.Request) (string, error) {
		return text, nil
	})
}

func collect(t *testing.T, a *Assistant, sess *session.Session, att *attachment.Attachment) ([]Event, error) {
	t.Helper()
	var events []Event
	for ev, err := range a.OnImageSubmitted(context.Background(), sess, att) {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func jsonOf(t *testing.T, n *floorplan.Node) string {
	t.Helper()
	if n == nil {
		return "<nil>"
	}
	b, err := n.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	return string(b)
}

func kinds(events []Event) []string {
	var out []string
	for _, ev := range events {
		out = append(out, ev.Kind.String())
	}
	return out
}

func TestOnImageSubmittedStructured(t *testing.T) {
	var got vision.Request
	model := vision.ModelFunc(func(ctx context.Context, req vision.Request) (string, error) {
		got = req
		return nestedReply, nil
	})
	a := newAssistant(model, 40)
	sess := session.New()
	att := planImage(t)

	events, err := collect(t, a, sess, att)
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	if len(events) < 3 || events[0].Kind != EventProcessing || events[0].Text != MsgProcessing {
		t.Fatalf("events = %v", kinds(events))
	}
	done := events[len(events)-1]
	if done.Kind != EventDone || done.Result == nil || !done.Result.Success() {
		t.Fatalf("last event = %+v", done)
	}

	var streamed strings.Builder
	for _, ev := range events[1 : len(events)-1] {
		if ev.Kind != EventChunk {
			t.Fatalf("unexpected %s event mid-stream", ev.Kind)
		}
		if len(ev.Text) > 40 {
			t.Errorf("chunk of %d bytes exceeds 40", len(ev.Text))
		}
		streamed.WriteString(ev.Text)
	}
	if streamed.String() != done.Text {
		t.Error("chunks do not concatenate to the final message")
	}
	if !strings.HasPrefix(done.Text, MsgStructured+"\n```json\n") || !strings.HasSuffix(done.Text, "\n```") {
		t.Errorf("message =\n%s", done.Text)
	}

	if got.MimeType != "image/png" || !bytes.Equal(got.Image, att.Data) {
		t.Errorf("model got mime %q and %d bytes", got.MimeType, len(got.Image))
	}
	if got.SystemPrompt != vision.PromptsFor(floorplan.ShapeNested).System {
		t.Error("model did not get the nested system prompt")
	}

	shape, doc := sess.Last()
	if shape != floorplan.ShapeNested || jsonOf(t, doc) != jsonOf(t, done.Result.Document) {
		t.Errorf("session holds %s %v", shape, doc)
	}
	if id, _ := floorplan.GetInt(doc, "id"); id != 1 {
		t.Errorf("root id = %d, want 1", id)
	}
}

func TestOnImageSubmittedNoAttachment(t *testing.T) {
	called := false
	model := vision.ModelFunc(func(ctx context.Context, req vision.Request) (string, error) {
		called = true
		return nestedReply, nil
	})
	a := newAssistant(model, 100)
	sess := session.New()
	prev := floorplan.Sequence()
	sess.Store(floorplan.ShapeFlat, prev)

	tests := []struct {
		name string
		att  *attachment.Attachment
		want string
	}{
		{"nil", nil, MsgNoAttachment},
		{"empty", &attachment.Attachment{Name: "plan.png"}, MsgNoAttachment},
		{"not an image", &attachment.Attachment{Name: "plan.pdf", MimeType: "application/pdf", Data: []byte("%PDF-1.4")}, MsgNotImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := collect(t, a, sess, tt.att)
			if err != nil {
				t.Fatalf("turn failed: %v", err)
			}
			want := []Event{{Kind: EventPrompt, Text: tt.want}}
			if diff := cmp.Diff(want, events); diff != "" {
				t.Errorf("events (-want +got):\n%s", diff)
			}
			if _, doc := sess.Last(); jsonOf(t, doc) != jsonOf(t, prev) {
				t.Error("last document changed")
			}
		})
	}
	if called {
		t.Error("model invoked for a rejected attachment")
	}
}

func TestOnImageSubmittedModelFailure(t *testing.T) {
	boom := errors.New("connection reset")
	a := newAssistant(vision.ModelFunc(func(ctx context.Context, req vision.Request) (string, error) {
		return "", boom
	}), 100)
	sess := session.New()

	events, err := collect(t, a, sess, planImage(t))
	if !errors.Is(err, result.ErrModelInvocation) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want ErrModelInvocation wrapping the cause", err)
	}
	if diff := cmp.Diff([]string{"processing"}, kinds(events)); diff != "" {
		t.Errorf("events before failure (-want +got):\n%s", diff)
	}
	if _, doc := sess.Last(); doc != nil {
		t.Error("failed turn stored a document")
	}
}

func TestOnImageSubmittedUnstructured(t *testing.T) {
	const text = "I can see three rows but cannot read the labels."
	a := newAssistant(reply(text), 100)
	sess := session.New()

	events, err := collect(t, a, sess, planImage(t))
	if err != nil {
		t.Fatalf("turn failed: %v", err)
	}
	done := events[len(events)-1]
	if done.Result.Kind != result.KindUnstructured || done.Text != text {
		t.Errorf("done = %+v", done)
	}
	if _, doc := sess.Last(); doc != nil {
		t.Error("unstructured turn stored a document")
	}
}

func TestOnImageSubmittedEarlyStop(t *testing.T) {
	a := newAssistant(reply(nestedReply), 10)
	sess := session.New()

	for ev, err := range a.OnImageSubmitted(context.Background(), sess, planImage(t)) {
		if err != nil {
			t.Fatal(err)
		}
		if ev.Kind == EventChunk {
			break
		}
	}
	if _, doc := sess.Last(); doc == nil {
		t.Error("document not stored when the consumer stopped reading")
	}

	// the turn lock was released
	done := make(chan struct{})
	go func() {
		sess.Lock()
		sess.Unlock()
		close(done)
	}()
	<-done
}

func TestAnalyze(t *testing.T) {
	a := newAssistant(reply(nestedReply), 100)
	sess := session.New()

	if _, err := a.Analyze(context.Background(), sess, nil); !errors.Is(err, result.ErrNoAttachment) {
		t.Errorf("nil attachment: err = %v", err)
	}
	res, err := a.Analyze(context.Background(), sess, planImage(t))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Entities != 4 {
		t.Errorf("Entities = %d, want 4", res.Entities)
	}
	if _, doc := sess.Last(); jsonOf(t, doc) != jsonOf(t, res.Document) {
		t.Error("session not updated")
	}
	if _, err := a.Analyze(context.Background(), nil, planImage(t)); err != nil {
		t.Errorf("Analyze without session: %v", err)
	}
}

func TestRender(t *testing.T) {
	structured := result.Structured(floorplan.ShapeNested, floorplan.Mapping(floorplan.Member{Key: "name", Value: floorplan.String("R")}))
	want := MsgStructured + "\n```json\n{\n  \"name\": \"R\"\n}\n```"
	if got := Render(structured); got != want {
		t.Errorf("Render(structured) =\n%s\nwant\n%s", got, want)
	}

	raw := "not json"
	if got := Render(result.Unstructured(raw, nil)); got != raw {
		t.Errorf("Render(unstructured) = %q", got)
	}

	invalid := result.Invalid(`[{"id":"r1-1"}]`, []result.Error{{NodeID: "r1-1", Message: "rack is missing parentNode"}}, nil)
	got := Render(invalid)
	if !strings.HasPrefix(got, MsgInvalid+"\n- [r1-1] rack is missing parentNode\n") || !strings.HasSuffix(got, `[{"id":"r1-1"}]`) {
		t.Errorf("Render(invalid) =\n%s", got)
	}
}

func TestChunks(t *testing.T) {
	s := "Rack «A1» · cooling ✓ row 2"
	for _, size := range []int{1, 2, 3, 5, 100} {
		var parts []string
		for c := range Chunks(s, size) {
			if !utf8.ValidString(c) {
				t.Errorf("size %d: chunk %q splits a rune", size, c)
			}
			if len(c) > size && utf8.RuneCountInString(c) > 1 {
				t.Errorf("size %d: chunk %q too long", size, c)
			}
			parts = append(parts, c)
		}
		if strings.Join(parts, "") != s {
			t.Errorf("size %d: chunks do not rebuild the input", size)
		}
	}

	var n int
	for range Chunks("", 10) {
		n++
	}
	if n != 0 {
		t.Errorf("empty input yielded %d chunks", n)
	}
}

func TestEventKindString(t *testing.T) {
	want := []string{"prompt", "processing", "chunk", "done", "unknown"}
	for i, w := range want {
		if got := EventKind(i).String(); got != w {
			t.Errorf("EventKind(%d) = %q, want %q", i, got, w)
		}
	}
}
