package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"testing"

	"github.com/floorplan-layout/analyzer/internal/assistant"
	"github.com/floorplan-layout/analyzer/internal/config"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

func testApp(model vision.ModelFunc) *app {
	return &app{cfg: config.Default(), model: model, log: slog.New(slog.DiscardHandler)}
}

func pngBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func invoke(t *testing.T, a *app, ev LambdaEvent) LambdaResponse {
	t.Helper()
	resp, err := a.handler(context.Background(), ev)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	var out LambdaResponse
	if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
		t.Fatalf("body %s: %v", resp.Body, err)
	}
	if out.StatusCode != resp.StatusCode {
		t.Errorf("body status %d != response status %d", out.StatusCode, resp.StatusCode)
	}
	return out
}

func TestHandler(t *testing.T) {
	const flat = `[{"id":"r1","label":"Row 1","position":{"x":0,"y":0},"height":81,"width":110,"connectable":false,"selectable":false,"class":"row"},` +
		`{"id":"r1-1","label":"AC-1","position":{"x":10,"y":20},"width":90,"height":60,"parentNode":"r1","connectable":false,"selectable":false,"class":"rack","type":"REF"}]`

	var gotSystem string
	a := testApp(func(ctx context.Context, req vision.Request) (string, error) {
		gotSystem = req.SystemPrompt
		return flat, nil
	})
	out := invoke(t, a, LambdaEvent{Body: pngBase64(t), IsBase64: true, Shape: "flat"})

	if out.StatusCode != 200 || !out.Success || out.Kind != "structured" {
		t.Fatalf("response = %+v", out)
	}
	if gotSystem != vision.PromptsFor("flat").System {
		t.Error("flat prompt not used")
	}
	// height 81 is repaired to 90
	if h, _ := out.Document.Items[0].Get("height").Int(); h != 90 {
		t.Errorf("row height = %d, want 90", h)
	}
	if len(out.Warnings) != 1 || out.Warnings[0].Type != "geometry_repaired" {
		t.Errorf("warnings = %+v", out.Warnings)
	}
}

func TestHandlerErrors(t *testing.T) {
	ok := testApp(func(ctx context.Context, req vision.Request) (string, error) { return "{}", nil })
	failing := testApp(func(ctx context.Context, req vision.Request) (string, error) {
		return "", errors.New("timeout")
	})
	garbled := testApp(func(ctx context.Context, req vision.Request) (string, error) { return "sorry", nil })

	tests := []struct {
		name    string
		app     *app
		event   LambdaEvent
		status  int
		message string
	}{
		{"empty body", ok, LambdaEvent{}, 400, assistant.MsgNoAttachment},
		{"bad base64", ok, LambdaEvent{Body: "%%%", IsBase64: true}, 400, ""},
		{"bad shape", ok, LambdaEvent{Body: pngBase64(t), IsBase64: true, Shape: "tree"}, 400, ""},
		{"not an image", ok, LambdaEvent{Body: "hello", Headers: map[string]string{"content-type": "text/plain"}}, 415, assistant.MsgNotImage},
		{"model failure", failing, LambdaEvent{Body: pngBase64(t), IsBase64: true}, 502, ""},
		{"not json", garbled, LambdaEvent{Body: pngBase64(t), IsBase64: true}, 422, "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := invoke(t, tt.app, tt.event)
			if out.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%+v)", out.StatusCode, tt.status, out)
			}
			if tt.message != "" && out.Message != tt.message {
				t.Errorf("message = %q, want %q", out.Message, tt.message)
			}
			if out.Success {
				t.Error("reported success")
			}
		})
	}
}
