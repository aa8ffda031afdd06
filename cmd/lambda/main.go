package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/floorplan-layout/analyzer/internal/assistant"
	"github.com/floorplan-layout/analyzer/internal/attachment"
	"github.com/floorplan-layout/analyzer/internal/config"
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	_ "github.com/floorplan-layout/analyzer/internal/handler" // register element handlers
	"github.com/floorplan-layout/analyzer/internal/logger"
	"github.com/floorplan-layout/analyzer/internal/normalize"
	"github.com/floorplan-layout/analyzer/internal/result"
	"github.com/floorplan-layout/analyzer/internal/vision"
)

// LambdaEvent is the invocation payload (e.g. from API Gateway).
type LambdaEvent struct {
	Body     string            `json:"body"` // image bytes, base64 when isBase64Encoded
	IsBase64 bool              `json:"isBase64Encoded,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Shape    string            `json:"shape,omitempty"`
}

// LambdaResponse is returned to the client (API Gateway).
type LambdaResponse struct {
	StatusCode int              `json:"statusCode"`
	Success    bool             `json:"success"`
	Kind       string           `json:"kind,omitempty"`
	Message    string           `json:"message,omitempty"`
	Document   *floorplan.Node  `json:"document,omitempty"`
	Text       string           `json:"text,omitempty"`
	Errors     []result.Error   `json:"errors,omitempty"`
	Warnings   []result.Warning `json:"warnings,omitempty"`
}

// APIGatewayResponse is the shape expected by API Gateway proxy integration (body = JSON string).
type APIGatewayResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       string            `json:"body"`
}

type app struct {
	cfg   config.Config
	model vision.Model
	log   *slog.Logger
}

func (a *app) handler(ctx context.Context, event LambdaEvent) (APIGatewayResponse, error) {
	out := LambdaResponse{StatusCode: 200}

	body := []byte(event.Body)
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			out.StatusCode = 400
			out.Errors = []result.Error{{Type: "invalid_input", Severity: "error", Message: "invalid base64 body: " + err.Error()}}
			return wrap(out), nil
		}
		body = dec
	}

	cfg := a.cfg
	if event.Shape != "" {
		s, err := floorplan.ParseShape(event.Shape)
		if err != nil {
			out.StatusCode = 400
			out.Errors = []result.Error{{Type: "invalid_input", Severity: "error", Message: err.Error()}}
			return wrap(out), nil
		}
		cfg.Shape = s
	}

	att := &attachment.Attachment{Name: "upload", MimeType: contentType(event.Headers), Data: body}
	norm := normalize.New(cfg.NormalizeOptions()).WithLogger(a.log)
	asst := assistant.New(a.model, norm, cfg.AssistantOptions()).WithLogger(a.log)

	res, err := asst.Analyze(ctx, nil, att)
	switch {
	case errors.Is(err, result.ErrNoAttachment):
		out.StatusCode = 400
		out.Message = assistant.MsgNoAttachment
		return wrap(out), nil
	case errors.Is(err, result.ErrNotImage):
		out.StatusCode = 415
		out.Message = assistant.MsgNotImage
		return wrap(out), nil
	case err != nil:
		out.StatusCode = 502
		out.Errors = []result.Error{{Type: "model_error", Severity: "error", Message: err.Error()}}
		return wrap(out), nil
	}

	out.Success = res.Success()
	out.Kind = res.Kind.String()
	out.Document = res.Document
	out.Errors = res.Errors
	out.Warnings = res.Warnings
	out.Message = assistant.Render(res)
	if !res.Success() {
		out.Text = res.Text
		out.StatusCode = 422
	}
	return wrap(out), nil
}

func contentType(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "content-type") {
			return v
		}
	}
	return ""
}

func wrap(out LambdaResponse) APIGatewayResponse {
	bodyBytes, _ := json.Marshal(out)
	return APIGatewayResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}

func main() {
	cfg, err := config.Load(os.Getenv("FLOORPLAN_CONFIG"))
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(level)
	model, err := vision.NewModel(cfg.Model, log)
	if err != nil {
		log.Error("creating vision model", "error", err)
		os.Exit(1)
	}
	a := &app{cfg: cfg, model: model, log: log}
	lambda.Start(a.handler)
}
