package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/floorplan-layout/analyzer/internal/assistant"
	"github.com/floorplan-layout/analyzer/internal/attachment"
	"github.com/floorplan-layout/analyzer/internal/result"
	"github.com/floorplan-layout/analyzer/internal/session"
)

// streamEvent is one NDJSON line of a streamed turn.
type streamEvent struct {
	Event  string         `json:"event"`
	Text   string         `json:"text,omitempty"`
	Result *result.Result `json:"result,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) startSession(c fiber.Ctx) error {
	sess := s.sessions.Start()
	s.log.Info("session started", "session", sess.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (s *Server) endSession(c fiber.Ctx) error {
	id := c.Params("id")
	if !s.sessions.End(id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	s.log.Info("session ended", "session", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) lastLayout(c fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	shape, doc := sess.Last()
	if doc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no layout yet"})
	}
	return c.JSON(fiber.Map{"shape": shape, "document": doc})
}

// submitImage runs one turn on the multipart "image" field. The reply is
// streamed as NDJSON events unless the query has stream=false, in which case
// the final result is returned as one JSON body.
func (s *Server) submitImage(c fiber.Ctx) error {
	sess, ok := s.sessions.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
	}
	att, err := readAttachment(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if c.Query("stream") == "false" {
		return s.submitOnce(c, sess, att)
	}

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	return c.SendStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), TurnTimeout)
		defer cancel()

		enc := json.NewEncoder(w)
		for ev, err := range s.asst.OnImageSubmitted(ctx, sess, att) {
			line := streamEvent{Event: ev.Kind.String(), Text: ev.Text, Result: ev.Result}
			if err != nil {
				line = streamEvent{Event: "error", Error: err.Error()}
			}
			if err := enc.Encode(line); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				// client went away
				s.log.Info("stream closed", "session", sess.ID, "error", err)
				return
			}
		}
	})
}

func (s *Server) submitOnce(c fiber.Ctx, sess *session.Session, att *attachment.Attachment) error {
	res, err := s.asst.Analyze(c.Context(), sess, att)
	switch {
	case errors.Is(err, result.ErrNoAttachment):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "message": assistant.MsgNoAttachment})
	case errors.Is(err, result.ErrNotImage):
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{"error": err.Error(), "message": assistant.MsgNotImage})
	case err != nil:
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	status := fiber.StatusOK
	if !res.Success() {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{
		"message": assistant.Render(res),
		"result":  res,
	})
}

// readAttachment returns the uploaded image, or nil when none was sent.
func readAttachment(c fiber.Ctx) (*attachment.Attachment, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to open file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	mimeType := fh.Header.Get(fiber.HeaderContentType)
	if mimeType == fiber.MIMEOctetStream {
		// generic upload type; let Check sniff the bytes
		mimeType = ""
	}
	return &attachment.Attachment{Name: fh.Filename, MimeType: mimeType, Data: data}, nil
}
