package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"

	"github.com/danmuck/liveurl/internal/nav"
	"github.com/danmuck/liveurl/internal/protocol"
	"github.com/danmuck/liveurl/internal/session"
)

func (s *Service) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": s.cfg.Name,
			"version": "0.1.0",
		})
	})

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/v1")
	v1.POST("/sessions", s.handleCreateSession)
	v1.GET("/sessions", s.handleListSessions)
	v1.GET("/sessions/:id", s.handleGetSession)
	v1.GET("/sessions/:id/instructions", s.handleGetInstructions)
	v1.POST("/sessions/:id/navigation", s.handleNavigation)
	v1.POST("/sessions/:id/navigation.frame", s.handleNavigationFrame)
	v1.DELETE("/sessions/:id", s.handleDeleteSession)
}

func sessionBody(sess *session.Session) gin.H {
	u := sess.URL()
	return gin.H{
		"id": sess.ID(),
		"url": gin.H{
			"relative": u.RelativeTarget(),
			"absolute": u.AbsoluteTarget(),
		},
	}
}

// handleCreateSession starts a session. Body: {"id": optional,
// "url": optional absolute URL, defaults to the configured endpoint
// root}.
func (s *Service) handleCreateSession(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if len(body) > 0 && !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	initial := s.base
	if raw := gjson.GetBytes(body, "url"); raw.Exists() {
		initial, err = nav.ParseURL(raw.String())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sess, err := s.manager.Create(gjson.GetBytes(body, "id").String(), initial)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrSessionExists) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	s.log.Info().Str("session_id", sess.ID()).Msg("session created")
	c.JSON(http.StatusCreated, sessionBody(sess))
}

func (s *Service) handleListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.manager.List()})
}

func (s *Service) handleGetSession(c *gin.Context) {
	sess, err := s.manager.Session(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessionBody(sess))
}

func (s *Service) handleGetInstructions(c *gin.Context) {
	instructions, err := s.manager.Instructions(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instructions": instructions})
}

func (s *Service) handleDeleteSession(c *gin.Context) {
	if err := s.manager.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// handleNavigation accepts a resolved navigation request: {"kind":
// "patch"|"navigate"|"redirect", "target": "/path?query",
// "replace": bool, "external": bool}. Internal targets are re-resolved
// against the session's URL at delivery time.
func (s *Service) handleNavigation(c *gin.Context) {
	sess, err := s.manager.Session(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req := protocol.Request{
		SessionID: sess.ID(),
		Target:    gjson.GetBytes(body, "target").String(),
		Replace:   gjson.GetBytes(body, "replace").Bool(),
		External:  gjson.GetBytes(body, "external").Bool(),
	}
	switch gjson.GetBytes(body, "kind").String() {
	case "patch":
		req.Kind = protocol.MsgPatch
	case "navigate":
		req.Kind = protocol.MsgNavigate
	case "redirect":
		req.Kind = protocol.MsgRedirect
	}

	if err := s.applyRequest(sess, req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "enqueued"})
}

// handleNavigationFrame is the binary form of handleNavigation: one
// request frame in, one ack frame out.
func (s *Service) handleNavigationFrame(c *gin.Context) {
	id := c.Param("id")
	frame, err := protocol.ReadFrame(c.Request.Body, protocol.DefaultLimits())
	if err != nil {
		writeAck(c, frame.Header.MessageID, protocol.Ack{
			SessionID: id, Status: protocol.StatusError, Code: 400, Message: err.Error(),
		})
		return
	}
	req, err := protocol.DecodeRequest(frame)
	if err != nil {
		writeAck(c, frame.Header.MessageID, protocol.Ack{
			SessionID: id, Status: protocol.StatusError, Code: 400, Message: err.Error(),
		})
		return
	}
	if req.SessionID != id {
		writeAck(c, frame.Header.MessageID, protocol.Ack{
			SessionID: id, Status: protocol.StatusError, Code: 400, Message: "session id mismatch",
		})
		return
	}

	sess, err := s.manager.Session(id)
	if err != nil {
		writeAck(c, frame.Header.MessageID, protocol.Ack{
			SessionID: id, Status: protocol.StatusError, Code: 404, Message: err.Error(),
		})
		return
	}
	if err := s.applyRequest(sess, req); err != nil {
		writeAck(c, frame.Header.MessageID, protocol.Ack{
			SessionID: id, Status: protocol.StatusError, Code: 400, Message: err.Error(),
		})
		return
	}
	writeAck(c, frame.Header.MessageID, protocol.Ack{SessionID: id, Status: protocol.StatusOK})
}

func writeAck(c *gin.Context, messageID uint64, ack protocol.Ack) {
	frame, err := protocol.EncodeAck(messageID, ack)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_ = protocol.WriteFrame(c.Writer, frame, protocol.DefaultLimits())
}

// applyRequest translates a resolved wire request into a deferred
// navigation request on the session's mailbox.
func (s *Service) applyRequest(sess *session.Session, req protocol.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	switch req.Kind {
	case protocol.MsgPatch, protocol.MsgNavigate:
		update, err := resolvedUpdate(req.Target)
		if err != nil {
			return err
		}
		if req.Kind == protocol.MsgPatch {
			_, err = session.SendPatch(sess.Handle(), req.Replace, update)
		} else {
			_, err = session.SendNavigate(sess.Handle(), req.Replace, update)
		}
		return err
	case protocol.MsgRedirect:
		if req.External {
			// shape-check up front so the caller gets a 400 instead of a
			// silently dropped request
			if _, err := nav.RedirectExternal(req.Target); err != nil {
				return err
			}
			target := req.Target
			_, err := session.SendRedirect(sess.Handle(), func(nav.URL) session.Redirect {
				return session.External(target)
			})
			return err
		}
		update, err := resolvedUpdate(req.Target)
		if err != nil {
			return err
		}
		_, err = session.SendRedirect(sess.Handle(), func(u nav.URL) session.Redirect {
			return session.Internal(update(u))
		})
		return err
	default:
		return protocol.ErrUnknownMessageType
	}
}

// resolvedUpdate turns a relative target into a build function that
// grafts the target's path and params onto the delivery-time URL.
func resolvedUpdate(target string) (session.UpdateFunc, error) {
	rawPath, rawQuery, _ := strings.Cut(target, "?")
	path, err := nav.ParsePath(rawPath)
	if err != nil {
		return nil, err
	}
	params := nav.DecodeParams(rawQuery)
	return func(u nav.URL) nav.URL {
		return u.WithPath(path).WithParams(params)
	}, nil
}
