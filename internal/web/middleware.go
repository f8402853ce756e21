package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"organizer/internal/model"
	"organizer/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	userKey         = "user"
	sessionUserID   = "user_id"
)

// requestLogger tags every request with an id and writes one access log line per request.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", id,
		)
	}
}

// methodOverride lets HTML forms send PUT and DELETE through a POST with a _method field.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			method := r.Header.Get("X-HTTP-Method-Override")
			if method == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				method = r.PostFormValue("_method")
			}
			switch strings.ToUpper(method) {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = strings.ToUpper(method)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.log.Error("panic", "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "panic", recovered)
	c.AbortWithStatus(http.StatusInternalServerError)
}

// loadUser resolves the session user, dropping sessions whose user no longer exists.
func (s *Server) loadUser(c *gin.Context) {
	session := sessions.Default(c)
	id, ok := session.Get(sessionUserID).(uint)
	if !ok {
		c.Next()
		return
	}

	user, err := s.svc.Users.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrNotFound):
		session.Delete(sessionUserID)
		_ = session.Save()
	case err != nil:
		s.fail(c, err)
		return
	default:
		c.Set(userKey, user)
	}
	c.Next()
}

func (s *Server) requireAuth(c *gin.Context) {
	if currentUser(c) == nil {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !currentUser(c).IsAdmin() {
		s.forbidden(c)
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
