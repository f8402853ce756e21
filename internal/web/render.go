package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/repository"
	"organizer/internal/service"
)

const (
	flashSuccess = "success"
	flashWarning = "warning"

	msgNotFound  = "The requested record does not exist."
	msgForbidden = "You are not allowed to do that."
)

var templateFuncs = template.FuncMap{
	// query returns "?" plus values with each key/value pair of kv replaced.
	"query": func(values url.Values, kv ...any) template.URL {
		out := url.Values{}
		for k, v := range values {
			out[k] = append([]string(nil), v...)
		}
		for i := 0; i+1 < len(kv); i += 2 {
			out.Set(fmt.Sprint(kv[i]), fmt.Sprint(kv[i+1]))
		}
		return template.URL("?" + out.Encode())
	},
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, errors.New("dict: odd number of arguments")
		}
		out := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
			}
			out[key] = kv[i+1]
		}
		return out, nil
	},
	"join": strings.Join,
	"idEq": func(selected *uint, id uint) bool {
		return selected != nil && *selected == id
	},
	"selected": func(raw string, id uint) bool {
		return raw == strconv.FormatUint(uint64(id), 10)
	},
}

func addFlash(c *gin.Context, kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, kind)
	_ = session.Save()
}

func takeFlashes(c *gin.Context) map[string][]string {
	session := sessions.Default(c)
	out := map[string][]string{}
	for _, kind := range []string{flashSuccess, flashWarning} {
		for _, f := range session.Flashes(kind) {
			if msg, ok := f.(string); ok {
				out[kind] = append(out[kind], msg)
			}
		}
	}
	if len(out) > 0 {
		_ = session.Save()
	}
	return out
}

// render executes a page template with the data every page needs.
func (s *Server) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["CurrentUser"] = currentUser(c)
	data["Flashes"] = takeFlashes(c)
	data["Query"] = c.Request.URL.Query()
	data["Path"] = c.Request.URL.Path
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = model.FieldErrors(nil)
	}
	c.HTML(status, name, data)
}

func (s *Server) redirect(c *gin.Context, kind, message, location string) {
	if message != "" {
		addFlash(c, kind, message)
	}
	c.Redirect(http.StatusFound, location)
}

// fail logs an unexpected error and answers 500.
func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	s.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"Title":   "Error",
		"Message": "Something went wrong. Please try again later.",
	})
	c.Abort()
}

func (s *Server) forbidden(c *gin.Context) {
	s.render(c, http.StatusForbidden, "error.html", gin.H{
		"Title":   "Forbidden",
		"Message": msgForbidden,
	})
	c.Abort()
}

// lookupFailed turns a failed id lookup into the warning redirect, or a 500 for other errors.
func (s *Server) lookupFailed(c *gin.Context, err error, index string) {
	if errors.Is(err, service.ErrNotFound) {
		s.redirect(c, flashWarning, msgNotFound, index)
		return
	}
	s.fail(c, err)
}

// pathID reads the :id parameter; malformed ids redirect to index with a warning.
func (s *Server) pathID(c *gin.Context, index string) (uint, bool) {
	id, ok := service.ParseID(c.Param("id"))
	if !ok {
		s.redirect(c, flashWarning, msgNotFound, index)
		return 0, false
	}
	return id, true
}

// pageRequest reads <prefix>page, <prefix>sort and <prefix>direction from the query string.
func (s *Server) pageRequest(c *gin.Context, prefix string) repository.PageRequest {
	number, _ := strconv.Atoi(c.Query(prefix + "page"))
	return repository.PageRequest{
		Number:    number,
		PerPage:   s.opts.PerPage,
		Sort:      c.Query(prefix + "sort"),
		Direction: c.Query(prefix + "direction"),
	}
}
