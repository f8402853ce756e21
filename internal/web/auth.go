package web

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/service"
)

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (s *Server) loginForm(c *gin.Context) {
	if currentUser(c) != nil {
		c.Redirect(http.StatusFound, "/event")
		return
	}
	s.render(c, http.StatusOK, "login.html", gin.H{"Title": "Log in", "Form": loginForm{}})
}

func (s *Server) login(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)

	user, err := s.svc.Users.Authenticate(c.Request.Context(), form.Email, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		s.log.Info("login failed", "email", form.Email, "request_id", c.GetString(requestIDKey))
		form.Password = ""
		s.render(c, http.StatusUnauthorized, "login.html", gin.H{
			"Title":  "Log in",
			"Form":   form,
			"Errors": model.FieldErrors{{Field: "email", Message: "Invalid credentials."}},
		})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	s.startSession(c, user)
	s.redirect(c, flashSuccess, "Welcome back!", "/event")
}

func (s *Server) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/login")
}

func (s *Server) startSession(c *gin.Context, user *model.User) {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	_ = session.Save()
	c.Set(userKey, user)
}

type registerForm struct {
	Email          string `form:"email"`
	Password       string `form:"password"`
	PasswordRepeat string `form:"password_repeat"`
}

func (s *Server) registerForm(c *gin.Context) {
	s.render(c, http.StatusOK, "user_register.html", gin.H{"Title": "Create account", "Form": registerForm{}})
}

// register creates an account. Visitors are logged in as the new user; a logged in admin stays
// logged in and is sent to the new profile.
func (s *Server) register(c *gin.Context) {
	var form registerForm
	_ = c.ShouldBind(&form)

	if form.Password != form.PasswordRepeat {
		s.registerFailed(c, form, model.FieldErrors{{Field: "password_repeat", Message: "The password fields must match."}})
		return
	}

	user, err := s.svc.Users.Register(c.Request.Context(), form.Email, form.Password)
	if errs, ok := model.AsFieldErrors(err); ok {
		s.registerFailed(c, form, errs)
		return
	}
	if errors.Is(err, service.ErrEmailTaken) {
		s.registerFailed(c, form, model.FieldErrors{{Field: "email", Message: msgEmailTaken}})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	if currentUser(c).IsAdmin() {
		s.redirect(c, flashSuccess, "Account created.", userPath(user.ID))
		return
	}
	s.startSession(c, user)
	s.redirect(c, flashSuccess, "Account created. Welcome!", "/event")
}

func (s *Server) registerFailed(c *gin.Context, form registerForm, errs model.FieldErrors) {
	form.Password, form.PasswordRepeat = "", ""
	s.render(c, http.StatusUnprocessableEntity, "user_register.html", gin.H{
		"Title":  "Create account",
		"Form":   form,
		"Errors": errs,
	})
}
