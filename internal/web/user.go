package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/service"
)

const msgEmailTaken = "This email is already registered."

func userPath(id uint) string { return fmt.Sprintf("/user/%d", id) }

type userForm struct {
	Email          string `form:"email"`
	Password       string `form:"password"`
	PasswordRepeat string `form:"password_repeat"`
	TelegramChatID string `form:"telegram_chat_id"`
}

func userFormFrom(u *model.User) userForm {
	form := userForm{Email: u.Email}
	if u.TelegramChatID != nil {
		form.TelegramChatID = strconv.FormatInt(*u.TelegramChatID, 10)
	}
	return form
}

// userHome is where users land after a refused or failed user lookup.
func userHome(c *gin.Context) string {
	if currentUser(c).IsAdmin() {
		return "/user"
	}
	return "/event"
}

func (s *Server) userIndex(c *gin.Context) {
	page, err := s.svc.Users.List(c.Request.Context(), s.pageRequest(c, ""))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "user_index.html", gin.H{"Title": "Users", "Page": page})
}

// loadManagedUser resolves :id to a user the current user may manage.
func (s *Server) loadManagedUser(c *gin.Context) (*model.User, bool) {
	id, ok := s.pathID(c, userHome(c))
	if !ok {
		return nil, false
	}
	user, err := s.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		s.lookupFailed(c, err, userHome(c))
		return nil, false
	}
	if !s.svc.Users.CanManage(currentUser(c), user) {
		s.redirect(c, flashWarning, msgForbidden, userHome(c))
		return nil, false
	}
	return user, true
}

func (s *Server) userShow(c *gin.Context) {
	user, ok := s.loadManagedUser(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "user_show.html", gin.H{"Title": user.Email, "User": user})
}

func (s *Server) userEditForm(c *gin.Context) {
	user, ok := s.loadManagedUser(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "user_edit.html", gin.H{"Title": "Edit " + user.Email, "User": user, "Form": userFormFrom(user)})
}

func (s *Server) userEdit(c *gin.Context) {
	user, ok := s.loadManagedUser(c)
	if !ok {
		return
	}
	var form userForm
	_ = c.ShouldBind(&form)

	var errs model.FieldErrors
	upd := service.UserUpdate{Email: form.Email, Password: form.Password}
	if form.Password != form.PasswordRepeat {
		errs.Add("password_repeat", "The password fields must match.")
	}
	if raw := strings.TrimSpace(form.TelegramChatID); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs.Add("telegram_chat_id", "This value is not a valid chat id.")
		} else {
			upd.TelegramChatID = &chatID
		}
	}

	if len(errs) == 0 {
		err := s.svc.Users.Update(c.Request.Context(), user, upd)
		if fe, isFieldErr := model.AsFieldErrors(err); isFieldErr {
			errs = fe
		} else if errors.Is(err, service.ErrEmailTaken) {
			errs.Add("email", msgEmailTaken)
		} else if err != nil {
			s.fail(c, err)
			return
		}
	}
	if len(errs) > 0 {
		form.Password, form.PasswordRepeat = "", ""
		s.render(c, http.StatusUnprocessableEntity, "user_edit.html", gin.H{
			"Title":  "Edit " + user.Email,
			"User":   user,
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	s.redirect(c, flashSuccess, "Profile updated.", userPath(user.ID))
}

func (s *Server) userDeleteForm(c *gin.Context) {
	user, ok := s.loadManagedUser(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":     "Delete " + user.Email,
		"Name":      user.Email,
		"Action":    fmt.Sprintf("/user/%d/delete", user.ID),
		"Back":      userPath(user.ID),
		"CanDelete": true,
		"Note":      "All contacts and events of this account will be deleted too.",
	})
}

// userDelete removes the account. Deleting your own account ends the session.
func (s *Server) userDelete(c *gin.Context) {
	user, ok := s.loadManagedUser(c)
	if !ok {
		return
	}
	actor := currentUser(c)
	if err := s.svc.Users.Delete(c.Request.Context(), actor, user); err != nil {
		s.fail(c, err)
		return
	}
	s.log.Info("user deleted", "user_id", user.ID, "actor_id", actor.ID)

	if actor.ID == user.ID {
		session := sessions.Default(c)
		session.Clear()
		_ = session.Save()
		s.redirect(c, flashSuccess, "Your account has been deleted.", "/login")
		return
	}
	s.redirect(c, flashSuccess, "User deleted.", "/user")
}
