package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/service"
)

type contactForm struct {
	CategoryID string `form:"category_id"`
	Name       string `form:"name"`
	Surname    string `form:"surname"`
	Email      string `form:"email"`
	Telephone  string `form:"telephone"`
	Birthdate  string `form:"birthdate"`
	Note       string `form:"note"`
}

func contactFormFrom(ct *model.Contact) contactForm {
	form := contactForm{
		Name:      ct.Name,
		Surname:   ct.Surname,
		Email:     ct.Email,
		Telephone: ct.Telephone,
		Note:      ct.Note,
	}
	if ct.CategoryID != nil {
		form.CategoryID = strconv.FormatUint(uint64(*ct.CategoryID), 10)
	}
	if ct.Birthdate != nil {
		form.Birthdate = ct.Birthdate.String()
	}
	return form
}

// apply copies the submitted values onto ct, reporting values that cannot be parsed.
func (f contactForm) apply(ct *model.Contact) model.FieldErrors {
	var errs model.FieldErrors
	ct.CategoryID = nil
	ct.Category = nil
	if id, ok := service.ParseID(f.CategoryID); ok {
		ct.CategoryID = &id
	}
	ct.Name = f.Name
	ct.Surname = f.Surname
	ct.Email = f.Email
	ct.Telephone = f.Telephone
	ct.Note = f.Note

	ct.Birthdate = nil
	if raw := strings.TrimSpace(f.Birthdate); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			errs.Add("birthdate", "This value is not a valid date.")
		} else {
			ct.Birthdate = &d
		}
	}
	return errs
}

func (s *Server) contactIndex(c *gin.Context) {
	page, err := s.svc.Contacts.List(c.Request.Context(), currentUser(c), s.pageRequest(c, ""))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "contact_index.html", gin.H{"Title": "Contacts", "Page": page})
}

func (s *Server) loadContact(c *gin.Context) (*model.Contact, bool) {
	id, ok := s.pathID(c, "/contact")
	if !ok {
		return nil, false
	}
	contact, err := s.svc.Contacts.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.lookupFailed(c, err, "/contact")
		return nil, false
	}
	return contact, true
}

func (s *Server) contactShow(c *gin.Context) {
	contact, ok := s.loadContact(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "contact_show.html", gin.H{"Title": contact.FullName(), "Contact": contact})
}

func (s *Server) contactCreateForm(c *gin.Context) {
	s.renderContactForm(c, http.StatusOK, "New contact", "/contact/create", "", contactForm{}, nil)
}

func (s *Server) contactCreate(c *gin.Context) {
	var form contactForm
	_ = c.ShouldBind(&form)
	s.saveContact(c, &model.Contact{}, form, "New contact", "/contact/create", "")
}

func (s *Server) contactEditForm(c *gin.Context) {
	contact, ok := s.loadContact(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/contact/%d/edit", contact.ID)
	s.renderContactForm(c, http.StatusOK, "Edit contact", action, http.MethodPut, contactFormFrom(contact), nil)
}

func (s *Server) contactEdit(c *gin.Context) {
	contact, ok := s.loadContact(c)
	if !ok {
		return
	}
	var form contactForm
	_ = c.ShouldBind(&form)
	s.saveContact(c, contact, form, "Edit contact", fmt.Sprintf("/contact/%d/edit", contact.ID), http.MethodPut)
}

func (s *Server) saveContact(c *gin.Context, contact *model.Contact, form contactForm, title, action, method string) {
	errs := form.apply(contact)
	if len(errs) == 0 {
		err := s.svc.Contacts.Save(c.Request.Context(), currentUser(c), contact)
		if fe, ok := model.AsFieldErrors(err); ok {
			errs = fe
		} else if err != nil {
			s.fail(c, err)
			return
		}
	}
	if len(errs) > 0 {
		s.renderContactForm(c, http.StatusUnprocessableEntity, title, action, method, form, errs)
		return
	}
	s.redirect(c, flashSuccess, "Contact saved.", fmt.Sprintf("/contact/%d", contact.ID))
}

func (s *Server) renderContactForm(c *gin.Context, status int, title, action, method string, form contactForm, errs model.FieldErrors) {
	categories, err := s.svc.Categories.All(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, status, "contact_form.html", gin.H{
		"Title":      title,
		"Action":     action,
		"Method":     method,
		"Form":       form,
		"Errors":     errs,
		"Categories": categories,
	})
}

func (s *Server) contactDeleteForm(c *gin.Context) {
	contact, ok := s.loadContact(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":     "Delete contact",
		"Name":      contact.FullName(),
		"Action":    fmt.Sprintf("/contact/%d/delete", contact.ID),
		"Back":      fmt.Sprintf("/contact/%d", contact.ID),
		"CanDelete": true,
	})
}

func (s *Server) contactDelete(c *gin.Context) {
	contact, ok := s.loadContact(c)
	if !ok {
		return
	}
	if err := s.svc.Contacts.Delete(c.Request.Context(), currentUser(c), contact); err != nil {
		s.fail(c, err)
		return
	}
	s.redirect(c, flashSuccess, "Contact deleted.", "/contact")
}
