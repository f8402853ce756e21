package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/service"
)

const msgTagInUse = "This tag is attached to events and cannot be deleted."

func (s *Server) tagIndex(c *gin.Context) {
	page, err := s.svc.Tags.List(c.Request.Context(), s.pageRequest(c, ""))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "tag_index.html", gin.H{"Title": "Tags", "Page": page})
}

func (s *Server) loadTag(c *gin.Context) (*model.Tag, bool) {
	id, ok := s.pathID(c, "/tag")
	if !ok {
		return nil, false
	}
	tag, err := s.svc.Tags.Get(c.Request.Context(), id)
	if err != nil {
		s.lookupFailed(c, err, "/tag")
		return nil, false
	}
	return tag, true
}

func (s *Server) tagShow(c *gin.Context) {
	tag, ok := s.loadTag(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "tag_show.html", gin.H{"Title": tag.Title, "Tag": tag})
}

func (s *Server) tagCreateForm(c *gin.Context) {
	s.renderTagForm(c, http.StatusOK, "New tag", "/tag/create", "", titleForm{}, nil)
}

func (s *Server) tagCreate(c *gin.Context) {
	var form titleForm
	_ = c.ShouldBind(&form)

	tag := &model.Tag{Title: form.Title}
	if err := s.svc.Tags.Save(c.Request.Context(), tag); err != nil {
		if errs, ok := model.AsFieldErrors(err); ok {
			s.renderTagForm(c, http.StatusUnprocessableEntity, "New tag", "/tag/create", "", form, errs)
			return
		}
		s.fail(c, err)
		return
	}
	s.redirect(c, flashSuccess, "Tag created.", fmt.Sprintf("/tag/%d", tag.ID))
}

func (s *Server) tagEditForm(c *gin.Context) {
	tag, ok := s.loadTag(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/tag/%d/edit", tag.ID)
	s.renderTagForm(c, http.StatusOK, "Edit tag", action, http.MethodPut, titleForm{Title: tag.Title}, nil)
}

func (s *Server) tagEdit(c *gin.Context) {
	tag, ok := s.loadTag(c)
	if !ok {
		return
	}
	var form titleForm
	_ = c.ShouldBind(&form)

	tag.Title = form.Title
	if err := s.svc.Tags.Save(c.Request.Context(), tag); err != nil {
		if errs, ok := model.AsFieldErrors(err); ok {
			action := fmt.Sprintf("/tag/%d/edit", tag.ID)
			s.renderTagForm(c, http.StatusUnprocessableEntity, "Edit tag", action, http.MethodPut, form, errs)
			return
		}
		s.fail(c, err)
		return
	}
	s.redirect(c, flashSuccess, "Tag updated.", fmt.Sprintf("/tag/%d", tag.ID))
}

func (s *Server) renderTagForm(c *gin.Context, status int, title, action, method string, form titleForm, errs model.FieldErrors) {
	s.render(c, status, "title_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Method": method,
		"Back":   "/tag",
		"Form":   form,
		"Errors": errs,
	})
}

func (s *Server) tagDeleteForm(c *gin.Context) {
	tag, ok := s.loadTag(c)
	if !ok {
		return
	}
	canDelete, err := s.svc.Tags.CanBeDeleted(c.Request.Context(), tag)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":     "Delete tag",
		"Name":      tag.Title,
		"Action":    fmt.Sprintf("/tag/%d/delete", tag.ID),
		"Back":      "/tag",
		"CanDelete": canDelete,
		"Warning":   msgTagInUse,
	})
}

func (s *Server) tagDelete(c *gin.Context) {
	tag, ok := s.loadTag(c)
	if !ok {
		return
	}
	err := s.svc.Tags.Delete(c.Request.Context(), tag)
	switch {
	case errors.Is(err, service.ErrTagInUse):
		s.redirect(c, flashWarning, msgTagInUse, "/tag")
	case err != nil:
		s.fail(c, err)
	default:
		s.redirect(c, flashSuccess, "Tag deleted.", "/tag")
	}
}
