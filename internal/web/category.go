package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/service"
)

type titleForm struct {
	Title string `form:"title"`
}

func (s *Server) categoryIndex(c *gin.Context) {
	page, err := s.svc.Categories.List(c.Request.Context(), s.pageRequest(c, ""))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "category_index.html", gin.H{"Title": "Categories", "Page": page})
}

func (s *Server) loadCategory(c *gin.Context) (*model.Category, bool) {
	id, ok := s.pathID(c, "/category")
	if !ok {
		return nil, false
	}
	category, err := s.svc.Categories.Get(c.Request.Context(), id)
	if err != nil {
		s.lookupFailed(c, err, "/category")
		return nil, false
	}
	return category, true
}

func (s *Server) categoryShow(c *gin.Context) {
	category, ok := s.loadCategory(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "category_show.html", gin.H{"Title": category.Title, "Category": category})
}

func (s *Server) categoryCreateForm(c *gin.Context) {
	s.renderCategoryForm(c, http.StatusOK, "New category", "/category/create", "", titleForm{}, nil)
}

func (s *Server) categoryCreate(c *gin.Context) {
	var form titleForm
	_ = c.ShouldBind(&form)

	category := &model.Category{Title: form.Title}
	if err := s.svc.Categories.Save(c.Request.Context(), category); err != nil {
		if errs, ok := model.AsFieldErrors(err); ok {
			s.renderCategoryForm(c, http.StatusUnprocessableEntity, "New category", "/category/create", "", form, errs)
			return
		}
		s.fail(c, err)
		return
	}
	s.redirect(c, flashSuccess, "Category created.", fmt.Sprintf("/category/%d", category.ID))
}

func (s *Server) categoryEditForm(c *gin.Context) {
	category, ok := s.loadCategory(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/category/%d/edit", category.ID)
	s.renderCategoryForm(c, http.StatusOK, "Edit category", action, http.MethodPut, titleForm{Title: category.Title}, nil)
}

func (s *Server) categoryEdit(c *gin.Context) {
	category, ok := s.loadCategory(c)
	if !ok {
		return
	}
	var form titleForm
	_ = c.ShouldBind(&form)

	category.Title = form.Title
	if err := s.svc.Categories.Save(c.Request.Context(), category); err != nil {
		if errs, ok := model.AsFieldErrors(err); ok {
			action := fmt.Sprintf("/category/%d/edit", category.ID)
			s.renderCategoryForm(c, http.StatusUnprocessableEntity, "Edit category", action, http.MethodPut, form, errs)
			return
		}
		s.fail(c, err)
		return
	}
	s.redirect(c, flashSuccess, "Category updated.", fmt.Sprintf("/category/%d", category.ID))
}

func (s *Server) renderCategoryForm(c *gin.Context, status int, title, action, method string, form titleForm, errs model.FieldErrors) {
	s.render(c, status, "title_form.html", gin.H{
		"Title":  title,
		"Action": action,
		"Method": method,
		"Back":   "/category",
		"Form":   form,
		"Errors": errs,
	})
}

func (s *Server) categoryDeleteForm(c *gin.Context) {
	category, ok := s.loadCategory(c)
	if !ok {
		return
	}
	canDelete, err := s.svc.Categories.CanBeDeleted(c.Request.Context(), category)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":     "Delete category",
		"Name":      category.Title,
		"Action":    fmt.Sprintf("/category/%d/delete", category.ID),
		"Back":      "/category",
		"CanDelete": canDelete,
		"Warning":   msgCategoryInUse,
	})
}

const msgCategoryInUse = "This category is used by contacts or events and cannot be deleted."

func (s *Server) categoryDelete(c *gin.Context) {
	category, ok := s.loadCategory(c)
	if !ok {
		return
	}
	err := s.svc.Categories.Delete(c.Request.Context(), category)
	switch {
	case errors.Is(err, service.ErrCategoryInUse):
		s.redirect(c, flashWarning, msgCategoryInUse, "/category")
	case err != nil:
		s.fail(c, err)
	default:
		s.redirect(c, flashSuccess, "Category deleted.", "/category")
	}
}
