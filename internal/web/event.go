package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"organizer/internal/model"
	"organizer/internal/repository"
	"organizer/internal/service"
)

type eventForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
	CategoryID  string `form:"category_id"`
	DateFrom    string `form:"date_from"`
	TimeFrom    string `form:"time_from"`
	DateTo      string `form:"date_to"`
	TimeTo      string `form:"time_to"`
	Tags        string `form:"tags"`
}

func eventFormFrom(e *model.Event) eventForm {
	form := eventForm{
		Title:       e.Title,
		Description: e.Description,
		DateFrom:    e.DateFrom.String(),
		TimeFrom:    e.TimeFrom.String(),
		DateTo:      e.DateTo.String(),
		TimeTo:      e.TimeTo.String(),
		Tags:        strings.Join(e.TagTitles(), ", "),
	}
	if e.CategoryID != nil {
		form.CategoryID = strconv.FormatUint(uint64(*e.CategoryID), 10)
	}
	return form
}

// apply copies the submitted values onto e. Dates and times that do not parse are reported
// and left zero.
func (f eventForm) apply(e *model.Event) model.FieldErrors {
	var errs model.FieldErrors
	e.Title = f.Title
	e.Description = f.Description
	e.CategoryID = nil
	e.Category = nil
	if id, ok := service.ParseID(f.CategoryID); ok {
		e.CategoryID = &id
	}

	e.DateFrom, e.DateTo = model.Date{}, model.Date{}
	e.TimeFrom, e.TimeTo = model.Clock{}, model.Clock{}
	for _, d := range []struct {
		field string
		raw   string
		into  *model.Date
	}{{"date_from", f.DateFrom, &e.DateFrom}, {"date_to", f.DateTo, &e.DateTo}} {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		parsed, err := model.ParseDate(d.raw)
		if err != nil {
			errs.Add(d.field, "This value is not a valid date.")
			continue
		}
		*d.into = parsed
	}
	for _, t := range []struct {
		field string
		raw   string
		into  *model.Clock
	}{{"time_from", f.TimeFrom, &e.TimeFrom}, {"time_to", f.TimeTo, &e.TimeTo}} {
		if strings.TrimSpace(t.raw) == "" {
			continue
		}
		parsed, err := model.ParseClock(t.raw)
		if err != nil {
			errs.Add(t.field, "This value is not a valid time.")
			continue
		}
		*t.into = parsed
	}
	return errs
}

// referenceDate reads ?date=YYYY-MM-DD, falling back to today.
func (s *Server) referenceDate(c *gin.Context) model.Date {
	if raw := c.Query("date"); raw != "" {
		if d, err := model.ParseDate(raw); err == nil {
			return d
		}
	}
	return model.DateOf(s.now())
}

func (s *Server) eventFilter(c *gin.Context) (repository.EventFilter, bool) {
	filter, err := s.svc.Events.ParseFilters(c.Request.Context(), c.Query("filters_category_id"), c.Query("filters_tag_id"))
	if err != nil {
		s.fail(c, err)
		return filter, false
	}
	return filter, true
}

// filterChoices loads the options of the category and tag filters.
func (s *Server) filterChoices(c *gin.Context, data gin.H) bool {
	ctx := c.Request.Context()
	categories, err := s.svc.Categories.All(ctx)
	if err != nil {
		s.fail(c, err)
		return false
	}
	tags, err := s.svc.Tags.All(ctx)
	if err != nil {
		s.fail(c, err)
		return false
	}
	data["Categories"] = categories
	data["Tags"] = tags
	return true
}

// eventIndex shows the events active on the reference date and those starting after it, each
// table paginated on its own.
func (s *Server) eventIndex(c *gin.Context) {
	filter, ok := s.eventFilter(c)
	if !ok {
		return
	}
	availability, err := s.svc.Events.Availability(c.Request.Context(), currentUser(c), service.AvailabilityParams{
		Date:     s.referenceDate(c),
		Filter:   filter,
		Active:   s.pageRequest(c, ""),
		Upcoming: s.pageRequest(c, "upcoming_"),
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	data := gin.H{"Title": "Events", "Availability": availability, "Filter": filter}
	if !s.filterChoices(c, data) {
		return
	}
	s.render(c, http.StatusOK, "event_index.html", data)
}

func (s *Server) eventList(c *gin.Context) {
	filter, ok := s.eventFilter(c)
	if !ok {
		return
	}
	page, err := s.svc.Events.List(c.Request.Context(), currentUser(c), filter, s.pageRequest(c, ""))
	if err != nil {
		s.fail(c, err)
		return
	}

	data := gin.H{"Title": "All events", "Page": page, "Filter": filter}
	if !s.filterChoices(c, data) {
		return
	}
	s.render(c, http.StatusOK, "event_list.html", data)
}

func (s *Server) eventExport(c *gin.Context) {
	filter, ok := s.eventFilter(c)
	if !ok {
		return
	}
	feed, err := s.svc.Events.Export(c.Request.Context(), currentUser(c), filter, s.opts.Location, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (s *Server) loadEvent(c *gin.Context) (*model.Event, bool) {
	id, ok := s.pathID(c, "/event")
	if !ok {
		return nil, false
	}
	event, err := s.svc.Events.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		s.lookupFailed(c, err, "/event")
		return nil, false
	}
	return event, true
}

func (s *Server) eventShow(c *gin.Context) {
	event, ok := s.loadEvent(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "event_show.html", gin.H{"Title": event.Title, "Event": event})
}

func (s *Server) eventCreateForm(c *gin.Context) {
	today := model.DateOf(s.now()).String()
	form := eventForm{DateFrom: today, DateTo: today}
	s.renderEventForm(c, http.StatusOK, "New event", "/event/create", "", form, nil)
}

func (s *Server) eventCreate(c *gin.Context) {
	var form eventForm
	_ = c.ShouldBind(&form)
	s.saveEvent(c, &model.Event{}, form, "New event", "/event/create", "")
}

func (s *Server) eventEditForm(c *gin.Context) {
	event, ok := s.loadEvent(c)
	if !ok {
		return
	}
	action := fmt.Sprintf("/event/%d/edit", event.ID)
	s.renderEventForm(c, http.StatusOK, "Edit event", action, http.MethodPut, eventFormFrom(event), nil)
}

func (s *Server) eventEdit(c *gin.Context) {
	event, ok := s.loadEvent(c)
	if !ok {
		return
	}
	var form eventForm
	_ = c.ShouldBind(&form)
	s.saveEvent(c, event, form, "Edit event", fmt.Sprintf("/event/%d/edit", event.ID), http.MethodPut)
}

func (s *Server) saveEvent(c *gin.Context, event *model.Event, form eventForm, title, action, method string) {
	errs := form.apply(event)
	if len(errs) == 0 {
		err := s.svc.Events.Save(c.Request.Context(), currentUser(c), event, form.Tags)
		if fe, ok := model.AsFieldErrors(err); ok {
			errs = fe
		} else if err != nil {
			s.fail(c, err)
			return
		}
	}
	if len(errs) > 0 {
		s.renderEventForm(c, http.StatusUnprocessableEntity, title, action, method, form, errs)
		return
	}
	s.redirect(c, flashSuccess, "Event saved.", fmt.Sprintf("/event/%d", event.ID))
}

func (s *Server) renderEventForm(c *gin.Context, status int, title, action, method string, form eventForm, errs model.FieldErrors) {
	categories, err := s.svc.Categories.All(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, status, "event_form.html", gin.H{
		"Title":      title,
		"Action":     action,
		"Method":     method,
		"Form":       form,
		"Errors":     errs,
		"Categories": categories,
	})
}

func (s *Server) eventDeleteForm(c *gin.Context) {
	event, ok := s.loadEvent(c)
	if !ok {
		return
	}
	s.render(c, http.StatusOK, "confirm_delete.html", gin.H{
		"Title":     "Delete event",
		"Name":      event.Title,
		"Action":    fmt.Sprintf("/event/%d/delete", event.ID),
		"Back":      fmt.Sprintf("/event/%d", event.ID),
		"CanDelete": true,
	})
}

func (s *Server) eventDelete(c *gin.Context) {
	event, ok := s.loadEvent(c)
	if !ok {
		return
	}
	if err := s.svc.Events.Delete(c.Request.Context(), currentUser(c), event); err != nil {
		s.fail(c, err)
		return
	}
	s.redirect(c, flashSuccess, "Event deleted.", "/event")
}
