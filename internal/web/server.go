package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"organizer/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionName = "organizer_session"

// Services bundles what the HTTP layer calls into.
type Services struct {
	Users      *service.UserService
	Categories *service.CategoryService
	Tags       *service.TagService
	Contacts   *service.ContactService
	Events     *service.EventService
}

type Options struct {
	SessionSecret string
	SecureCookies bool
	Location      *time.Location
	PerPage       int
	Logger        *slog.Logger
	// Health is probed by GET /health when set.
	Health func(context.Context) error
	Now    func() time.Time
}

// Server is the organizer web frontend.
type Server struct {
	svc    Services
	opts   Options
	log    *slog.Logger
	engine *gin.Engine
}

func New(svc Services, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PerPage <= 0 {
		opts.PerPage = 10
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		svc:  svc,
		opts: opts,
		log:  opts.Logger.With("component", "http"),
	}

	engine := gin.New()
	engine.Use(requestLogger(s.log), gin.CustomRecovery(s.recover))
	engine.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
	))

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(sessionName, store))

	s.engine = engine
	s.routes()
	return s
}

// Handler returns the HTTP handler, including method override for HTML forms.
func (s *Server) Handler() http.Handler {
	return methodOverride(s.engine)
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/health", s.health)

	r.Use(s.loadUser)

	r.GET("/login", s.loginForm)
	r.POST("/login", s.login)
	r.POST("/logout", s.logout)
	r.GET("/user/create", s.registerForm)
	r.POST("/user/create", s.register)

	auth := r.Group("/", s.requireAuth)
	auth.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/event") })

	contact := auth.Group("/contact")
	contact.GET("", s.contactIndex)
	contact.GET("/create", s.contactCreateForm)
	contact.POST("/create", s.contactCreate)
	contact.GET("/:id", s.contactShow)
	contact.GET("/:id/edit", s.contactEditForm)
	contact.PUT("/:id/edit", s.contactEdit)
	contact.GET("/:id/delete", s.contactDeleteForm)
	contact.DELETE("/:id/delete", s.contactDelete)

	event := auth.Group("/event")
	event.GET("", s.eventIndex)
	event.GET("/list", s.eventList)
	event.GET("/export.ics", s.eventExport)
	event.GET("/create", s.eventCreateForm)
	event.POST("/create", s.eventCreate)
	event.GET("/:id", s.eventShow)
	event.GET("/:id/edit", s.eventEditForm)
	event.PUT("/:id/edit", s.eventEdit)
	event.GET("/:id/delete", s.eventDeleteForm)
	event.DELETE("/:id/delete", s.eventDelete)

	tag := auth.Group("/tag")
	tag.GET("", s.tagIndex)
	tag.GET("/create", s.tagCreateForm)
	tag.POST("/create", s.tagCreate)
	tag.GET("/:id", s.tagShow)
	tag.GET("/:id/edit", s.tagEditForm)
	tag.PUT("/:id/edit", s.tagEdit)
	tag.GET("/:id/delete", s.tagDeleteForm)
	tag.DELETE("/:id/delete", s.tagDelete)

	category := auth.Group("/category")
	category.GET("", s.categoryIndex)
	category.GET("/:id", s.categoryShow)
	admin := category.Group("", s.requireAdmin)
	admin.GET("/create", s.categoryCreateForm)
	admin.POST("/create", s.categoryCreate)
	admin.GET("/:id/edit", s.categoryEditForm)
	admin.PUT("/:id/edit", s.categoryEdit)
	admin.GET("/:id/delete", s.categoryDeleteForm)
	admin.DELETE("/:id/delete", s.categoryDelete)

	user := auth.Group("/user")
	user.GET("", s.requireAdmin, s.userIndex)
	user.GET("/:id", s.userShow)
	user.GET("/:id/edit", s.userEditForm)
	user.PUT("/:id/edit", s.userEdit)
	user.GET("/:id/delete", s.userDeleteForm)
	user.DELETE("/:id/delete", s.userDelete)
}

func (s *Server) health(c *gin.Context) {
	if s.opts.Health != nil {
		if err := s.opts.Health(c.Request.Context()); err != nil {
			s.log.Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// now returns the current time in the configured timezone.
func (s *Server) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}
