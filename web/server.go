// Package web serves the chat as a single-page web application.
//
// Each browser gets its own session, keyed by a random cookie and held
// in a chat.Registry. Every action is a plain form POST followed by a
// redirect back to the page, which re-renders the current thread.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/DachengChen/progression/applog"
	"github.com/DachengChen/progression/chat"
	"github.com/DachengChen/progression/render"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"golang.org/x/sync/errgroup"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "progression_session"

const inputPlaceholder = "Ask about patient progression, treatments, or prognosis..."

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Server routes browser requests to per-session controllers.
type Server struct {
	echo     *echo.Echo
	registry *chat.Registry
	html     *render.HTML
	provider string
}

// NewServer wires the routes. provider is shown under the page heading.
func NewServer(registry *chat.Registry, provider string) *Server {
	s := &Server{
		echo:     echo.New(),
		registry: registry,
		html:     render.NewHTML(),
		provider: provider,
	}
	s.echo.Use(middleware.Recover())
	s.echo.Use(requestLog)

	s.echo.GET("/", s.index)
	s.echo.POST("/chat", s.submit)
	s.echo.POST("/threads/new", s.newThread)
	s.echo.POST("/threads/:id/select", s.selectThread)
	s.echo.POST("/error/dismiss", s.dismissError)
	s.echo.POST("/session/end", s.endSession)
	return s
}

// Handler returns the HTTP handler for the routes.
func (s *Server) Handler() http.Handler { return s.echo }

// Serve listens on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		applog.Info("web UI listening on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		applog.Info("web UI shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type threadItem struct {
	ID     string
	Name   string
	Active bool
}

type pageData struct {
	Provider    string
	Placeholder string
	Threads     []threadItem
	Messages    []render.HTMLUnit
	Error       string
}

func (s *Server) index(c *echo.Context) error {
	ctrl := s.registry.Acquire(s.sessionID(c))
	sess := ctrl.Session()

	data := pageData{
		Provider:    s.provider,
		Placeholder: inputPlaceholder,
		Messages:    s.html.Render(render.Transcript(sess.Messages())),
	}
	cur := sess.CurrentIndex()
	for i, th := range sess.Threads() {
		data.Threads = append(data.Threads, threadItem{ID: th.ID, Name: th.Name, Active: i == cur})
	}
	if err := ctrl.LastError(); err != nil {
		data.Error = err.Error()
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.HTML(http.StatusOK, buf.String())
}

func (s *Server) submit(c *echo.Context) error {
	ctrl := s.registry.Acquire(s.sessionID(c))

	_, err := ctrl.Submit(c.Request().Context(), c.FormValue("message"))
	switch {
	case errors.Is(err, chat.ErrBusy):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil && !errors.Is(err, chat.ErrEmptyInput):
		// Shown as the banner on the next page load.
		applog.Event("TURN", "session %s: %v", ctrl.Session().ID, err)
	}
	return s.back(c)
}

func (s *Server) newThread(c *echo.Context) error {
	ctrl := s.registry.Acquire(s.sessionID(c))
	if err := ctrl.NewChat(); err != nil {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return s.back(c)
}

func (s *Server) selectThread(c *echo.Context) error {
	ctrl := s.registry.Acquire(s.sessionID(c))
	err := ctrl.Select(c.Param("id"))
	switch {
	case errors.Is(err, chat.ErrUnknownThread):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return s.back(c)
}

func (s *Server) dismissError(c *echo.Context) error {
	s.registry.Acquire(s.sessionID(c)).DismissError()
	return s.back(c)
}

func (s *Server) endSession(c *echo.Context) error {
	if id, ok := cookieSession(c); ok {
		s.registry.Drop(id)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s.back(c)
}

func (s *Server) back(c *echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/")
}

// sessionID returns the caller's session id, issuing a new cookie when
// the request has none or an invalid one.
func (s *Server) sessionID(c *echo.Context) string {
	if id, ok := cookieSession(c); ok {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func cookieSession(c *echo.Context) (string, bool) {
	ck, err := c.Cookie(SessionCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(ck.Value); err != nil {
		return "", false
	}
	return ck.Value, true
}

func requestLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		start := time.Now()
		err := next(c)
		req := c.Request()
		if err != nil {
			applog.Event("HTTP", "%s %s %s: %v", req.Method, req.URL.Path, time.Since(start).Round(time.Millisecond), err)
		} else {
			applog.Event("HTTP", "%s %s %s", req.Method, req.URL.Path, time.Since(start).Round(time.Millisecond))
		}
		return err
	}
}
