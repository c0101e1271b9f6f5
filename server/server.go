// Package server wires the HTTP surface: the reminder API, the notification
// websocket, the RSS feed and the background sweep runner.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/remindme/internal/profile"
	"github.com/hrygo/remindme/server/middleware"
	"github.com/hrygo/remindme/server/runner/reminder"
	"github.com/hrygo/remindme/server/websocket"
	"github.com/hrygo/remindme/store"
)

type Server struct {
	e *echo.Echo

	Profile *profile.Profile
	Store   *store.Store

	service *ReminderService
	hub     *websocket.Hub
	runner  *reminder.Runner
}

// NewServer assembles the HTTP server, notification hub and sweep runner.
func NewServer(profile *profile.Profile, st *store.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.NewRateLimiter().Middleware())

	hub := websocket.NewHub()
	s := &Server{
		e:       e,
		Profile: profile,
		Store:   st,
		service: NewReminderService(st),
		hub:     hub,
		runner:  reminder.NewRunner(st, hub, reminder.DefaultConfig()),
	}

	e.GET("/healthz", s.healthz)
	e.GET("/feed", s.feed)
	e.GET("/ws", hub.Handle)

	api := e.Group("/api/v1")
	api.POST("/reminders", s.addReminder)
	api.GET("/reminders", s.listReminders)
	api.POST("/reminders/delete", s.deleteReminder)

	return s
}

// Start runs the HTTP server and the reminder runner. It blocks until the
// server is shut down.
func (s *Server) Start(ctx context.Context) error {
	go s.runner.Run(ctx)

	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "addr", addr, "mode", s.Profile.Mode, "version", s.Profile.Version)

	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to start server")
	}
	return nil
}

// Shutdown drains the HTTP server and disconnects notification listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.e.Shutdown(ctx)
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Response string `json:"response"`
}

type listResponse struct {
	Reminders []*store.Reminder `json:"reminders"`
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) addReminder(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	response, err := s.service.AddReminder(c.Request().Context(), req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to add reminder").SetInternal(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Response: response})
}

func (s *Server) listReminders(c echo.Context) error {
	reminders, err := s.service.ListReminders(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reminders").SetInternal(err)
	}
	return c.JSON(http.StatusOK, listResponse{Reminders: reminders})
}

func (s *Server) deleteReminder(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}

	response, err := s.service.DeleteReminder(c.Request().Context(), req.Message)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete reminder").SetInternal(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Response: response})
}

// feed renders the pending reminders as an RSS feed, so feed readers can be
// pointed at the instance as a passive notification channel.
func (s *Server) feed(c echo.Context) error {
	reminders, err := s.service.ListReminders(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list reminders").SetInternal(err)
	}

	feed := &feeds.Feed{
		Title:       "remindme: pending reminders",
		Link:        &feeds.Link{Href: c.Request().Host + "/feed"},
		Description: "Reminders waiting to fire",
		Created:     time.Now(),
	}
	for _, r := range reminders {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          r.UID,
			Title:       r.Task,
			Description: fmt.Sprintf("Fires at %s", r.FireAt.Format(store.TimeLayout)),
			Created:     r.FireAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render feed").SetInternal(err)
	}
	return c.Blob(http.StatusOK, "application/rss+xml", []byte(rss))
}
