package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/existflow/neocount/internal/ics"
	"github.com/existflow/neocount/internal/logger"
	"github.com/existflow/neocount/internal/model"
	"github.com/existflow/neocount/internal/store"
	"github.com/labstack/echo/v4"
)

type eventRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	TargetDate      time.Time        `json:"target_date"`
	Icon            string           `json:"icon"`
	Color           model.Color      `json:"color"`
	IsDetailedNotes bool             `json:"is_detailed_notes"`
	Notes           []model.NotePage `json:"notes"`
}

type noteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	Page  model.NotePage `json:"page"`
	Event model.Event    `json:"event"`
}

func (s *Server) handleListEvents(c echo.Context) error {
	events, err := storeOf(c).List(c.Request().Context())
	if err != nil {
		return s.fail(c, "list events", err)
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) handleCreateEvent(c echo.Context) error {
	var req eventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.TargetDate.IsZero() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "target_date required"})
	}

	draft := model.Draft{
		Name:            req.Name,
		Description:     req.Description,
		TargetDate:      req.TargetDate,
		Icon:            req.Icon,
		Color:           req.Color,
		IsDetailedNotes: req.IsDetailedNotes,
		Notes:           req.Notes,
	}
	if draft.IsDetailedNotes {
		// Submitted as detailed: the description still seeds the first page
		draft.IsDetailedNotes = false
		draft.EnableDetailedNotes(time.Now())
	}

	e, err := storeOf(c).Create(c.Request().Context(), draft)
	if err != nil {
		return s.fail(c, "create event", err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (s *Server) handleUpdateEvent(c echo.Context) error {
	var patch model.Patch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if patch.IsEmpty() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "nothing to update"})
	}

	e, err := storeOf(c).Update(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return s.fail(c, "update event", err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleDeleteEvent(c echo.Context) error {
	if err := storeOf(c).Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.fail(c, "delete event", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// handleSaveNote creates or replaces one note page of a detailed event
func (s *Server) handleSaveNote(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()
	st := storeOf(c)

	e, err := store.Get(ctx, st, c.Param("id"))
	if err != nil {
		return s.fail(c, "save note", err)
	}
	if !e.IsDetailedNotes {
		return c.JSON(http.StatusConflict, map[string]string{"error": "detailed notes are not enabled for this event"})
	}
	if req.ID != "" {
		if _, ok := model.FindNote(e.Notes, req.ID); !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "note page not found"})
		}
	}

	page := model.NoteDraft{ID: req.ID, Title: req.Title, Content: req.Content}.Page(time.Now())
	notes := model.UpsertNote(e.Notes, page)

	updated, err := st.Update(ctx, e.ID, model.Patch{Notes: &notes})
	if err != nil {
		return s.fail(c, "save note", err)
	}
	return c.JSON(http.StatusOK, noteResponse{Page: page, Event: updated})
}

func (s *Server) handleEnableDetailedNotes(c echo.Context) error {
	detailed := true
	e, err := storeOf(c).Update(c.Request().Context(), c.Param("id"), model.Patch{IsDetailedNotes: &detailed})
	if err != nil {
		return s.fail(c, "enable detailed notes", err)
	}
	return c.JSON(http.StatusOK, e)
}

func (s *Server) handleExportICS(c echo.Context) error {
	events, err := storeOf(c).List(c.Request().Context())
	if err != nil {
		return s.fail(c, "export events", err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/calendar; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="neocount.ics"`)
	res.WriteHeader(http.StatusOK)
	return ics.Export(res, events, time.Now())
}

// fail maps domain errors to status codes
func (s *Server) fail(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, model.ErrNameRequired),
		errors.Is(err, model.ErrInvalidColor),
		errors.Is(err, model.ErrInvalidIcon):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrNoUser):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}

	logger.Error("Request failed",
		logger.F("op", op),
		logger.F("user_id", c.Get("user_id")),
		logger.F("error", err.Error()))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
