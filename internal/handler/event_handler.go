package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/eventhub/booking-platform/internal/dto"
	"github.com/eventhub/booking-platform/internal/models"
	"github.com/eventhub/booking-platform/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/events")
	g.POST("", h.CreateEvent)
	g.GET("", h.ListEvents)
	g.GET("/search", h.SearchEvents)
	g.GET("/:id", h.GetEvent)
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Venue == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and venue are required")
	}
	if req.AvailableTickets < 0 || req.BasePrice <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "available_tickets must be >= 0 and base_price > 0")
	}
	if req.LocationLat < -90 || req.LocationLat > 90 || req.LocationLong < -180 || req.LocationLong > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid coordinates")
	}

	event := &models.Event{
		Name:             req.Name,
		StartsAt:         req.StartsAt,
		Venue:            req.Venue,
		LocationLat:      req.LocationLat,
		LocationLong:     req.LocationLong,
		AvailableTickets: req.AvailableTickets,
		BasePrice:        req.BasePrice,
		SurgePrice:       req.SurgePrice,
		SurgeThreshold:   req.SurgeThreshold,
	}

	if err := h.svc.CreateEvent(c.Request().Context(), event); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid event id")
	}

	event, err := h.svc.GetEvent(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.svc.ListEvents(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func (h *EventHandler) SearchEvents(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	events, err := h.svc.SearchEvents(c.Request().Context(),
		c.QueryParam("name"), c.QueryParam("venue"), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func toEventResponses(events []models.Event) []dto.EventResponse {
	resp := make([]dto.EventResponse, len(events))
	for i, e := range events {
		resp[i] = dto.ToEventResponse(&e)
	}
	return resp
}
