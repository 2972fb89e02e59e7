package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rifa/pkg/log"
)

type occupiedNumbersResponse struct {
	Numbers []int `json:"numbers"`
	Stale   bool  `json:"stale"`
}

func (s Server) GetSettings(c echo.Context) error {
	settings, err := s.content.Settings(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

func (s Server) GetPackages(c echo.Context) error {
	return c.JSON(http.StatusOK, s.content.Packages(c.Request().Context()))
}

func (s Server) GetPrizes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.content.Prizes(c.Request().Context()))
}

func (s Server) GetNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, s.content.Notifications(c.Request().Context()))
}

// GetOccupiedNumbers serves the cached set after trying to bring it up to
// date. A failed refresh is not an error: the client gets the last known
// set with the stale flag raised.
func (s Server) GetOccupiedNumbers(c echo.Context) error {
	ctx := c.Request().Context()

	if err := s.occupancy.Refresh(ctx); err != nil {
		log.FromContext(ctx).WithError(err).Warn("failed to refresh occupied numbers")
	}

	return c.JSON(http.StatusOK, occupiedNumbersResponse{
		Numbers: s.occupancy.Claimed(),
		Stale:   s.occupancy.Stale(),
	})
}
