package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"rifa/entity"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type reorderNotificationsRequest struct {
	OrderedIDs []int64 `json:"ordered_ids"`
}

type assetResponse struct {
	URL string `json:"url"`
}

func (s Server) PostAdminLogin(c echo.Context) error {
	var request loginRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	session, err := s.auth.Login(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, session)
}

func (s Server) PostAdminRegister(c echo.Context) error {
	var request loginRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	session, err := s.auth.Register(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, session)
}

func (s Server) PostAdminLogout(c echo.Context) error {
	token := bearerToken(c)
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}

	if err := s.auth.Logout(c.Request().Context(), token); err != nil {
		return mapDomainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s Server) GetAdminTickets(c echo.Context) error {
	tickets, err := s.adminOps.Tickets(c.Request().Context())
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, tickets)
}

func (s Server) PutTicketApproval(c echo.Context) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}

	ticket, err := s.adminOps.ToggleApproval(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, ticket)
}

// DeleteTicket only schedules the removal; the command handler does the
// actual delete and emits the removal event.
func (s Server) DeleteTicket(c echo.Context) error {
	id, err := ticketID(c)
	if err != nil {
		return err
	}

	err = s.commandBus.Send(c.Request().Context(), &entity.RemoveTicket{
		Header:   entity.NewEventHeaderWithIdempotencyKey(uuid.NewString()),
		TicketID: id,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusAccepted)
}

func (s Server) PutSettings(c echo.Context) error {
	var patch entity.SettingsPatch
	if err := c.Bind(&patch); err != nil {
		return err
	}

	settings, err := s.content.UpdateSettings(c.Request().Context(), patch)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

func (s Server) PutPackages(c echo.Context) error {
	var packages []entity.Package
	if err := c.Bind(&packages); err != nil {
		return err
	}

	updated, err := s.content.UpdatePackages(c.Request().Context(), packages)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (s Server) PutPrizes(c echo.Context) error {
	var prizes []entity.Prize
	if err := c.Bind(&prizes); err != nil {
		return err
	}

	updated, err := s.content.UpdatePrizes(c.Request().Context(), prizes)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (s Server) PostNotification(c echo.Context) error {
	var notification entity.Notification
	if err := c.Bind(&notification); err != nil {
		return err
	}

	created, err := s.content.AddNotification(c.Request().Context(), notification)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, created)
}

func (s Server) PutNotification(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	var notification entity.Notification
	if err := c.Bind(&notification); err != nil {
		return err
	}

	updated, err := s.content.UpdateNotification(c.Request().Context(), id, notification)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, updated)
}

func (s Server) DeleteNotification(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := s.content.DeleteNotification(c.Request().Context(), id); err != nil {
		return mapDomainError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (s Server) PutNotificationsOrder(c echo.Context) error {
	var request reorderNotificationsRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	reordered, err := s.content.ReorderNotifications(c.Request().Context(), request.OrderedIDs)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, reordered)
}

func (s Server) PostAsset(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("could not open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("could not read uploaded file: %w", err)
	}

	path := c.FormValue("path")
	if path == "" {
		path = fileHeader.Filename
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	url, err := s.uploader.Upload(c.Request().Context(), data, contentType, s.assetsBucket, path)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, assetResponse{URL: url})
}

func ticketID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("ticket_id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid ticket id")
	}
	return id, nil
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}
