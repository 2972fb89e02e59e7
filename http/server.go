package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"rifa/content"
	"rifa/entity"
	"rifa/gateway"
	"rifa/pkg/log"
	"rifa/purchase"
)

type PurchaseService interface {
	Start() purchase.Status
	Get(id string) (purchase.Status, error)
	SelectPackage(ctx context.Context, id string, packageID int64) (purchase.Status, error)
	SelectNumbers(ctx context.Context, id string, numbers []int) (purchase.Status, error)
	SubmitBuyerInfo(id string, buyer entity.BuyerInfo) (purchase.Status, error)
	SelectPlatform(ctx context.Context, id string, platform entity.PaymentPlatform) (purchase.Status, error)
	Back(id string) (purchase.Status, error)
	SubmitReference(ctx context.Context, id string, reference string) (purchase.Status, error)
}

type ContentStore interface {
	Settings(ctx context.Context) (entity.Settings, error)
	UpdateSettings(ctx context.Context, patch entity.SettingsPatch) (entity.Settings, error)
	Packages(ctx context.Context) []entity.Package
	UpdatePackages(ctx context.Context, packages []entity.Package) ([]entity.Package, error)
	Prizes(ctx context.Context) []entity.Prize
	UpdatePrizes(ctx context.Context, prizes []entity.Prize) ([]entity.Prize, error)
	Notifications(ctx context.Context) []entity.Notification
	AddNotification(ctx context.Context, notification entity.Notification) (entity.Notification, error)
	UpdateNotification(ctx context.Context, id int64, notification entity.Notification) (entity.Notification, error)
	DeleteNotification(ctx context.Context, id int64) error
	ReorderNotifications(ctx context.Context, orderedIDs []int64) ([]entity.Notification, error)
}

type Occupancy interface {
	Claimed() []int
	Stale() bool
	Refresh(ctx context.Context) error
}

type AdminOps interface {
	Tickets(ctx context.Context) ([]entity.Ticket, error)
	ToggleApproval(ctx context.Context, id int64) (entity.Ticket, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (gateway.Session, error)
	Register(ctx context.Context, email, password string) (gateway.Session, error)
	Logout(ctx context.Context, accessToken string) error
}

type Uploader interface {
	Upload(ctx context.Context, data []byte, contentType, bucket, path string) (string, error)
}

type Server struct {
	addr         string
	e            *echo.Echo
	commandBus   *cqrs.CommandBus
	purchases    PurchaseService
	content      ContentStore
	occupancy    Occupancy
	adminOps     AdminOps
	auth         AuthService
	uploader     Uploader
	jwtSecret    string
	assetsBucket string
}

func NewServer(
	addr string,
	commandBus *cqrs.CommandBus,
	purchases PurchaseService,
	content ContentStore,
	occupancy Occupancy,
	adminOps AdminOps,
	auth AuthService,
	uploader Uploader,
	jwtSecret string,
	assetsBucket string,
) *Server {
	e := newEcho()

	server := &Server{
		addr:         addr,
		e:            e,
		commandBus:   commandBus,
		purchases:    purchases,
		content:      content,
		occupancy:    occupancy,
		adminOps:     adminOps,
		auth:         auth,
		uploader:     uploader,
		jwtSecret:    jwtSecret,
		assetsBucket: assetsBucket,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/settings", server.GetSettings)
	e.GET("/packages", server.GetPackages)
	e.GET("/prizes", server.GetPrizes)
	e.GET("/notifications", server.GetNotifications)
	e.GET("/numbers/occupied", server.GetOccupiedNumbers)

	e.POST("/purchases", server.PostPurchase)
	e.GET("/purchases/:purchase_id", server.GetPurchase)
	e.POST("/purchases/:purchase_id/package", server.PostPurchasePackage)
	e.POST("/purchases/:purchase_id/numbers", server.PostPurchaseNumbers)
	e.POST("/purchases/:purchase_id/buyer", server.PostPurchaseBuyer)
	e.POST("/purchases/:purchase_id/platform", server.PostPurchasePlatform)
	e.POST("/purchases/:purchase_id/reference", server.PostPurchaseReference)
	e.POST("/purchases/:purchase_id/back", server.PostPurchaseBack)

	e.POST("/admin/login", server.PostAdminLogin)
	e.POST("/admin/register", server.PostAdminRegister)
	e.POST("/admin/logout", server.PostAdminLogout)

	admin := e.Group("/admin", server.requireAdmin)
	admin.GET("/tickets", server.GetAdminTickets)
	admin.PUT("/tickets/:ticket_id/approval", server.PutTicketApproval)
	admin.DELETE("/tickets/:ticket_id", server.DeleteTicket)
	admin.PUT("/settings", server.PutSettings)
	admin.PUT("/packages", server.PutPackages)
	admin.PUT("/prizes", server.PutPrizes)
	admin.POST("/notifications", server.PostNotification)
	admin.PUT("/notifications/reorder", server.PutNotificationsOrder)
	admin.PUT("/notifications/:notification_id", server.PutNotification)
	admin.DELETE("/notifications/:notification_id", server.DeleteNotification)
	admin.POST("/assets", server.PostAsset)

	return server
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(otelecho.Middleware("rifa"))

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			correlationID := c.Request().Header.Get(log.CorrelationIDHeader)
			if correlationID == "" {
				correlationID = shortuuid.New()
			}

			ctx := log.ContextWithCorrelationID(c.Request().Context(), correlationID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(log.CorrelationIDHeader, correlationID)

			return next(c)
		}
	})

	return e
}

// ServeHTTP makes the server usable as a plain handler, mainly for tests.
func (s Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(ctx)
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// mapDomainError translates sentinel and typed domain errors into HTTP
// responses; anything unrecognized falls through as a 500.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *purchase.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"field":   validationErr.Field,
			"message": validationErr.Message,
		})
	}

	var authErr *gateway.AuthError
	if errors.As(err, &authErr) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	var reorderErr *content.ReorderError
	if errors.As(err, &reorderErr) {
		return echo.NewHTTPError(http.StatusBadRequest, reorderErr.Error())
	}

	switch {
	case errors.Is(err, entity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, entity.ErrNumberTaken):
		return echo.NewHTTPError(http.StatusConflict, "number already taken")
	case errors.Is(err, entity.ErrWrongState):
		return echo.NewHTTPError(http.StatusConflict, "operation not allowed in current state")
	case errors.Is(err, entity.ErrPlatformDisabled):
		return echo.NewHTTPError(http.StatusConflict, "payment platform is disabled")
	case errors.Is(err, entity.ErrPaymentWindowExpired):
		return echo.NewHTTPError(http.StatusGone, "payment window expired")
	case errors.Is(err, entity.ErrNumberOutOfRange):
		return echo.NewHTTPError(http.StatusBadRequest, "number out of range")
	case errors.Is(err, entity.ErrPackageIncomplete):
		return echo.NewHTTPError(http.StatusBadRequest, "not all numbers selected")
	case errors.Is(err, entity.ErrInvalidReference):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment reference")
	}

	return err
}
