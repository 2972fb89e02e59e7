package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rifa/entity"
)

type selectPackageRequest struct {
	PackageID int64 `json:"package_id"`
}

type selectNumbersRequest struct {
	Numbers []int `json:"numbers"`
}

type selectPlatformRequest struct {
	Platform entity.PaymentPlatform `json:"platform"`
}

type submitReferenceRequest struct {
	Reference string `json:"reference"`
}

func (s Server) PostPurchase(c echo.Context) error {
	return c.JSON(http.StatusCreated, s.purchases.Start())
}

func (s Server) GetPurchase(c echo.Context) error {
	status, err := s.purchases.Get(c.Param("purchase_id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}

func (s Server) PostPurchasePackage(c echo.Context) error {
	var request selectPackageRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	status, err := s.purchases.SelectPackage(c.Request().Context(), c.Param("purchase_id"), request.PackageID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}

func (s Server) PostPurchaseNumbers(c echo.Context) error {
	var request selectNumbersRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	status, err := s.purchases.SelectNumbers(c.Request().Context(), c.Param("purchase_id"), request.Numbers)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}

func (s Server) PostPurchaseBuyer(c echo.Context) error {
	var buyer entity.BuyerInfo
	if err := c.Bind(&buyer); err != nil {
		return err
	}

	status, err := s.purchases.SubmitBuyerInfo(c.Param("purchase_id"), buyer)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}

func (s Server) PostPurchasePlatform(c echo.Context) error {
	var request selectPlatformRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	status, err := s.purchases.SelectPlatform(c.Request().Context(), c.Param("purchase_id"), request.Platform)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}

func (s Server) PostPurchaseReference(c echo.Context) error {
	var request submitReferenceRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	status, err := s.purchases.SubmitReference(c.Request().Context(), c.Param("purchase_id"), request.Reference)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}

func (s Server) PostPurchaseBack(c echo.Context) error {
	status, err := s.purchases.Back(c.Param("purchase_id"))
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, status)
}
