package handler

import (
	"errors"
	"net/http"

	"restaurant/internal/usecase"
	auth "restaurant/internal/usecase/auth_usecase"
	"restaurant/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Field: he.Field})
	}
	if ve, ok := validator.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message, Field: ve.Field})
	}

	switch {
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, errorJSON("email already exists"))
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, errorJSON("invalid credentials"))
	case errors.Is(err, auth.ErrUserInactive):
		return c.JSON(http.StatusForbidden, errorJSON("user is inactive"))
	}

	//500
	return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
}
