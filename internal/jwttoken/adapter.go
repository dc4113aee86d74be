package jwttoken

import (
	"github.com/google/uuid"

	"legatum/internal/platform/middleware"
	id "legatum/pkg/domain"
	dErrors "legatum/pkg/domain-errors"
)

// MiddlewareAdapter bridges JWTService to the middleware.JWTValidator
// interface, converting the string user ID claim into a typed ID.
type MiddlewareAdapter struct {
	service *JWTService
}

func NewMiddlewareAdapter(service *JWTService) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid user id claim")
	}

	return &middleware.JWTClaims{
		UserID: id.UserID(parsed),
		Role:   claims.Role,
	}, nil
}
