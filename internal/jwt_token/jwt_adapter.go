package jwttoken

import (
	authmw "crmdir/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.TenantClaims {
	return &authmw.TenantClaims{
		TenantID: claims.TenantID,
		Subject:  claims.Subject,
	}
}

// JWTServiceAdapter exposes JWTService as the auth middleware's TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.TenantClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
