package service

import "github.com/Akshaygupta0409/school-payments-microservice/internal/models"

type TokenService interface {
	CreateToken(user *models.User) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}
