package out

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lectern/internal/modules/auth/domain"
	authout "lectern/internal/modules/auth/port/out"
	"lectern/internal/platform/httpapi"
)

type HTTPGateway struct {
	client *httpapi.Client
}

func NewHTTPGateway(client *httpapi.Client) authout.Gateway {
	return &HTTPGateway{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type registerRequest struct {
	Registration string `json:"registro"`
	Name         string `json:"nombre"`
	Email        string `json:"email"`
	Phone        string `json:"telefono,omitempty"`
	Password     string `json:"password"`
}

type userData struct {
	ID           int64  `json:"idUsuario"`
	Registration string `json:"registro"`
	Name         string `json:"nombre"`
	Email        string `json:"email"`
	Phone        string `json:"telefono"`
	State        string `json:"estado"`
}

func (g *HTTPGateway) Login(ctx context.Context, credentials domain.Credentials) (domain.Grant, error) {
	data := loginData{}
	_, err := g.client.Do(ctx, httpapi.Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      loginRequest{Email: credentials.Email, Password: credentials.Password},
		Anonymous: true,
	}, &data)
	if err != nil {
		return domain.Grant{}, fmt.Errorf("login: %w", err)
	}
	return domain.Grant{
		AccessToken: data.AccessToken,
		TokenType:   data.TokenType,
		ExpiresIn:   time.Duration(data.ExpiresIn) * time.Second,
	}, nil
}

func (g *HTTPGateway) Register(ctx context.Context, registration domain.Registration) (domain.User, error) {
	data := userData{}
	_, err := g.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: registerRequest{
			Registration: registration.Registration,
			Name:         registration.Name,
			Email:        registration.Email,
			Phone:        registration.Phone,
			Password:     registration.Password,
		},
		Anonymous: true,
	}, &data)
	if err != nil {
		return domain.User{}, fmt.Errorf("register: %w", err)
	}
	return data.toDomain(), nil
}

func (g *HTTPGateway) CurrentUser(ctx context.Context) (domain.User, error) {
	data := userData{}
	_, err := g.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/usuarios/me"}, &data)
	if err != nil {
		return domain.User{}, fmt.Errorf("current user: %w", err)
	}
	return data.toDomain(), nil
}

func (d userData) toDomain() domain.User {
	return domain.User{
		ID:           d.ID,
		Registration: d.Registration,
		Name:         d.Name,
		Email:        d.Email,
		Phone:        d.Phone,
		State:        d.State,
	}
}
