package apiclient

import (
	"context"
	"net/http"

	"toko_back_end/internal/models"
)

// Session est la réponse de /api/auth/login et /api/auth/register.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Login ouvre une session et garde le jeton pour les appels suivants.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var s Session
	if err := c.Do(ctx, http.MethodPost, "/api/auth/login", Credentials{Username: username, Password: password}, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

func (c *Client) Register(ctx context.Context, cred Credentials) (Session, error) {
	var s Session
	if err := c.Do(ctx, http.MethodPost, "/api/auth/register", cred, &s); err != nil {
		return Session{}, err
	}
	c.SetToken(s.Token)
	return s, nil
}

type otpRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Action      string `json:"action"`
	OTP         string `json:"otp,omitempty"`
}

type OTPResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Token   string       `json:"token,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

func (c *Client) SendOTP(ctx context.Context, phone string) (OTPResult, error) {
	var r OTPResult
	err := c.Do(ctx, http.MethodPost, "/api/auth/whatsapp-otp", otpRequest{PhoneNumber: phone, Action: "send"}, &r)
	return r, err
}

func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (OTPResult, error) {
	var r OTPResult
	if err := c.Do(ctx, http.MethodPost, "/api/auth/whatsapp-otp", otpRequest{PhoneNumber: phone, Action: "verify", OTP: code}, &r); err != nil {
		return OTPResult{}, err
	}
	if r.Token != "" {
		c.SetToken(r.Token)
	}
	return r, nil
}
