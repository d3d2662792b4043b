// Package client is a small Go SDK for the stacks auth API. It wraps the
// three auth endpoints and hands back token pairs; callers own storage and
// scheduling of the tokens.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrRequestFailed = errors.New("auth request failed")
	ErrRejected      = errors.New("auth request rejected")
)

// TokenPair holds the credentials returned by a successful auth call.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type authResult struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	IsSuccess    bool     `json:"isSuccess"`
	Errors       []string `json:"errors"`
}

type Client struct {
	rc *resty.Client
}

func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	return &Client{rc: rc}
}

func (c *Client) Register(
	ctx context.Context,
	email string,
	password string,
	name string,
	mobile string,
) (
	*TokenPair,
	error,
) {
	return c.post(ctx, "/api/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
		"mobile":   mobile,
	})
}

func (c *Client) Login(
	ctx context.Context,
	email string,
	password string,
) (
	*TokenPair,
	error,
) {
	return c.post(ctx, "/api/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) Refresh(
	ctx context.Context,
	accessToken string,
	refreshToken string,
) (
	*TokenPair,
	error,
) {
	return c.post(ctx, "/api/refresh", map[string]string{
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

func (c *Client) post(
	ctx context.Context,
	path string,
	body map[string]string,
) (
	*TokenPair,
	error,
) {
	result := authResult{}
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	if resp.IsError() || !result.IsSuccess {
		reason := strings.Join(result.Errors, "; ")
		if reason == "" {
			reason = resp.Status()
		}
		return nil, fmt.Errorf("%w: %s", ErrRejected, reason)
	}

	return &TokenPair{
		AccessToken:  result.Token,
		RefreshToken: result.RefreshToken,
	}, nil
}
