// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package restoapi issues the requests of the authentication and catalog
// services and normalizes their answers across dialects.
package restoapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/holomush/restoclient/internal/auth"
	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/transport"
)

// theiaMissingCredentials is the text answer of the theia SSO when the
// credentials are missing or wrong.
const theiaMissingCredentials = "Please set mail and password"

// AuthAPI talks to the authentication service of one server.
type AuthAPI struct {
	exec    *transport.Executor
	dialect *dialect.Dialect
	baseURL string
	basic   transport.BasicSource
}

// NewAuthAPI creates an AuthAPI. basic provides the raw credentials that SSO
// dialects also send as form fields.
func NewAuthAPI(exec *transport.Executor, d *dialect.Dialect, baseURL string, basic transport.BasicSource) *AuthAPI {
	return &AuthAPI{exec: exec, dialect: d, baseURL: baseURL, basic: basic}
}

type tokenResponse struct {
	Token   string `json:"token"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// GetToken requests a new token with HTTP Basic credentials.
func (a *AuthAPI) GetToken(ctx context.Context) (auth.TokenResult, error) {
	route, err := a.dialect.Route(dialect.GetToken)
	if err != nil {
		return auth.TokenResult{}, err
	}
	u, err := route.Resolve(a.baseURL, nil)
	if err != nil {
		return auth.TokenResult{}, err
	}

	req := transport.Request{Route: route, URL: u, Basic: true}
	if route.Method == http.MethodPost {
		user, pass, err := a.basic.BasicCredentials(ctx)
		if err != nil {
			return auth.TokenResult{}, err
		}
		req.Form = url.Values{"ident": {user}, "pass": {pass}}
	}

	if route.Accept == dialect.AcceptText {
		text, err := a.exec.DoText(ctx, req)
		if err != nil {
			return auth.TokenResult{}, err
		}
		text = strings.TrimSpace(text)
		if text == theiaMissingCredentials {
			return auth.TokenResult{Message: text}, nil
		}
		return auth.TokenResult{Success: text != "", Token: text}, nil
	}

	var body tokenResponse
	if err := a.exec.DoJSON(ctx, req, &body); err != nil {
		return auth.TokenResult{}, err
	}
	res := auth.TokenResult{Token: body.Token, Message: body.Message, Success: body.Token != ""}
	if body.Success != nil {
		res.Success = *body.Success
	}
	return res, nil
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (s statusResponse) ok() bool {
	return s.Status == "success"
}

// CheckToken asks the server whether token is still valid.
func (a *AuthAPI) CheckToken(ctx context.Context, token string) (bool, error) {
	route, err := a.dialect.Route(dialect.CheckToken)
	if err != nil {
		return false, err
	}
	u, err := route.Resolve(a.baseURL, map[string]string{"token": url.QueryEscape(token)})
	if err != nil {
		return false, err
	}
	var body statusResponse
	if err := a.exec.DoJSON(ctx, transport.Request{Route: route, URL: u}, &body); err != nil {
		return false, err
	}
	return body.ok(), nil
}

// RevokeToken disconnects token.
func (a *AuthAPI) RevokeToken(ctx context.Context, token string) error {
	route, err := a.dialect.Route(dialect.RevokeToken)
	if err != nil {
		return err
	}
	u, err := route.Resolve(a.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := a.exec.Do(ctx, transport.Request{Route: route, URL: u, Authorization: "Bearer " + token})
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
