// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package dialect

import (
	"maps"
	"net/http"
	"time"
)

// Family names.
const (
	FamilyAuth  = "auth"
	FamilyResto = "resto"
)

// Authentication dialect names.
const (
	AuthDefault     = "default"
	AuthSSOTheia    = "sso_theia"
	AuthSSODotcloud = "sso_dotcloud"
)

// Catalog dialect names.
const (
	RestoDotcloud     = "dotcloud"
	RestoPepsVersion  = "peps_version"
	RestoTheiaVersion = "theia_version"
)

const collectionsCache = 30 * time.Minute

func ssoTokenRoutes() map[Kind]Route {
	return map[Kind]Route{
		GetToken: {Kind: GetToken, Action: "getting token", Method: http.MethodPost, Accept: AcceptJSON, Auth: Always},
	}
}

var authDialects = map[string]*Dialect{
	AuthDefault: {
		Name:   AuthDefault,
		Family: FamilyAuth,
		routes: map[Kind]Route{
			GetToken:    {Kind: GetToken, Action: "getting token", Path: "api/users/connect", Method: http.MethodGet, Accept: AcceptJSON, Auth: Always},
			RevokeToken: {Kind: RevokeToken, Action: "revoking token", Path: "api/users/disconnect", Method: http.MethodPost, Accept: AcceptJSON, Auth: Always},
			CheckToken:  {Kind: CheckToken, Action: "checking token", Path: "api/users/checkToken?_tk={token}", Method: http.MethodGet, Accept: AcceptJSON, Auth: Never},
		},
	},
	AuthSSOTheia: {
		Name:   AuthSSOTheia,
		Family: FamilyAuth,
		routes: func() map[Kind]Route {
			r := ssoTokenRoutes()
			tok := r[GetToken]
			tok.Accept = AcceptText
			r[GetToken] = tok
			return r
		}(),
	},
	AuthSSODotcloud: {
		Name:   AuthSSODotcloud,
		Family: FamilyAuth,
		routes: ssoTokenRoutes(),
	},
}

func dotcloudRoutes() map[Kind]Route {
	download := func(kind Kind, action string, auth Requirement) Route {
		return Route{Kind: kind, Action: action, Method: http.MethodGet, Accept: AcceptJSON, Auth: auth, Streamed: true}
	}
	return map[Kind]Route{
		Describe:          {Kind: Describe, Action: "describing service", Path: "api/collections/describe.json", Method: http.MethodGet, Accept: AcceptJSON, Auth: Never, CacheFor: collectionsCache},
		GetCollections:    {Kind: GetCollections, Action: "listing collections", Path: "collections", Method: http.MethodGet, Accept: AcceptJSON, Auth: Never, CacheFor: collectionsCache},
		GetCollection:     {Kind: GetCollection, Action: "getting collection", Path: "collections/{collection}", Method: http.MethodGet, Accept: AcceptJSON, Auth: Never},
		SearchCollection:  {Kind: SearchCollection, Action: "searching", Path: "api/collections/{collection}/search.json?{criteria_url}", Method: http.MethodGet, Accept: AcceptJSON, Auth: Opportunistic},
		SignLicense:       {Kind: SignLicense, Action: "signing license", Path: "api/users/{user}/signatures/{license_id}/", Method: http.MethodPost, Accept: AcceptJSON, Auth: Always},
		DownloadProduct:   download(DownloadProduct, "downloading product", Always),
		DownloadQuicklook: download(DownloadQuicklook, "downloading quicklook", Never),
		DownloadThumbnail: download(DownloadThumbnail, "downloading thumbnail", Never),
		DownloadAnnexes:   download(DownloadAnnexes, "downloading annexes", Never),
	}
}

var restoDialects = func() map[string]*Dialect {
	dotcloud := dotcloudRoutes()

	peps := maps.Clone(dotcloud)
	delete(peps, SignLicense)

	return map[string]*Dialect{
		RestoDotcloud:    {Name: RestoDotcloud, Family: FamilyResto, routes: dotcloud},
		RestoPepsVersion: {Name: RestoPepsVersion, Family: FamilyResto, routes: peps},
		RestoTheiaVersion: {
			Name:             RestoTheiaVersion,
			Family:           FamilyResto,
			ProductURLSuffix: "/?issuerId=theia",
			routes:           maps.Clone(peps),
		},
	}
}()

// Auth returns the authentication dialect called name.
func Auth(name string) (*Dialect, error) {
	return lookup(FamilyAuth, authDialects, name)
}

// Resto returns the catalog dialect called name.
func Resto(name string) (*Dialect, error) {
	return lookup(FamilyResto, restoDialects, name)
}

// AuthNames lists the known authentication dialects.
func AuthNames() []string { return names(authDialects) }

// RestoNames lists the known catalog dialects.
func RestoNames() []string { return names(restoDialects) }

// DownloadKind maps a file kind name (product, quicklook, thumbnail,
// annexes) to its request kind.
func DownloadKind(fileKind string) (Kind, bool) {
	switch fileKind {
	case "product":
		return DownloadProduct, true
	case "quicklook":
		return DownloadQuicklook, true
	case "thumbnail":
		return DownloadThumbnail, true
	case "annexes":
		return DownloadAnnexes, true
	default:
		return "", false
	}
}
