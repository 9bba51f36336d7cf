package handlers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/models"
)

// Options carries the request-independent settings shared by the handlers.
type Options struct {
	// SiteURL is the absolute base for image URLs, pagination links and
	// recipe short links, without a trailing slash.
	SiteURL string
	// MediaRoot is the directory uploaded images are stored under.
	MediaRoot string
	// TokenSecret signs bearer tokens.
	TokenSecret []byte
	// TokenLifetime bounds how long an issued token stays valid.
	TokenLifetime time.Duration
}

var (
	database *gorm.DB
	options  Options
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(db *gorm.DB, opts Options) {
	database = db
	if opts.TokenLifetime <= 0 {
		opts.TokenLifetime = 30 * 24 * time.Hour
	}
	options = opts
}

// RequestContext identifies the actor behind a request. Actor is nil for
// anonymous requests. TokenID is the identifier of the presented bearer
// token, used by logout to revoke exactly that token.
type RequestContext struct {
	Actor   *models.User
	TokenID string
}

type requestContextKey struct{}

func withRequestContext(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

func requestContext(r *http.Request) RequestContext {
	if rc, ok := r.Context().Value(requestContextKey{}).(RequestContext); ok {
		return rc
	}
	return RequestContext{}
}

func currentUser(r *http.Request) (*models.User, bool) {
	rc := requestContext(r)
	return rc.Actor, rc.Actor != nil
}
