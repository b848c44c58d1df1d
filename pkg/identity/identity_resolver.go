// Package identity turns an optional bearer credential into a viewer.
//
// The resolver reports what it found and nothing more. Whether an invalid
// credential degrades to an anonymous viewer or fails the request is decided
// by the route (see middleware.AuthOptional and middleware.AuthRequired).
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"foodies-api/domain"
	"foodies-api/entities"
	"foodies-api/internal/metrics"
	"foodies-api/pkg/jwt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status int

const (
	Anonymous Status = iota
	Resolved
	Invalid
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Invalid:
		return "invalid"
	default:
		return "anonymous"
	}
}

type (
	// UserLookup is the read side the resolver needs from the user store.
	UserLookup interface {
		GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
		GetFavoriteRecipeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	}

	Viewer struct {
		ID        uuid.UUID
		User      *entities.User
		Token     string
		favorites map[uuid.UUID]struct{}
	}

	Result struct {
		Status Status
		Viewer *Viewer
		Err    error
	}

	Resolver interface {
		Resolve(ctx context.Context, authorization string) Result
	}

	resolver struct {
		jwtService jwt.JWTService
		users      UserLookup
	}
)

func NewViewer(user *entities.User, token string, favoriteIDs []uuid.UUID) *Viewer {
	favorites := make(map[uuid.UUID]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favorites[id] = struct{}{}
	}
	return &Viewer{ID: user.ID, User: user, Token: token, favorites: favorites}
}

// HasFavorite is safe to call on a nil viewer, which never has favorites.
func (v *Viewer) HasFavorite(recipeID uuid.UUID) bool {
	if v == nil {
		return false
	}
	_, ok := v.favorites[recipeID]
	return ok
}

func (v *Viewer) FavoriteCount() int {
	if v == nil {
		return 0
	}
	return len(v.favorites)
}

func NewResolver(jwtService jwt.JWTService, users UserLookup) Resolver {
	return &resolver{jwtService: jwtService, users: users}
}

func (r *resolver) Resolve(ctx context.Context, authorization string) Result {
	res := r.resolve(ctx, authorization)
	metrics.IdentityResolutions.WithLabelValues(res.Status.String()).Inc()
	return res
}

func (r *resolver) resolve(ctx context.Context, authorization string) Result {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return Result{Status: Anonymous}
	}

	scheme, token, ok := strings.Cut(authorization, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return invalid(domain.ErrTokenNotFound)
	}

	rawID, err := r.jwtService.GetUserIDByToken(token)
	if err != nil {
		return invalid(err)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return invalid(domain.ErrTokenInvalid)
	}

	user, err := r.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalid(domain.ErrTokenInvalid)
		}
		return invalid(fmt.Errorf("resolve viewer: %w", err))
	}
	// signout clears the stored token, which revokes every copy of it
	if user.Token == nil || *user.Token != token {
		return invalid(domain.ErrTokenInvalid)
	}

	favorites, err := r.users.GetFavoriteRecipeIDs(ctx, user.ID)
	if err != nil {
		return invalid(fmt.Errorf("resolve viewer favorites: %w", err))
	}

	return Result{Status: Resolved, Viewer: NewViewer(user, token, favorites)}
}

func invalid(err error) Result {
	return Result{Status: Invalid, Err: err}
}

// Personalization returns the viewer to personalize a read with. Invalid
// credentials are treated exactly like no credential.
func (r Result) Personalization() *Viewer {
	if r.Status != Resolved {
		return nil
	}
	return r.Viewer
}

// Required returns the viewer or the error a protected route must fail with.
func (r Result) Required() (*Viewer, error) {
	switch r.Status {
	case Resolved:
		return r.Viewer, nil
	case Invalid:
		if r.Err != nil && !errors.Is(r.Err, domain.ErrUnauthorized) {
			return nil, r.Err
		}
		return nil, domain.ErrTokenInvalid
	default:
		return nil, domain.ErrTokenNotFound
	}
}
