package middleware

import (
	"context"
	"sync"

	"github.com/anonto42/quillpress/backend/internal/models"
	log "github.com/sirupsen/logrus"
)

// UserProvisioner creates the user record of a caller seen for the first time.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, user *models.User) (bool, error)
}

// Provision wraps verify so that every verified caller owns a user record
// before any handler runs. Callers already provisioned by this process are
// not looked up again.
func Provision(verify TokenVerifier, users UserProvisioner) TokenVerifier {
	var known sync.Map
	return func(ctx context.Context, token string) (models.Caller, error) {
		caller, err := verify(ctx, token)
		if err != nil {
			return caller, err
		}
		if _, ok := known.Load(caller.UserID); ok {
			return caller, nil
		}

		created, err := users.EnsureUser(ctx, &models.User{
			ID: caller.UserID,
			PersonalInfo: models.PersonalInfo{
				Fullname:   caller.Fullname,
				Username:   caller.UserID,
				ProfileImg: caller.ProfileImg,
			},
		})
		if err != nil {
			// counters of this caller drift until a later request provisions it
			log.WithError(err).Warnf("[auth] could not provision user %s", caller.UserID)
			return caller, nil
		}
		if created {
			log.WithField("user", caller.UserID).Info("[auth] user provisioned")
		}
		known.Store(caller.UserID, struct{}{})
		return caller, nil
	}
}
