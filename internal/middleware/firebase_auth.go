package middleware

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/quillpress/backend/internal/models"
)

// FirebaseVerifier verifies Firebase ID tokens. The user id is the Firebase
// UID; an "admin" custom claim marks administrators. The name and picture
// claims seed the profile of first-time callers.
func FirebaseVerifier(authClient *auth.Client) TokenVerifier {
	return func(ctx context.Context, idToken string) (models.Caller, error) {
		token, err := authClient.VerifyIDToken(ctx, idToken)
		if err != nil {
			return models.Caller{}, err
		}
		admin, _ := token.Claims["admin"].(bool)
		name, _ := token.Claims["name"].(string)
		picture, _ := token.Claims["picture"].(string)
		return models.Caller{UserID: token.UID, IsAdmin: admin, Fullname: name, ProfileImg: picture}, nil
	}
}
