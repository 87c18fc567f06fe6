package authentication

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

const (
	DefaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthSessionName         = "fintrek-oauth"
)

// NewGoogleConfig builds the OAuth client used for "Sign in with Google".
func NewGoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		RedirectURL:  redirectURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

type googleUserInfo struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
}

func randomState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HandleGoogleLogin redirects to Google's consent page with a state bound to a cookie session.
func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil || h.Sessions == nil {
		respond.Error(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state, err := randomState()
	if err != nil {
		log.Printf("Google login error: state: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	session, _ := h.Sessions.Get(r, oauthSessionName)
	session.Values["state"] = state
	if err := session.Save(r, w); err != nil {
		log.Printf("Google login error: save session: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	http.Redirect(w, r, h.Google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback exchanges the code, links or creates the user and returns tokens.
func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.Google == nil || h.Sessions == nil {
		respond.Error(w, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	session, _ := h.Sessions.Get(r, oauthSessionName)
	expected, _ := session.Values["state"].(string)
	if expected == "" || r.FormValue("state") != expected {
		respond.Error(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	delete(session.Values, "state")
	_ = session.Save(r, w)

	token, err := h.Google.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		log.Printf("Google callback error: exchange: %v", err)
		respond.Error(w, http.StatusUnauthorized, "Google sign-in failed")
		return
	}

	info, err := h.fetchGoogleUser(r, token)
	if err != nil {
		log.Printf("Google callback error: %v", err)
		respond.Error(w, http.StatusBadGateway, "Failed to fetch Google profile")
		return
	}

	user, created, err := h.linkGoogleUser(r, info)
	if err != nil {
		log.Printf("Google callback error: link user: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	tokens, err := h.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("Google callback error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "Google sign-in failed")
		return
	}

	status, message := http.StatusOK, "Login successful"
	if created {
		status, message = http.StatusCreated, "User created successfully"
	}
	respond.JSON(w, status, authResponse{Message: message, User: toUserPayload(user), Tokens: tokens})
}

func (h *Handler) fetchGoogleUser(r *http.Request, token *oauth2.Token) (googleUserInfo, error) {
	url := h.UserInfoURL
	if url == "" {
		url = DefaultGoogleUserInfoURL
	}

	resp, err := h.Google.Client(r.Context(), token).Get(url)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return googleUserInfo{}, errors.New("userinfo is missing id or email")
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))
	return info, nil
}

// linkGoogleUser finds the user by Google id, then by email, and creates one otherwise.
func (h *Handler) linkGoogleUser(r *http.Request, info googleUserInfo) (models.User, bool, error) {
	var (
		user    models.User
		created bool
	)
	err := h.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", info.ID).First(&user).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", info.Email).First(&user).Error
		switch {
		case err == nil:
			googleID := info.ID
			user.GoogleID = &googleID
			if user.AvatarURL == "" {
				user.AvatarURL = info.Picture
			}
			return tx.Save(&user).Error
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		googleID := info.ID
		user = models.User{
			Email:     info.Email,
			FirstName: info.GivenName,
			LastName:  info.FamilyName,
			Name:      strings.TrimSpace(info.GivenName + " " + info.FamilyName),
			AvatarURL: info.Picture,
			Provider:  models.ProviderGoogle,
			GoogleID:  &googleID,
		}
		if user.Name == "" {
			user.Name = info.Name
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		created = true
		if h.Provisioner != nil {
			return h.Provisioner.Provision(r.Context(), tx, user.ID)
		}
		return nil
	})
	return user, created, err
}
