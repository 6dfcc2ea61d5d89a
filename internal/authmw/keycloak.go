package authmw

import (
	"context"
	"fmt"
	"time"

	"github.com/Nerzal/gocloak/v13"

	"kyri56xcaesar/teamops/internal/logger"
)

// Service wraps the Keycloak admin client: login plus provisioning of team
// member accounts so the roster and the realm stay in step.
type Service struct {
	Client       *gocloak.GoCloak
	Realm        string
	clientID     string
	clientSecret string

	KCAuth *KeycloakAuth
}

func NewService(baseURL, realm, clientID, issuer, aud, clientSecret string) (*Service, error) {
	client := gocloak.NewClient("http://" + baseURL)

	kcAuth, err := NewKeycloakAuth(
		fmt.Sprintf(
			"http://%s/realms/%s/protocol/openid-connect/certs",
			baseURL,
			realm,
		),
		issuer,
		aud,
		clientID,
	)
	if err != nil {
		logger.Error("could not instantiate the kc authenticator middleware", "error", err)

		return nil, err
	}

	s := &Service{
		Client:       client,
		Realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		KCAuth:       kcAuth,
	}

	if err := s.selfTest(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) selfTest() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	jwt, err := s.Client.LoginClient(
		ctx,
		s.clientID,
		s.clientSecret,
		s.Realm,
	)
	if err != nil {
		return fmt.Errorf("keycloak auth failed: %w", err)
	}

	_, err = s.Client.GetRealm(ctx, jwt.AccessToken, s.Realm)
	if err != nil {
		return fmt.Errorf("keycloak permission check failed: %w", err)
	}

	return nil
}

func (s *Service) LoginAdmin(ctx context.Context) (*gocloak.JWT, error) {
	return s.Client.LoginClient(
		ctx,
		s.clientID,
		s.clientSecret,
		s.Realm,
	)
}

func (s *Service) LoginUser(
	ctx context.Context,
	username, password string,
) (*gocloak.JWT, error) {

	return s.Client.Login(
		ctx,
		s.clientID,
		s.clientSecret,
		s.Realm,
		username,
		password,
	)
}

// ProvisionMember creates a realm account for a new team member. The
// realm role mirrors the roster role: Manager gets "manager", everyone
// else "member".
func (s *Service) ProvisionMember(
	ctx context.Context,
	username, email, password, name string,
	manager bool,
) (string, error) {

	admin, err := s.LoginAdmin(ctx)
	if err != nil {
		return "", fmt.Errorf("keycloak admin login failed: %w", err)
	}
	token := admin.AccessToken

	user := gocloak.User{
		Username: gocloak.StringP(username),
		Email:    gocloak.StringP(email),
		Enabled:  gocloak.BoolP(true),
		LastName: gocloak.StringP(name),
		Credentials: &[]gocloak.CredentialRepresentation{
			{
				Type:      gocloak.StringP("password"),
				Value:     gocloak.StringP(password),
				Temporary: gocloak.BoolP(true),
			},
		},
	}

	userID, err := s.Client.CreateUser(ctx, token, s.Realm, user)
	if err != nil {
		return "", fmt.Errorf("could not create realm user: %w", err)
	}

	roleName := RoleMember
	if manager {
		roleName = RoleManager
	}
	role, err := s.Client.GetRealmRole(ctx, token, s.Realm, roleName)
	if err != nil {
		return userID, fmt.Errorf("could not resolve realm role %s: %w", roleName, err)
	}
	err = s.Client.AddRealmRoleToUser(ctx, token, s.Realm, userID, []gocloak.Role{*role})
	if err != nil {
		return userID, fmt.Errorf("could not assign realm role: %w", err)
	}

	return userID, nil
}

// RemoveMember deletes the realm account matching a roster username, if any.
func (s *Service) RemoveMember(ctx context.Context, username string) error {
	admin, err := s.LoginAdmin(ctx)
	if err != nil {
		return fmt.Errorf("keycloak admin login failed: %w", err)
	}
	token := admin.AccessToken

	user, err := s.getUserByUsername(ctx, token, username)
	if err != nil {
		return err
	}

	return s.Client.DeleteUser(ctx, token, s.Realm, *user.ID)
}

// SetMemberEnabled toggles a realm account, used when a member goes inactive
// without being removed from the roster.
func (s *Service) SetMemberEnabled(ctx context.Context, username string, enabled bool) error {
	admin, err := s.LoginAdmin(ctx)
	if err != nil {
		return fmt.Errorf("keycloak admin login failed: %w", err)
	}
	token := admin.AccessToken

	user, err := s.getUserByUsername(ctx, token, username)
	if err != nil {
		return err
	}

	user.Enabled = gocloak.BoolP(enabled)

	return s.Client.UpdateUser(ctx, token, s.Realm, *user)
}

func (s *Service) getUserByUsername(ctx context.Context, token, username string) (*gocloak.User, error) {
	users, err := s.Client.GetUsers(ctx, token, s.Realm, gocloak.GetUsersParams{
		Username: gocloak.StringP(username),
		Exact:    gocloak.BoolP(true),
		Max:      gocloak.IntP(2),
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user not found")
	}
	if len(users) > 1 {
		return nil, fmt.Errorf("multiple users matched username")
	}
	return users[0], nil
}
