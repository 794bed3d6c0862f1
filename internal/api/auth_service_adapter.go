package api

import "github.com/Exios66/Cronbach-Alpha/internal/services"

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindUserByEmail(email string) (*services.User, error) {
	u := a.store.FindUserByEmail(email)
	if u == nil {
		return nil, nil
	}
	return &services.User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, WorkspaceID: u.WorkspaceID, CreatedAt: u.CreatedAt}, nil
}

func (a *authStoreAdapter) AddUser(u *services.User) error {
	if u == nil {
		return services.NewInvalidError("user required")
	}
	a.store.AddUser(&User{ID: u.ID, Email: u.Email, PassHash: u.PassHash, WorkspaceID: u.WorkspaceID, CreatedAt: u.CreatedAt})
	return nil
}

func (a *authStoreAdapter) AddWorkspace(ws *services.Workspace) error {
	if ws == nil {
		return services.NewInvalidError("workspace required")
	}
	a.store.AddWorkspace(&Workspace{ID: ws.ID, Name: ws.Name})
	return nil
}

var _ services.AuthStore = (*authStoreAdapter)(nil)
