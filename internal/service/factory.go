package service

import (
	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/internal/cache"
	"galaxyco.ai/api-server/internal/crypto"
	"galaxyco.ai/api-server/internal/store"
)

// Services constructs the service layer from shared infrastructure. Handlers
// ask it for interfaces, never concrete types.
type Services struct {
	stores store.StoreProvider
	tx     store.TxRunner
	cache  *cache.Cache
	cipher *crypto.TokenCipher
	cfg    *config.Config
}

func NewServices(stores store.StoreProvider, tx store.TxRunner, c *cache.Cache, cipher *crypto.TokenCipher, cfg *config.Config) *Services {
	return &Services{
		stores: stores,
		tx:     tx,
		cache:  c,
		cipher: cipher,
		cfg:    cfg,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.stores.Users(), s.stores.Sessions(), s.cfg.WorkOS)
}

func (s *Services) Tenants() TenantService {
	return NewTenantService(s.stores.Users(), s.stores.Members())
}

func (s *Services) Workspaces() WorkspaceService {
	return NewWorkspaceService(s.tx, s.stores)
}

func (s *Services) Integrations() IntegrationService {
	return NewIntegrationService(s.tx, s.stores, NewOAuthClient(s.cfg.Providers), s.cipher, s.cfg.Security.StateSigningSecret)
}

func (s *Services) Marketplace() MarketplaceService {
	return NewMarketplaceService(s.tx, s.stores, s.cache)
}

func (s *Services) Dashboard() DashboardService {
	return NewDashboardService(s.stores)
}
