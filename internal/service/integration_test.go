package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"galaxyco.ai/api-server/internal/crypto"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/service"
	"galaxyco.ai/api-server/internal/store"
)

var _ = Describe("IntegrationService", func() {
	var (
		svc         service.IntegrationService
		provider    *mockStoreProvider
		tx          *mockTxRunner
		oauth       *mockOAuthClient
		cipher      *crypto.TokenCipher
		ctx         context.Context
		workspaceID uuid.UUID
		userID      uuid.UUID
		tc          *service.TenantContext
	)

	stateSecret := []byte("test-state-signing-secret")

	BeforeEach(func() {
		ctx = context.Background()
		provider = &mockStoreProvider{
			members:      &mockMemberStore{},
			integrations: &mockIntegrationStore{},
			tokens:       &mockTokenStore{},
			audit:        &mockAuditStore{},
		}
		tx = &mockTxRunner{provider: provider}
		oauth = &mockOAuthClient{}

		var err error
		cipher, err = crypto.NewTokenCipher(bytes.Repeat([]byte{0x24}, 32))
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewIntegrationService(tx, provider, oauth, cipher, stateSecret)

		workspaceID = uuid.New()
		userID = uuid.New()
		tc = &service.TenantContext{UserID: userID, WorkspaceID: workspaceID, Role: model.RoleAdmin}

		provider.members.getActiveFn = func(_ context.Context, wsID, uID uuid.UUID) (*model.WorkspaceMember, error) {
			if wsID == workspaceID && uID == userID {
				return &model.WorkspaceMember{WorkspaceID: wsID, UserID: uID, Role: model.RoleAdmin, IsActive: true}, nil
			}
			return nil, store.ErrNotFound
		}
	})

	// initiateState runs the connect flow and pulls the signed state out of
	// the authorization URL the mock returns.
	initiateState := func(p model.Provider) string {
		authURL, err := svc.Initiate(ctx, tc, p)
		Expect(err).NotTo(HaveOccurred())
		parsed, err := url.Parse(authURL)
		Expect(err).NotTo(HaveOccurred())
		state := parsed.Query().Get("state")
		Expect(state).NotTo(BeEmpty())
		return state
	}

	Describe("Initiate", func() {
		It("returns an authorization URL carrying a signed state", func() {
			state := initiateState(model.ProviderSlack)
			Expect(state).To(ContainSubstring("."))
		})

		It("persists nothing", func() {
			initiateState(model.ProviderSlack)
			Expect(tx.txCalls).To(BeZero())
		})

		It("rejects viewers", func() {
			tc.Role = model.RoleViewer
			_, err := svc.Initiate(ctx, tc, model.ProviderSlack)
			Expect(err).To(MatchError(service.ErrForbidden))
		})

		It("rejects unknown providers", func() {
			_, err := svc.Initiate(ctx, tc, model.Provider("github"))
			Expect(err).To(MatchError(service.ErrUnknownProvider))
		})

		It("refuses when token encryption is not configured", func() {
			svc = service.NewIntegrationService(tx, provider, oauth, nil, stateSecret)
			_, err := svc.Initiate(ctx, tc, model.ProviderSlack)
			Expect(err).To(MatchError(crypto.ErrNotConfigured))
		})
	})

	Describe("CompleteCallback", func() {
		It("stores encrypted tokens scoped to the state's workspace", func() {
			var storedIntegration *model.Integration
			var storedToken *model.OAuthToken
			provider.integrations.upsertFn = func(_ context.Context, in *model.Integration) error {
				storedIntegration = in
				return nil
			}
			provider.tokens.upsertFn = func(_ context.Context, t *model.OAuthToken) error {
				storedToken = t
				return nil
			}

			state := initiateState(model.ProviderGoogle)
			integration, err := svc.CompleteCallback(ctx, tc, state, "auth-code")
			Expect(err).NotTo(HaveOccurred())

			Expect(integration.WorkspaceID).To(Equal(workspaceID))
			Expect(integration.Provider).To(Equal(model.ProviderGoogle))
			Expect(integration.Status).To(Equal(model.IntegrationActive))
			Expect(storedIntegration).NotTo(BeNil())

			Expect(storedToken).NotTo(BeNil())
			Expect(storedToken.EncryptedAccessToken).NotTo(Equal("access-auth-code"))
			opened, err := cipher.Decrypt(storedToken.EncryptedAccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(opened).To(Equal("access-auth-code"))

			Expect(storedToken.EncryptedRefreshToken).NotTo(BeNil())
			opened, err = cipher.Decrypt(*storedToken.EncryptedRefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(opened).To(Equal("refresh-auth-code"))

			Expect(provider.audit.events).To(HaveLen(1))
			Expect(provider.audit.events[0].Action).To(Equal(model.AuditIntegrationConnected))
			Expect(provider.audit.events[0].WorkspaceID).To(Equal(workspaceID))
		})

		It("rejects a tampered state", func() {
			state := initiateState(model.ProviderGoogle)
			_, err := svc.CompleteCallback(ctx, tc, state+"x", "auth-code")
			Expect(err).To(MatchError(service.ErrInvalidState))
		})

		It("rejects garbage state", func() {
			_, err := svc.CompleteCallback(ctx, tc, "not-a-jwt", "auth-code")
			Expect(err).To(MatchError(service.ErrInvalidState))
		})

		It("rejects callers without membership in the state's workspace", func() {
			state := initiateState(model.ProviderGoogle)
			stranger := &service.TenantContext{UserID: uuid.New(), WorkspaceID: workspaceID, Role: model.RoleAdmin}
			_, err := svc.CompleteCallback(ctx, stranger, state, "auth-code")
			Expect(err).To(MatchError(service.ErrForbidden))
		})

		It("propagates provider exchange failures", func() {
			oauth.exchangeCodeFn = func(_ context.Context, _ model.Provider, _ string) (*service.TokenGrant, error) {
				return nil, service.ErrUpstream
			}
			state := initiateState(model.ProviderGoogle)
			_, err := svc.CompleteCallback(ctx, tc, state, "auth-code")
			Expect(err).To(MatchError(service.ErrUpstream))
		})

		It("persists nothing when token encryption is not configured", func() {
			state := initiateState(model.ProviderGoogle)
			svc = service.NewIntegrationService(tx, provider, oauth, nil, stateSecret)

			_, err := svc.CompleteCallback(ctx, tc, state, "auth-code")
			Expect(err).To(MatchError(crypto.ErrNotConfigured))
			Expect(tx.txCalls).To(BeZero())
		})
	})

	Describe("Disconnect", func() {
		var integrationID uuid.UUID

		BeforeEach(func() {
			integrationID = uuid.New()
		})

		connected := func() {
			provider.integrations.getByIDFn = func(_ context.Context, id uuid.UUID) (*model.Integration, error) {
				if id == integrationID {
					return &model.Integration{ID: id, WorkspaceID: workspaceID, Provider: model.ProviderSlack, Status: model.IntegrationActive}, nil
				}
				return nil, store.ErrNotFound
			}
			encrypted, err := cipher.Encrypt("live-access-token")
			Expect(err).NotTo(HaveOccurred())
			provider.tokens.getByIntegrationFn = func(_ context.Context, id uuid.UUID) (*model.OAuthToken, error) {
				return &model.OAuthToken{IntegrationID: id, EncryptedAccessToken: encrypted}, nil
			}
		}

		It("revokes upstream and deletes token and integration rows", func() {
			connected()
			var revokedToken string
			oauth.revokeFn = func(_ context.Context, p model.Provider, accessToken string) error {
				Expect(p).To(Equal(model.ProviderSlack))
				revokedToken = accessToken
				return nil
			}

			Expect(svc.Disconnect(ctx, tc, integrationID)).To(Succeed())
			Expect(revokedToken).To(Equal("live-access-token"))
			Expect(provider.tokens.deleteCalls).To(Equal(1))
			Expect(provider.integrations.deleteCalls).To(Equal(1))
			Expect(provider.audit.events).To(HaveLen(1))
			Expect(provider.audit.events[0].Action).To(Equal(model.AuditIntegrationDisconnected))
		})

		It("still deletes locally when revocation fails", func() {
			connected()
			oauth.revokeFn = func(_ context.Context, _ model.Provider, _ string) error {
				return errors.New("provider is down")
			}

			Expect(svc.Disconnect(ctx, tc, integrationID)).To(Succeed())
			Expect(provider.tokens.deleteCalls).To(Equal(1))
			Expect(provider.integrations.deleteCalls).To(Equal(1))
		})

		It("is a no-op for an unknown integration", func() {
			Expect(svc.Disconnect(ctx, tc, integrationID)).To(Succeed())
			Expect(svc.Disconnect(ctx, tc, integrationID)).To(Succeed())
			Expect(provider.integrations.deleteCalls).To(BeZero())
			Expect(oauth.revokeCalls).To(BeZero())
		})

		It("treats another workspace's integration as unknown", func() {
			provider.integrations.getByIDFn = func(_ context.Context, id uuid.UUID) (*model.Integration, error) {
				return &model.Integration{ID: id, WorkspaceID: uuid.New(), Provider: model.ProviderSlack}, nil
			}
			Expect(svc.Disconnect(ctx, tc, integrationID)).To(Succeed())
			Expect(provider.integrations.deleteCalls).To(BeZero())
		})

		It("rejects members below admin", func() {
			tc.Role = model.RoleMember
			err := svc.Disconnect(ctx, tc, integrationID)
			Expect(err).To(MatchError(service.ErrForbidden))
		})
	})

	Describe("Status", func() {
		It("reports connected:false for an unknown integration", func() {
			status, err := svc.Status(ctx, tc, uuid.New())
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Connected).To(BeFalse())
		})

		It("reports connected:false for another workspace's integration", func() {
			id := uuid.New()
			provider.integrations.getByIDFn = func(_ context.Context, got uuid.UUID) (*model.Integration, error) {
				return &model.Integration{ID: got, WorkspaceID: uuid.New(), Status: model.IntegrationActive}, nil
			}
			status, err := svc.Status(ctx, tc, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Connected).To(BeFalse())
		})

		It("reports an active integration as connected", func() {
			id := uuid.New()
			provider.integrations.getByIDFn = func(_ context.Context, got uuid.UUID) (*model.Integration, error) {
				return &model.Integration{ID: got, WorkspaceID: workspaceID, Provider: model.ProviderHubSpot, Status: model.IntegrationActive}, nil
			}
			status, err := svc.Status(ctx, tc, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Connected).To(BeTrue())
			Expect(status.Provider).To(Equal(model.ProviderHubSpot))
		})

		It("reports an errored integration as not connected", func() {
			id := uuid.New()
			provider.integrations.getByIDFn = func(_ context.Context, got uuid.UUID) (*model.Integration, error) {
				return &model.Integration{ID: got, WorkspaceID: workspaceID, Status: model.IntegrationError}, nil
			}
			status, err := svc.Status(ctx, tc, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.Connected).To(BeFalse())
			Expect(status.Status).To(Equal(model.IntegrationError))
		})
	})

	Describe("RefreshToken", func() {
		var integrationID uuid.UUID

		BeforeEach(func() {
			integrationID = uuid.New()
			provider.integrations.getByIDFn = func(_ context.Context, id uuid.UUID) (*model.Integration, error) {
				return &model.Integration{ID: id, WorkspaceID: workspaceID, Provider: model.ProviderGoogle, Status: model.IntegrationActive}, nil
			}
			encryptedRefresh, err := cipher.Encrypt("old-refresh")
			Expect(err).NotTo(HaveOccurred())
			provider.tokens.getByIntegrationFn = func(_ context.Context, id uuid.UUID) (*model.OAuthToken, error) {
				return &model.OAuthToken{IntegrationID: id, EncryptedAccessToken: "x", EncryptedRefreshToken: &encryptedRefresh}, nil
			}
		})

		It("rotates and re-encrypts the access token", func() {
			var newAccess string
			provider.tokens.updateTokensFn = func(_ context.Context, _ uuid.UUID, encryptedAccess string, _ *string, expiresAt *time.Time) error {
				newAccess = encryptedAccess
				Expect(expiresAt).NotTo(BeNil())
				return nil
			}
			oauth.refreshGrantFn = func(_ context.Context, _ model.Provider, refreshToken string) (*service.TokenGrant, error) {
				Expect(refreshToken).To(Equal("old-refresh"))
				return &service.TokenGrant{AccessToken: "fresh-access", ExpiresIn: 3600}, nil
			}

			Expect(svc.RefreshToken(ctx, integrationID)).To(Succeed())
			opened, err := cipher.Decrypt(newAccess)
			Expect(err).NotTo(HaveOccurred())
			Expect(opened).To(Equal("fresh-access"))
		})

		It("marks the integration errored when the refresh grant fails", func() {
			oauth.refreshGrantFn = func(_ context.Context, _ model.Provider, _ string) (*service.TokenGrant, error) {
				return nil, service.ErrUpstream
			}
			var marked model.IntegrationStatus
			provider.integrations.setStatusFn = func(_ context.Context, _ uuid.UUID, status model.IntegrationStatus) error {
				marked = status
				return nil
			}

			err := svc.RefreshToken(ctx, integrationID)
			Expect(err).To(MatchError(service.ErrUpstream))
			Expect(marked).To(Equal(model.IntegrationError))
		})

		It("fails when no refresh token is stored", func() {
			provider.tokens.getByIntegrationFn = func(_ context.Context, id uuid.UUID) (*model.OAuthToken, error) {
				return &model.OAuthToken{IntegrationID: id, EncryptedAccessToken: "x"}, nil
			}
			err := svc.RefreshToken(ctx, integrationID)
			Expect(err).To(MatchError(service.ErrNoRefreshToken))
		})
	})
})
