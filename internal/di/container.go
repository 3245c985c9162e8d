package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/madina-markt/api/internal/i18n"
	"github.com/madina-markt/api/internal/platform/config"
	"github.com/madina-markt/api/internal/platform/storage"
	"github.com/madina-markt/api/internal/repositories"
	"github.com/madina-markt/api/internal/services"
)

// Services bundles the service-layer contracts that handlers rely upon. Concrete
// implementations are assembled via dependency injection in NewContainer.
type Services struct {
	Cart     services.CartService
	Checkout services.CheckoutService
	Catalog  services.CatalogService
	Auth     services.AuthService
	Assets   services.AssetService
	System   services.SystemService
}

// ContainerDeps carries the externally constructed infrastructure the container
// wires together.
type ContainerDeps struct {
	Config       config.Config
	Repositories repositories.Registry
	Locales      *i18n.Bundle
	Storage      *storage.Client
	Logger       func(context.Context, string, map[string]any)
	Build        services.BuildInfo
	Clock        func() time.Time
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Locales      *i18n.Bundle
	Services     Services
}

// NewContainer constructs the runtime dependencies. Production wiring provides
// real implementations, while tests can supply in-memory registries.
func NewContainer(ctx context.Context, deps ContainerDeps) (*Container, error) {
	if deps.Repositories == nil {
		return nil, errors.New("repositories registry is required")
	}
	if deps.Locales == nil {
		return nil, errors.New("locale bundle is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	svc, err := buildServices(deps)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       deps.Config,
		Repositories: deps.Repositories,
		Locales:      deps.Locales,
		Services:     svc,
	}, nil
}

// Close releases resources such as repository clients.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(deps ContainerDeps) (Services, error) {
	var svc Services
	reg := deps.Repositories
	cfg := deps.Config

	catalogRepo := reg.Catalog()
	if catalogRepo == nil {
		return Services{}, errors.New("catalog repository is required")
	}

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repository: catalogRepo,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	svc.Catalog = catalogSvc

	if cartsRepo := reg.Carts(); cartsRepo != nil {
		cartSvc, err := services.NewCartService(services.CartServiceDeps{
			Repository: cartsRepo,
			Products:   catalogRepo,
			Offers:     catalogRepo,
			Logger:     deps.Logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build cart service: %w", err)
		}
		svc.Cart = cartSvc
	}

	checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Translator:  deps.Locales,
		PhoneNumber: cfg.WhatsApp.PhoneNumber,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkoutSvc

	if cfg.Admin.Password != "" {
		authSvc, err := services.NewAuthService(services.AuthServiceDeps{
			Password:    cfg.Admin.Password,
			MaxAttempts: cfg.Admin.LoginMaxAttempts,
			Lockout:     cfg.Admin.LoginLockout,
			Clock:       deps.Clock,
			Logger:      deps.Logger,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build auth service: %w", err)
		}
		svc.Auth = authSvc
	}

	if deps.Storage != nil && cfg.Storage.ImagesBucket != "" {
		assetSvc, err := services.NewAssetService(services.AssetServiceDeps{
			Storage:      deps.Storage,
			Bucket:       cfg.Storage.ImagesBucket,
			UploadExpiry: cfg.Storage.SignedURLTTL,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build asset service: %w", err)
		}
		svc.Assets = assetSvc
	}

	if healthRepo := reg.Health(); healthRepo != nil {
		systemSvc, err := services.NewSystemService(services.SystemServiceDeps{
			HealthRepository: healthRepo,
			Clock:            deps.Clock,
			Build:            deps.Build,
		})
		if err != nil {
			return Services{}, fmt.Errorf("build system service: %w", err)
		}
		svc.System = systemSvc
	}

	return svc, nil
}
