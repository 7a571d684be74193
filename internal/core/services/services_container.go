package services

import (
	portsrepo "github.com/maziwaops/dairy_credit_app/internal/core/ports/repositories"
	portssvc "github.com/maziwaops/dairy_credit_app/internal/core/ports/services"
	"github.com/maziwaops/dairy_credit_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Policy = NewPolicyProvider(cfg.CreditPolicy)

	container.Farmer = NewFarmerService(repos.FarmerRepo)
	container.Collection = NewCollectionService(repos.CollectionRepo, repos.FarmerRepo)
	container.Auth = NewAuthService(repos.UserRepo, repos.FarmerRepo, cfg)

	// Credit service first; the request workflow re-uses its eligibility view
	container.Credit = NewCreditService(repos.CreditRepo, repos.CollectionRepo, repos.FarmerRepo, container.Policy)
	container.CreditRequest = NewCreditRequestService(repos.RequestRepo, repos.CreditRepo, repos.CollectionRepo, container.Credit)

	return container
}
