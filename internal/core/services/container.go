package services

import (
	portsrepo "github.com/dEvAshirvad/finager-backend/internal/core/ports/repositories"
	portssvc "github.com/dEvAshirvad/finager-backend/internal/core/ports/services"
)

// NewServiceContainer wires the service facades over the given repositories.
func NewServiceContainer(repos portsrepo.RepositoryProvider, journalOptions ...JournalServiceOption) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(repos.JournalRepo, accountSvc, journalOptions...)
	balanceSvc := NewBalanceService(repos.AccountRepo, repos.JournalRepo)
	reportingSvc := NewReportingService(repos.AccountRepo, repos.JournalRepo, repos.ReportConfigRepo, balanceSvc)

	return &portssvc.ServiceContainer{
		Account:   accountSvc,
		Journal:   journalSvc,
		Balance:   balanceSvc,
		Reporting: reportingSvc,
	}
}
