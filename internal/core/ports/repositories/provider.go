package repositories

// RepositoryProvider aggregates the repositories handed to service
// construction.
type RepositoryProvider struct {
	AccountRepo      AccountRepository
	JournalRepo      JournalRepository
	ReportConfigRepo ReportConfigRepository
}
