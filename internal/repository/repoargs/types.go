package repoargs

type RepositoryName string

const (
	UserRepoName       RepositoryName = "user"
	LedgerRepoName     RepositoryName = "ledger"
	ProjectRepoName    RepositoryName = "project"
	SiteRepoName       RepositoryName = "site"
	ContentRepoName    RepositoryName = "content"
	PlacementRepoName  RepositoryName = "placement"
	WithdrawalRepoName RepositoryName = "referral_withdrawal"
)
