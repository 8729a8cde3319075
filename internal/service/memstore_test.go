package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/fsdevblog/placement-billing/internal/domain"
	"github.com/fsdevblog/placement-billing/internal/repository/repoargs"
	"github.com/fsdevblog/placement-billing/pkg/uow"
)

// memStore хранилище в памяти с семантикой транзакций: memUOW делает снимок перед fn и восстанавливает его
// при ошибке, что позволяет проверять откат в тестах сервисов.
type memStore struct {
	seq         int64
	users       map[int64]domain.User
	projects    map[int64]domain.Project
	sites       map[int64]domain.Site
	contents    map[int64]domain.Content
	placements  map[int64]domain.Placement
	withdrawals map[int64]domain.ReferralWithdrawal
	ledger      []domain.Transaction

	// lockErrs ошибки, которые вернет LockByID пользователя, например таймаут блокировки.
	lockErrs map[int64]error
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int64]domain.User),
		projects:    make(map[int64]domain.Project),
		sites:       make(map[int64]domain.Site),
		contents:    make(map[int64]domain.Content),
		placements:  make(map[int64]domain.Placement),
		withdrawals: make(map[int64]domain.ReferralWithdrawal),
		lockErrs:    make(map[int64]error),
	}
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *memStore) clone() *memStore {
	c := &memStore{
		seq:         m.seq,
		users:       make(map[int64]domain.User, len(m.users)),
		projects:    make(map[int64]domain.Project, len(m.projects)),
		sites:       make(map[int64]domain.Site, len(m.sites)),
		contents:    make(map[int64]domain.Content, len(m.contents)),
		placements:  make(map[int64]domain.Placement, len(m.placements)),
		withdrawals: make(map[int64]domain.ReferralWithdrawal, len(m.withdrawals)),
		ledger:      slices.Clone(m.ledger),
		lockErrs:    m.lockErrs,
	}
	for k, v := range m.users {
		c.users[k] = v
	}
	for k, v := range m.projects {
		c.projects[k] = v
	}
	for k, v := range m.sites {
		c.sites[k] = v
	}
	for k, v := range m.contents {
		c.contents[k] = v
	}
	for k, v := range m.placements {
		v.ContentIDs = slices.Clone(v.ContentIDs)
		c.placements[k] = v
	}
	for k, v := range m.withdrawals {
		c.withdrawals[k] = v
	}
	return c
}

func (m *memStore) restore(snapshot *memStore) {
	lockErrs := m.lockErrs
	*m = *snapshot
	m.lockErrs = lockErrs
}

func (m *memStore) repository(name uow.RepositoryName) (uow.Repository, error) {
	switch repoargs.RepositoryName(name) {
	case repoargs.UserRepoName:
		return &memUserRepo{m}, nil
	case repoargs.LedgerRepoName:
		return &memLedgerRepo{m}, nil
	case repoargs.ProjectRepoName:
		return &memProjectRepo{m}, nil
	case repoargs.SiteRepoName:
		return &memSiteRepo{m}, nil
	case repoargs.ContentRepoName:
		return &memContentRepo{m}, nil
	case repoargs.PlacementRepoName:
		return &memPlacementRepo{m}, nil
	case repoargs.WithdrawalRepoName:
		return &memWithdrawalRepo{m}, nil
	default:
		return nil, uow.ErrRepositoryNotRegistered
	}
}

// memUOW реализация uow.UOW поверх memStore.
type memUOW struct {
	mu    sync.Mutex
	store *memStore
	txs   int
}

func newMemUOW(store *memStore) *memUOW {
	return &memUOW{store: store}
}

func (u *memUOW) Register(uow.RepositoryName, uow.RepositoryFactory) error {
	return nil
}

func (u *memUOW) Do(ctx context.Context, fn func(context.Context, uow.TX) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.txs++

	snapshot := u.store.clone()
	if err := fn(ctx, &memTX{store: u.store}); err != nil {
		u.store.restore(snapshot)
		return err
	}
	return nil
}

func (u *memUOW) GetRepository(name uow.RepositoryName) (uow.Repository, error) {
	return u.store.repository(name)
}

type memTX struct {
	store *memStore
}

func (t *memTX) Get(name uow.RepositoryName) (uow.Repository, error) {
	return t.store.repository(name)
}

func notFound(what string, id int64) error {
	return fmt.Errorf("[memstore/%s %d] %w", what, id, domain.ErrRecordNotFound)
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (r *memUserRepo) LockByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := r.s.lockErrs[id]; err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *memUserRepo) UpdateBalance(_ context.Context, args repoargs.UpdateUserBalance) (*domain.User, error) {
	u, ok := r.s.users[args.UserID]
	if !ok {
		return nil, notFound("user", args.UserID)
	}
	if args.Balance.IsNegative() {
		return nil, fmt.Errorf("[memstore/users_balance_non_negative] %w", domain.ErrInsufficientFunds)
	}
	u.Balance = args.Balance
	u.TotalSpent = args.TotalSpent
	u.CurrentDiscount = args.CurrentDiscount
	r.s.users[u.ID] = u
	return &u, nil
}

func (r *memUserRepo) UpdateReferralBalance(
	_ context.Context,
	args repoargs.UpdateReferralBalance,
) (*domain.User, error) {
	u, ok := r.s.users[args.UserID]
	if !ok {
		return nil, notFound("user", args.UserID)
	}
	if args.ReferralBalance.IsNegative() {
		return nil, fmt.Errorf("[memstore/users_referral_balance_non_negative] %w", domain.ErrInsufficientFunds)
	}
	u.ReferralBalance = args.ReferralBalance
	r.s.users[u.ID] = u
	return &u, nil
}

type memLedgerRepo struct{ s *memStore }

func (r *memLedgerRepo) Create(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.Transaction, error) {
	entry := domain.Transaction{
		ID:            r.s.nextID(),
		UserID:        args.UserID,
		Type:          args.Type,
		Amount:        args.Amount,
		BalanceBefore: args.BalanceBefore,
		BalanceAfter:  args.BalanceAfter,
		Description:   args.Description,
		PlacementID:   args.PlacementID,
		WithdrawalID:  args.WithdrawalID,
	}
	r.s.ledger = append(r.s.ledger, entry)
	return &entry, nil
}

func (r *memLedgerRepo) ListByUser(_ context.Context, userID int64, limit, offset uint) ([]domain.Transaction, error) {
	var entries []domain.Transaction
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			entries = append(entries, r.s.ledger[i])
		}
	}
	if int(offset) >= len(entries) {
		return nil, nil
	}
	entries = entries[offset:]
	if int(limit) < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

type memProjectRepo struct{ s *memStore }

func (r *memProjectRepo) FindOwned(_ context.Context, projectID, userID int64) (*domain.Project, error) {
	p, ok := r.s.projects[projectID]
	if !ok || p.UserID != userID {
		return nil, notFound("project", projectID)
	}
	return &p, nil
}

type memSiteRepo struct{ s *memStore }

func (r *memSiteRepo) FindByID(_ context.Context, id int64) (*domain.Site, error) {
	site, ok := r.s.sites[id]
	if !ok {
		return nil, notFound("site", id)
	}
	return &site, nil
}

func (r *memSiteRepo) IncrementUsage(_ context.Context, siteID int64, t domain.PlacementType) error {
	site, ok := r.s.sites[siteID]
	if !ok || !site.HasCapacity(t) {
		return domain.ErrExhaustedCapacity
	}
	if t == domain.PlacementTypeArticle {
		site.UsedArticles++
	} else {
		site.UsedLinks++
	}
	r.s.sites[siteID] = site
	return nil
}

func (r *memSiteRepo) DecrementUsage(_ context.Context, siteID int64, t domain.PlacementType) error {
	site, ok := r.s.sites[siteID]
	if !ok {
		return nil
	}
	if t == domain.PlacementTypeArticle {
		site.UsedArticles = max(site.UsedArticles-1, 0)
	} else {
		site.UsedLinks = max(site.UsedLinks-1, 0)
	}
	r.s.sites[siteID] = site
	return nil
}

type memContentRepo struct{ s *memStore }

func (r *memContentRepo) FindByID(_ context.Context, id int64) (*domain.Content, error) {
	c, ok := r.s.contents[id]
	if !ok {
		return nil, notFound("content", id)
	}
	return &c, nil
}

func (r *memContentRepo) IncrementUsage(_ context.Context, id int64) error {
	c, ok := r.s.contents[id]
	if !ok || !c.HasCapacity() {
		return domain.ErrExhaustedCapacity
	}
	c.UsageCount++
	r.s.contents[id] = c
	return nil
}

func (r *memContentRepo) DecrementUsage(_ context.Context, id int64) error {
	c, ok := r.s.contents[id]
	if !ok {
		return nil
	}
	c.UsageCount = max(c.UsageCount-1, 0)
	r.s.contents[id] = c
	return nil
}

type memPlacementRepo struct{ s *memStore }

func (r *memPlacementRepo) Create(_ context.Context, args repoargs.PlacementCreate) (*domain.Placement, error) {
	p := domain.Placement{
		ID:                   r.s.nextID(),
		UserID:               args.UserID,
		ProjectID:            args.ProjectID,
		SiteID:               args.SiteID,
		Type:                 args.Type,
		Status:               domain.PlacementStatusPending,
		OriginalPrice:        args.OriginalPrice,
		DiscountApplied:      args.DiscountApplied,
		FinalPrice:           args.FinalPrice,
		PurchasedAt:          args.PurchasedAt,
		ScheduledPublishDate: args.ScheduledPublishDate,
		AutoRenewal:          args.AutoRenewal,
		RenewalPrice:         args.RenewalPrice,
		ContentIDs:           slices.Clone(args.ContentIDs),
	}
	r.s.placements[p.ID] = p
	return r.FindByID(context.Background(), p.ID)
}

func (r *memPlacementRepo) FindByID(_ context.Context, id int64) (*domain.Placement, error) {
	p, ok := r.s.placements[id]
	if !ok {
		return nil, notFound("placement", id)
	}
	p.ContentIDs = slices.Clone(p.ContentIDs)
	return &p, nil
}

func (r *memPlacementRepo) LockByID(ctx context.Context, id int64) (*domain.Placement, error) {
	return r.FindByID(ctx, id)
}

func (r *memPlacementRepo) ExistsActive(
	_ context.Context,
	projectID, siteID int64,
	t domain.PlacementType,
) (bool, error) {
	for _, p := range r.s.placements {
		if p.ProjectID == projectID && p.SiteID == siteID && p.Type == t && p.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memPlacementRepo) UpdateStatus(
	ctx context.Context,
	args repoargs.PlacementStatusUpdate,
) (*domain.Placement, error) {
	p, ok := r.s.placements[args.ID]
	if !ok {
		return nil, notFound("placement", args.ID)
	}
	p.Status = args.Status
	if args.PublishedAt != nil {
		p.PublishedAt = args.PublishedAt
	}
	if args.ExpiresAt != nil {
		p.ExpiresAt = args.ExpiresAt
	}
	if args.WordPressPostID != nil {
		p.WordPressPostID = args.WordPressPostID
	}
	r.s.placements[p.ID] = p
	return r.FindByID(ctx, p.ID)
}

func (r *memPlacementRepo) Renew(ctx context.Context, args repoargs.PlacementRenew) (*domain.Placement, error) {
	p, ok := r.s.placements[args.ID]
	if !ok {
		return nil, notFound("placement", args.ID)
	}
	expiresAt, renewedAt := args.ExpiresAt, args.RenewedAt
	p.Status = domain.PlacementStatusPlaced
	p.ExpiresAt = &expiresAt
	p.RenewalPrice = args.RenewalPrice
	p.RenewalCount++
	p.LastRenewedAt = &renewedAt
	r.s.placements[p.ID] = p
	return r.FindByID(ctx, p.ID)
}

func (r *memPlacementRepo) SetAutoRenewal(_ context.Context, id int64, enabled bool) error {
	p, ok := r.s.placements[id]
	if !ok {
		return notFound("placement", id)
	}
	p.AutoRenewal = enabled
	r.s.placements[id] = p
	return nil
}

func (r *memPlacementRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.placements[id]; !ok {
		return notFound("placement", id)
	}
	delete(r.s.placements, id)
	return nil
}

func (r *memPlacementRepo) ListDueScheduled(
	_ context.Context,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	return r.filter(args.Limit, func(p domain.Placement) bool {
		return p.Status == domain.PlacementStatusScheduled &&
			p.ScheduledPublishDate != nil && !p.ScheduledPublishDate.After(args.Now)
	}), nil
}

func (r *memPlacementRepo) ListDueAutoRenewal(
	_ context.Context,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	return r.filter(args.Limit, func(p domain.Placement) bool {
		return p.Status == domain.PlacementStatusPlaced && p.Type == domain.PlacementTypeLink && p.AutoRenewal &&
			p.ExpiresAt != nil && !p.ExpiresAt.After(args.Now)
	}), nil
}

func (r *memPlacementRepo) ListDueExpiry(
	_ context.Context,
	args repoargs.DuePlacements,
) ([]domain.Placement, error) {
	return r.filter(args.Limit, func(p domain.Placement) bool {
		return p.Status == domain.PlacementStatusPlaced && !p.AutoRenewal &&
			p.ExpiresAt != nil && !p.ExpiresAt.After(args.Now)
	}), nil
}

func (r *memPlacementRepo) filter(limit uint, keep func(domain.Placement) bool) []domain.Placement {
	var res []domain.Placement
	for _, p := range r.s.placements {
		if keep(p) {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	if limit > 0 && int(limit) < len(res) {
		res = res[:limit]
	}
	return res
}

type memWithdrawalRepo struct{ s *memStore }

func (r *memWithdrawalRepo) Create(
	_ context.Context,
	args repoargs.WithdrawalCreate,
) (*domain.ReferralWithdrawal, error) {
	w := domain.ReferralWithdrawal{
		ID:            r.s.nextID(),
		UserID:        args.UserID,
		Amount:        args.Amount,
		Status:        args.Status,
		WalletAddress: args.WalletAddress,
	}
	r.s.withdrawals[w.ID] = w
	return &w, nil
}

func (r *memWithdrawalRepo) FindByID(_ context.Context, id int64) (*domain.ReferralWithdrawal, error) {
	w, ok := r.s.withdrawals[id]
	if !ok {
		return nil, notFound("withdrawal", id)
	}
	return &w, nil
}

func (r *memWithdrawalRepo) LockByID(ctx context.Context, id int64) (*domain.ReferralWithdrawal, error) {
	return r.FindByID(ctx, id)
}

func (r *memWithdrawalRepo) Process(
	_ context.Context,
	args repoargs.WithdrawalProcess,
) (*domain.ReferralWithdrawal, error) {
	w, ok := r.s.withdrawals[args.ID]
	if !ok {
		return nil, notFound("withdrawal", args.ID)
	}
	processedBy := args.ProcessedBy
	w.Status = args.Status
	w.ProcessedBy = &processedBy
	w.Comment = args.Comment
	r.s.withdrawals[w.ID] = w
	return &w, nil
}

func (r *memWithdrawalRepo) ListByUser(_ context.Context, userID int64) ([]domain.ReferralWithdrawal, error) {
	var res []domain.ReferralWithdrawal
	for _, w := range r.s.withdrawals {
		if w.UserID == userID {
			res = append(res, w)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}
