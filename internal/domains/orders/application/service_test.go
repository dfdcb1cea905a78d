package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/potgreen/nursery-backend/internal/domains/access"
	ordermemory "github.com/potgreen/nursery-backend/internal/domains/orders/adapters/memory"
	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	"github.com/potgreen/nursery-backend/internal/domains/orders/ports"
)

const adminToken = "admin-token"

type stubAuthorizer struct{}

func (stubAuthorizer) Authorize(_ context.Context, credential string) (*access.AdminIdentity, error) {
	if credential != adminToken {
		return nil, fmt.Errorf("%w: unknown credential", access.ErrUnauthorized)
	}
	return &access.AdminIdentity{Subject: "admin-1", Role: "admin"}, nil
}

// countingRepo records how often the store is touched.
type countingRepo struct {
	ports.Repository
	calls atomic.Int32
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.calls.Add(1)
	return r.Repository.GetByID(ctx, id)
}

func (r *countingRepo) UpdateStatus(ctx context.Context, change ports.StatusChange) (*domain.Order, error) {
	r.calls.Add(1)
	return r.Repository.UpdateStatus(ctx, change)
}

func (r *countingRepo) List(ctx context.Context, query ports.ListQuery) ([]*domain.Order, int, error) {
	r.calls.Add(1)
	return r.Repository.List(ctx, query)
}

// staleOnceRepo fails the first status write, optionally running a
// competing write first.
type staleOnceRepo struct {
	ports.Repository
	before func()
	writes int
}

func (r *staleOnceRepo) UpdateStatus(ctx context.Context, change ports.StatusChange) (*domain.Order, error) {
	r.writes++
	if r.writes == 1 {
		if r.before != nil {
			r.before()
		}
		return nil, ports.ErrStaleWrite
	}
	return r.Repository.UpdateStatus(ctx, change)
}

// vanishingRepo fails every status write and stops finding the order once a
// write has been attempted.
type vanishingRepo struct {
	ports.Repository
	writes atomic.Int32
	reads  atomic.Int32
}

func (r *vanishingRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.reads.Add(1)
	if r.writes.Load() > 0 {
		return nil, ports.ErrNotFound
	}
	return r.Repository.GetByID(ctx, id)
}

func (r *vanishingRepo) UpdateStatus(context.Context, ports.StatusChange) (*domain.Order, error) {
	r.writes.Add(1)
	return nil, ports.ErrStaleWrite
}

// barrierRepo holds the first n reads until all of them have arrived, so
// the callers validate against the same snapshot.
type barrierRepo struct {
	ports.Repository
	reads   atomic.Int32
	limit   int32
	arrived sync.WaitGroup
}

func newBarrierRepo(repo ports.Repository, n int) *barrierRepo {
	r := &barrierRepo{Repository: repo, limit: int32(n)}
	r.arrived.Add(n)
	return r
}

func (r *barrierRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := r.Repository.GetByID(ctx, id)
	if r.reads.Add(1) <= r.limit {
		r.arrived.Done()
		r.arrived.Wait()
	}
	return order, err
}

type blockingRepo struct{ ports.Repository }

func (blockingRepo) GetByID(ctx context.Context, _ string) (*domain.Order, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingRepo) List(ctx context.Context, _ ports.ListQuery) ([]*domain.Order, int, error) {
	<-ctx.Done()
	return nil, 0, ctx.Err()
}

type brokenRepo struct{ ports.Repository }

func (brokenRepo) GetByID(context.Context, string) (*domain.Order, error) {
	return nil, errors.New("dial tcp: connection refused")
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ports.StatusChangedEvent
	err    error
}

func (n *recordingNotifier) NotifyStatusChanged(_ context.Context, event ports.StatusChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func seedOrder(t *testing.T, repo ports.Repository, email string, createdAt time.Time) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(domain.Customer{FirstName: "Rose", LastName: "Thorn", Email: email}, []domain.LineItem{
		{ProductID: "succulent-3", ProductName: "Echeveria", Quantity: 3, UnitPrice: decimal.RequireFromString("6.00")},
	}, createdAt)
	require.NoError(t, err)
	saved, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return saved
}

// forceStatus walks an order to status through the store, bypassing the
// transition table, for fixture setup.
func forceStatus(t *testing.T, repo ports.Repository, order *domain.Order, status domain.Status) *domain.Order {
	t.Helper()
	updated, err := repo.UpdateStatus(context.Background(), ports.StatusChange{
		OrderID:         order.ID,
		ExpectedStatus:  order.Status,
		ExpectedVersion: order.Version,
		NextStatus:      status,
		UpdatedAt:       order.UpdatedAt.Add(time.Second),
	})
	require.NoError(t, err)
	return updated
}

func TestUpdateStatus_RejectsInvalidTransition(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	order := seedOrder(t, repo, "o1@example.com", time.Now())

	_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "shipped"})
	require.ErrorIs(t, err, ErrInvalidTransition)

	var transitionErr *domain.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.StatusPending, transitionErr.Current)
	assert.Equal(t, domain.StatusShipped, transitionErr.Requested)
	assert.Equal(t, []domain.Status{domain.StatusProcessing, domain.StatusCancelled}, transitionErr.Allowed)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, stored)
}

func TestUpdateStatus_AppliesValidTransition(t *testing.T) {
	repo := ordermemory.NewRepository()
	notifier := &recordingNotifier{}
	svc := NewService(repo, stubAuthorizer{}, WithNotifier(notifier))
	order := seedOrder(t, repo, "o1@example.com", time.Now().Add(-time.Minute))

	updated, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: " Processing "})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)
	assert.True(t, updated.UpdatedAt.After(order.UpdatedAt))
	assert.Equal(t, order.CreatedAt, updated.CreatedAt)
	assert.Equal(t, order.Customer, updated.Customer)
	assert.Equal(t, order.LineItems, updated.LineItems)
	assert.True(t, order.TotalAmount.Equal(updated.TotalAmount))

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)

	require.Len(t, notifier.events, 1)
	event := notifier.events[0]
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, domain.StatusPending, event.PreviousStatus)
	assert.Equal(t, domain.StatusProcessing, event.Status)
	assert.Equal(t, "admin-1", event.ChangedBy)
	assert.Equal(t, "o1@example.com", event.CustomerEmail)
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	order := seedOrder(t, repo, "life@example.com", time.Now())

	prev := order.UpdatedAt
	for _, next := range []string{"processing", "shipped", "delivered", "refunded"} {
		updated, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: next})
		require.NoError(t, err, next)
		assert.Equal(t, domain.Status(next), updated.Status)
		assert.True(t, updated.UpdatedAt.After(prev))
		prev = updated.UpdatedAt
	}

	for _, next := range domain.Statuses() {
		_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: next.String()})
		assert.ErrorIs(t, err, ErrInvalidTransition, next)
	}
}

func TestUpdateStatus_UpdatedAtStrictlyIncreasesWhenClockStalls(t *testing.T) {
	repo := ordermemory.NewRepository()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(repo, stubAuthorizer{}, WithClock(func() time.Time { return created.Add(-time.Hour) }))
	order := seedOrder(t, repo, "clock@example.com", created)

	updated, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, created.Add(time.Microsecond), updated.UpdatedAt)
}

func TestUpdateStatus_FailureIsRepeatable(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	order := forceStatus(t, repo, seedOrder(t, repo, "c@example.com", time.Now()), domain.StatusCancelled)

	for i := 0; i < 3; i++ {
		_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "processing"})
		require.ErrorIs(t, err, ErrInvalidTransition)
		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Empty(t, transitionErr.Allowed)
	}
	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, stored)
}

func TestUpdateStatus_ValidationAndNotFound(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	order := seedOrder(t, repo, "v@example.com", time.Now())

	_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "teleported"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: "  ", Status: "processing"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: "missing", Status: "processing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_UnauthorizedNeverTouchesStore(t *testing.T) {
	repo := &countingRepo{Repository: ordermemory.NewRepository()}
	svc := NewService(repo, stubAuthorizer{})
	order := seedOrder(t, repo, "u@example.com", time.Now())

	for _, credential := range []string{"", "Bearer nope", "customer-token"} {
		_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: credential, OrderID: order.ID, Status: "processing"})
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: credential})
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = svc.GetOrder(context.Background(), ports.GetOrderInput{Credential: credential, OrderID: order.ID})
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
	assert.Zero(t, repo.calls.Load())
}

func TestService_WithGate(t *testing.T) {
	secret := []byte("gate-secret")
	gate, err := access.NewGate(access.Config{Secret: secret})
	require.NoError(t, err)
	repo := ordermemory.NewRepository()
	svc := NewService(repo, gate)
	order := seedOrder(t, repo, "g@example.com", time.Now())

	signer := access.Signer{Secret: secret}
	adminJWT, err := signer.Issue("admin-9", "ops@example.com", "admin", time.Minute)
	require.NoError(t, err)
	customerJWT, err := signer.Issue("cust-1", "c@example.com", "customer", time.Minute)
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), ports.GetOrderInput{Credential: "Bearer " + customerJWT, OrderID: order.ID})
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, err := svc.GetOrder(context.Background(), ports.GetOrderInput{Credential: "Bearer " + adminJWT, OrderID: order.ID})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestUpdateStatus_ConcurrentTransitionsHaveOneWinner(t *testing.T) {
	for run := 0; run < 20; run++ {
		memory := ordermemory.NewRepository()
		order := forceStatus(t, memory, seedOrder(t, memory, "race@example.com", time.Now()), domain.StatusProcessing)
		repo := newBarrierRepo(memory, 2)
		svc := NewService(repo, stubAuthorizer{})

		var (
			wg      sync.WaitGroup
			results = make([]error, 2)
			targets = []string{"shipped", "cancelled"}
		)
		for i, target := range targets {
			wg.Add(1)
			go func(i int, target string) {
				defer wg.Done()
				_, results[i] = svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: target})
			}(i, target)
		}
		wg.Wait()

		winners := 0
		var winner string
		for i, err := range results {
			if err == nil {
				winners++
				winner = targets[i]
				continue
			}
			require.ErrorIs(t, err, ErrConflict)
			var conflict *ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, domain.StatusProcessing, conflict.Expected)
		}
		require.Equal(t, 1, winners)

		stored, err := memory.GetByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Status(winner), stored.Status)
		assert.Equal(t, order.Version+1, stored.Version)
	}
}

func TestUpdateStatus_StaleWriteRetriedWhenStatusUnchanged(t *testing.T) {
	memory := ordermemory.NewRepository()
	repo := &staleOnceRepo{Repository: memory}
	svc := NewService(repo, stubAuthorizer{})
	order := seedOrder(t, memory, "retry@example.com", time.Now())

	updated, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)
	assert.Equal(t, 2, repo.writes)
}

func TestUpdateStatus_StaleWriteAfterCompetingTransitionConflicts(t *testing.T) {
	memory := ordermemory.NewRepository()
	order := seedOrder(t, memory, "lost@example.com", time.Now())
	repo := &staleOnceRepo{Repository: memory, before: func() {
		forceStatus(t, memory, order, domain.StatusCancelled)
	}}
	svc := NewService(repo, stubAuthorizer{})

	_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "processing"})
	require.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.StatusPending, conflict.Expected)
	assert.Equal(t, domain.StatusCancelled, conflict.Current)
	assert.Equal(t, domain.StatusProcessing, conflict.Requested)
	assert.Empty(t, conflict.Allowed)
	assert.Equal(t, 1, repo.writes)
}

func TestUpdateStatus_StaleWriteOnRemovedOrderIsNotFound(t *testing.T) {
	memory := ordermemory.NewRepository()
	order := seedOrder(t, memory, "gone@example.com", time.Now())
	repo := &vanishingRepo{Repository: memory}
	svc := NewService(repo, stubAuthorizer{})

	_, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "processing"})
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, int32(1), repo.writes.Load())
	assert.Equal(t, int32(2), repo.reads.Load())
}

func TestUpdateStatus_NotificationFailureDoesNotFailTransition(t *testing.T) {
	repo := ordermemory.NewRepository()
	notifier := &recordingNotifier{err: errors.New("broker down")}
	svc := NewService(repo, stubAuthorizer{}, WithNotifier(notifier))
	order := seedOrder(t, repo, "n@example.com", time.Now())

	updated, err := svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: order.ID, Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, updated.Status)
	assert.Len(t, notifier.events, 1)
}

func TestService_StoreTimeout(t *testing.T) {
	svc := NewService(blockingRepo{}, stubAuthorizer{}, WithStoreTimeout(20*time.Millisecond))

	_, err := svc.GetOrder(context.Background(), ports.GetOrderInput{Credential: adminToken, OrderID: "slow"})
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken})
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = svc.UpdateStatus(context.Background(), ports.UpdateStatusInput{Credential: adminToken, OrderID: "slow", Status: "processing"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestService_StoreUnavailable(t *testing.T) {
	svc := NewService(brokenRepo{}, stubAuthorizer{})

	_, err := svc.GetOrder(context.Background(), ports.GetOrderInput{Credential: adminToken, OrderID: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestListOrders_FiltersAndPaginates(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})

	for i := 0; i < 15; i++ {
		created := time.Date(2024, 1, 1+i, 8, 0, 0, 0, time.UTC)
		order := seedOrder(t, repo, fmt.Sprintf("jan%d@example.com", i), created)
		order = forceStatus(t, repo, order, domain.StatusProcessing)
		order = forceStatus(t, repo, order, domain.StatusShipped)
		forceStatus(t, repo, order, domain.StatusDelivered)
	}
	seedOrder(t, repo, "pending-jan@example.com", time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC))
	feb := seedOrder(t, repo, "feb@example.com", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	forceStatus(t, repo, forceStatus(t, repo, forceStatus(t, repo, feb, domain.StatusProcessing), domain.StatusShipped), domain.StatusDelivered)
	lastDay := seedOrder(t, repo, "lastday@example.com", time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC))

	page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{
		Credential: adminToken,
		Status:     "delivered",
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
		Page:       2,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 5)
	for i := 1; i < len(page.Items); i++ {
		assert.True(t, page.Items[i-1].CreatedAt.After(page.Items[i].CreatedAt))
	}
	for _, item := range page.Items {
		assert.Equal(t, domain.StatusDelivered, item.Status)
	}

	all, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Status: "all", StartDate: "2024-01-01", EndDate: "2024-01-31", PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 17, all.Total)
	assert.Equal(t, lastDay.ID, all.Items[0].ID)
}

func TestListOrders_PaginationCoversEveryMatchOnce(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 23; i++ {
		// pairs share a timestamp to exercise the id tiebreak
		seedOrder(t, repo, fmt.Sprintf("p%d@example.com", i), at.Add(time.Duration(i/2)*time.Minute))
	}

	for _, size := range []int{1, 4, 7, 10, 23, 50} {
		seen := map[string]int{}
		first, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, PageSize: size})
		require.NoError(t, err)
		require.Equal(t, (23+size-1)/size, first.TotalPages)
		for p := 1; p <= first.TotalPages; p++ {
			page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Page: p, PageSize: size})
			require.NoError(t, err)
			assert.Equal(t, 23, page.Total)
			for _, item := range page.Items {
				seen[item.ID]++
			}
		}
		assert.Len(t, seen, 23, "page size %d", size)
		for id, count := range seen {
			assert.Equal(t, 1, count, "order %s with page size %d", id, size)
		}
	}
}

func TestListOrders_Defaults(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})

	page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestListOrders_Search(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	target := seedOrder(t, repo, "Willow.Branch@example.com", time.Now())
	seedOrder(t, repo, "oak@example.com", time.Now())

	page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Search: "willow"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, target.ID, page.Items[0].ID)

	page, err = svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Search: target.ID[:8]})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestListOrders_RejectsInvalidInput(t *testing.T) {
	svc := NewService(ordermemory.NewRepository(), stubAuthorizer{})

	cases := map[string]ports.ListOrdersInput{
		"unknown status":  {Status: "lost"},
		"bad start date":  {StartDate: "01/02/2024"},
		"bad end date":    {EndDate: "tomorrow"},
		"inverted range":  {StartDate: "2024-02-01", EndDate: "2024-01-01"},
		"negative page":   {Page: -1},
		"page size large": {PageSize: MaxPageSize + 1},
		"page size small": {PageSize: -5},
		"page overflows":  {Page: math.MaxInt},
		"malformed page":  {Malformed: []string{"page"}},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			input.Credential = adminToken
			_, err := svc.ListOrders(context.Background(), input)
			require.ErrorIs(t, err, ErrValidation)
			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestListOrders_PageOffsetNeverWrapsToFirstPage(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	for i := 0; i < 3; i++ {
		seedOrder(t, repo, fmt.Sprintf("far%d@example.com", i), time.Now())
	}

	_, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Page: math.MaxInt, PageSize: 10})
	require.ErrorIs(t, err, ErrValidation)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "is too large", validation.Fields["page"])

	page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Page: math.MaxInt/10 + 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Items)
}

func TestListOrders_MalformedPagingReportsIntegerExpected(t *testing.T) {
	svc := NewService(ordermemory.NewRepository(), stubAuthorizer{})

	_, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, Malformed: []string{"page", "limit"}})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "must be an integer", validation.Fields["page"])
	assert.Equal(t, "must be an integer", validation.Fields["limit"])
}

func TestListOrders_SameDayRangeIsValid(t *testing.T) {
	repo := ordermemory.NewRepository()
	svc := NewService(repo, stubAuthorizer{})
	seedOrder(t, repo, "noon@example.com", time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC))

	page, err := svc.ListOrders(context.Background(), ports.ListOrdersInput{Credential: adminToken, StartDate: "2024-03-03", EndDate: "2024-03-03"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = svc.ListOrders(context.Background(), ports.ListOrdersInput{
		Credential: adminToken,
		StartDate:  "2024-03-03T12:00:00Z",
		EndDate:    "2024-03-03T12:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}
