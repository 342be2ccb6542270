//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"mobirent/internal/domain/fleet"
	domres "mobirent/internal/domain/reservation"
	"mobirent/internal/domain/user"
	"mobirent/internal/infra"
	"mobirent/internal/pkg/clock"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/usecase/commands"
	"mobirent/internal/usecase/queries"
	"mobirent/internal/usecase/shared"
	"mobirent/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// memStore is an in-memory stand-in for the transactional ports. A single
// instance backs the unit of work, the repositories and the read store, so
// command side effects are observable directly on its maps.
type memStore struct {
	reservations map[uuid.UUID]*domres.Reservation
	vehicles     map[uuid.UUID]*fleet.Vehicle
	branches     map[uuid.UUID]*fleet.Branch
	addOns       map[uuid.UUID]domres.CatalogEntry
	users        map[uuid.UUID]*user.User
	updateErr    error
}

func newMemStore() *memStore {
	return &memStore{
		reservations: map[uuid.UUID]*domres.Reservation{},
		vehicles:     map[uuid.UUID]*fleet.Vehicle{},
		branches:     map[uuid.UUID]*fleet.Branch{},
		addOns:       map[uuid.UUID]domres.CatalogEntry{},
		users:        map[uuid.UUID]*user.User{},
	}
}

func (s *memStore) Create(_ context.Context, res *domres.Reservation) (uuid.UUID, error) {
	s.reservations[res.ID()] = res
	return res.ID(), nil
}

func (s *memStore) Update(_ context.Context, res *domres.Reservation) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.reservations[res.ID()] = res
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*domres.Reservation, error) {
	res, ok := s.reservations[id]
	if !ok {
		return nil, infra.NotFoundErr("reservation")
	}
	return res, nil
}

func (s *memStore) HasOverlap(_ context.Context, vehicleID uuid.UUID, dates domres.DateRange, statuses []domres.Status, exclude uuid.UUID) (bool, error) {
	for _, res := range s.reservations {
		if res.ID() == exclude || res.VehicleID() != vehicleID {
			continue
		}
		if !statusIn(res.Status(), statuses) {
			continue
		}
		if res.Dates().Overlaps(dates) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) CommittedVehicleIDs(_ context.Context, dates domres.DateRange, statuses []domres.Status, exclude uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, res := range s.reservations {
		if res.ID() == exclude || !statusIn(res.Status(), statuses) {
			continue
		}
		if res.Dates().Overlaps(dates) {
			ids = append(ids, res.VehicleID())
		}
	}
	return ids, nil
}

func statusIn(status domres.Status, set []domres.Status) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func (s *memStore) FindByBranch(_ context.Context, branchID uuid.UUID) ([]*fleet.Vehicle, error) {
	var out []*fleet.Vehicle
	for _, v := range s.vehicles {
		if v.BranchID() == branchID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *memStore) BranchByID(_ context.Context, id uuid.UUID) (*fleet.Branch, error) {
	b, ok := s.branches[id]
	if !ok {
		return nil, infra.NotFoundErr("branch")
	}
	return b, nil
}

func (s *memStore) AddOnsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domres.CatalogEntry, error) {
	out := map[uuid.UUID]domres.CatalogEntry{}
	for _, id := range ids {
		if entry, ok := s.addOns[id]; ok {
			out[id] = entry
		}
	}
	return out, nil
}

func (s *memStore) UserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, infra.NotFoundErr("user")
	}
	return u, nil
}

func (s *memStore) UserByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email().Value() == email {
			return u, nil
		}
	}
	return nil, infra.NotFoundErr("user")
}

// Vehicle findByID for the VehicleRepository interface: memStore already has
// FindByID for reservations, so vehicles go through a wrapper.
type vehicleRepoView struct{ s *memStore }

func (v vehicleRepoView) FindByID(_ context.Context, id uuid.UUID) (*fleet.Vehicle, error) {
	veh, ok := v.s.vehicles[id]
	if !ok {
		return nil, infra.NotFoundErr("vehicle")
	}
	return veh, nil
}

func (v vehicleRepoView) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]*fleet.Vehicle, error) {
	return v.s.FindByBranch(ctx, branchID)
}

func (v vehicleRepoView) Update(_ context.Context, veh *fleet.Vehicle) error {
	v.s.vehicles[veh.ID()] = veh
	return nil
}

// viewStore renders reservation views out of the in-memory maps, enough for
// the command layer's post-commit reads.
type viewStore struct{ s *memStore }

func (v viewStore) FindByID(_ context.Context, id uuid.UUID) (*queries.ReservationView, error) {
	res, ok := v.s.reservations[id]
	if !ok {
		return nil, infra.NotFoundErr("reservation")
	}
	view := &queries.ReservationView{
		ID:         res.ID(),
		Number:     res.Number(),
		UserID:     res.UserID(),
		VehicleID:  res.VehicleID(),
		StartDate:  res.Dates().Start(),
		EndDate:    res.Dates().End(),
		TotalCents: res.TotalCost().Cents(),
		Status:     res.Status().String(),
		CreatedAt:  res.CreatedAt(),
	}
	if u, ok := v.s.users[res.UserID()]; ok {
		view.UserEmail = u.Email().Value()
		view.UserName = u.DisplayName()
	}
	if veh, ok := v.s.vehicles[res.VehicleID()]; ok {
		view.VehicleBrand = veh.Brand()
		view.VehicleModel = veh.Model()
		view.VehiclePlate = veh.LicensePlate()
	}
	for _, line := range res.AddOns() {
		view.AddOns = append(view.AddOns, queries.AddOnView{
			AddOnID:        line.AddOnID,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return view, nil
}

func (v viewStore) FindByNumber(context.Context, string) (*queries.ReservationView, error) {
	return nil, infra.NotFoundErr("reservation")
}

func (v viewStore) FindByUserID(context.Context, uuid.UUID) ([]*queries.ReservationListItem, error) {
	return nil, nil
}

func (v viewStore) FindAll(context.Context) ([]*queries.ReservationListItem, error) {
	return nil, nil
}

func (v viewStore) SumRevenueCents(context.Context) (int64, error) { return 0, nil }

type scriptedGateway struct {
	result commands.GatewayResult
	err    error
	calls  int
}

func (g *scriptedGateway) Process(context.Context, commands.CardDetails, int64) (commands.GatewayResult, error) {
	g.calls++
	return g.result, g.err
}

type capturePublisher struct {
	events []commands.ReservationEvent
}

func (p *capturePublisher) Publish(_ context.Context, event commands.ReservationEvent) error {
	p.events = append(p.events, event)
	return nil
}

// uowAdapter narrows memStore's vehicle accessors to the repository port.
type uowAdapter struct{ s *memStore }

func (a uowAdapter) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, txAdapter{a.s})
}

func (a uowAdapter) Reads() shared.CommandReads { return a.s }

type txAdapter struct{ s *memStore }

func (t txAdapter) Reservations() shared.ReservationRepository { return t.s }
func (t txAdapter) Vehicles() shared.VehicleRepository         { return vehicleRepoView{t.s} }
func (t txAdapter) Reads() shared.CommandReads                 { return t.s }

type fixture struct {
	store     *memStore
	gateway   *scriptedGateway
	publisher *capturePublisher
	clk       *clock.MockClock
	commands  commands.ReservationCommands
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	gateway := &scriptedGateway{result: commands.GatewayResult{Status: commands.GatewayApproved, TransactionID: "txn-1"}}
	publisher := &capturePublisher{}
	clk := clock.NewMockClock(testNow)

	return &fixture{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		clk:       clk,
		commands: commands.NewReservationCommands(
			uowAdapter{store},
			gateway,
			publisher,
			queries.NewReservationQueries(viewStore{store}),
			clk,
			30*time.Minute,
			domres.DefaultRefundPolicy(),
		),
	}
}

func (f *fixture) seedUser(t *testing.T) *user.User {
	t.Helper()
	email, err := user.NewEmail("rider@example.com")
	require.NoError(t, err)
	u := user.ReconstructUser(uuid.New(), email, "rider", "$2a$10$hash", user.RoleCustomer, testNow)
	f.store.users[u.ID()] = u
	return u
}

func (f *fixture) seedVehicle(b *builder.VehicleBuilder) *fleet.Vehicle {
	v := b.BuildDomain()
	f.store.vehicles[v.ID()] = v
	return v
}

func (f *fixture) seedBranch() *fleet.Branch {
	b := &fleet.Branch{ID: uuid.New(), Name: "Centre", Address: "1 Main St"}
	f.store.branches[b.ID] = b
	return b
}

func (f *fixture) seedReservation(rb *builder.ReservationBuilder) *domres.Reservation {
	res := rb.BuildDomain()
	f.store.reservations[res.ID()] = res
	return res
}

func TestReservationCommands_Create(t *testing.T) {
	t.Run("creates a pending reservation priced per day", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branch.ID).WithRate(10000))

		start := testNow.AddDate(0, 0, 10)
		view, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: branch.ID,
			ReturnBranchID: branch.ID,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 3),
		}, u.ID())

		require.NoError(t, err)
		assert.Equal(t, "pending", view.Status)
		assert.Equal(t, int64(30000), view.TotalCents)
		assert.Regexp(t, `^RES-\d{8}-[0-9A-F]{6}$`, view.Number)
	})

	t.Run("rejects an unavailable vehicle", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branch.ID).Unavailable())

		start := testNow.AddDate(0, 0, 10)
		_, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: branch.ID,
			ReturnBranchID: branch.ID,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 1),
		}, u.ID())

		assert.ErrorIs(t, err, commands.ErrVehicleUnavailable)
	})

	t.Run("rejects an overlapping booking for the same vehicle", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branch.ID))

		start := testNow.AddDate(0, 0, 10)
		f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			WithDates(start, start.AddDate(0, 0, 4)).
			With(func(b *builder.ReservationBuilder) { b.VehicleID = vehicle.ID() }))

		_, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: branch.ID,
			ReturnBranchID: branch.ID,
			StartDate:      start.AddDate(0, 0, 2),
			EndDate:        start.AddDate(0, 0, 6),
		}, u.ID())

		assert.ErrorIs(t, err, commands.ErrOverlappingReservation)
	})

	t.Run("allows back to back bookings sharing a boundary day", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branch.ID))

		start := testNow.AddDate(0, 0, 10)
		f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			WithDates(start, start.AddDate(0, 0, 2)).
			With(func(b *builder.ReservationBuilder) { b.VehicleID = vehicle.ID() }))

		_, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: branch.ID,
			ReturnBranchID: branch.ID,
			StartDate:      start.AddDate(0, 0, 2),
			EndDate:        start.AddDate(0, 0, 4),
		}, u.ID())

		assert.NoError(t, err)
	})

	t.Run("ignores cancelled reservations when checking overlap", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branch.ID))

		start := testNow.AddDate(0, 0, 10)
		f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusCancelled).
			WithDates(start, start.AddDate(0, 0, 4)).
			With(func(b *builder.ReservationBuilder) { b.VehicleID = vehicle.ID() }))

		_, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: branch.ID,
			ReturnBranchID: branch.ID,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 2),
		}, u.ID())

		assert.NoError(t, err)
	})

	t.Run("unknown branch", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		vehicle := f.seedVehicle(builder.NewVehicleBuilder())

		start := testNow.AddDate(0, 0, 10)
		_, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: uuid.New(),
			ReturnBranchID: uuid.New(),
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, 1),
		}, u.ID())

		assert.ErrorIs(t, err, commands.ErrBranchNotFound)
	})

	t.Run("rejects a range ending before it starts", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branch.ID))

		start := testNow.AddDate(0, 0, 10)
		_, err := f.commands.Create(context.Background(), commands.CreateReservationInput{
			VehicleID:      vehicle.ID(),
			PickupBranchID: branch.ID,
			ReturnBranchID: branch.ID,
			StartDate:      start,
			EndDate:        start.AddDate(0, 0, -1),
		}, u.ID())

		assert.True(t, errs.Is(err, commands.ErrValidation))
	})
}

func TestReservationCommands_Pay(t *testing.T) {
	seedPending := func(f *fixture, t *testing.T) (*domres.Reservation, *user.User, *fleet.Vehicle) {
		t.Helper()
		u := f.seedUser(t)
		vehicle := f.seedVehicle(builder.NewVehicleBuilder())
		res := f.seedReservation(builder.NewReservationBuilder(testNow).With(func(b *builder.ReservationBuilder) {
			b.UserID = u.ID()
			b.VehicleID = vehicle.ID()
		}))
		return res, u, vehicle
	}

	card := commands.CardDetails{Number: "4242424242424242", Expiry: "12/26", CVV: "123", Method: "card"}

	t.Run("approved payment confirms and publishes", func(t *testing.T) {
		f := newFixture(t)
		res, u, vehicle := seedPending(f, t)

		result, err := f.commands.Pay(context.Background(), res.ID(), u.ID(), card)

		require.NoError(t, err)
		assert.Equal(t, domres.PaymentApproved, result.Status)
		assert.Equal(t, domres.StatusConfirmed, f.store.reservations[res.ID()].Status())
		assert.False(t, f.store.vehicles[vehicle.ID()].IsAvailable())
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, commands.EventReservationConfirmed, f.publisher.events[0].Kind)
		assert.Equal(t, "rider@example.com", f.publisher.events[0].UserEmail)
	})

	t.Run("declined payment keeps the reservation pending", func(t *testing.T) {
		f := newFixture(t)
		res, u, vehicle := seedPending(f, t)
		f.gateway.result = commands.GatewayResult{Status: commands.GatewayRejected, TransactionID: "txn-2"}

		result, err := f.commands.Pay(context.Background(), res.ID(), u.ID(), card)

		assert.ErrorIs(t, err, commands.ErrPaymentDeclined)
		require.NotNil(t, result)
		assert.Equal(t, domres.PaymentRejected, result.Status)
		assert.Equal(t, domres.StatusPending, f.store.reservations[res.ID()].Status())
		assert.True(t, f.store.vehicles[vehicle.ID()].IsAvailable())
		assert.Empty(t, f.publisher.events)
	})

	t.Run("pending gateway outcome leaves the reservation pending without error", func(t *testing.T) {
		f := newFixture(t)
		res, u, _ := seedPending(f, t)
		f.gateway.result = commands.GatewayResult{Status: commands.GatewayPending, TransactionID: "txn-3"}

		result, err := f.commands.Pay(context.Background(), res.ID(), u.ID(), card)

		require.NoError(t, err)
		assert.Equal(t, domres.PaymentPending, result.Status)
		assert.Equal(t, domres.StatusPending, f.store.reservations[res.ID()].Status())
		assert.Empty(t, f.publisher.events)
	})

	t.Run("expired window cancels before reporting the failure", func(t *testing.T) {
		f := newFixture(t)
		res, u, _ := seedPending(f, t)
		f.clk.Add(31 * time.Minute)

		_, err := f.commands.Pay(context.Background(), res.ID(), u.ID(), card)

		assert.ErrorIs(t, err, commands.ErrPaymentWindowExpired)
		stored := f.store.reservations[res.ID()]
		assert.Equal(t, domres.StatusCancelled, stored.Status())
		assert.Equal(t, domres.PaymentRejected, stored.Payment().Status)
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("expired window persistence failure is a storage error", func(t *testing.T) {
		f := newFixture(t)
		res, u, _ := seedPending(f, t)
		f.clk.Add(31 * time.Minute)
		f.store.updateErr = errs.New("connection reset")

		_, err := f.commands.Pay(context.Background(), res.ID(), u.ID(), card)

		assert.True(t, errs.Is(err, commands.ErrDatabaseOperationFailed))
		assert.False(t, errs.Is(err, commands.ErrPaymentWindowExpired))
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("another user's reservation is off limits", func(t *testing.T) {
		f := newFixture(t)
		res, _, _ := seedPending(f, t)

		_, err := f.commands.Pay(context.Background(), res.ID(), uuid.New(), card)

		assert.ErrorIs(t, err, commands.ErrNotOwner)
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("already confirmed", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			With(func(b *builder.ReservationBuilder) { b.UserID = u.ID() }))

		_, err := f.commands.Pay(context.Background(), res.ID(), u.ID(), card)

		assert.ErrorIs(t, err, commands.ErrInvalidState)
	})
}

func TestReservationCommands_Cancel(t *testing.T) {
	seedConfirmed := func(f *fixture, t *testing.T, startIn time.Duration) (*domres.Reservation, *user.User, *fleet.Vehicle) {
		t.Helper()
		u := f.seedUser(t)
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().Unavailable())
		start := testNow.Add(startIn).Truncate(24 * time.Hour)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			WithDates(start, start.AddDate(0, 0, 2)).
			With(func(b *builder.ReservationBuilder) {
				b.UserID = u.ID()
				b.VehicleID = vehicle.ID()
			}))
		return res, u, vehicle
	}

	t.Run("full refund far from pickup", func(t *testing.T) {
		f := newFixture(t)
		res, u, vehicle := seedConfirmed(f, t, 10*24*time.Hour)

		result, err := f.commands.Cancel(context.Background(), res.ID(), u.ID())

		require.NoError(t, err)
		assert.Equal(t, domres.RefundTotal, result.RefundType)
		assert.Equal(t, int64(20000), result.RefundCents)
		assert.Equal(t, domres.StatusCancelled, result.Status)
		assert.True(t, f.store.vehicles[vehicle.ID()].IsAvailable())
		require.Len(t, f.publisher.events, 1)
		event := f.publisher.events[0]
		assert.Equal(t, commands.EventReservationCancelled, event.Kind)
		require.NotNil(t, event.RefundCents)
		assert.Equal(t, int64(20000), *event.RefundCents)
		assert.Equal(t, "total", event.RefundType)
	})

	t.Run("partial refund close to pickup", func(t *testing.T) {
		f := newFixture(t)
		res, u, _ := seedConfirmed(f, t, 3*24*time.Hour)

		result, err := f.commands.Cancel(context.Background(), res.ID(), u.ID())

		require.NoError(t, err)
		assert.Equal(t, domres.RefundPartial, result.RefundType)
		assert.Equal(t, int64(16000), result.RefundCents)
	})

	t.Run("no refund on the eve of pickup", func(t *testing.T) {
		f := newFixture(t)
		res, u, _ := seedConfirmed(f, t, 24*time.Hour)

		result, err := f.commands.Cancel(context.Background(), res.ID(), u.ID())

		require.NoError(t, err)
		assert.Equal(t, domres.RefundNone, result.RefundType)
		assert.Zero(t, result.RefundCents)
	})

	t.Run("maintenance flag survives the release", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().UnderMaintenance("gearbox"))
		start := testNow.AddDate(0, 0, 10)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			WithDates(start, start.AddDate(0, 0, 2)).
			With(func(b *builder.ReservationBuilder) {
				b.UserID = u.ID()
				b.VehicleID = vehicle.ID()
			}))

		_, err := f.commands.Cancel(context.Background(), res.ID(), u.ID())

		require.NoError(t, err)
		assert.False(t, f.store.vehicles[vehicle.ID()].IsAvailable())
		assert.True(t, f.store.vehicles[vehicle.ID()].NeedsMaintenance())
	})

	t.Run("pending reservations cannot be cancelled through refunds", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			With(func(b *builder.ReservationBuilder) { b.UserID = u.ID() }))

		_, err := f.commands.Cancel(context.Background(), res.ID(), u.ID())

		assert.ErrorIs(t, err, commands.ErrInvalidState)
	})
}

func TestReservationCommands_Pickup(t *testing.T) {
	seedConfirmedAt := func(f *fixture, t *testing.T, vb *builder.VehicleBuilder) (*domres.Reservation, *fleet.Vehicle, uuid.UUID) {
		t.Helper()
		u := f.seedUser(t)
		branch := f.seedBranch()
		vehicle := f.seedVehicle(vb.WithBranch(branch.ID))
		start := testNow.AddDate(0, 0, 1)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			WithDates(start, start.AddDate(0, 0, 2)).
			With(func(b *builder.ReservationBuilder) {
				b.UserID = u.ID()
				b.VehicleID = vehicle.ID()
				b.PickupBranchID = branch.ID
			}))
		return res, vehicle, branch.ID
	}

	t.Run("eligible vehicle is handed over", func(t *testing.T) {
		f := newFixture(t)
		res, vehicle, _ := seedConfirmedAt(f, t, builder.NewVehicleBuilder())

		result, err := f.commands.Pickup(context.Background(), res.ID(), nil)

		require.NoError(t, err)
		assert.True(t, result.PickedUp)
		assert.Equal(t, domres.StatusPickedUp, f.store.reservations[res.ID()].Status())
		assert.False(t, f.store.vehicles[vehicle.ID()].IsAvailable())
	})

	t.Run("eligible vehicle wins over a stray replacement id", func(t *testing.T) {
		f := newFixture(t)
		res, vehicle, branchID := seedConfirmedAt(f, t, builder.NewVehicleBuilder())
		other := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branchID))

		otherID := other.ID()
		result, err := f.commands.Pickup(context.Background(), res.ID(), &otherID)

		require.NoError(t, err)
		assert.True(t, result.PickedUp)
		assert.False(t, result.OriginalVehicleUnavailable)
		assert.Equal(t, vehicle.ID(), f.store.reservations[res.ID()].VehicleID())
		assert.True(t, f.store.vehicles[other.ID()].IsAvailable())
	})

	t.Run("maintenance vehicle yields candidates without state change", func(t *testing.T) {
		f := newFixture(t)
		res, _, branchID := seedConfirmedAt(f, t, builder.NewVehicleBuilder().UnderMaintenance("brakes"))
		pricier := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branchID).WithRate(15000))
		cheaper := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branchID).WithRate(8000))

		result, err := f.commands.Pickup(context.Background(), res.ID(), nil)

		require.NoError(t, err)
		assert.False(t, result.PickedUp)
		assert.True(t, result.OriginalVehicleUnavailable)
		require.NotNil(t, result.Replacements)
		require.Len(t, result.Replacements.HigherOrEqualPrice, 1)
		assert.Equal(t, pricier.ID(), result.Replacements.HigherOrEqualPrice[0].ID)
		require.Len(t, result.Replacements.LowerPrice, 1)
		assert.Equal(t, cheaper.ID(), result.Replacements.LowerPrice[0].ID)
		assert.Equal(t, domres.StatusConfirmed, f.store.reservations[res.ID()].Status())
	})

	t.Run("replacement keeps the original price", func(t *testing.T) {
		f := newFixture(t)
		res, original, branchID := seedConfirmedAt(f, t, builder.NewVehicleBuilder().Unavailable().WithRate(10000))
		replacement := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branchID).WithRate(15000))
		previousTotal := res.TotalCost().Cents()

		replacementID := replacement.ID()
		result, err := f.commands.Pickup(context.Background(), res.ID(), &replacementID)

		require.NoError(t, err)
		assert.True(t, result.PickedUp)
		stored := f.store.reservations[res.ID()]
		assert.Equal(t, replacement.ID(), stored.VehicleID())
		assert.Equal(t, previousTotal, stored.TotalCost().Cents())
		assert.True(t, f.store.vehicles[original.ID()].IsAvailable())
		assert.False(t, f.store.vehicles[replacement.ID()].IsAvailable())
	})

	t.Run("vehicles committed elsewhere are not offered", func(t *testing.T) {
		f := newFixture(t)
		res, _, branchID := seedConfirmedAt(f, t, builder.NewVehicleBuilder().UnderMaintenance("engine"))
		taken := f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branchID).WithRate(12000))
		f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(domres.StatusConfirmed).
			WithDates(res.Dates().Start(), res.Dates().End()).
			With(func(b *builder.ReservationBuilder) { b.VehicleID = taken.ID() }))

		result, err := f.commands.Pickup(context.Background(), res.ID(), nil)

		require.NoError(t, err)
		require.NotNil(t, result.Replacements)
		assert.Empty(t, result.Replacements.HigherOrEqualPrice)
		assert.Empty(t, result.Replacements.LowerPrice)
	})

	t.Run("a choice outside the pool is rejected with the candidates attached", func(t *testing.T) {
		f := newFixture(t)
		res, _, branchID := seedConfirmedAt(f, t, builder.NewVehicleBuilder().UnderMaintenance("engine"))
		f.seedVehicle(builder.NewVehicleBuilder().WithBranch(branchID).WithRate(9000))
		outsider := uuid.New()

		result, err := f.commands.Pickup(context.Background(), res.ID(), &outsider)

		assert.ErrorIs(t, err, commands.ErrReplacementNotEligible)
		require.NotNil(t, result)
		require.NotNil(t, result.Replacements)
		assert.Len(t, result.Replacements.LowerPrice, 1)
		assert.Equal(t, domres.StatusConfirmed, f.store.reservations[res.ID()].Status())
	})

	t.Run("pickup requires a confirmed reservation", func(t *testing.T) {
		f := newFixture(t)
		u := f.seedUser(t)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			With(func(b *builder.ReservationBuilder) { b.UserID = u.ID() }))

		_, err := f.commands.Pickup(context.Background(), res.ID(), nil)

		assert.ErrorIs(t, err, commands.ErrInvalidState)
	})
}

func TestReservationCommands_UpdateStatus(t *testing.T) {
	seed := func(f *fixture, t *testing.T, status domres.Status) (*domres.Reservation, *fleet.Vehicle) {
		t.Helper()
		f.seedUser(t)
		vehicle := f.seedVehicle(builder.NewVehicleBuilder())
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(status).
			With(func(b *builder.ReservationBuilder) { b.VehicleID = vehicle.ID() }))
		return res, vehicle
	}

	t.Run("return flags the vehicle for maintenance", func(t *testing.T) {
		f := newFixture(t)
		res, vehicle := seed(f, t, domres.StatusPickedUp)

		view, err := f.commands.UpdateStatus(context.Background(), res.ID(), domres.StatusReturned, "full inspection")

		require.NoError(t, err)
		assert.Equal(t, "returned", view.Status)
		stored := f.store.vehicles[vehicle.ID()]
		assert.True(t, stored.NeedsMaintenance())
		assert.Equal(t, "full inspection", stored.MaintenanceReason())
	})

	t.Run("return without a reason is refused", func(t *testing.T) {
		f := newFixture(t)
		res, _ := seed(f, t, domres.StatusPickedUp)

		_, err := f.commands.UpdateStatus(context.Background(), res.ID(), domres.StatusReturned, "")

		assert.ErrorIs(t, err, commands.ErrMaintenanceReasonRequired)
		assert.Equal(t, domres.StatusPickedUp, f.store.reservations[res.ID()].Status())
	})

	t.Run("completion after return", func(t *testing.T) {
		f := newFixture(t)
		res, _ := seed(f, t, domres.StatusReturned)

		view, err := f.commands.UpdateStatus(context.Background(), res.ID(), domres.StatusCompleted, "")

		require.NoError(t, err)
		assert.Equal(t, "completed", view.Status)
	})

	t.Run("illegal jump is refused", func(t *testing.T) {
		f := newFixture(t)
		res, _ := seed(f, t, domres.StatusPending)

		_, err := f.commands.UpdateStatus(context.Background(), res.ID(), domres.StatusCompleted, "")

		assert.True(t, errs.Is(err, commands.ErrInvalidTransition))
	})

	t.Run("cancel releases the vehicle", func(t *testing.T) {
		f := newFixture(t)
		res, vehicle := seed(f, t, domres.StatusConfirmed)
		f.store.vehicles[vehicle.ID()].MarkUnavailable()

		_, err := f.commands.UpdateStatus(context.Background(), res.ID(), domres.StatusCancelled, "")

		require.NoError(t, err)
		assert.True(t, f.store.vehicles[vehicle.ID()].IsAvailable())
	})
}

func TestReservationCommands_UpdateAddOns(t *testing.T) {
	gps := domres.CatalogEntry{ID: uuid.New(), Name: "GPS", PriceCents: 500}
	seat := domres.CatalogEntry{ID: uuid.New(), Name: "Child seat", PriceCents: 800}

	seed := func(f *fixture, t *testing.T, status domres.Status) *domres.Reservation {
		t.Helper()
		f.seedUser(t)
		vehicle := f.seedVehicle(builder.NewVehicleBuilder().WithRate(10000))
		f.store.addOns[gps.ID] = gps
		f.store.addOns[seat.ID] = seat
		start := testNow.AddDate(0, 0, 10)
		res := f.seedReservation(builder.NewReservationBuilder(testNow).
			WithStatus(status).
			WithDates(start, start.AddDate(0, 0, 2)).
			With(func(b *builder.ReservationBuilder) { b.VehicleID = vehicle.ID() }))
		return res
	}

	t.Run("lines are repriced from the catalog", func(t *testing.T) {
		f := newFixture(t)
		res := seed(f, t, domres.StatusPending)

		view, err := f.commands.UpdateAddOns(context.Background(), res.ID(), []commands.AddOnItemInput{
			{AddOnID: gps.ID, Quantity: 2},
			{AddOnID: seat.ID, Quantity: 1},
		})

		require.NoError(t, err)
		// 2 days x 10000 base + 2x500 + 1x800
		assert.Equal(t, int64(21800), view.TotalCents)
		require.Len(t, view.AddOns, 2)
	})

	t.Run("zero quantity removes the line", func(t *testing.T) {
		f := newFixture(t)
		res := seed(f, t, domres.StatusConfirmed)
		_, err := f.commands.UpdateAddOns(context.Background(), res.ID(), []commands.AddOnItemInput{
			{AddOnID: gps.ID, Quantity: 1},
		})
		require.NoError(t, err)

		view, err := f.commands.UpdateAddOns(context.Background(), res.ID(), []commands.AddOnItemInput{
			{AddOnID: gps.ID, Quantity: 0},
		})

		require.NoError(t, err)
		assert.Empty(t, view.AddOns)
		assert.Equal(t, int64(20000), view.TotalCents)
	})

	t.Run("unknown add-on", func(t *testing.T) {
		f := newFixture(t)
		res := seed(f, t, domres.StatusPending)

		_, err := f.commands.UpdateAddOns(context.Background(), res.ID(), []commands.AddOnItemInput{
			{AddOnID: uuid.New(), Quantity: 1},
		})

		assert.True(t, errs.Is(err, commands.ErrAddOnNotFound))
	})

	t.Run("still changeable after pickup", func(t *testing.T) {
		f := newFixture(t)
		res := seed(f, t, domres.StatusPickedUp)

		view, err := f.commands.UpdateAddOns(context.Background(), res.ID(), []commands.AddOnItemInput{
			{AddOnID: gps.ID, Quantity: 1},
		})

		require.NoError(t, err)
		require.Len(t, view.AddOns, 1)
		assert.Equal(t, int64(20500), view.TotalCents)
	})

	t.Run("locked after return", func(t *testing.T) {
		f := newFixture(t)
		res := seed(f, t, domres.StatusReturned)

		_, err := f.commands.UpdateAddOns(context.Background(), res.ID(), []commands.AddOnItemInput{
			{AddOnID: gps.ID, Quantity: 1},
		})

		assert.ErrorIs(t, err, commands.ErrInvalidState)
	})
}
