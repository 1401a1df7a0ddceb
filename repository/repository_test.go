package repository

import (
	"context"
	"testing"
	"time"

	"restaurant-api/config"
	"restaurant-api/models"
	"restaurant-api/statemachine"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := config.OpenTestDB()
	require.NoError(t, err)
	return New(db)
}

func seedUser(t *testing.T, r *Repository, id string) {
	t.Helper()
	require.NoError(t, r.db.Create(&models.User{
		ID:           id,
		Name:         "Asha",
		Email:        id + "@example.com",
		PasswordHash: "x",
		Role:         models.RoleUser,
	}).Error)
}

func seedOrder(t *testing.T, r *Repository, id, uid string, at time.Time) {
	t.Helper()
	require.NoError(t, r.SaveOrder(context.Background(), &models.Order{
		ID:          id,
		Items:       []models.OrderItem{{Name: "Momo", Price: 12.99, Quantity: 2}},
		Subtotal:    "25.98",
		Total:       "25.98",
		Status:      models.StatusPending,
		UserDetails: models.UserDetails{UID: uid, Email: "asha@example.com"},
		CreatedAt:   at,
	}))
}

func TestAdvanceOrderWalksTheWorkflow(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	seedOrder(t, r, "pi_1", "u1", time.Now())

	order, prev, err := r.AdvanceOrder(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, prev)
	assert.Equal(t, models.StatusPreparing, order.Status)
	assert.Len(t, order.Items, 1)

	order, prev, err = r.AdvanceOrder(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, prev)
	assert.Equal(t, models.StatusReady, order.Status)

	_, _, err = r.AdvanceOrder(ctx, "pi_1")
	assert.ErrorIs(t, err, statemachine.ErrTerminal)

	stored, err := r.GetOrder(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, stored.Status)

	_, _, err = r.AdvanceOrder(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOrderAndDuplicateSave(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	order, err := r.FindOrder(ctx, "pi_9")
	require.NoError(t, err)
	assert.Nil(t, order)

	seedOrder(t, r, "pi_9", "u1", time.Now())
	order, err = r.FindOrder(ctx, "pi_9")
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "u1", order.UserDetails.UID)

	// a second insert for the same intent must not succeed
	assert.Error(t, r.SaveOrder(ctx, &models.Order{ID: "pi_9", Status: models.StatusPending, CreatedAt: time.Now()}))
}

func TestOrdersQueries(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	base := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)
	seedOrder(t, r, "pi_old", "u1", base.AddDate(0, 0, -10))
	seedOrder(t, r, "pi_new", "u1", base)
	seedOrder(t, r, "pi_other", "u2", base.Add(time.Hour))

	all, err := r.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "pi_other", all[0].ID)

	mine, err := r.OrdersForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "pi_new", mine[0].ID)

	recent, err := r.OrdersBetween(ctx, base.Add(-time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	_, _, err = r.AdvanceOrder(ctx, "pi_new")
	require.NoError(t, err)
	preparing, err := r.ListOrders(ctx, models.StatusPreparing)
	require.NoError(t, err)
	require.Len(t, preparing, 1)
	assert.Equal(t, "pi_new", preparing[0].ID)
}

func TestPointsAndProfile(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	seedUser(t, r, "u1")

	require.NoError(t, r.AddPoints(ctx, "u1", decimal.RequireFromString("52.5")))
	require.NoError(t, r.AddPoints(ctx, "u1", decimal.RequireFromString("10")))
	pts, err := r.Points(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "62.5", pts.String())

	require.NoError(t, r.SetPoints(ctx, "u1", decimal.NewFromInt(7)))
	pts, err = r.Points(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "7", pts.String())

	assert.ErrorIs(t, r.AddPoints(ctx, "ghost", decimal.NewFromInt(1)), ErrNotFound)
	_, err = r.Points(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.MergeProfile(ctx, "u1", models.UserDetails{PhoneNumber: "0451995722"}))
	var u models.User
	require.NoError(t, r.db.First(&u, "id = ?", "u1").Error)
	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "0451995722", u.PhoneNumber)
}

func TestCardDetailsUpsert(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.SaveCardDetails(ctx, &models.CardDetails{UserID: "u1", Brand: "visa", Last4: "4242"}))
	require.NoError(t, r.SaveCardDetails(ctx, &models.CardDetails{UserID: "u1", Brand: "mastercard", Last4: "4444"}))

	var cards []models.CardDetails
	require.NoError(t, r.db.Find(&cards).Error)
	require.Len(t, cards, 1)
	assert.Equal(t, "4444", cards[0].Last4)
}

func TestNotifications(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	now := time.Now()
	require.NoError(t, r.CreateNotification(ctx, &models.Notification{UserID: "u1", Message: "first", Timestamp: now.Add(-time.Minute)}))
	require.NoError(t, r.CreateNotification(ctx, &models.Notification{UserID: "u1", Message: "second", Timestamp: now}))
	require.NoError(t, r.CreateNotification(ctx, &models.Notification{UserID: "u2", Message: "other", Timestamp: now}))

	list, err := r.NotificationsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)
	assert.NotEmpty(t, list[0].ID)
}

func TestRespondInquiryMovesRecord(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	inq := &models.Inquiry{Name: "Ravi", Email: "ravi@example.com", Reason: "Booking", Message: "Table for 6?"}
	require.NoError(t, r.CreateInquiry(ctx, inq))
	assert.Equal(t, models.InquiryPending, inq.Status)

	responded, err := r.RespondInquiry(ctx, inq.ID, "Re: Booking", "Yes, see you Friday")
	require.NoError(t, err)
	assert.Equal(t, "Table for 6?", responded.Message)
	assert.Equal(t, "Re: Booking", responded.ReplySubject)

	pending, err := r.PendingInquiries(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	done, err := r.RespondedInquiries(ctx)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, inq.ID, done[0].ID)

	_, err = r.RespondInquiry(ctx, inq.ID, "again", "again")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMenu(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	momo := &models.MenuItem{Name: "Chicken Momo", Price: 12.99, Category: "Dumplings", Ingredients: []string{"chicken", "flour"}}
	require.NoError(t, r.CreateMenuItem(ctx, momo))
	require.NoError(t, r.CreateMenuItem(ctx, &models.MenuItem{Name: "Mango Lassi", Price: 5.5, Category: "Drinks"}))
	require.NoError(t, r.CreateMenuItem(ctx, &models.MenuItem{Name: "Veg Momo", Price: 10.99, Category: "Dumplings"}))

	items, err := r.ListMenu(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	// Drinks sorts before Dumplings
	assert.Equal(t, "Mango Lassi", items[0].Name)
	assert.Equal(t, "Chicken Momo", items[1].Name)

	items, err = r.ListMenu(ctx, "MOMO")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	cats, err := r.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drinks", "Dumplings"}, cats)

	momo.Price = 13.49
	momo.Ingredients = []string{"chicken", "flour", "ginger"}
	require.NoError(t, r.UpdateMenuItem(ctx, momo))
	got, err := r.GetMenuItem(ctx, momo.ID)
	require.NoError(t, err)
	assert.Equal(t, 13.49, got.Price)
	assert.Equal(t, []string{"chicken", "flour", "ginger"}, got.Ingredients)

	require.NoError(t, r.DeleteMenuItem(ctx, momo.ID))
	_, err = r.GetMenuItem(ctx, momo.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.DeleteMenuItem(ctx, momo.ID), ErrNotFound)
	assert.ErrorIs(t, r.UpdateMenuItem(ctx, &models.MenuItem{ID: "nope", Name: "x"}), ErrNotFound)
}
