package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wanderhk/travel-booking-backend/internal/clock"
	"github.com/wanderhk/travel-booking-backend/internal/database"
	"github.com/wanderhk/travel-booking-backend/internal/models"
)

var bookingTestBase = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newBookingServiceForTest(t *testing.T) (*BookingService, sqlmock.Sqlmock, *clock.Fixed) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mdb := newMockDatabase(db)
	clk := clock.NewFixed(bookingTestBase)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	pricing := NewPricingService()
	quotes := NewQuoteService(
		database.NewQuoteRepository(mdb),
		database.NewInventoryRepository(mdb),
		pricing,
		nil,
		clk,
		15*time.Minute,
		logger,
	)
	svc := NewBookingService(
		database.NewBookingRepository(mdb),
		database.NewInventoryRepository(mdb),
		database.NewProductRepository(mdb),
		quotes,
		pricing,
		clk,
		15*time.Minute,
		logger,
	)
	return svc, mock, clk
}

var bookingSvcTestColumns = []string{
	"id", "user_id", "supplier_id", "product_id", "date", "start_time",
	"passenger_mix", "passenger_count", "extras", "total", "currency", "status",
	"policy_snapshot", "user_info", "metadata", "payment_ref", "refund_amount",
	"cancel_reason", "created_at", "updated_at", "confirmed_at", "cancelled_at", "expires_at",
}

func bookingSvcTestRow(bookingID, userID, productID uuid.UUID, status, date string, policySnapshot []byte, expiresAt time.Time) []driver.Value {
	return []driver.Value{
		bookingID, userID, uuid.New(), productID, date, "09:00:00",
		[]byte(`[{"type":"adult","quantity":2}]`), 2, []byte(`[]`), 700.0, "HKD", status,
		policySnapshot, []byte(`{}`), []byte(`{}`), nil, nil,
		nil, bookingTestBase, bookingTestBase, nil, nil, expiresAt,
	}
}

func expectProductQuery(mock sqlmock.Sqlmock, productID, supplierID uuid.UUID, policies []byte) {
	mock.ExpectQuery(`SELECT (.+) FROM products`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "supplier_id", "title", "status", "policies",
		}).AddRow(productID, supplierID, "Victoria Peak Day Tour", "published", policies))
}

func expectBookingSlotQuery(mock sqlmock.Sqlmock, productID uuid.UUID, remaining int) {
	mock.ExpectQuery(`SELECT (.+) FROM inventory_slots`).
		WithArgs(productID, "2026-09-15", "09:00:00").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "product_id", "date", "start_time", "capacity", "remaining",
			"base_price", "currency", "created_at", "updated_at",
		}).AddRow(
			uuid.New(), productID, "2026-09-15", "09:00:00", 20, remaining,
			350.0, "HKD", bookingTestBase, bookingTestBase,
		))
}

func TestCreateBookingDirect(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		productID := uuid.New()

		expectBookingSlotQuery(mock, productID, 12)
		expectProductQuery(mock, productID, uuid.New(), []byte(`{}`))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 3).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := &models.CreateBookingRequest{
			ProductID: &productID,
			Date:      "2026-09-15",
			StartTime: "09:00:00",
			PassengerMix: models.PassengerMix{
				{Type: "adult", Quantity: 2},
				{Type: "child", Quantity: 1},
			},
			PaymentMode: models.PaymentModePayLater,
		}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, models.BookingStatusPending, resp.Status)
		assert.Equal(t, 945.0, resp.Total)
		assert.Equal(t, "HKD", resp.Currency)
		assert.Equal(t, bookingTestBase.Add(15*time.Minute), resp.ExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pay Now Starts Awaiting Payment", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		productID := uuid.New()

		expectBookingSlotQuery(mock, productID, 12)
		expectProductQuery(mock, productID, uuid.New(), []byte(`{}`))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := &models.CreateBookingRequest{
			ProductID: &productID,
			Date:      "2026-09-15",
			StartTime: "09:00:00",
			PassengerMix: models.PassengerMix{
				{Type: "adult", Quantity: 2},
			},
			PaymentMode: models.PaymentModePayNow,
		}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusAwaitingPayment, resp.Status)
	})

	t.Run("Insufficient Inventory", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		productID := uuid.New()

		expectBookingSlotQuery(mock, productID, 12)
		expectProductQuery(mock, productID, uuid.New(), []byte(`{}`))
		// The guarded reserve loses even though the earlier read looked fine.
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(productID, "2026-09-15", "09:00:00").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		req := &models.CreateBookingRequest{
			ProductID: &productID,
			Date:      "2026-09-15",
			StartTime: "09:00:00",
			PassengerMix: models.PassengerMix{
				{Type: "adult", Quantity: 2},
			},
		}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		assert.Equal(t, models.ErrInsufficientInventory, err)
		assert.Nil(t, resp)
	})

	t.Run("Persist Failure Releases Reservation", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		productID := uuid.New()

		expectBookingSlotQuery(mock, productID, 12)
		expectProductQuery(mock, productID, uuid.New(), []byte(`{}`))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("database error"))
		// Compensating release.
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := &models.CreateBookingRequest{
			ProductID: &productID,
			Date:      "2026-09-15",
			StartTime: "09:00:00",
			PassengerMix: models.PassengerMix{
				{Type: "adult", Quantity: 2},
			},
		}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to persist booking")
		assert.Nil(t, resp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unpublished Product", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		productID := uuid.New()

		expectBookingSlotQuery(mock, productID, 12)
		mock.ExpectQuery(`SELECT (.+) FROM products`).
			WithArgs(productID).
			WillReturnError(sql.ErrNoRows)

		req := &models.CreateBookingRequest{
			ProductID: &productID,
			Date:      "2026-09-15",
			StartTime: "09:00:00",
			PassengerMix: models.PassengerMix{
				{Type: "adult", Quantity: 2},
			},
		}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		assert.Equal(t, models.ErrProductNotFound, err)
		assert.Nil(t, resp)
	})
}

func TestCreateBookingFromQuote(t *testing.T) {
	quoteColumns := []string{
		"id", "product_id", "date", "start_time", "passenger_mix", "extras",
		"breakdown", "total", "currency", "created_at", "valid_until",
	}

	t.Run("Success", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		productID := uuid.New()
		quoteID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM quotes`).
			WithArgs(quoteID).
			WillReturnRows(sqlmock.NewRows(quoteColumns).AddRow(
				quoteID, productID, "2026-09-15", "09:00:00",
				[]byte(`[{"type":"adult","quantity":2}]`), []byte(`[]`), []byte(`[]`),
				700.0, "HKD", bookingTestBase, bookingTestBase.Add(15*time.Minute),
			))
		expectProductQuery(mock, productID, uuid.New(), []byte(`{}`))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO bookings`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		req := &models.CreateBookingRequest{
			QuoteID:     &quoteID,
			PaymentMode: models.PaymentModePayLater,
		}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		require.NoError(t, err)
		assert.Equal(t, 700.0, resp.Total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Expired Quote", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		quoteID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM quotes`).
			WithArgs(quoteID).
			WillReturnRows(sqlmock.NewRows(quoteColumns).AddRow(
				quoteID, uuid.New(), "2026-09-15", "09:00:00",
				[]byte(`[{"type":"adult","quantity":2}]`), []byte(`[]`), []byte(`[]`),
				700.0, "HKD", bookingTestBase, bookingTestBase.Add(15*time.Minute),
			))

		clk.Advance(16 * time.Minute)

		req := &models.CreateBookingRequest{QuoteID: &quoteID}

		resp, err := svc.CreateBooking(context.Background(), userID, req)
		assert.Equal(t, models.ErrQuoteExpired, err)
		assert.Nil(t, resp)
	})
}

func TestConfirmBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, uuid.New(), "pending", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "pay_abc123", clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		booking, err := svc.ConfirmBooking(userID, bookingID, "pay_abc123")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		require.NotNil(t, booking.PaymentRef)
		assert.Equal(t, "pay_abc123", *booking.PaymentRef)
	})

	t.Run("Other Users Booking Is Not Found", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, uuid.New(), uuid.New(), "pending", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

		booking, err := svc.ConfirmBooking(uuid.New(), bookingID, "pay_abc123")
		assert.Equal(t, models.ErrBookingNotFound, err)
		assert.Nil(t, booking)
	})

	t.Run("Expired Hold Cannot Confirm", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, productID, "pending", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

		clk.Advance(20 * time.Minute)

		// Lazy expiry wins the transition and releases the held units.
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		booking, err := svc.ConfirmBooking(userID, bookingID, "pay_abc123")
		assert.Equal(t, models.ErrInvalidStateForConfirm, err)
		assert.Nil(t, booking)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Lost Transition", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, uuid.New(), "pending", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "pay_abc123", clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		booking, err := svc.ConfirmBooking(userID, bookingID, "pay_abc123")
		assert.Equal(t, models.ErrInvalidStateForConfirm, err)
		assert.Nil(t, booking)
	})
}

func TestCancelBooking(t *testing.T) {
	tieredPolicy := []byte(`{"cancellation":{"tiers":[{"days_before":7,"refund_pct":100},{"days_before":3,"refund_pct":50},{"days_before":0,"refund_pct":0}]}}`)

	t.Run("Full Refund Without Policy", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()
		productID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, productID, "confirmed", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "change of plans", 700.0, clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-15", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := svc.CancelBooking(userID, bookingID, "change of plans")
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, resp.Status)
		assert.Equal(t, 700.0, resp.RefundAmount)
		assert.Equal(t, "HKD", resp.Currency)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Tiered Refund Far From Travel", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()
		productID := uuid.New()

		// Travel on Sep 11, cancelling on Sep 1: 10 days out, 100% tier.
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, productID, "confirmed", "2026-09-11", tieredPolicy, bookingTestBase.Add(15*time.Minute))...))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "", 700.0, clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-11", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := svc.CancelBooking(userID, bookingID, "")
		require.NoError(t, err)
		assert.Equal(t, 700.0, resp.RefundAmount)
	})

	t.Run("Tiered Refund Close To Travel", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()
		productID := uuid.New()

		// Travel on Sep 6, cancelling on Sep 1: 5 days out, 50% tier.
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, productID, "confirmed", "2026-09-06", tieredPolicy, bookingTestBase.Add(15*time.Minute))...))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "", 350.0, clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE inventory_slots`).
			WithArgs(productID, "2026-09-06", "09:00:00", 2).
			WillReturnResult(sqlmock.NewResult(0, 1))

		resp, err := svc.CancelBooking(userID, bookingID, "")
		require.NoError(t, err)
		assert.Equal(t, 350.0, resp.RefundAmount)
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, uuid.New(), "cancelled", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

		resp, err := svc.CancelBooking(userID, bookingID, "again")
		assert.Equal(t, models.ErrAlreadyCancelled, err)
		assert.Nil(t, resp)
	})

	t.Run("Expired Booking Not Cancellable", func(t *testing.T) {
		svc, mock, _ := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, uuid.New(), "expired", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

		resp, err := svc.CancelBooking(userID, bookingID, "")
		assert.Equal(t, models.ErrNotCancellable, err)
		assert.Nil(t, resp)
	})

	t.Run("Lost To Concurrent Cancel", func(t *testing.T) {
		svc, mock, clk := newBookingServiceForTest(t)
		userID := uuid.New()
		bookingID := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, uuid.New(), "confirmed", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs(bookingID, "", 700.0, clk.Now()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		// Re-read shows the other request already cancelled it.
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
				AddRow(bookingSvcTestRow(bookingID, userID, uuid.New(), "cancelled", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

		resp, err := svc.CancelBooking(userID, bookingID, "")
		assert.Equal(t, models.ErrAlreadyCancelled, err)
		assert.Nil(t, resp)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSweepExpired(t *testing.T) {
	svc, mock, clk := newBookingServiceForTest(t)
	clk.Advance(30 * time.Minute)

	firstID := uuid.New()
	secondID := uuid.New()
	firstProduct := uuid.New()
	secondProduct := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings`).
		WithArgs(clk.Now(), 100).
		WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
			AddRow(bookingSvcTestRow(firstID, uuid.New(), firstProduct, "pending", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...).
			AddRow(bookingSvcTestRow(secondID, uuid.New(), secondProduct, "awaiting_payment", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

	// First booking: sweep wins, inventory comes back.
	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(firstID, clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE inventory_slots`).
		WithArgs(firstProduct, "2026-09-15", "09:00:00", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Second booking: a concurrent cancel won, so no release here.
	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(secondID, clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	expired, err := svc.SweepExpired(100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingLazyExpiry(t *testing.T) {
	svc, mock, clk := newBookingServiceForTest(t)
	userID := uuid.New()
	bookingID := uuid.New()
	productID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows(bookingSvcTestColumns).
			AddRow(bookingSvcTestRow(bookingID, userID, productID, "pending", "2026-09-15", []byte(`{}`), bookingTestBase.Add(15*time.Minute))...))

	clk.Advance(20 * time.Minute)

	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(bookingID, clk.Now()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE inventory_slots`).
		WithArgs(productID, "2026-09-15", "09:00:00", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking, err := svc.GetBooking(userID, bookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusExpired, booking.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// mockDatabase adapts a sqlmock connection to the database.DB interface.
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(db *sql.DB) *mockDatabase {
	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}
