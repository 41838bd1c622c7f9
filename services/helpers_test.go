package services

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var unsafeDSNChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// fixedNow is "today" for every booking test.
var fixedNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeDSNChars.ReplaceAllString(t.Name(), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Reservation{},
		&models.BanquetBooking{},
		&models.ContactMessage{},
	))
	return db
}

// seedTables creates tables numbered 1..n with the given capacities.
func seedTables(t *testing.T, db *gorm.DB, capacities ...int) []models.Table {
	t.Helper()
	tables := make([]models.Table, len(capacities))
	for i, c := range capacities {
		tables[i] = models.Table{Number: i + 1, Capacity: c, Status: models.TableStatusAvailable, IsActive: true}
	}
	require.NoError(t, db.Create(&tables).Error)
	return tables
}

type testDeps struct {
	remote   RemoteBookingClient
	notifier *recordingNotifier
	events   *recordingPublisher
}

func newTestBookingService(t *testing.T, db *gorm.DB, remote RemoteBookingClient) (*BookingService, testDeps) {
	t.Helper()
	deps := testDeps{remote: remote, notifier: &recordingNotifier{}, events: &recordingPublisher{}}
	svc := NewBookingService(db, BookingOptions{
		Remote:          remote,
		RemoteTimeout:   time.Second,
		Notifier:        deps.notifier,
		Events:          deps.events,
		AdminRecipients: []string{"owner@example.com"},
	})
	svc.now = func() time.Time { return fixedNow }
	svc.background = func(f func()) { f() }
	return svc, deps
}

func bookingRequest(partySize int, date, clock string) BookingRequest {
	return BookingRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "5550100",
		PartySize: partySize,
		Date:      date,
		Time:      clock,
	}
}

func uintPtr(v uint) *uint { return &v }

// fakeRemote records calls and fails on demand.
type fakeRemote struct {
	mu          sync.Mutex
	configured  bool
	createErr   error
	updateErr   error
	cancelErr   error
	panicCreate bool
	nextID      int

	creates []uint
	updates []string
	cancels []string
	fields  []map[string]interface{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{configured: true}
}

func (f *fakeRemote) IsConfigured() bool { return f.configured }

func (f *fakeRemote) WidgetEmbedURL() string {
	if !f.configured {
		return ""
	}
	return "https://widget.example.com/r/42"
}

func (f *fakeRemote) CreateReservation(_ context.Context, res *models.Reservation) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicCreate {
		panic("remote client exploded")
	}
	f.creates = append(f.creates, res.ID)
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	return fmt.Sprintf("ext-%d", f.nextID), nil
}

func (f *fakeRemote) UpdateReservation(_ context.Context, externalID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, externalID)
	f.fields = append(f.fields, fields)
	return f.updateErr
}

func (f *fakeRemote) CancelReservation(_ context.Context, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels = append(f.cancels, externalID)
	return f.cancelErr
}

type sentMail struct {
	To      []string
	Subject string
	Body    string
}

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (n *recordingNotifier) Send(_ context.Context, recipients []string, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: recipients, Subject: subject, Body: body})
	return n.err
}

func (n *recordingNotifier) Sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, _ interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
