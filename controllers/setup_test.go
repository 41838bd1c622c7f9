package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// futureDate is far enough ahead that bookings are never in the past.
const futureDate = "2099-06-01"

type testApp struct {
	db     *gorm.DB
	router *gin.Engine
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.InfoLogger.SetLevel(logrus.ErrorLevel)
	utils.ErrorLogger.SetLevel(logrus.FatalLevel)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.SeedTables(db))

	bookings := services.NewBookingService(db, services.BookingOptions{})
	banquets := services.NewBanquetService(db, services.BanquetOptions{})
	contacts := services.NewContactService(db, nil, nil, nil)
	deps := router.Deps{
		Catalog:   services.NewTableCatalog(db),
		Bookings:  bookings,
		Banquets:  banquets,
		Contacts:  contacts,
		Dashboard: services.NewDashboardService(db, bookings.Store(), banquets, contacts),
	}
	return &testApp{db: db, router: router.SetupRouter(db, deps)}
}

// createUser stores a user with a bcrypt password and returns a token for it.
func (a *testApp) createUser(t *testing.T, email, password, role string, active bool) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: "Test " + role, Email: email, Password: string(hashed), Role: role, IsActive: true}
	require.NoError(t, a.db.Create(&user).Error)
	if !active {
		require.NoError(t, a.db.Model(&user).Update("is_active", false).Error)
	}
	token, err := utils.GenerateToken(user.ID, role)
	require.NoError(t, err)
	return token
}

func (a *testApp) adminToken(t *testing.T) string {
	return a.createUser(t, "admin@example.com", "secret123", models.RoleAdmin, true)
}

type apiResponse struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func decode(t *testing.T, raw json.RawMessage, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, dst))
}

func bookingPayload(party int, clock string) map[string]interface{} {
	return map[string]interface{}{
		"first_name": "Grace",
		"last_name":  "Hopper",
		"email":      "grace@example.com",
		"phone":      "5550199",
		"party_size": party,
		"date":       futureDate,
		"time":       clock,
	}
}
