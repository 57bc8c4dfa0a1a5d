package superAdminRoutes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
)

func setup(t *testing.T) (*fiber.App, models.User) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	database.Database = database.DbInstance{Db: db}
	config.AppConfig = &config.Config{JWTKey: "admin-test-secret", SaltRound: bcrypt.MinCost}

	admin := models.User{Name: "Root", Email: "root@lms.test", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(&admin).Error)

	app := fiber.New()
	SetupSuperAdminRoutes(app)
	return app, admin
}

func call(t *testing.T, app *fiber.App, method, path string, u models.User, body interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := middleware.GenerateJWT(u.ID, u.Name, u.Role, u.Email)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestCreateUser(t *testing.T) {
	app, admin := setup(t)

	body := fiber.Map{"name": "Grace", "email": "Grace@LMS.test", "password": "correct horse", "role": "facilitator"}
	assert.Equal(t, fiber.StatusCreated, call(t, app, http.MethodPost, "/admin/user/create", admin, body))
	assert.Equal(t, fiber.StatusConflict, call(t, app, http.MethodPost, "/admin/user/create", admin, body))

	var created models.User
	require.NoError(t, database.Database.Db.Where("email = ?", "grace@lms.test").First(&created).Error)
	assert.Equal(t, models.RoleFacilitator, created.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("correct horse")))

	short := fiber.Map{"name": "Al", "email": "nope", "password": "short"}
	assert.Equal(t, fiber.StatusUnprocessableEntity, call(t, app, http.MethodPost, "/admin/user/create", admin, short))

	assert.Equal(t, fiber.StatusForbidden, call(t, app, http.MethodGet, "/admin/user/list?page=1&limit=10", created, nil))
	assert.Equal(t, fiber.StatusOK, call(t, app, http.MethodGet, "/admin/user/list?page=1&limit=10&role=facilitator", admin, nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, call(t, app, http.MethodGet, "/admin/user/list", admin, nil))
}

func TestBlockUser(t *testing.T) {
	app, admin := setup(t)
	student := models.User{Name: "Student", Email: "student@lms.test", Password: "x", Role: models.RoleStudent}
	require.NoError(t, database.Database.Db.Create(&student).Error)

	path := fmt.Sprintf("/admin/user/%d/block", admin.ID)
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, http.MethodPatch, path, admin, fiber.Map{"is_blocked": true}))

	path = fmt.Sprintf("/admin/user/%d/block", student.ID)
	assert.Equal(t, fiber.StatusUnprocessableEntity, call(t, app, http.MethodPatch, path, admin, fiber.Map{}))
	assert.Equal(t, fiber.StatusOK, call(t, app, http.MethodPatch, path, admin, fiber.Map{"is_blocked": true}))

	var stored models.User
	require.NoError(t, database.Database.Db.First(&stored, student.ID).Error)
	assert.True(t, stored.IsBlocked)

	assert.Equal(t, fiber.StatusNotFound, call(t, app, http.MethodPatch, "/admin/user/9999/block", admin, fiber.Map{"is_blocked": true}))
}
