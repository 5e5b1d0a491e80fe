package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-management-server/internal/config"
	"hospital-management-server/internal/models"
	"hospital-management-server/internal/routes"
	"hospital-management-server/internal/storage"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type loginData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	RedirectTo   string `json:"redirectTo"`
	Profile      struct {
		ID       string `json:"id"`
		Role     string `json:"role"`
		FullName string `json:"fullName"`
	} `json:"profile"`
}

func testServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, models.Migrate(db))

	objects, err := storage.NewObjectStore(t.TempDir(), "http://localhost:3001")
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                      "3001",
		Environment:               "development",
		ServiceKey:                "test-signing-key",
		RefreshKey:                "test-signing-key.refresh",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 168,
	}

	router := gin.New()
	routes.SetupRoutes(router, db, objects, cfg, zerolog.Nop())
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	}
	return w, resp
}

// registerVerifyLogin walks one user through the full onboarding flow and
// returns their authenticated login payload.
func registerVerifyLogin(t *testing.T, router *gin.Engine, db *gorm.DB, fullName, email, role string) loginData {
	t.Helper()

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": fullName,
		"email":    email,
		"password": "hunter2hunter2",
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var account models.Account
	require.NoError(t, db.Where("email = ?", email).First(&account).Error)
	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/auth/verify?token="+account.VerificationToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data loginData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func TestOnboarding_RoleNormalizationAndVerification(t *testing.T) {
	router, db := testServer(t)

	// Mixed-case role input lands as the canonical lowercase role.
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Dr. Arjun Nair",
		"email":    "arjun@clinic.test",
		"password": "hunter2hunter2",
		"role":     "Doctor",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var profile struct {
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &profile))
	assert.Equal(t, "doctor", profile.Role)

	// Signing in before verification is rejected with the verification hint.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "arjun@clinic.test",
		"password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, resp.Error, "verify your email")

	var account models.Account
	require.NoError(t, db.Where("email = ?", "arjun@clinic.test").First(&account).Error)
	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/auth/verify?token="+account.VerificationToken, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "arjun@clinic.test",
		"password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data loginData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "/doctor/dashboard", data.RedirectTo)
	assert.NotEmpty(t, data.AccessToken)
	assert.NotEmpty(t, data.RefreshToken)
}

func TestRegister_UnknownRoleRejected(t *testing.T) {
	router, db := testServer(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"fullName": "Eve",
		"email":    "eve@clinic.test",
		"password": "hunter2hunter2",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was persisted for the rejected registration.
	var count int64
	require.NoError(t, db.Model(&models.Account{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPatientRegistration_WithAndWithoutAppointment(t *testing.T) {
	router, db := testServer(t)
	doctor := registerVerifyLogin(t, router, db, "Dr. Arjun Nair", "arjun@clinic.test", "doctor")
	desk := registerVerifyLogin(t, router, db, "Front Desk", "desk@clinic.test", "receptionist")

	// Doctors cannot register patients.
	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/patients", doctor.AccessToken, gin.H{
		"displayName": "Asha Rao",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Without a doctor selection only the patient record is created.
	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/patients", desk.AccessToken, gin.H{
		"displayName": "Asha Rao",
		"phone":       "555-0100",
		"dob":         "1990-04-12",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, string(resp.Data), `"appointment"`)

	// Selecting a doctor books an appointment in the same request.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/patients", desk.AccessToken, gin.H{
		"displayName":     "Vik Shah",
		"doctorProfileId": doctor.Profile.ID,
		"scheduledAt":     "2025-07-01T10:00:00Z",
		"problemSummary":  "persistent cough",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Appointment struct {
			Status          string `json:"status"`
			DoctorProfileID string `json:"doctorProfileId"`
		} `json:"appointment"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "waiting", created.Appointment.Status)
	assert.Equal(t, doctor.Profile.ID, created.Appointment.DoctorProfileID)

	// The doctor sees the booking in their own queue with display fields
	// joined in.
	w, resp = doJSON(t, router, http.MethodGet, "/api/v1/appointments", doctor.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var appointments []struct {
		Patient struct {
			DisplayName string `json:"displayName"`
		} `json:"patient"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &appointments))
	require.Len(t, appointments, 1)
	assert.Equal(t, "Vik Shah", appointments[0].Patient.DisplayName)
}

func TestLabRequestFlow_OrderAndUpload(t *testing.T) {
	router, db := testServer(t)
	doctor := registerVerifyLogin(t, router, db, "Dr. Arjun Nair", "arjun@clinic.test", "doctor")
	desk := registerVerifyLogin(t, router, db, "Front Desk", "desk@clinic.test", "receptionist")
	tech := registerVerifyLogin(t, router, db, "Lab Tech", "tech@clinic.test", "labtech")

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/patients", desk.AccessToken, gin.H{
		"displayName": "Asha Rao",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Patient struct {
			ID string `json:"id"`
		} `json:"patient"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	// Duplicate selections collapse to one entry per test.
	w, resp = doJSON(t, router, http.MethodPost, "/api/v1/lab-requests", doctor.AccessToken, gin.H{
		"patientId": created.Patient.ID,
		"tests":     []string{"CBC", "Blood Sugar", "CBC"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var request struct {
		ID     string   `json:"id"`
		Tests  []string `json:"tests"`
		Status string   `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &request))
	assert.Equal(t, []string{"CBC", "Blood Sugar"}, request.Tests)
	assert.Equal(t, "pending", request.Status)

	// The receptionist has no access to the lab queue.
	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/lab-requests", desk.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The lab tech uploads the report, completing the request.
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "cbc-results.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("report body"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lab-requests/"+request.ID+"/report", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+tech.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var uploadResp envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploadResp))
	var upload struct {
		LabRequest struct {
			Status    string `json:"status"`
			ReportKey string `json:"reportKey"`
		} `json:"labRequest"`
	}
	require.NoError(t, json.Unmarshal(uploadResp.Data, &upload))
	assert.Equal(t, "completed", upload.LabRequest.Status)
	assert.True(t, strings.HasPrefix(upload.LabRequest.ReportKey, created.Patient.ID+"/"),
		"report key %q should live under the patient's prefix", upload.LabRequest.ReportKey)
	assert.True(t, strings.HasSuffix(upload.LabRequest.ReportKey, "-cbc-results.pdf"))

	// The stored object is fetchable at its public path.
	fileReq := httptest.NewRequest(http.MethodGet, "/files/lab-reports/"+upload.LabRequest.ReportKey, nil)
	fileRec := httptest.NewRecorder()
	router.ServeHTTP(fileRec, fileReq)
	assert.Equal(t, http.StatusOK, fileRec.Code)
	assert.Equal(t, "report body", fileRec.Body.String())
}

func TestMedications_OngoingCourseOmitsEndDate(t *testing.T) {
	router, db := testServer(t)
	doctor := registerVerifyLogin(t, router, db, "Dr. Arjun Nair", "arjun@clinic.test", "doctor")
	desk := registerVerifyLogin(t, router, db, "Front Desk", "desk@clinic.test", "receptionist")

	w, resp := doJSON(t, router, http.MethodPost, "/api/v1/patients", desk.AccessToken, gin.H{
		"displayName": "Asha Rao",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Patient struct {
			ID string `json:"id"`
		} `json:"patient"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	w, resp = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/patients/%s/medications", created.Patient.ID), doctor.AccessToken, gin.H{
			"name":      "Metformin",
			"dose":      "500mg",
			"frequency": "twice daily",
			"startDate": "2025-01-10",
		})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, string(resp.Data), `"endDate"`, "an ongoing course must not render an end date")

	w, resp = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/v1/patients/%s/medications", created.Patient.ID), doctor.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var medications []struct {
		Name       string `json:"name"`
		Prescriber struct {
			FullName string `json:"fullName"`
		} `json:"prescriber"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &medications))
	require.Len(t, medications, 1)
	assert.Equal(t, "Metformin", medications[0].Name)
	assert.Equal(t, "Dr. Arjun Nair", medications[0].Prescriber.FullName)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	router, db := testServer(t)
	doctor := registerVerifyLogin(t, router, db, "Dr. Arjun Nair", "arjun@clinic.test", "doctor")

	w, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/logout", doctor.AccessToken, gin.H{
		"refreshToken": doctor.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The revoked token cannot be exchanged anymore.
	w, _ = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh-token", "", gin.H{
		"refreshToken": doctor.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	router, _ := testServer(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/v1/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/patients", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDoctorDirectory(t *testing.T) {
	router, db := testServer(t)
	registerVerifyLogin(t, router, db, "Meera Pillai", "meera@clinic.test", "doctor")
	registerVerifyLogin(t, router, db, "Arjun Nair", "arjun@clinic.test", "doctor")
	desk := registerVerifyLogin(t, router, db, "Front Desk", "desk@clinic.test", "receptionist")

	w, resp := doJSON(t, router, http.MethodGet, "/api/v1/profiles/doctors", desk.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doctors []struct {
		FullName string `json:"fullName"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &doctors))
	require.Len(t, doctors, 2)
	assert.Equal(t, "Arjun Nair", doctors[0].FullName)
	assert.Equal(t, "Meera Pillai", doctors[1].FullName)
	for _, doctor := range doctors {
		assert.Equal(t, "doctor", doctor.Role)
	}
}
