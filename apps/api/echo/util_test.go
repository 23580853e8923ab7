package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	. "github.com/roshna21/DevOps-project/apps/api/echo"
	"github.com/roshna21/DevOps-project/core"
	"github.com/roshna21/DevOps-project/core/account"
	"github.com/roshna21/DevOps-project/core/notification"
	"github.com/roshna21/DevOps-project/core/overlay"
	"github.com/roshna21/DevOps-project/core/student"
	"github.com/roshna21/DevOps-project/storage/database/dummy"
	"github.com/roshna21/DevOps-project/tests"
)

const adminPassword = "s3cret-pass"

var (
	ctx = context.Background()

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

type fixture struct {
	conf        *core.Config
	app         *Server
	studentRepo student.Repository
	accountRepo account.Repository
	mailer      *testutil.Mailer
	logger      *testutil.Logger
}

func setup(t *testing.T) fixture {
	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := core.NewTestConfig()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	conf.Auth.AdminPasswordHash = string(hash)

	f := fixture{
		conf:        conf,
		studentRepo: dummydb.NewStudentRepository(db),
		accountRepo: dummydb.NewAccountRepository(db),
		mailer:      new(testutil.Mailer),
		logger:      testutil.NewLogger(t),
	}

	// set up services
	validate, translator := testutil.NewValidator()
	notifications := notification.NewService(dummydb.NewNotificationRepository(db), f.accountRepo, f.mailer, f.logger)
	students := student.NewService(f.studentRepo, overlay.NewMemoryStore(), notifications, validate, f.logger)
	accounts := account.NewService(conf, f.accountRepo, students, validate, f.logger)

	// set up server
	f.app = NewServer(conf, f.logger, translator, students, accounts, notifications)
	return f
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (f fixture) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	f.app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, conf *core.Config, ident account.Identity) string {
	token, err := GenerateToken(conf, GetIdentityClaims(conf, ident))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func adminIdentity() account.Identity {
	return account.Identity{ID: "admin", Name: "Administrator", Role: account.RoleAdmin}
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func unmarshallObj(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshallObj(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData compares the response body only when the test expects one.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, f fixture, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, f.do(tt))
		})
	}
}
