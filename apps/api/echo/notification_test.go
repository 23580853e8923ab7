package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roshna21/DevOps-project/core/notification"
)

func Test_notificationApi(t *testing.T) {
	f := setupStudents(t)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/notifications", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "Parents only", path: "/v1/notifications", token: f.adminToken, wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)},
		{name: "Empty inbox", path: "/v1/notifications", token: f.parentToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
		{
			name: "Unknown id", method: http.MethodPost, path: "/v1/notifications/nope/read", token: f.parentToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, errNotFound),
		},
	}
	runHTTPTests(t, f.fixture, tests)

	body := []byte(`{"month":"2024-03","percentage":91}`)
	rec := f.do(httpTest{method: http.MethodPut, path: "/v1/students/1AJ23CS001/attendance/monthly", token: f.profToken, body: body})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	list := func(token string) []notification.Notification {
		rec := f.do(httpTest{path: "/v1/notifications", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var ns []notification.Notification
		unmarshallObj(t, rec, &ns)
		return ns
	}

	ns := list(f.parentToken)
	require.Len(t, ns, 1)
	assert.Equal(t, "Attendance updated", ns[0].Title)
	assert.Equal(t, "Attendance for 2024-03 set to 91%", ns[0].Message)
	assert.False(t, ns[0].Read)

	// another parent cannot see nor acknowledge it
	assert.Empty(t, list(f.otherParentToken))
	rec = f.do(httpTest{method: http.MethodPost, path: "/v1/notifications/" + ns[0].ID + "/read", token: f.otherParentToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(httpTest{method: http.MethodPost, path: "/v1/notifications/" + ns[0].ID + "/read", token: f.parentToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, list(f.parentToken)[0].Read)
}
