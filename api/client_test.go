package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendlog/attendance"
)

type fakeDoer struct {
	fn func(*http.Request) (*http.Response, error)
}

func (f fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.fn(req)
}

func jsonResponse(payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return rawResponse(http.StatusOK, string(body))
}

func rawResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(t *testing.T, token string, fn func(*http.Request) (*http.Response, error)) *HTTPClient {
	t.Helper()
	client, err := NewClient(ClientConfig{
		BaseURL:     "https://attendance.example.com/",
		AccessToken: token,
		UserAgent:   "attendlog-test",
		HTTPClient:  fakeDoer{fn: fn},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestHTTPClient_KnownEndpointsAndHeaders(t *testing.T) {
	t.Parallel()

	seen := make([]string, 0, 6)
	client := newTestClient(t, "tok-123", func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "attendlog-test" {
			t.Fatalf("unexpected User-Agent: %q", got)
		}

		key := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		seen = append(seen, key)
		switch key {
		case "GET /api/user/":
			return rawResponse(http.StatusOK, `{"id":5,"username":"mgr","role":"Manager","outlets":[1,{"id":2,"name":"Harbour"}]}`), nil
		case "GET /api/outlets/":
			return rawResponse(http.StatusOK, `[{"id":1,"name":"Mall","latitude":"6.9271","longitude":"79.8612","radius":"150","status":1,"manager":{"id":5}},{"id":2,"name":"Closed","status":0}]`), nil
		case "GET /api/getemployees":
			return rawResponse(http.StatusOK, `[{"employee_id":"9","first_name":"Ana","last_name":"Silva","outlets":[1]}]`), nil
		case "GET /api/groups/":
			return rawResponse(http.StatusOK, `[{"id":1,"name":"Manager"}]`), nil
		case "GET /api/getagencies/":
			return rawResponse(http.StatusOK, `[{"id":"4","name":"StaffCo"}]`), nil
		case "GET /report/employees/user/5":
			return rawResponse(http.StatusOK, `[{"outlet_id":1,"outlet_name":"Mall","employees":[{"id":9,"attendance":null,"leaves":null}]}]`), nil
		default:
			return nil, fmt.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		}
	})

	ctx := context.Background()

	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, "Manager", user.Role)
	assert.Equal(t, []OutletRef{{ID: 1}, {ID: 2, Name: "Harbour"}}, user.Outlets)

	outlets, err := client.ListOutlets(ctx)
	require.NoError(t, err)
	require.Len(t, outlets, 2)
	assert.InDelta(t, 6.9271, outlets[0].Latitude, 1e-9)
	assert.Equal(t, 150.0, outlets[0].RadiusMeters)
	require.NotNil(t, outlets[0].ManagerID)
	assert.Equal(t, int64(5), *outlets[0].ManagerID)
	assert.True(t, outlets[1].Hidden())

	employees, err := client.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, int64(9), employees[0].ID)
	assert.Equal(t, "Ana Silva", employees[0].DisplayName())

	groups, err := client.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Group{{ID: 1, Name: "Manager"}}, groups)

	agencies, err := client.ListAgencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Agency{{ID: 4, Name: "StaffCo"}}, agencies)

	byOutlet, err := client.EmployeesByUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, byOutlet, 1)
	assert.Equal(t, "Mall", byOutlet[0].OutletName)
	require.Len(t, byOutlet[0].Employees, 1)
	assert.Empty(t, byOutlet[0].Employees[0].Attendance)

	assert.Len(t, seen, 6)
}

func TestHTTPClient_OutletBundleDecodesLooseShapes(t *testing.T) {
	t.Parallel()

	payload := `{
  "outlet_name": "Mall",
  "employees": [
    {
      "id": 1,
      "fullname": "E One",
      "inactive_date": null,
      "attendance": [
        {"id": 10, "date": "2025-05-01", "check_in_time": "08:00:00", "check_out_time": null, "worked_hours": "0", "status": "Present"},
        {"id": 11, "date": "2025-05-01", "check_in_time": "2025-05-01T08:05:00Z", "check_out_time": "2025-05-01T17:00:00Z", "worked_hours": 8.9, "status": "Late",
         "verification_notes": "{\"checkin_verified_by\": \"lead\"}"},
        {"id": 12, "date": "not-a-date", "status": "Present"}
      ],
      "leaves": [
        {"id": 20, "leave_date": "2025-05-03", "leave_type": {"id": 2, "name": "Sick Leave"}, "status": "Approved", "remarks": "flu"}
      ]
    }
  ]
}`

	client := newTestClient(t, "tok", func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/outletsalldata/3/", r.URL.Path)
		assert.Equal(t, "2025-05-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2025-05-31", r.URL.Query().Get("end_date"))
		return rawResponse(http.StatusOK, payload), nil
	})

	bundle, err := client.OutletBundle(context.Background(), 3, "2025-05-01", "2025-05-31")
	require.NoError(t, err)
	assert.Equal(t, int64(3), bundle.OutletID)
	assert.Equal(t, "Mall", bundle.OutletName)
	assert.Equal(t, 1, bundle.Dropped)
	require.Len(t, bundle.Employees, 1)

	employee := bundle.Employees[0]
	assert.Nil(t, employee.InactiveDate)
	require.Len(t, employee.Attendance, 2)

	first := employee.Attendance[0]
	require.NotNil(t, first.CheckIn)
	assert.Equal(t, "2025-05-01T08:00:00Z", first.CheckIn.Format("2006-01-02T15:04:05Z07:00"))
	assert.Nil(t, first.CheckOut)
	assert.Equal(t, int64(1), first.EmployeeID)

	second := employee.Attendance[1]
	assert.True(t, second.WorkedHours.Valid)
	assert.Equal(t, "8.9", second.WorkedHours.Value.String())
	value, ok := second.Notes.Get("checkin_verified_by")
	assert.True(t, ok)
	assert.Equal(t, "lead", value)

	require.Len(t, employee.Leaves, 1)
	assert.Equal(t, "Sick Leave", employee.Leaves[0].LeaveType)
	assert.Equal(t, attendance.LeaveApproved, employee.Leaves[0].Status)
}

func TestHTTPClient_OutletBundleAcceptsBareArray(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "tok", func(r *http.Request) (*http.Response, error) {
		return rawResponse(http.StatusOK, `[{"id":7,"first_name":"Solo"}]`), nil
	})

	bundle, err := client.OutletBundle(context.Background(), 1, "2025-05-01", "2025-05-02")
	require.NoError(t, err)
	require.Len(t, bundle.Employees, 1)
	assert.Equal(t, int64(7), bundle.Employees[0].ID)
}

func TestHTTPClient_EmployeeReportFallsBackToRequestedID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "tok", func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/report/employee/42", r.URL.Path)
		return rawResponse(http.StatusOK, `{"fullname":"Ana","inactive_date":"2025-04-30","leaves":[]}`), nil
	})

	report, err := client.EmployeeReport(context.Background(), 42, "2025-05-01", "2025-05-31")
	require.NoError(t, err)
	assert.Equal(t, int64(42), report.Employee.ID)
	require.NotNil(t, report.Employee.InactiveDate)
	assert.Equal(t, attendance.Date("2025-04-30"), *report.Employee.InactiveDate)
}

func TestHTTPClient_StatusErrorCarriesBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "tok", func(r *http.Request) (*http.Response, error) {
		return rawResponse(http.StatusForbidden, `{"detail":"not allowed"}`), nil
	})

	_, err := client.ListOutlets(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "expected StatusError, got %v", err)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "not allowed")
}

func TestHTTPClient_MissingTokenFailsBeforeRequest(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "", func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected without token")
		return nil, nil
	})

	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestHTTPClient_LoginSendsCredentialsWithoutToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "", func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "POST /api/token/", r.Method+" "+r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, Credentials{Username: "admin", Password: "secret"}, body)
		return jsonResponse(Tokens{Access: "a", Refresh: "r"}), nil
	})

	tokens, err := client.Login(context.Background(), Credentials{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, Tokens{Access: "a", Refresh: "r"}, tokens)

	authed := client.WithToken(tokens.Access)
	assert.Equal(t, "a", authed.accessToken)
	assert.Empty(t, client.accessToken)
}

func TestHTTPClient_ValidationBlocksRequests(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "tok", func(r *http.Request) (*http.Response, error) {
		t.Fatalf("no request expected for invalid input: %s %s", r.Method, r.URL.Path)
		return nil, nil
	})
	ctx := context.Background()

	_, err := client.CreateOutlet(ctx, OutletInput{Name: "", Latitude: 95, RadiusMeters: 0, Status: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = client.CreateEmployee(ctx, EmployeeInput{FirstName: "Ana"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = client.AssignDevice(ctx, DeviceAssignment{OutletID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = client.UpdateLeaveStatus(ctx, 3, attendance.LeavePending)
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = client.DeactivateEmployee(ctx, 3, "2025-13-01")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = client.Login(ctx, Credentials{Username: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHTTPClient_MutationsUseExpectedVerbs(t *testing.T) {
	t.Parallel()

	seen := make([]string, 0, 6)
	client := newTestClient(t, "tok", func(r *http.Request) (*http.Response, error) {
		key := r.Method + " " + r.URL.Path
		seen = append(seen, key)
		switch key {
		case "PATCH /api/leaves/8/":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "approved", body["status"])
			return rawResponse(http.StatusOK, `{}`), nil
		case "PATCH /api/employees/9/":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "2025-06-01", body["inactive_date"])
			return rawResponse(http.StatusOK, ``), nil
		case "POST /api/outlets/":
			return rawResponse(http.StatusCreated, `{"id":12,"name":"New","status":1}`), nil
		case "DELETE /api/outlets/12/":
			return rawResponse(http.StatusNoContent, ``), nil
		case "POST /api/devices/":
			return rawResponse(http.StatusCreated, `{"id":3,"device_id":"DEV-1","outlet":12}`), nil
		case "DELETE /api/devices/3/":
			return rawResponse(http.StatusNoContent, ``), nil
		default:
			return nil, fmt.Errorf("unexpected request %s", key)
		}
	})
	ctx := context.Background()

	require.NoError(t, client.UpdateLeaveStatus(ctx, 8, attendance.LeaveApproved))
	require.NoError(t, client.DeactivateEmployee(ctx, 9, "2025-06-01"))

	outlet, err := client.CreateOutlet(ctx, OutletInput{Name: "New", Latitude: 6.9, Longitude: 79.8, RadiusMeters: 100, Status: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(12), outlet.ID)
	require.NoError(t, client.DeleteOutlet(ctx, 12))

	device, err := client.AssignDevice(ctx, DeviceAssignment{DeviceID: "DEV-1", OutletID: 12})
	require.NoError(t, err)
	assert.Equal(t, Device{ID: 3, DeviceID: "DEV-1", OutletID: 12}, device)
	require.NoError(t, client.DeleteDevice(ctx, 3))

	assert.Len(t, seen, 6)
}

func TestFlexibleInt64_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	cases := map[string]FlexibleInt64{
		`12`:   ID(12),
		`"12"`: ID(12),
		`""`:   {},
		`null`: {},
	}
	for raw, want := range cases {
		var got FlexibleInt64
		require.NoError(t, json.Unmarshal([]byte(raw), &got), raw)
		assert.Equal(t, want, got, raw)
	}

	var bad FlexibleInt64
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestHTTPClient_ProfileUsesGivenToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "", func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		switch r.URL.Path {
		case "/api/user/":
			return rawResponse(http.StatusOK, `{"id":7,"username":"admin","outlets":[]}`), nil
		case "/api/outlets/":
			return rawResponse(http.StatusOK, `[{"id":3,"name":"Depot","status":1}]`), nil
		}
		return rawResponse(http.StatusNotFound, "not found"), nil
	})

	user, outlets, err := client.Profile(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	require.Len(t, outlets, 1)
	assert.Equal(t, "Depot", outlets[0].Name)

	// the original client stays unauthenticated
	_, err = client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
