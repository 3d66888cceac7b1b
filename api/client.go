package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"attendlog/attendance"
)

var (
	ErrUnauthenticated = errors.New("not authenticated: no access token")
	ErrInvalidInput    = errors.New("invalid input")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request %s %s failed with status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client defines the attendance API operations used by attendlog.
type Client interface {
	Login(ctx context.Context, creds Credentials) (Tokens, error)
	CurrentUser(ctx context.Context) (User, error)
	EmployeesByUser(ctx context.Context, userID int64) ([]OutletEmployees, error)
	EmployeeReport(ctx context.Context, employeeID int64, from, to attendance.Date) (EmployeeReport, error)
	OutletBundle(ctx context.Context, outletID int64, from, to attendance.Date) (OutletBundle, error)
	ListOutlets(ctx context.Context) ([]attendance.Outlet, error)
	ListEmployees(ctx context.Context) ([]attendance.Employee, error)
	ListGroups(ctx context.Context) ([]Group, error)
	ListAgencies(ctx context.Context) ([]Agency, error)
	CreateEmployee(ctx context.Context, input EmployeeInput) (attendance.Employee, error)
	UpdateEmployee(ctx context.Context, employeeID int64, input EmployeeInput) (attendance.Employee, error)
	DeactivateEmployee(ctx context.Context, employeeID int64, inactiveDate attendance.Date) error
	CreateOutlet(ctx context.Context, input OutletInput) (attendance.Outlet, error)
	UpdateOutlet(ctx context.Context, outletID int64, input OutletInput) (attendance.Outlet, error)
	DeleteOutlet(ctx context.Context, outletID int64) error
	UpdateLeaveStatus(ctx context.Context, leaveID int64, status attendance.LeaveStatus) error
	AssignDevice(ctx context.Context, input DeviceAssignment) (Device, error)
	DeleteDevice(ctx context.Context, deviceID int64) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	BaseURL     string
	AccessToken string
	UserAgent   string
	Timeout     time.Duration
	HTTPClient  httpDoer
}

type HTTPClient struct {
	baseURL     string
	accessToken string
	userAgent   string
	httpClient  httpDoer
}

func NewClient(cfg ClientConfig) (*HTTPClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	parsedBase, err := url.Parse(baseURL)
	if err != nil || parsedBase.Scheme == "" || parsedBase.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	doer := cfg.HTTPClient
	if doer == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		doer = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		baseURL:     baseURL,
		accessToken: strings.TrimSpace(cfg.AccessToken),
		userAgent:   strings.TrimSpace(cfg.UserAgent),
		httpClient:  doer,
	}, nil
}

// WithToken returns a copy of the client that sends the given bearer token.
func (c *HTTPClient) WithToken(accessToken string) *HTTPClient {
	clone := *c
	clone.accessToken = strings.TrimSpace(accessToken)
	return &clone
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type OutletRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Role      string      `json:"role"`
	Outlets   []OutletRef `json:"outlets"`
}

type OutletEmployees struct {
	OutletID   int64
	OutletName string
	Employees  []attendance.Employee
	Dropped    int
}

type OutletBundle struct {
	OutletID   int64
	OutletName string
	Employees  []attendance.Employee
	Dropped    int
}

type EmployeeReport struct {
	Employee attendance.Employee
	Dropped  int
}

type Group struct {
	ID   int64
	Name string
}

type Agency struct {
	ID   int64
	Name string
}

type Device struct {
	ID         int64
	DeviceID   string
	OutletID   int64
	EmployeeID int64
}

func (c *HTTPClient) Login(ctx context.Context, creds Credentials) (Tokens, error) {
	if err := validateInput(creds); err != nil {
		return Tokens{}, err
	}
	var out Tokens
	if err := c.doJSON(ctx, http.MethodPost, "/api/token/", false, creds, &out); err != nil {
		return Tokens{}, err
	}
	if strings.TrimSpace(out.Access) == "" {
		return Tokens{}, errors.New("login response did not contain an access token")
	}
	return out, nil
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (User, error) {
	var wire wireUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/", true, nil, &wire); err != nil {
		return User{}, err
	}
	user := User{
		ID:        wire.ID.Value,
		Username:  string(wire.Username),
		FirstName: string(wire.FirstName),
		LastName:  string(wire.LastName),
		Email:     string(wire.Email),
		Role:      string(wire.Role),
		Outlets:   make([]OutletRef, 0, len(wire.Outlets)),
	}
	for _, ref := range wire.Outlets {
		if ref.ID <= 0 {
			continue
		}
		user.Outlets = append(user.Outlets, OutletRef{ID: ref.ID, Name: ref.Name})
	}
	return user, nil
}

// Profile loads the user and the outlet list with a token that is not yet
// stored on the client. It is used right after Login.
func (c *HTTPClient) Profile(ctx context.Context, accessToken string) (User, []attendance.Outlet, error) {
	authed := c.WithToken(accessToken)
	user, err := authed.CurrentUser(ctx)
	if err != nil {
		return User{}, nil, fmt.Errorf("load current user: %w", err)
	}
	outlets, err := authed.ListOutlets(ctx)
	if err != nil {
		return User{}, nil, fmt.Errorf("load outlets: %w", err)
	}
	return user, outlets, nil
}

func (c *HTTPClient) EmployeesByUser(ctx context.Context, userID int64) ([]OutletEmployees, error) {
	var wire []wireOutletEmployees
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/report/employees/user/%d", userID), true, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]OutletEmployees, 0, len(wire))
	for _, group := range wire {
		employees, dropped := toEmployees(group.Employees)
		out = append(out, OutletEmployees{
			OutletID:   group.OutletID.Value,
			OutletName: string(group.OutletName),
			Employees:  employees,
			Dropped:    dropped,
		})
	}
	return out, nil
}

func (c *HTTPClient) EmployeeReport(ctx context.Context, employeeID int64, from, to attendance.Date) (EmployeeReport, error) {
	path := fmt.Sprintf("/report/employee/%d%s", employeeID, rangeQuery(from, to))
	var wire wireEmployee
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &wire); err != nil {
		return EmployeeReport{}, err
	}
	employee, dropped := wire.toEmployee()
	if employee.ID == 0 {
		employee.ID = employeeID
	}
	return EmployeeReport{Employee: employee, Dropped: dropped}, nil
}

func (c *HTTPClient) OutletBundle(ctx context.Context, outletID int64, from, to attendance.Date) (OutletBundle, error) {
	path := fmt.Sprintf("/outletsalldata/%d/%s", outletID, rangeQuery(from, to))
	var wire wireOutletBundle
	if err := c.doJSON(ctx, http.MethodGet, path, true, nil, &wire); err != nil {
		return OutletBundle{}, err
	}
	employees, dropped := toEmployees(wire.Employees)
	return OutletBundle{
		OutletID:   outletID,
		OutletName: string(wire.OutletName),
		Employees:  employees,
		Dropped:    dropped,
	}, nil
}

func (c *HTTPClient) ListOutlets(ctx context.Context) ([]attendance.Outlet, error) {
	var wire []wireOutlet
	if err := c.doJSON(ctx, http.MethodGet, "/api/outlets/", true, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]attendance.Outlet, 0, len(wire))
	for _, item := range wire {
		out = append(out, item.toOutlet())
	}
	return out, nil
}

func (c *HTTPClient) ListEmployees(ctx context.Context) ([]attendance.Employee, error) {
	var wire []wireEmployee
	if err := c.doJSON(ctx, http.MethodGet, "/api/getemployees", true, nil, &wire); err != nil {
		return nil, err
	}
	employees, _ := toEmployees(wire)
	return employees, nil
}

func (c *HTTPClient) ListGroups(ctx context.Context) ([]Group, error) {
	var wire []wireNamed
	if err := c.doJSON(ctx, http.MethodGet, "/api/groups/", true, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]Group, 0, len(wire))
	for _, item := range wire {
		out = append(out, Group{ID: item.ID.Value, Name: string(item.Name)})
	}
	return out, nil
}

func (c *HTTPClient) ListAgencies(ctx context.Context) ([]Agency, error) {
	var wire []wireNamed
	if err := c.doJSON(ctx, http.MethodGet, "/api/getagencies/", true, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]Agency, 0, len(wire))
	for _, item := range wire {
		out = append(out, Agency{ID: item.ID.Value, Name: string(item.Name)})
	}
	return out, nil
}

func (c *HTTPClient) CreateEmployee(ctx context.Context, input EmployeeInput) (attendance.Employee, error) {
	if err := validateInput(input); err != nil {
		return attendance.Employee{}, err
	}
	var wire wireEmployee
	if err := c.doJSON(ctx, http.MethodPost, "/api/employees/", true, input, &wire); err != nil {
		return attendance.Employee{}, err
	}
	employee, _ := wire.toEmployee()
	return employee, nil
}

func (c *HTTPClient) UpdateEmployee(ctx context.Context, employeeID int64, input EmployeeInput) (attendance.Employee, error) {
	if employeeID <= 0 {
		return attendance.Employee{}, fmt.Errorf("%w: employee id must be > 0", ErrInvalidInput)
	}
	if err := validateInput(input); err != nil {
		return attendance.Employee{}, err
	}
	var wire wireEmployee
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/employees/%d/", employeeID), true, input, &wire); err != nil {
		return attendance.Employee{}, err
	}
	employee, _ := wire.toEmployee()
	return employee, nil
}

// DeactivateEmployee sets the inactivation date. Employees are never deleted.
func (c *HTTPClient) DeactivateEmployee(ctx context.Context, employeeID int64, inactiveDate attendance.Date) error {
	if employeeID <= 0 {
		return fmt.Errorf("%w: employee id must be > 0", ErrInvalidInput)
	}
	if _, err := attendance.ParseDate(inactiveDate.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	body := employeeDeactivation{InactiveDate: inactiveDate.String()}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/employees/%d/", employeeID), true, body, nil)
}

func (c *HTTPClient) CreateOutlet(ctx context.Context, input OutletInput) (attendance.Outlet, error) {
	if err := validateInput(input); err != nil {
		return attendance.Outlet{}, err
	}
	var wire wireOutlet
	if err := c.doJSON(ctx, http.MethodPost, "/api/outlets/", true, input, &wire); err != nil {
		return attendance.Outlet{}, err
	}
	return wire.toOutlet(), nil
}

func (c *HTTPClient) UpdateOutlet(ctx context.Context, outletID int64, input OutletInput) (attendance.Outlet, error) {
	if outletID <= 0 {
		return attendance.Outlet{}, fmt.Errorf("%w: outlet id must be > 0", ErrInvalidInput)
	}
	if err := validateInput(input); err != nil {
		return attendance.Outlet{}, err
	}
	var wire wireOutlet
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/outlets/%d/", outletID), true, input, &wire); err != nil {
		return attendance.Outlet{}, err
	}
	return wire.toOutlet(), nil
}

func (c *HTTPClient) DeleteOutlet(ctx context.Context, outletID int64) error {
	if outletID <= 0 {
		return fmt.Errorf("%w: outlet id must be > 0", ErrInvalidInput)
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/outlets/%d/", outletID), true, nil, nil)
}

// UpdateLeaveStatus sends a leave decision. Callers check the transition
// against the current status first (attendance.LeaveStatus.TransitionTo).
func (c *HTTPClient) UpdateLeaveStatus(ctx context.Context, leaveID int64, status attendance.LeaveStatus) error {
	if leaveID <= 0 {
		return fmt.Errorf("%w: leave id must be > 0", ErrInvalidInput)
	}
	if status != attendance.LeaveApproved && status != attendance.LeaveRejected {
		return fmt.Errorf("%w: leave status must be approved or rejected, got %q", ErrInvalidInput, status)
	}
	body := leaveStatusUpdate{Status: string(status)}
	return c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/api/leaves/%d/", leaveID), true, body, nil)
}

func (c *HTTPClient) AssignDevice(ctx context.Context, input DeviceAssignment) (Device, error) {
	if err := validateInput(input); err != nil {
		return Device{}, err
	}
	var wire wireDevice
	if err := c.doJSON(ctx, http.MethodPost, "/api/devices/", true, input, &wire); err != nil {
		return Device{}, err
	}
	return Device{
		ID:         wire.ID.Value,
		DeviceID:   string(wire.DeviceID),
		OutletID:   wire.Outlet.Value,
		EmployeeID: wire.Employee.Value,
	}, nil
}

func (c *HTTPClient) DeleteDevice(ctx context.Context, deviceID int64) error {
	if deviceID <= 0 {
		return fmt.Errorf("%w: device id must be > 0", ErrInvalidInput)
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/devices/%d/", deviceID), true, nil, nil)
}

func rangeQuery(from, to attendance.Date) string {
	values := url.Values{}
	values.Set("start_date", from.String())
	values.Set("end_date", to.String())
	return "?" + values.Encode()
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpointPath string, authenticated bool, body any, out any) error {
	if authenticated && c.accessToken == "" {
		return ErrUnauthenticated
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpointPath, bodyReader)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, endpointPath, err)
	}

	req.Header.Set("Accept", "application/json")
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpointPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{
			Method:     method,
			Path:       endpointPath,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(responseBody)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response %s %s: %w", method, endpointPath, err)
	}
	return nil
}
