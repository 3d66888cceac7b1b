package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"attendlog/attendance"
	"attendlog/internal/timeutil"
)

// FlexibleInt64 supports payload fields that can be numeric IDs, numeric
// strings, empty strings or null.
type FlexibleInt64 struct {
	Valid bool
	Value int64
}

// ID wraps a known numeric identifier.
func ID(value int64) FlexibleInt64 {
	return FlexibleInt64{Valid: true, Value: value}
}

func (id FlexibleInt64) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte(`null`), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}

func (id *FlexibleInt64) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch text {
	case "", "null", `""`:
		*id = FlexibleInt64{}
		return nil
	}

	var number int64
	if err := json.Unmarshal(data, &number); err == nil {
		*id = FlexibleInt64{Valid: true, Value: number}
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == "" {
			*id = FlexibleInt64{}
			return nil
		}
		parsed, err := strconv.ParseInt(asString, 10, 64)
		if err != nil {
			return fmt.Errorf("parse id string %q: %w", asString, err)
		}
		*id = FlexibleInt64{Valid: true, Value: parsed}
		return nil
	}

	return fmt.Errorf("unsupported id value %q", text)
}

func (id FlexibleInt64) ptr() *int64 {
	if !id.Valid {
		return nil
	}
	value := id.Value
	return &value
}

// flexText keeps the textual form of a string, number or boolean field. Null
// decodes to the empty string.
type flexText string

func (t *flexText) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		*t = ""
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*t = flexText(strings.TrimSpace(value))
		return nil
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		return fmt.Errorf("unsupported scalar value %s", text)
	}
	*t = flexText(text)
	return nil
}

func (t flexText) float() float64 {
	value, err := strconv.ParseFloat(string(t), 64)
	if err != nil {
		return 0
	}
	return value
}

// namedRef decodes either a bare name ("Sick Leave"), a bare ID (3) or an
// object carrying id and name.
type namedRef struct {
	ID   int64
	Name string
}

func (r *namedRef) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	switch {
	case text == "" || text == "null":
		*r = namedRef{}
		return nil
	case strings.HasPrefix(text, "{"):
		var obj struct {
			ID        FlexibleInt64 `json:"id"`
			Name      flexText      `json:"name"`
			OutletID  FlexibleInt64 `json:"outlet_id"`
			Outlet    flexText      `json:"outlet_name"`
			LeaveType flexText      `json:"leave_type_name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		r.ID = firstID(obj.ID, obj.OutletID)
		r.Name = firstText(obj.Name, obj.Outlet, obj.LeaveType)
		return nil
	case strings.HasPrefix(text, `"`):
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		name = strings.TrimSpace(name)
		if parsed, err := strconv.ParseInt(name, 10, 64); err == nil {
			*r = namedRef{ID: parsed}
			return nil
		}
		*r = namedRef{Name: name}
		return nil
	default:
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("unsupported reference %s", text)
		}
		*r = namedRef{ID: id}
		return nil
	}
}

// notesPayload decodes verification notes sent as an object, as a JSON
// encoded object inside a string, or as free text.
type notesPayload map[string]string

func (n *notesPayload) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" || text == `""` {
		*n = nil
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		inner = strings.TrimSpace(inner)
		if strings.HasPrefix(inner, "{") {
			return n.UnmarshalJSON([]byte(inner))
		}
		*n = notesPayload{"note": inner}
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode verification notes: %w", err)
	}
	out := make(notesPayload, len(raw))
	for key, value := range raw {
		switch typed := value.(type) {
		case nil:
			continue
		case string:
			out[key] = typed
		default:
			encoded, err := json.Marshal(typed)
			if err != nil {
				return fmt.Errorf("encode note %q: %w", key, err)
			}
			out[key] = string(encoded)
		}
	}
	*n = out
	return nil
}

type wireAttendance struct {
	ID                FlexibleInt64 `json:"id"`
	Date              flexText      `json:"date"`
	CheckIn           flexText      `json:"check_in_time"`
	CheckOut          flexText      `json:"check_out_time"`
	WorkedHours       flexText      `json:"worked_hours"`
	Status            flexText      `json:"status"`
	VerificationNotes notesPayload  `json:"verification_notes"`
}

type wireLeave struct {
	ID        FlexibleInt64 `json:"id"`
	LeaveDate flexText      `json:"leave_date"`
	LeaveType namedRef      `json:"leave_type"`
	Status    flexText      `json:"status"`
	Remarks   flexText      `json:"remarks"`
	CreatedAt flexText      `json:"created_at"`
}

type wireEmployee struct {
	ID           FlexibleInt64    `json:"id"`
	EmployeeID   FlexibleInt64    `json:"employee_id"`
	FullName     flexText         `json:"fullname"`
	FirstName    flexText         `json:"first_name"`
	LastName     flexText         `json:"last_name"`
	Outlets      []namedRef       `json:"outlets"`
	Attendance   []wireAttendance `json:"attendance"`
	Attendances  []wireAttendance `json:"attendances"`
	Leaves       []wireLeave      `json:"leaves"`
	InactiveDate flexText         `json:"inactive_date"`
}

type wireOutlet struct {
	ID        FlexibleInt64 `json:"id"`
	Name      flexText      `json:"name"`
	Latitude  flexText      `json:"latitude"`
	Longitude flexText      `json:"longitude"`
	Radius    flexText      `json:"radius"`
	Manager   namedRef      `json:"manager"`
	Agency    namedRef      `json:"agency"`
	Status    flexText      `json:"status"`
}

type wireOutletEmployees struct {
	OutletID   FlexibleInt64  `json:"outlet_id"`
	OutletName flexText       `json:"outlet_name"`
	Employees  []wireEmployee `json:"employees"`
}

// wireOutletBundle accepts either {"employees": [...]} or a bare array.
type wireOutletBundle struct {
	OutletName flexText
	Employees  []wireEmployee
}

func (b *wireOutletBundle) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "" || text == "null" {
		*b = wireOutletBundle{}
		return nil
	}
	if strings.HasPrefix(text, "[") {
		var employees []wireEmployee
		if err := json.Unmarshal(data, &employees); err != nil {
			return err
		}
		*b = wireOutletBundle{Employees: employees}
		return nil
	}
	var obj struct {
		OutletName flexText       `json:"outlet_name"`
		Employees  []wireEmployee `json:"employees"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*b = wireOutletBundle{OutletName: obj.OutletName, Employees: obj.Employees}
	return nil
}

type wireUser struct {
	ID        FlexibleInt64 `json:"id"`
	Username  flexText      `json:"username"`
	FirstName flexText      `json:"first_name"`
	LastName  flexText      `json:"last_name"`
	Email     flexText      `json:"email"`
	Role      flexText      `json:"role"`
	Outlets   []namedRef    `json:"outlets"`
}

type wireNamed struct {
	ID   FlexibleInt64 `json:"id"`
	Name flexText      `json:"name"`
}

type wireDevice struct {
	ID       FlexibleInt64 `json:"id"`
	DeviceID flexText      `json:"device_id"`
	Outlet   FlexibleInt64 `json:"outlet"`
	Employee FlexibleInt64 `json:"employee"`
}

func (w wireEmployee) toEmployee() (attendance.Employee, int) {
	employee := attendance.Employee{
		ID:        firstID(w.ID, w.EmployeeID),
		FullName:  string(w.FullName),
		FirstName: string(w.FirstName),
		LastName:  string(w.LastName),
	}
	for _, ref := range w.Outlets {
		if ref.ID > 0 {
			employee.OutletIDs = append(employee.OutletIDs, ref.ID)
		}
	}
	if date, err := attendance.ParseDate(string(w.InactiveDate)); err == nil {
		employee.InactiveDate = &date
	}

	dropped := 0
	raw := append(append([]wireAttendance(nil), w.Attendance...), w.Attendances...)
	employee.Attendance = make([]attendance.AttendanceRecord, 0, len(raw))
	for _, item := range raw {
		record, err := item.toRecord(employee.ID)
		if err != nil {
			dropped++
			continue
		}
		employee.Attendance = append(employee.Attendance, record)
	}

	employee.Leaves = make([]attendance.LeaveRecord, 0, len(w.Leaves))
	for _, item := range w.Leaves {
		leave, err := item.toLeave(employee.ID)
		if err != nil {
			dropped++
			continue
		}
		employee.Leaves = append(employee.Leaves, leave)
	}

	return employee, dropped
}

func (w wireAttendance) toRecord(employeeID int64) (attendance.AttendanceRecord, error) {
	date, err := attendance.ParseDate(string(w.Date))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("attendance %d: %w", w.ID.Value, err)
	}
	checkIn, err := parseCheckTime(date, string(w.CheckIn))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("attendance %d check-in: %w", w.ID.Value, err)
	}
	checkOut, err := parseCheckTime(date, string(w.CheckOut))
	if err != nil {
		return attendance.AttendanceRecord{}, fmt.Errorf("attendance %d check-out: %w", w.ID.Value, err)
	}
	return attendance.AttendanceRecord{
		ID:          w.ID.Value,
		EmployeeID:  employeeID,
		Date:        date,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		WorkedHours: attendance.ParseHours(string(w.WorkedHours)),
		Status:      string(w.Status),
		Notes:       attendance.NewVerificationNotes(w.VerificationNotes),
	}, nil
}

// parseCheckTime accepts full timestamps and bare times of day. A bare time is
// placed on the record's date in UTC.
func parseCheckTime(date attendance.Date, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if clock, err := time.Parse(layout, raw); err == nil {
			day, err := time.Parse(attendance.DateLayout, date.String())
			if err != nil {
				return nil, err
			}
			value := day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute + time.Duration(clock.Second())*time.Second)
			return &value, nil
		}
	}
	return timeutil.ParseTimestamp(raw)
}

func (w wireLeave) toLeave(employeeID int64) (attendance.LeaveRecord, error) {
	date, err := attendance.ParseDate(string(w.LeaveDate))
	if err != nil {
		return attendance.LeaveRecord{}, fmt.Errorf("leave %d: %w", w.ID.Value, err)
	}
	status, err := attendance.ParseLeaveStatus(string(w.Status))
	if err != nil {
		return attendance.LeaveRecord{}, fmt.Errorf("leave %d: %w", w.ID.Value, err)
	}
	leave := attendance.LeaveRecord{
		ID:         w.ID.Value,
		EmployeeID: employeeID,
		LeaveDate:  date,
		LeaveType:  w.LeaveType.Name,
		Status:     status,
		Remarks:    string(w.Remarks),
	}
	if created, err := attendance.ParseDate(string(w.CreatedAt)); err == nil {
		leave.CreatedAt = created
	}
	return leave, nil
}

func (w wireOutlet) toOutlet() attendance.Outlet {
	status := 1
	if text := strings.TrimSpace(string(w.Status)); text != "" {
		switch strings.ToLower(text) {
		case "false":
			status = 0
		case "true":
			status = 1
		default:
			status = int(w.Status.float())
		}
	}
	return attendance.Outlet{
		ID:           w.ID.Value,
		Name:         string(w.Name),
		Latitude:     w.Latitude.float(),
		Longitude:    w.Longitude.float(),
		RadiusMeters: w.Radius.float(),
		ManagerID:    refPtr(w.Manager),
		AgencyID:     refPtr(w.Agency),
		Status:       status,
	}
}

func toEmployees(values []wireEmployee) ([]attendance.Employee, int) {
	out := make([]attendance.Employee, 0, len(values))
	dropped := 0
	for _, value := range values {
		employee, lost := value.toEmployee()
		dropped += lost
		out = append(out, employee)
	}
	return out, dropped
}

func refPtr(ref namedRef) *int64 {
	if ref.ID <= 0 {
		return nil
	}
	value := ref.ID
	return &value
}

func firstID(values ...FlexibleInt64) int64 {
	for _, value := range values {
		if value.Valid && value.Value != 0 {
			return value.Value
		}
	}
	return 0
}

func firstText(values ...flexText) string {
	for _, value := range values {
		if strings.TrimSpace(string(value)) != "" {
			return strings.TrimSpace(string(value))
		}
	}
	return ""
}
