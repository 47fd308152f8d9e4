package training

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clubhouse/internal/domain/person"
)

// ErrDownForMaintenance indicates the LMS is in maintenance mode and the
// request should be retried later by a human, not by this code.
var ErrDownForMaintenance = errors.New("lms is down for maintenance")

// MoodleClient speaks the Moodle web-service REST protocol: a single
// endpoint, a token, and a wsfunction per operation.
type MoodleClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewMoodleClient(baseURL, token string) *MoodleClient {
	return &MoodleClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type moodleError struct {
	Exception string `json:"exception"`
	ErrorCode string `json:"errorcode"`
	Message   string `json:"message"`
}

func (c *MoodleClient) call(ctx context.Context, function string, params url.Values, out any) error {
	params.Set("wstoken", c.Token)
	params.Set("wsfunction", function)
	params.Set("moodlewsrestformat", "json")

	endpoint := c.BaseURL + "/webservice/rest/server.php"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return ErrDownForMaintenance
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lms returned status %d for %s", resp.StatusCode, function)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("lms response for %s: %w", function, err)
	}

	var mErr moodleError
	if json.Unmarshal(raw, &mErr) == nil && mErr.Exception != "" {
		if mErr.ErrorCode == "maintenancemode" {
			return ErrDownForMaintenance
		}
		return fmt.Errorf("lms %s failed: %s (%s)", function, mErr.Message, mErr.ErrorCode)
	}

	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

type moodleUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FindUser looks up an existing LMS account by email. A missing account is
// not an error; ok reports whether one was found.
func (c *MoodleClient) FindUser(ctx context.Context, email string) (string, bool, error) {
	params := url.Values{}
	params.Set("field", "email")
	params.Set("values[0]", email)

	var users []moodleUser
	if err := c.call(ctx, "core_user_get_users_by_field", params, &users); err != nil {
		return "", false, err
	}
	if len(users) == 0 {
		return "", false, nil
	}
	return strconv.FormatInt(users[0].ID, 10), true, nil
}

// CreateUser provisions an LMS account for the person and returns its id.
func (c *MoodleClient) CreateUser(ctx context.Context, p person.Person, password string) (string, error) {
	params := url.Values{}
	params.Set("users[0][username]", strings.ToLower(p.Callsign))
	params.Set("users[0][firstname]", p.FirstName)
	params.Set("users[0][lastname]", p.LastName)
	params.Set("users[0][email]", p.Email)
	params.Set("users[0][password]", password)

	var created []moodleUser
	if err := c.call(ctx, "core_user_create_users", params, &created); err != nil {
		return "", err
	}
	if len(created) == 0 {
		return "", fmt.Errorf("lms did not return the created user for %s", p.Callsign)
	}
	return strconv.FormatInt(created[0].ID, 10), nil
}

// EnrollUser enrolls an LMS account in a course as a student.
func (c *MoodleClient) EnrollUser(ctx context.Context, lmsID string, courseID int64) error {
	params := url.Values{}
	params.Set("enrolments[0][roleid]", "5") // student role
	params.Set("enrolments[0][userid]", lmsID)
	params.Set("enrolments[0][courseid]", strconv.FormatInt(courseID, 10))

	return c.call(ctx, "enrol_manual_enrol_users", params, nil)
}
