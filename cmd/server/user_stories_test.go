package main

import (
	"context"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"
)

// Test_UserStories tests the user stories of the application.
// These are end-to-end tests and won't check the nitty-gritty details or edge cases.
func Test_UserStories(t *testing.T) {
	t.Run("as a visitor, I want to", testEnv(func(t *testing.T) {
		// runAppForTest waits for the app to be up and stops it after the test finishes.
		logs := runAppForTest(t)

		c := newClient(t)

		var csrfToken string

		t.Run("view the user registration form", func(t *testing.T) {
			body := c.mustGetBody(t, "/register", http.StatusOK)

			// Symbolic check for the form. I'm not checking the HTML too much,
			// because I don't want every change to the front-end break these tests.
			symbol := `id="registration-form"`
			if !strings.Contains(body, symbol) {
				t.Errorf("did not find\n%s\nin body\n%s", symbol, body)
			}

			csrfToken = extractCSRFToken(t, body)
		})

		t.Run("submit the registration form", func(t *testing.T) {
			form := url.Values{
				"csrf_token":      {csrfToken},
				"firstName":       {"Agent"},
				"lastName":        {"Smith"},
				"username":        {"agent_smith"},
				"email":           {"agent@example.com"},
				"password":        {"reallyStrongPassword1"},
				"confirmPassword": {"reallyStrongPassword1"},
				"phoneNumber":     {"0612345678"},
				"dateOfBirth":     {"1985-03-21"},
				"gender":          {"Other"},
			}

			body := c.mustPostForm(t, "/register", form, http.StatusOK)

			symbol := "Registration successful! Welcome, Agent!"
			if !strings.Contains(body, symbol) {
				t.Errorf("did not find\n%s\nin body\n%s", symbol, body)
			}

			assertLog(t, logs.String(), "account registered")
		})

		t.Run("find my account in the user list", func(t *testing.T) {
			body := c.mustGetBody(t, "/users?term=smith", http.StatusOK)

			if !strings.Contains(body, "agent@example.com") {
				t.Errorf("did not find account in body\n%s", body)
			}
		})

		t.Run("look up my account by email through the API", func(t *testing.T) {
			body := c.mustGetBody(t, "/api/users/email/agent@example.com", http.StatusOK)

			if !strings.Contains(body, `"username":"agent_smith"`) {
				t.Errorf("did not find account in body\n%s", body)
			}
		})
	}))
}

// runAppForTest runs the app while the test is running.
// This function returns after the app is confirmed to be up and stops
// the app when the test is cleaned up.
func runAppForTest(t *testing.T) *safeBuffer {
	t.Helper()

	// This helper function does two things:
	// 1. Run the app in a goroutine.
	// 2. Wait for the app to be up and running.

	// Both these tasks are done concurrently and share the same context.
	// When this context is cancelled, both tasks will stop.

	buf := newBuffer()
	done := make(chan struct{})

	// we will stop the server after a timeout or when the test is cleaned up.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	t.Cleanup(func() {
		// stop both tasks if it's still in progress and wait for the app
		// to release the database before the files are removed.
		cancel()
		<-done

		if t.Failed() {
			t.Logf("app output:\n%s", buf.String())
		}
	})

	// Task 1: Run the app.
	go func() {
		defer close(done)

		code := run(ctx, buf)
		if code != 0 {
			t.Errorf("run exited with code %d", code)
		}

		// stop the other task
		cancel()
	}()

	// Task 2: Wait for the app to be available.
	err := waitForStatusOK(ctx, publicURL)
	if err != nil {
		t.Fatalf("error waiting for status ok: %v", err)
	}

	return buf
}

type client struct {
	http *http.Client
}

func newClient(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &client{
		http: &http.Client{
			Jar: jar,
			// registration hashes a password, allow some more time than the health check.
			Timeout: 5 * time.Second,
		},
	}
}

func (c *client) mustGetBody(t *testing.T, path string, wantStatus int) string {
	t.Helper()

	res, err := c.http.Get(baseURL + path)
	if err != nil {
		t.Fatalf("unexpected error during get request: %v", err)
	}

	return mustReadBody(t, res, wantStatus)
}

func (c *client) mustPostForm(t *testing.T, path string, form url.Values, wantStatus int) string {
	t.Helper()

	res, err := c.http.PostForm(baseURL+path, form)
	if err != nil {
		t.Fatalf("unexpected error during post request: %v", err)
	}

	return mustReadBody(t, res, wantStatus)
}

func mustReadBody(t *testing.T, res *http.Response, wantStatus int) string {
	t.Helper()

	defer func() {
		err := res.Body.Close()
		if err != nil {
			t.Fatalf("unexpected error closing response body: %v", err)
		}
	}()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("unexpected error reading response body: %v", err)
	}

	if res.StatusCode != wantStatus {
		t.Fatalf("unexpected status code: %d, body:\n%s", res.StatusCode, data)
	}

	return string(data)
}

var csrfTokenRegexp = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()

	m := csrfTokenRegexp.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("did not find csrf token in body\n%s", body)
	}

	return html.UnescapeString(m[1])
}
