package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type profile struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type message struct {
	ID        int       `json:"id"`
	Author    profile   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type messagePage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []message `json:"results"`
}

type ctxKey string

const profileKey ctxKey = "profile"

func currentUser(r *http.Request) profile {
	p, _ := r.Context().Value(profileKey).(profile)
	return p
}

func token(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setTokenCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
}

// safeNext keeps redirects on this site.
// Browsers read a backslash like a slash, so "/\host" counts as "//host".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.ContainsRune(next, '\\') {
		return "/chat"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(next, "//") {
		return "/chat"
	}
	return next
}

// requireAuth redirects to /login if the cookie is missing or the API no longer
// accepts the token. The caller's profile is put in the request context.
func requireAuth(api *apiClient) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := token(r)
			if tok == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			data, status, err := api.do("GET", "/profile/", tok, nil)
			if err != nil {
				http.Error(w, "cannot reach API: "+err.Error(), http.StatusBadGateway)
				return
			}
			var p profile
			if status == http.StatusUnauthorized || json.Unmarshal(data, &p) != nil {
				clearTokenCookie(w)
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey, p)))
		})
	}
}

func redirectChat(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/chat", http.StatusFound)
}

// ==========================
// Login / Register
// ==========================
func loginForm(w http.ResponseWriter, r *http.Request) {
	if token(r) != "" {
		http.Redirect(w, r, "/chat", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", map[string]string{"Next": r.URL.Query().Get("next")})
}

func loginSubmit(api *apiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		next := r.FormValue("next")

		data, status, err := api.do("POST", "/auth/login/", "", map[string]string{
			"username": username,
			"password": r.FormValue("password"),
		})
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error(), "Username": username, "Next": next})
			return
		}
		var out struct {
			Token string `json:"token"`
		}
		if status != http.StatusOK || json.Unmarshal(data, &out) != nil || out.Token == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": errorMessage(data), "Username": username, "Next": next})
			return
		}

		setTokenCookie(w, out.Token)
		http.Redirect(w, r, safeNext(next), http.StatusFound)
	}
}

func registerForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "register.html", map[string]string{})
}

func registerSubmit(api *apiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		form := map[string]string{
			"username": strings.TrimSpace(r.FormValue("username")),
			"email":    strings.TrimSpace(r.FormValue("email")),
			"password": r.FormValue("password"),
		}

		data, status, err := api.do("POST", "/auth/register/", "", form)
		if err != nil {
			renderTemplate(w, "register.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		var out struct {
			Token string `json:"token"`
		}
		if status != http.StatusCreated || json.Unmarshal(data, &out) != nil || out.Token == "" {
			renderTemplate(w, "register.html", map[string]string{
				"Error":    errorMessage(data),
				"Username": form["username"],
				"Email":    form["email"],
			})
			return
		}

		setTokenCookie(w, out.Token)
		http.Redirect(w, r, "/chat", http.StatusFound)
	}
}

func logout(api *apiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// the cookie goes regardless of what the API says
		_, _, _ = api.do("POST", "/auth/logout/", token(r), nil)
		clearTokenCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// ==========================
// Chat
// ==========================
func chatPage(api *apiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset < 0 {
			offset = 0
		}

		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))
		data, status, err := api.do("GET", "/messages/?"+q.Encode(), token(r), nil)
		if err != nil {
			http.Error(w, "cannot reach API: "+err.Error(), http.StatusBadGateway)
			return
		}
		if status != http.StatusOK {
			http.Error(w, errorMessage(data), status)
			return
		}
		var page messagePage
		if err := json.Unmarshal(data, &page); err != nil {
			http.Error(w, "invalid API response", http.StatusBadGateway)
			return
		}

		// the API returns newest first; show oldest at the top
		msgs := make([]message, len(page.Results))
		for i, m := range page.Results {
			msgs[len(msgs)-1-i] = m
		}

		renderTemplate(w, "chat.html", map[string]interface{}{
			"User":     currentUser(r),
			"Messages": msgs,
			"Count":    page.Count,
			"Error":    r.URL.Query().Get("error"),
			"HasOlder": page.Next != nil,
			"Older":    offset + pageSize,
			"HasNewer": page.Previous != nil,
			"Newer":    max(0, offset-pageSize),
		})
	}
}

func chatPost(api *apiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		data, status, err := api.do("POST", "/messages/", token(r), map[string]string{"content": r.FormValue("content")})
		if err != nil {
			http.Redirect(w, r, "/chat?error="+url.QueryEscape("Cannot reach API"), http.StatusFound)
			return
		}
		if status != http.StatusCreated {
			http.Redirect(w, r, "/chat?error="+url.QueryEscape(errorMessage(data)), http.StatusFound)
			return
		}
		http.Redirect(w, r, "/chat", http.StatusFound)
	}
}

// ==========================
// Profile
// ==========================
func profilePage(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "profile.html", map[string]interface{}{"User": currentUser(r), "Saved": r.URL.Query().Get("saved") != ""})
}

func profileUpdate(api *apiClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		current := currentUser(r)
		changes := map[string]string{}
		if v := strings.TrimSpace(r.FormValue("username")); v != current.Username {
			changes["username"] = v
		}
		if v := strings.TrimSpace(r.FormValue("email")); v != current.Email {
			changes["email"] = v
		}
		if len(changes) == 0 {
			http.Redirect(w, r, "/profile", http.StatusFound)
			return
		}

		data, status, err := api.do("PUT", "/profile/", token(r), changes)
		if err != nil || status != http.StatusOK {
			msg := "Cannot reach API"
			if err == nil {
				msg = errorMessage(data)
			}
			renderTemplate(w, "profile.html", map[string]interface{}{"User": current, "Error": msg})
			return
		}
		http.Redirect(w, r, "/profile?saved=1", http.StatusFound)
	}
}
