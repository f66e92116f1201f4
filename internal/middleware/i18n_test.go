package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name           string
		xLocale        string
		acceptLanguage string
		country        string
		fallback       string
		want           string
	}{
		{name: "x_locale_wins", xLocale: "zh-CN", acceptLanguage: "en-US", want: "zh"},
		{name: "accept_language_chinese", acceptLanguage: "zh-CN,zh;q=0.9,en;q=0.8", want: "zh"},
		{name: "accept_language_english", acceptLanguage: "en-US,en;q=0.9", want: "en"},
		{name: "country_china", country: "CN", want: "zh"},
		{name: "country_singapore", country: "SG", want: "zh"},
		{name: "country_other", country: "DE", want: "en"},
		{name: "fallback_locale", fallback: "zh", want: "zh"},
		{name: "default_english", want: "en"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.xLocale != "" {
				req.Header.Set("X-Locale", tc.xLocale)
			}
			if tc.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tc.acceptLanguage)
			}
			if got := detectLocale(req, tc.fallback, tc.country); got != tc.want {
				t.Fatalf("detectLocale = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NMiddlewareStoresLocaleAndCountry(t *testing.T) {
	t.Parallel()
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.7" {
			return "", errors.New("unexpected ip")
		}
		return "cn", nil
	}
	var gotLocale, gotCountry string
	handler := I18N("en", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:55000"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotLocale != "zh" {
		t.Fatalf("locale = %q, want zh", gotLocale)
	}
	if gotCountry != "CN" {
		t.Fatalf("country = %q, want CN", gotCountry)
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:1234"
	if got := ClientIP(req); got != "198.51.100.4" {
		t.Fatalf("ClientIP = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 198.51.100.4")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("ClientIP with XFF = %q", got)
	}
}

func TestResolveCountryTolerance(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:1234"
	if got := ResolveCountry(req, nil); got != "" {
		t.Fatalf("nil lookup country = %q, want empty", got)
	}
	failing := func(ip string) (string, error) { return "", errors.New("db offline") }
	if got := ResolveCountry(req, failing); got != "" {
		t.Fatalf("failing lookup country = %q, want empty", got)
	}
}
