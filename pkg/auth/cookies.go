package auth

import (
	"net/http"
	"strings"
)

// TokenCookie is the cookie carrying the identity token.
const TokenCookie = "token"

// Cookies is a parsed Cookie header. Values are kept verbatim: no unquoting
// and no URL decoding.
type Cookies map[string]string

// ParseCookies splits a raw header of the form "k1=v1; k2=v2" into a mapping
// from trimmed key to value. It never fails: a segment without "=" is kept
// with an empty value, and an empty header yields an empty mapping. When a
// name repeats, the first occurrence wins.
func ParseCookies(header string) Cookies {
	cookies := Cookies{}
	if strings.TrimSpace(header) == "" {
		return cookies
	}

	for _, segment := range strings.Split(header, ";") {
		key, value, _ := strings.Cut(segment, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, seen := cookies[key]; seen {
			continue
		}
		cookies[key] = strings.TrimSpace(value)
	}
	return cookies
}

// Get returns the value of a cookie and whether it carries a non-empty value.
func (c Cookies) Get(name string) (string, bool) {
	value, ok := c[name]
	return value, ok && value != ""
}

// CookieHeader finds the raw cookie header in a gateway header map. Gateways
// differ in casing, and some clients send a "cookies" header instead; a
// "Cookie" header is preferred when both are present.
func CookieHeader(headers map[string]string) string {
	if value, ok := headerValue(headers, "cookie"); ok {
		return value
	}
	value, _ := headerValue(headers, "cookies")
	return value
}

// headerValue looks name up case-insensitively, preferring the canonical form.
func headerValue(headers map[string]string, name string) (string, bool) {
	if value, ok := headers[http.CanonicalHeaderKey(name)]; ok {
		return value, true
	}
	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}
