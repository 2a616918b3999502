// Package middleware contains net/http middleware shared by the HTTP adapters.
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler
