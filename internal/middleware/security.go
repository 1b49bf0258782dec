// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security-related HTTP headers to every response.
// The server only speaks JSON and CSV, so the set is tuned for an API:
// no framing, no MIME sniffing, and no caching of admin responses.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent the browser from MIME-sniffing the Content-Type.
		h.Set("X-Content-Type-Options", "nosniff")

		// An API has no legitimate frame embedding.
		h.Set("X-Frame-Options", "DENY")

		// Admin responses carry content data; keep them out of caches.
		h.Set("Cache-Control", "no-store")

		h.Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
