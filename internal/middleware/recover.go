package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"
)

// Recover превращает панику обработчика в 500 {"error":"internal"}.
// Стоит первым в цепочке, поэтому rid берётся из заголовка ответа, который выставил RequestID.
// Если ответ уже начат, пишется только лог.
func Recover(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := wrap(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error().
					Str("rid", sw.Header().Get(headerRequestID)).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("panic", fmt.Sprint(rec)).
					Bool("headers_sent", sw.wroteHeader).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if !sw.wroteHeader {
					writeJSONError(sw, http.StatusInternalServerError, "internal")
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
