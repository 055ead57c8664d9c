package main

import (
	"fmt"
	"log"
	"net/http"

	"reviewsBack/internal/auth"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	tokens   *auth.Manager
}

func initializeApp(errorLog, infoLog *log.Logger, tokens *auth.Manager) *application {
	return &application{
		errorLog: errorLog,
		infoLog:  infoLog,
		tokens:   tokens,
	}
}

// stdLogger adapts the application's log.Logger pair to the module Logger interface.
type stdLogger struct {
	info *log.Logger
	err  *log.Logger
}

func (l stdLogger) Infof(format string, args ...interface{}) {
	l.info.Output(2, fmt.Sprintf(format, args...))
}

func (l stdLogger) Errorf(format string, args ...interface{}) {
	l.err.Output(2, fmt.Sprintf(format, args...))
}

func (app *application) logger() stdLogger {
	return stdLogger{info: app.infoLog, err: app.errorLog}
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
