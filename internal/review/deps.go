package review

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Logger is the minimal logging interface required by the review module.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Deps aggregates runtime dependencies for the review module.
type Deps struct {
	DB         *sqlx.DB
	Redis      *redis.Client // optional; listing cache is off without it
	Logger     Logger
	Config     Config
	HTTPClient *http.Client
}

// Validate ensures that the deps struct contains the essentials before bootstrapping services.
func (d *Deps) Validate() error {
	if d == nil {
		return fmt.Errorf("review deps are nil")
	}
	if d.DB == nil {
		return fmt.Errorf("review deps DB is required")
	}
	if d.Logger == nil {
		return fmt.Errorf("review deps Logger is required")
	}
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{}
	}
	return nil
}
