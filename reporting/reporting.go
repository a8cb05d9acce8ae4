// Package reporting forwards unexpected errors to a Sentry-compatible tracker.
package reporting

import (
	"fmt"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

// Init enables error tracking when dsn is set.
func Init(dsn, environment, release string) error {
	if dsn == "" {
		log.Println("[REPORTING] No DSN configured, error tracking disabled")
		enabled = false
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if event.Tags == nil {
				event.Tags = make(map[string]string)
			}
			event.Tags["service"] = "gamefilm"
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("initializing error tracking: %w", err)
	}

	enabled = true
	log.Printf("[REPORTING] Error tracking enabled (environment=%s release=%s)", environment, release)
	return nil
}

func IsEnabled() bool {
	return enabled
}

// CaptureError reports err with free-form context. Always logs, even when tracking is off.
func CaptureError(err error, context map[string]interface{}) {
	log.Printf("[REPORTING] %v %v", err, context)
	if !enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for key, value := range context {
			scope.SetExtra(key, value)
		}
		scope.SetLevel(sentry.LevelError)
		sentry.CaptureException(err)
	})
}

// Recover reports a panic without re-raising it.
func Recover() {
	if r := recover(); r != nil {
		err := fmt.Errorf("panic recovered: %v", r)
		if enabled {
			sentry.CurrentHub().Recover(r)
		}
		log.Printf("[REPORTING] %v", err)
	}
}

func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}
