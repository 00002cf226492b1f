package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"overloader/internal/config"
	"overloader/internal/services"
	"overloader/internal/services/hevy"
)

// Source is the tracker surface the reachability check needs.
type Source interface {
	ListWorkouts(ctx context.Context, page, pageSize int) (*hevy.WorkoutPage, error)
}

// CheckTracker lists a single workout to verify the tracker API is reachable
// and the key is accepted.
func CheckTracker(ctx context.Context, source Source) Result {
	const name = "Hevy API"

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := source.ListWorkouts(checkCtx, 1, 1); err != nil {
		if errors.Is(err, services.ErrAuth) {
			return Result{Name: name, Detail: "auth failed (invalid api key)"}
		}
		if statusErr, ok := hevy.AsStatusError(err); ok {
			return Result{Name: name, Detail: fmt.Sprintf("request failed (%d)", statusErr.StatusCode)}
		}
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "Reachable"}
}

// CheckModel verifies the selected LLM provider has the settings it needs.
// It does not call the model.
func CheckModel(cfg *config.Config) Result {
	name := "LLM provider"
	switch cfg.LLM.Provider {
	case config.ProviderMock:
		return Result{Name: name, Passed: true, Detail: "mock (canned reply)"}
	case config.ProviderGemini, config.ProviderOpenRouter:
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			return Result{Name: name, Detail: cfg.LLM.Provider + ": API key missing"}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", cfg.LLM.Provider, cfg.LLM.Model)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("unsupported provider %q", cfg.LLM.Provider)}
	}
}

// CheckNotifications validates the ntfy topic URL.
func CheckNotifications(topic string) Result {
	const name = "ntfy"
	parsed, err := url.Parse(strings.TrimSpace(topic))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not an http(s) topic URL)", topic)}
	}
	return Result{Name: name, Passed: true, Detail: parsed.Host + parsed.Path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (API unreachable)"
	}
	return err.Error()
}
