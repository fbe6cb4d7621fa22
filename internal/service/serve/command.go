package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/verstamp/internal/config"
	"github.com/oshokin/verstamp/internal/domain/release"
	"github.com/oshokin/verstamp/internal/logger"
)

// Options controls the update folder HTTP server.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override.
	ListenAddress string
	// Dir is the folder served as the update folder. Empty means the
	// current directory.
	Dir string
}

const (
	// DefaultListenAddress binds the update folder server on all interfaces.
	DefaultListenAddress = ":8333"

	// shutdownTimeout bounds the graceful drain on context cancellation.
	shutdownTimeout = 5 * time.Second

	// readHeaderTimeout guards the server against stalled clients.
	readHeaderTimeout = 10 * time.Second
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server stops. The served folder is expected to contain the release
// manifest and the staged artifacts produced by the release command.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "verstamp-serve")

	settings, err := config.LoadIfPresent(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	if _, err = os.Stat(filepath.Join(dir, release.ManifestFilename)); err != nil {
		logger.WarnKV(ctx, "Served folder has no release manifest yet",
			"dir", dir, "manifest", release.ManifestFilename)
	}

	listenAddress, err := resolveListenAddress(settings.UpdateFolder, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	// Setup TCP listener for the file server.
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	httpServer := &http.Server{
		Handler:           logRequests(ctx, http.FileServer(http.Dir(dir))),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.InfoKV(ctx, "Update folder server listening",
		"listen_address", lis.Addr().String(), "dir", dir)

	// Done channel is closed after Shutdown finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down update folder server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		_ = httpServer.Shutdown(shutdownCtx)
		close(done)
	}()

	if err = httpServer.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve update folder: %w", err)
	}

	<-done
	logger.Info(ctx, "Update folder server stopped")

	return nil
}

// logRequests records each served file for release debugging.
func logRequests(ctx context.Context, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.InfoKV(ctx, "Serving file",
			"method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

// resolveListenAddress determines the listen address for the file server.
// If override is provided, uses it directly. Otherwise extracts the port
// from the configured update folder URL so serving matches what consumers
// are pointed at, falling back to the default port.
func resolveListenAddress(updateFolder, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if updateFolder == "" {
		return DefaultListenAddress, nil
	}

	folderURL, err := url.Parse(updateFolder)
	if err != nil {
		return "", fmt.Errorf("invalid update folder URL %q: %w", updateFolder, err)
	}

	if port := folderURL.Port(); port != "" {
		return ":" + port, nil
	}

	return DefaultListenAddress, nil
}
