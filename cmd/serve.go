package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attendlog/web"
)

var (
	servePort   int
	serveHost   string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web UI for activity reports",
	Long: `Start a local HTTP server with the activity log report page.

The server only listens on a loopback address and reuses the session from
"attendlog auth login". Admins and managers can approve or reject pending
leaves from the report page.`,
	Example: `
  # Start local server on default port
  attendlog serve

  # Custom port, do not open a browser
  attendlog serve --port 9090 --no-open
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := resolveListenAddr(serveHost, servePort)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sess, client, err := a.session()
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr:              addr,
			Handler:           web.NewServer(a.reportService(client), client, sess, a.logger),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := "http://" + addr
		a.logger.Info("web ui listening", zap.String("url", listenURL), zap.String("role", sess.Role))
		fmt.Printf("Listening on %s\n", listenURL)
		if !serveNoOpen {
			if openErr := openURLInBrowser(listenURL + "/report"); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server")
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Loopback address to bind (127.0.0.1, ::1 or localhost)")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

// resolveListenAddr only accepts loopback hosts.
func resolveListenAddr(host string, port int) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = "127.0.0.1"
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("invalid --port %d: expected 1-65535", port)
	}
	if host != "localhost" {
		ip := net.ParseIP(strings.Trim(host, "[]"))
		if ip == nil || !ip.IsLoopback() {
			return "", fmt.Errorf("invalid --host %q: only loopback addresses are allowed", host)
		}
		host = ip.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
