// ABOUTME: mDNS advertisement and browsing for the remote-control endpoint
// ABOUTME: Publishes _volumekit._tcp so controllers can find a running player
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service advertised by volplay
const ServiceType = "_volumekit._tcp"

// Config holds advertisement configuration
type Config struct {
	ServiceName string
	Port        int
	Path        string // websocket path, published as a TXT record
	Version     string
	Logger      *slog.Logger
}

// Advertiser publishes the remote-control endpoint while it is served
type Advertiser struct {
	config Config
	logger *slog.Logger
}

// Endpoint describes a discovered player
type Endpoint struct {
	Name string
	Host string
	Port int
	Info []string
}

// InstanceName returns base with a short unique suffix, so several players on
// one host do not collide
func InstanceName(base string) string {
	if base == "" {
		base = "volplay"
	}
	id := uuid.NewString()
	return base + "-" + id[:8]
}

// NewAdvertiser creates an advertiser. Call Serve to publish.
func NewAdvertiser(config Config) *Advertiser {
	if config.Path == "" {
		config.Path = "/ws"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Advertiser{
		config: config,
		logger: logger.With(slog.String("component", "discovery")),
	}
}

// TXT returns the TXT records published with the service
func (a *Advertiser) TXT() []string {
	txt := []string{"path=" + a.config.Path}
	if a.config.Version != "" {
		txt = append(txt, "version="+a.config.Version)
	}
	return txt
}

// Serve advertises until ctx is done
func (a *Advertiser) Serve(ctx context.Context) error {
	if a.config.Port <= 0 {
		return fmt.Errorf("invalid port %d", a.config.Port)
	}
	if a.config.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		a.config.ServiceName,
		ServiceType,
		"",
		"",
		a.config.Port,
		ips,
		a.TXT(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}
	defer server.Shutdown()

	a.logger.Info("advertising mDNS service",
		slog.String("name", a.config.ServiceName),
		slog.String("type", ServiceType),
		slog.Int("port", a.config.Port))

	<-ctx.Done()
	return ctx.Err()
}

func (a *Advertiser) String() string {
	return "mdns:" + a.config.ServiceName
}

// Browse queries the local network for players until timeout elapses
func Browse(ctx context.Context, timeout time.Duration) ([]Endpoint, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Endpoint, 1)

	go func() {
		var found []Endpoint
		for entry := range entries {
			if !strings.Contains(entry.Name, ServiceType) {
				continue
			}
			found = append(found, toEndpoint(entry))
		}
		done <- found
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Domain = "local"
	params.Timeout = timeout
	params.Entries = entries
	params.DisableIPv6 = true

	errCh := make(chan error, 1)
	go func() {
		errCh <- mdns.Query(params)
		close(entries)
	}()

	select {
	case err := <-errCh:
		found := <-done
		if err != nil {
			return found, fmt.Errorf("mdns query failed: %w", err)
		}
		return found, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func toEndpoint(entry *mdns.ServiceEntry) Endpoint {
	host := entry.Host
	if entry.AddrV4 != nil {
		host = entry.AddrV4.String()
	}
	return Endpoint{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Host: host,
		Port: entry.Port,
		Info: entry.InfoFields,
	}
}

// URL returns the websocket URL for the endpoint
func (e Endpoint) URL() string {
	path := "/ws"
	for _, field := range e.Info {
		if v, ok := strings.CutPrefix(field, "path="); ok {
			path = v
		}
	}
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(e.Host, fmt.Sprint(e.Port)), path)
}

// getLocalIPs returns local IPv4 addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
