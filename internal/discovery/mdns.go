package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/axectl/internal/logging"
	"github.com/muurk/axectl/internal/minerapi"
)

const (
	// ServiceType is the mDNS service type AxeOS advertises its web UI under
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultBrowseTimeout is how long to listen for mDNS announcements
	DefaultBrowseTimeout = 3 * time.Second
)

// BrowseCandidates listens for HTTP services on the local network for timeout
// and returns their addresses, deduplicated, in arrival order. The result may
// include devices that are not miners.
func BrowseCandidates(ctx context.Context, timeout time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		candidates []string
		seen       = make(map[string]bool)
		wg         sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			var entry *zeroconf.ServiceEntry
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				entry = e
			case <-ctx.Done():
				return
			}

			addr, ok := entryAddress(entry)
			if !ok || seen[addr] {
				continue
			}
			seen[addr] = true
			candidates = append(candidates, addr)
			logging.Debug("mDNS candidate", zap.String("instance", entry.Instance), zap.String("address", addr))
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	wg.Wait()

	return candidates, nil
}

// ScanMDNS browses for HTTP services and confirms each candidate with the
// scanner's prober. Services that do not answer the miner API are dropped.
func (s *Scanner) ScanMDNS(ctx context.Context, browseTimeout time.Duration) ([]*minerapi.DiscoveredMiner, error) {
	candidates, err := BrowseCandidates(ctx, browseTimeout)
	if err != nil {
		return nil, err
	}

	miners := s.ScanAddresses(ctx, candidates)
	logging.Info("mDNS scan completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("found", len(miners)))
	return miners, nil
}

// entryAddress picks the probe address for a service entry. Only IPv4 is
// used; a non-default port is kept as host:port.
func entryAddress(entry *zeroconf.ServiceEntry) (string, bool) {
	if entry == nil {
		return "", false
	}

	var ip net.IP
	for _, addr := range entry.AddrIPv4 {
		if v4 := addr.To4(); v4 != nil {
			ip = v4
			break
		}
	}
	if ip == nil {
		return "", false
	}

	if entry.Port == 0 || entry.Port == 80 {
		return ip.String(), true
	}
	return net.JoinHostPort(ip.String(), strconv.Itoa(entry.Port)), true
}
