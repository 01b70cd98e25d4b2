// Package discovery finds AxeOS miners on the local network.
//
// A range scan probes every address in a /24 host range concurrently and keeps
// the addresses that answered one of the discovery paths. Addresses that time
// out, refuse the connection, or serve something other than the miner API are
// dropped silently, so a scan only fails when its input is invalid.
//
// # Usage Example
//
//	subnet, err := discovery.LocalSubnet()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scanner := discovery.NewScanner(discovery.WithConcurrency(32))
//	miners, err := scanner.Scan(ctx, subnet, 1, 254)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range miners {
//	    fmt.Println(m)
//	}
//
// # Concurrency
//
// Probes run in their own goroutines, at most DefaultConcurrency at a time
// unless WithConcurrency says otherwise. Scan waits for every probe before
// returning and the result follows address order, not completion order.
//
// # mDNS
//
// ScanMDNS is an alternative candidate source: it browses "_http._tcp"
// announcements and confirms each advertised address with the same prober.
// This requires multicast on the local segment (UDP port 5353).
package discovery
