// Package minerapi provides an HTTP client for AxeOS-style ASIC miners.
//
// Miners in the Bitaxe family run an embedded web server with a small JSON API.
// Endpoint availability differs between firmware versions, so read operations
// walk an ordered list of candidate paths and stop at the first one that
// answers with a success status and a JSON body.
//
// # Probing
//
// A Prober performs the path walk. It has two variants:
//
//   - FetchRaw returns the raw JSON document and fails with a
//     ErrTypeConnectionExhausted error once every path has missed.
//   - Discover normalizes the document into a DiscoveredMiner and returns nil
//     on exhaustion, since most addresses on a subnet are not miners.
//
// A path misses when the request fails at the transport level, the status is
// not 2xx, or the body is not JSON. A miss never aborts the walk.
//
// # Commands
//
// The Client targets a known miner with a longer timeout:
//
//	client := minerapi.NewClient(minerapi.DefaultCommandTimeout)
//
//	status, err := client.FetchStatus(ctx, "192.168.1.42")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(minerapi.Summarize(status).FormatCompact())
//
//	_, err = client.UpdateSettings(ctx, "192.168.1.42", minerapi.SettingsUpdate{
//	    FrequencyMHz:  525,
//	    CoreVoltageMV: 1200,
//	})
//
// Restart and UpdateSettings accept an empty or non-JSON success body and
// return Acknowledgement ({"success":true}) instead, because several firmware
// builds answer those endpoints without a body.
//
// # Errors
//
// Failures are reported as *DeviceError. IsTransportFailure and
// IsDeviceRejection separate "the miner could not be reached" from "the miner
// answered and refused", and a rejected settings update carries the device's
// response text.
//
// # Thread Safety
//
// Prober and Client hold no mutable state beyond their http.Client and are
// safe for concurrent use.
package minerapi
