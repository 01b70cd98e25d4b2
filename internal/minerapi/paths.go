package minerapi

import "fmt"

// AxeOS HTTP API paths. Older firmware only serves /api/system, newer builds
// add /api/system/info, and swarm-enabled builds expose /api/swarm/info.
const (
	PathSystemInfo = "/api/system/info"
	PathSystem     = "/api/system"
	PathSwarmInfo  = "/api/swarm/info"
	PathRestart    = "/api/system/restart"
	PathWebSocket  = "/api/ws"
)

// PathList is an ordered set of candidate API paths. Earlier entries are
// preferred; probing stops at the first path that yields a JSON success.
type PathList []string

var (
	// StatusPaths is the fallback order used when fetching full device status.
	StatusPaths = PathList{PathSystemInfo, PathSystem, PathSwarmInfo}

	// DiscoveryPaths is the subset of StatusPaths tried while scanning.
	// The swarm endpoint is skipped so a miss costs at most two requests.
	DiscoveryPaths = StatusPaths[:2:2]
)

// URLs returns the full request URL for every path, in priority order.
func (pl PathList) URLs(address string) []string {
	urls := make([]string, len(pl))
	for i, path := range pl {
		urls[i] = deviceURL(address, path)
	}
	return urls
}

func deviceURL(address, path string) string {
	return fmt.Sprintf("http://%s%s", address, path)
}
