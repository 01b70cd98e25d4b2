// Package tui implements the interactive miner dashboard.
//
// The dashboard is a full-screen Bubble Tea program with two screens:
//
//   - Discovery: scans the configured subnet (or browses mDNS) in the
//     background, shows live progress, and lists the miners found. Addresses
//     can also be entered by hand.
//   - Dashboard: shows the live status of one miner, re-read on a timer, and
//     runs restart and frequency/core-voltage changes behind a confirmation
//     dialog.
//
// # Architecture
//
// AppModel owns both screen models and routes messages to the active one.
// Screen models are values updated through Update; long-running work (scans,
// device calls) runs in tea.Cmd functions and reports back with messages.
// Each message carries the generation or instance id of the model that
// started the work, so results from a superseded scan or a closed dashboard
// are dropped.
//
// # Layout
//
// Every screen renders through RenderApplicationContainer so the header and
// key help footer stay in place when switching screens. The palette is shared
// with package ui.
package tui
