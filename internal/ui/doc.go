// Package ui provides terminal output components for the axectl CLI.
//
// Components follow a "run once and exit" pattern: headers, result boxes and
// the miner table are rendered with Lipgloss and printed; the only animated
// piece is the progress view shown while a scan runs, built on Bubble Tea
// with the bubbles spinner and progress bar.
//
// # Terminal Detection
//
// Printer falls back to plain text and RunWithProgress skips the animation
// when the output is not a terminal, so piped output and scripts see stable
// lines without escape codes.
//
// # Logging Integration
//
// zap logging is silent unless AXECTL_LOG_LEVEL or --log-level is set, so the
// curated UI output is not interleaved with log lines by default.
package ui
