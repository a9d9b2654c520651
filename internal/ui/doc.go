// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for account cloning:
//  1. [SubscriptionListView] : Browse the source account's subscribed subreddits
//  2. [MultiredditListView] : Preview multireddits before cloning
//  3. [ConfirmView] : Confirm the clone operation
//  4. [CloneView] : Monitor real-time progress updates
//  5. [ResultView] : Display per-item outcomes and failed writes
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving typed messages from commands.
// Progress updates flow through a channel from the AccountEngine, providing non-blocking status reporting during clones.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
