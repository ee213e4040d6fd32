// Package client contains client-side building blocks for the CVGenius
// offline client.
//
// # Overview
//
// The package provides:
//  1. A transport contract (see the Client interface) for the CVGenius API:
//     Ping and PushCV.
//  2. An HTTP implementation (see HTTPClient) that maps non-2xx responses to
//     sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Callers match ErrUnavailable and ErrRejected with errors.Is. Any non-2xx
// response to PushCV means "not yet synced, retry later".
package client
