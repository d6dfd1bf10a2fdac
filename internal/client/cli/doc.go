// Package cli provides the interactive AfterLife command-line client.
//
// It wires configuration, local storage, the contract gateway, wallet
// providers and the session controller behind a REPL. Typical flow: connect
// a wallet, which loads the will; choose a name on first use; then manage
// deposits, nominees and the inactivity period, check in, or claim an
// inheritance.
//
// Every write goes through a dialog that shows its progress as
// notifications. A failed write can be retried from the same dialog.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
