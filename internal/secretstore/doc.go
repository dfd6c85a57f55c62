// Package secretstore reads and writes the OAuth2 client secret used to
// authenticate against the Västtrafik API.
//
// Three backends are available:
//   - Env: read-only environment variable (VT_SECRET by default)
//   - File: local file with 0600 permissions and atomic writes
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, Secret Service)
//
// Only File and Keyring can be written by `tavla credentials set`.
package secretstore
