// Package common holds helpers shared by several services.
//
// It provides utilities to detect the current builder (hostname/username)
// for release audit purposes and platform-aware naming for the verstamp
// executable and its published artifacts.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
