// Package config defines project settings used by the verstamp subcommands
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the update folder URL, the tag filter for describe
// and the artifact list published by a release.
package config
