// Package setup scaffolds a project for version stamping.
//
// It writes the settings file, a self-contained version package whose
// resolution order matches verstamp's own, the archive substitution marker
// and the .gitattributes rule that activates it. Every step skips files
// that already exist unless forced, so reruns are safe.
package setup
