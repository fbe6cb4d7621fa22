// Package archive implements the archive export substitution convention.
//
// A small marker file carries the literal $Format:%(describe:tags)$ template
// and is tagged with the export-subst attribute in .gitattributes. When a
// tarball is produced with `git archive`, git replaces the template with a
// live describe string, so source exports without VCS metadata still carry a
// usable version. In an ordinary checkout the template stays unexpanded and
// must be rejected, which IsPlaceholder detects.
package archive
