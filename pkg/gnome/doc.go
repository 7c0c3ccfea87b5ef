// Package gnome turns the text printed by the shell's version command into a
// validated version and maps that version onto a compatible extension
// release.
//
// The Resolver tries an ordered list of matchers and takes the first hit.
// The Mapper is a table of semver constraints over the major version with an
// open-ended "latest" bucket on top.
package gnome
