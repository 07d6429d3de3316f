// Package pom reads and rewrites the version property of Maven project
// descriptors (pom.xml).
//
// The tracked value lives at project/properties/<element>, where <element>
// defaults to commonAppVersion. Extraction walks the document with
// encoding/xml and reports why a version is missing through typed errors;
// substitution is a plain literal text replacement so that nothing else in
// the descriptor (formatting, comments, other occurrences of the same
// version string) is touched.
package pom
