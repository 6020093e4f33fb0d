// Package data carries the default comarca topology and rule catalog so
// the binary works with no data directory configured. Both files can be
// overridden through RUTACAT_DATA_DIR.
package data

import _ "embed"

// Comarques is the default topology document: the 42 Catalan comarques
// with an index-aligned adjacency list.
//
//go:embed comarques.json
var Comarques []byte

// Rules is the default rule catalog in the external schema
// (REQUIRE/FORBID entries with cultural difficulty 1..5).
//
//go:embed rules.json
var Rules []byte
