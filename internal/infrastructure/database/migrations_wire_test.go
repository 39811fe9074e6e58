package database_test

// Blank import registers the embedded production migrations with the
// database package, matching the wiring the main binary gets. An internal
// test file cannot import this package without an import cycle, so the
// registration lives in the external test package; both packages share
// one test binary, so the init runs before every test.
import _ "github.com/nerrad567/gray-logic-assist/migrations"
