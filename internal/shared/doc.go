// Package shared holds helpers used by more than one package's tests.
//
// The testutil subpackage provides:
//
//   - a capturing slog handler (NewTestLogger) with assertion helpers
//   - a board export builder (NewBoardExport) that renders the markup the
//     HTML adapter reads, so service, transport and app tests can upload a
//     realistic document without fixture files
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    export := testutil.NewBoardExport().
//	        Column("Contacted", "Received: 01/02/23 Install").
//	        Bytes()
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "analysis complete")
//	}
//
// Nothing here may import production packages beyond the standard library,
// so every package can use it without creating a cycle.
package shared
