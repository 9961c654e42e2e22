// Package gitctx extracts diffs and commit metadata from a git repository.
//
// Diff collection shells out to git ([Unstaged], [Staged], [Commit],
// [Range]); the raw output is parsed into per-file review units, each
// carrying its own reconstructed unified diff and, when readable, the
// current working-tree content. Files are filtered by exclude glob
// patterns and bounded by a total byte budget that drops whole files
// rather than cutting mid-hunk. [Parse] applies the same splitting to a
// patch obtained elsewhere, such as a pull request.
//
// [Blamer] resolves line authorship so findings can carry the name of
// whoever last touched the flagged line.
package gitctx
