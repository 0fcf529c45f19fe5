// Package contract defines how a generated parser reads a data file that
// conforms to a heimer model, and provides Reader, an executable reference for
// that behavior. Every emitter must produce parsers whose results and errors
// agree with Reader.
//
// Input lines are stripped of surrounding whitespace before they are used. A
// record is read line by line in declaration order:
//
//   - An empty line requires the next input line to be blank.
//   - A single scalar field converts one input line. Bools accept 0, 1, true
//     and false in any case; strings take the whole line.
//   - A single list field splits one input line on the model's delimiter and
//     converts every token. Fewer than ContractOptions.MinListTokens tokens is
//     an error.
//   - A single record-typed field reads the referenced record in place.
//   - Several fields on one line split one input line. A trailing list takes
//     every remaining token; otherwise the token count must equal the field
//     count.
//
// Repetition repeats the single-instance read of a field:
//
//   - A fixed or variable count k reads exactly k instances. With "!", a blank
//     line is read between instances, never after the last one.
//   - Zero-or-more takes a Cursor snapshot before each attempt. A failed
//     attempt, including its separator, restores the snapshot and ends the
//     repetition without error. An attempt that consumes no input also ends it.
//   - One-or-more behaves the same but fails when no instance was read.
//
// A record that would start again at the offset where an enclosing instance
// of the same record started fails with ReentryError. Inside zero-or-more this
// is an ordinary failed attempt, so self-references that precede any consumed
// line read as empty repetitions.
//
// After the body has been read, any non-blank input left over is an error.
package contract
