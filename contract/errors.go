package contract

import (
	"fmt"
)

type ErrorKind int

const (
	FieldCountError ErrorKind = iota + 1
	ConversionError
	EmptyListError
	BlankLineExpectedError
	TooFewInstancesError
	UnexpectedEOFError
	TrailingContentError
	InvalidCountError
	ReentryError
)

func (k ErrorKind) String() string {
	switch k {
	case FieldCountError:
		return "FieldCount"
	case ConversionError:
		return "Conversion"
	case EmptyListError:
		return "EmptyList"
	case BlankLineExpectedError:
		return "BlankLineExpected"
	case TooFewInstancesError:
		return "TooFewInstances"
	case UnexpectedEOFError:
		return "UnexpectedEOF"
	case TrailingContentError:
		return "TrailingContent"
	case InvalidCountError:
		return "InvalidCount"
	case ReentryError:
		return "Reentry"
	}
	return "?"
}

// ParseError is a failure of a generated parser. Line is 1-based.
type ParseError struct {
	Kind    ErrorKind
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parser Error on line %d: %s", e.Line, e.Message)
}

func newError(kind ErrorKind, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

func fieldCountError(line, expected, found int, atLeast bool) *ParseError {
	qualifier := ""
	if atLeast {
		qualifier = "at least "
	}
	return newError(FieldCountError, line, "expected %s%d fields but found %d", qualifier, expected, found)
}

func conversionError(line int, text, kind string) *ParseError {
	return newError(ConversionError, line, "cannot parse '%s' as %s", text, kind)
}

func emptyListError(line, minimum, found int) *ParseError {
	if found == 0 {
		return newError(EmptyListError, line, "cannot parse empty value as list")
	}
	return newError(EmptyListError, line, "expected at least %d list elements but found %d", minimum, found)
}

func blankLineError(line int) *ParseError {
	return newError(BlankLineExpectedError, line, "expected blank line at line %d", line)
}

func tooFewInstancesError(line, found int) *ParseError {
	return newError(TooFewInstancesError, line, "expected at least 1 instance (%d found)", found)
}

func eofError(line int) *ParseError {
	return newError(UnexpectedEOFError, line, "unexpected end of input")
}

func trailingContentError(line int) *ParseError {
	return newError(TrailingContentError, line, "did not reach end of file")
}

func invalidCountError(line int, name string, count int64) *ParseError {
	return newError(InvalidCountError, line, "repetition count '%s' must not be negative (found %d)", name, count)
}


func reentryError(line int, record string) *ParseError {
	return newError(ReentryError, line, "record '%s' starts again at line %d without consuming input", record, line)
}
