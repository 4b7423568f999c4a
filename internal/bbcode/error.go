package bbcode

import (
	"fmt"

	"github.com/gerunddev/markbridge/internal/tree"
)

// ErrorKind classifies parse errors
type ErrorKind int

const (
	// ErrUnknownTag is a tag name no handler is registered for
	ErrUnknownTag ErrorKind = iota
	// ErrUnopenedTag is an end tag while no tag is open
	ErrUnopenedTag
	// ErrUnclosedTag is a tag still open at a mismatched end tag or at the
	// end of the input
	ErrUnclosedTag
	// ErrUnexpectedTag is a nested tag inside a tag that only takes text
	ErrUnexpectedTag
	// ErrMisplacedTag is a structural tag outside the tag it belongs in, or
	// a block tag inside an inline one
	ErrMisplacedTag
	// ErrMissingParam is a required parameter that was not given
	ErrMissingParam
	// ErrMissingInner is a tag whose required text content is empty
	ErrMissingInner
	// ErrParamParse is a parameter value that is not a number
	ErrParamParse
	// ErrParamInvalid is a parameter value of the wrong shape
	ErrParamInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownTag:
		return "unknown tag"
	case ErrUnopenedTag:
		return "unopened tag"
	case ErrUnclosedTag:
		return "unclosed tag"
	case ErrUnexpectedTag:
		return "unexpected tag"
	case ErrMisplacedTag:
		return "misplaced tag"
	case ErrMissingParam:
		return "missing parameter"
	case ErrMissingInner:
		return "missing inner text"
	case ErrParamParse:
		return "invalid number"
	case ErrParamInvalid:
		return "invalid parameter"
	}
	return "unknown error"
}

// Error is a parse error. Value is the offending substring and Range its
// position in the input.
type Error struct {
	Kind  ErrorKind
	Value string
	Range Span

	// Inner and InnerRange name the nested tag of ErrUnexpectedTag
	Inner      string
	InnerRange Span
	// Parent lists the tags an ErrMisplacedTag tag belongs in; it is empty
	// for a block tag inside an inline one
	Parent string
	// Tag and Param name the tag and parameter key of parameter errors
	Tag   string
	Param string

	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("BBCode parse error (%q from %d to %d): %s.", e.Value, e.Range.Start, e.Range.End, e.detail())
}

func (e *Error) detail() string {
	switch e.Kind {
	case ErrUnexpectedTag:
		return fmt.Sprintf("unexpected tag %s inside %s tag from %d to %d", e.Inner, e.Value, e.InnerRange.Start, e.InnerRange.End)
	case ErrMisplacedTag:
		if e.Parent == "" {
			return "misplaced tag, block tags cannot be inside inline tags"
		}
		return fmt.Sprintf("misplaced tag, must be inside %s", e.Parent)
	case ErrMissingParam:
		return fmt.Sprintf("missing required parameter %s", paramName(e.Param, e.Tag))
	case ErrMissingInner:
		return "missing required inner text"
	case ErrParamParse, ErrParamInvalid:
		return fmt.Sprintf("invalid value for parameter %s of %s tag: %v", paramName(e.Param, e.Tag), e.Tag, e.Err)
	}
	return e.Kind.String()
}

func paramName(key, tag string) string {
	if key == "" {
		return tag
	}
	return key
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Position maps the start of the error range to a line and column of input.
func (e *Error) Position(input string) tree.Position {
	return tree.PositionAt(input, e.Range.Start)
}

func unknownTag(name string, r Span) *Error {
	return &Error{Kind: ErrUnknownTag, Value: name, Range: r}
}

func unopenedTag(name string, r Span) *Error {
	return &Error{Kind: ErrUnopenedTag, Value: name, Range: r}
}

func unclosedTag(t *NodeTag) *Error {
	return &Error{Kind: ErrUnclosedTag, Value: t.Name, Range: t.NameRange}
}

func misplacedTag(name string, r Span, parent string) *Error {
	return &Error{Kind: ErrMisplacedTag, Value: name, Range: r, Parent: parent}
}

func unexpectedTag(outer, inner *NodeTag) *Error {
	return &Error{
		Kind:       ErrUnexpectedTag,
		Value:      outer.Name,
		Range:      outer.NameRange,
		Inner:      inner.Name,
		InnerRange: inner.NameRange,
	}
}

func missingParam(t *NodeTag, key string) *Error {
	return &Error{Kind: ErrMissingParam, Value: t.Name, Range: t.ParamRange, Tag: t.Name, Param: key}
}

func missingInner(t *NodeTag) *Error {
	return &Error{Kind: ErrMissingInner, Value: t.Name, Range: t.NameRange}
}

func paramError(kind ErrorKind, t *NodeTag, key, value string, err error) *Error {
	return &Error{
		Kind:  kind,
		Value: value,
		Range: t.Params.Range(key),
		Tag:   t.Name,
		Param: key,
		Err:   err,
	}
}
