package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tree document element and attribute names.
const (
	ElementRoot      = "vehicle-model"
	ElementAndOrTree = "and-or-tree"
	ElementNode      = "node"

	AttrType  = "type"
	AttrName  = "name"
	AttrValue = "value"
	AttrGroup = "group"
)

// Values of the type attribute on node elements.
const (
	TypeMark   = "mark"
	TypeOption = "AND"
	TypeModel  = "model"
)

// Group is the presentational AND/OR tag carried by an option.
type Group string

const (
	GroupAND Group = "AND"
	GroupOR  Group = "OR"
)

// ParseGroup maps an attribute value to a Group. An empty value is GroupAND.
func ParseGroup(s string) (Group, error) {
	switch {
	case s == "" || strings.EqualFold(s, string(GroupAND)):
		return GroupAND, nil
	case strings.EqualFold(s, string(GroupOR)):
		return GroupOR, nil
	default:
		return "", fmt.Errorf("unknown option group %q", s)
	}
}

// Solutions document element and attribute names.
const (
	ElementSolutions = "vehicle-solutions"
	ElementSolution  = "solution"

	AttrTree = "tree"

	FieldFullDescription  = "full-description"
	FieldShortDescription = "short-description"
	FieldPrice            = "price"
	FieldModel            = "model"
	FieldMark             = "mark"
	FieldHash             = "hash"
)

// SolutionFields lists the children of a solution element in their required order.
var SolutionFields = []string{
	FieldFullDescription,
	FieldShortDescription,
	FieldPrice,
	FieldModel,
	FieldMark,
	FieldHash,
}

// FreeText reports whether field holds operator text that may be empty.
func FreeText(field string) bool {
	return field == FieldFullDescription || field == FieldShortDescription
}

// Grammar violation messages. They are surfaced to users verbatim.
const (
	MsgFirstNode     = "first node must be a root-model node"
	MsgSecondNode    = "second node must be an and-or-tree"
	MsgTreeChild     = "child of and-or-tree must be a mark node"
	MsgMarkChildless = "mark node must have at least one child"
	MsgMarkChild     = "children of a mark node must have kind option"
	MsgOptionFirst   = "first child of an option must be a model reference"
	MsgModelName     = "model node must have a name attribute"
	MsgSolutionsRoot = "root node must be a vehicle-solutions node"
	MsgSolutionChild = "child of vehicle-solutions must be a solution node"
	MsgSolutionsTree = "vehicle-solutions node must have a tree attribute"
)

// MissingName is the message for a mark or option without a name.
func MissingName(line int) string {
	return fmt.Sprintf("node at line %d must have a name attribute", line)
}

// DuplicateMark is the message for a mark name that appears twice.
func DuplicateMark(name string) string {
	return fmt.Sprintf("duplicate mark name '%s'", name)
}

// DuplicateOption is the message for an option name that appears twice in a mark.
func DuplicateOption(mark, option string) string {
	return fmt.Sprintf("duplicate option name '%s' in mark '%s'", option, mark)
}

// UnsavableText is the message for a name or value holding characters an
// XML document cannot carry.
func UnsavableText(what, text string) string {
	return fmt.Sprintf("%s %q contains characters XML cannot hold", what, text)
}

// SolutionField is the message for a solution child that is missing or out of order.
func SolutionField(index int, want string) string {
	return fmt.Sprintf("solution child %d must be a %s node", index+1, want)
}

// SolutionValue is the message for a solution child without a usable value.
func SolutionValue(field string) string {
	return fmt.Sprintf("%s node must have a value attribute", field)
}

// MatchType reports whether a type attribute names the wanted kind.
// Kinds compare case-insensitively.
func MatchType(got, want string) bool {
	return strings.EqualFold(strings.TrimSpace(got), want)
}

// ValidText reports whether s is valid UTF-8 made only of characters an
// XML 1.0 document can hold. Anything else cannot survive a save and load.
func ValidText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		switch {
		case r == 0x9 || r == 0xA || r == 0xD:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}
