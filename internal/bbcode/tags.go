package bbcode

import "github.com/gerunddev/markbridge/internal/tree"

// tagSpec describes how one tag name is parsed and built.
type tagSpec struct {
	build func(n *Node, b *tree.Builder) error
	// void tags take no content and need no end tag
	void bool
	// parents, when set, are the only tags this tag may open inside
	parents []string
	// children, when set, are the only tags that may open inside this tag
	children []string
	// verbatim reports whether the content of t must be plain text
	verbatim func(t *NodeTag) bool
	// phrasing tags hold inline content only; block tags may not open
	// anywhere inside them
	phrasing bool
	block    bool
}

func always(*NodeTag) bool { return true }

// withoutTarget is true for link tags whose target is their text.
func withoutTarget(t *NodeTag) bool {
	_, _, ok := t.Params.First("", "url")
	return !ok
}

var listTags = []string{"list", "ul", "ol"}

var registry = map[string]*tagSpec{
	"b":      {build: wrap((*tree.Builder).Strong), phrasing: true},
	"i":      {build: wrap((*tree.Builder).Emphasis), phrasing: true},
	"s":      {build: wrap((*tree.Builder).Delete), phrasing: true},
	"strike": {build: wrap((*tree.Builder).Delete), phrasing: true},
	"u":      {build: buildUnderline, phrasing: true},

	"center":  {build: buildAlign, phrasing: true},
	"left":    {build: buildAlign, phrasing: true},
	"right":   {build: buildAlign, phrasing: true},
	"justify": {build: buildAlign, phrasing: true},
	"style":   {build: buildStyle, phrasing: true},
	"color":   {build: buildColor, phrasing: true},
	"size":    {build: buildSize, phrasing: true},
	"font":    {build: buildFont, phrasing: true},

	"code": {build: buildCode, verbatim: always, block: true},
	"pre":  {build: buildPre, verbatim: always},

	"url":     {build: buildURL, verbatim: withoutTarget, phrasing: true},
	"email":   {build: buildEmail, verbatim: withoutTarget, phrasing: true},
	"youtube": {build: buildYouTube, verbatim: always},
	"img":     {build: buildImage, verbatim: always},

	"quote":   {build: buildQuote, block: true},
	"spoiler": {build: buildSpoiler, block: true},

	"list": {build: buildList, block: true},
	"ul":   {build: buildList, block: true},
	"ol":   {build: buildList, block: true},
	"li":   {build: buildContent, parents: listTags},

	"table": {build: buildTable, children: []string{"tr"}, block: true},
	"tr":    {build: buildContent, parents: []string{"table"}, children: []string{"td", "th"}},
	"td":    {build: buildContent, parents: []string{"tr"}},
	"th":    {build: buildContent, parents: []string{"tr"}},

	"h1": {build: buildHeading, phrasing: true, block: true},
	"h2": {build: buildHeading, phrasing: true, block: true},
	"h3": {build: buildHeading, phrasing: true, block: true},
	"h4": {build: buildHeading, phrasing: true, block: true},
	"h5": {build: buildHeading, phrasing: true, block: true},
	"h6": {build: buildHeading, phrasing: true, block: true},

	"hr": {build: buildRule, void: true, block: true},
	"br": {build: buildBreak, void: true},
}

// Known reports whether name is a tag the parser understands
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}
