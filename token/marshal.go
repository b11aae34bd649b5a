package token

// Node is the serializable form of a token tree, used to dump streams as
// JSON or YAML.
type Node struct {
	Kind    string `json:"kind"              yaml:"kind"`
	Text    string `json:"text,omitempty"    yaml:"text,omitempty"`
	Span    string `json:"span"              yaml:"span"`
	Spacing string `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Delim   string `json:"delim,omitempty"   yaml:"delim,omitempty"`
	Trees   []Node `json:"trees,omitempty"   yaml:"trees,omitempty"`
}

// Describe converts a stream into its serializable form.
func Describe(s Stream) []Node {
	nodes := make([]Node, 0, len(s))

	for _, t := range s {
		switch t := t.(type) {
		case *Ident:
			nodes = append(nodes, Node{
				Kind: "ident",
				Text: t.Name,
				Span: t.Span.Range(),
			})

		case *Literal:
			nodes = append(nodes, Node{
				Kind: t.Kind.String(),
				Text: t.Text,
				Span: t.Span.Range(),
			})

		case *Punct:
			nodes = append(nodes, Node{
				Kind:    "punct",
				Text:    string(t.Char),
				Span:    t.Span.Range(),
				Spacing: t.Spacing.String(),
			})

		case *Group:
			nodes = append(nodes, Node{
				Kind:  "group",
				Span:  t.Span.Range(),
				Delim: t.Delim.String(),
				Trees: Describe(t.Stream),
			})
		}
	}

	return nodes
}
